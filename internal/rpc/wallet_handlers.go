package rpc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Klingon-tech/klingnet-hd/internal/wallet"
	"github.com/Klingon-tech/klingnet-hd/pkg/hdkey"
	"github.com/Klingon-tech/klingnet-hd/pkg/mnemonic"
)

// requireWallet returns an error if the wallet keystore is not enabled.
func (s *Server) requireWallet() *Error {
	if s.keystore == nil {
		return &Error{Code: CodeInternalError, Message: "wallet not enabled"}
	}
	return nil
}

// walletError maps keystore failures onto RPC errors.
func walletError(op string, err error) *Error {
	msg := fmt.Sprintf("%s: %v", op, err)
	switch {
	case errors.Is(err, wallet.ErrWalletNotFound):
		return &Error{Code: CodeNotFound, Message: msg}
	case errors.Is(err, wallet.ErrWrongPassword):
		return &Error{Code: CodeUnauthorized, Message: msg}
	case errors.Is(err, wallet.ErrWalletExists), errors.Is(err, wallet.ErrAccountExists):
		return &Error{Code: CodeConflict, Message: msg}
	case errors.Is(err, wallet.ErrInvalidName), errors.Is(err, wallet.ErrInvalidPhrase),
		errors.Is(err, hdkey.ErrInvalidPath):
		return &Error{Code: CodeInvalidParams, Message: msg}
	default:
		return &Error{Code: CodeInternalError, Message: msg}
	}
}

func (s *Server) handleWalletCreate(req *Request) (interface{}, *Error) {
	if err := s.requireWallet(); err != nil {
		return nil, err
	}

	var params WalletCreateParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if params.Name == "" || params.Password == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "name and password are required"}
	}
	net, rpcErr := s.resolveNetwork(params.Network)
	if rpcErr != nil {
		return nil, rpcErr
	}
	bits := params.EntropyBits
	if bits == 0 {
		bits = s.defaults.EntropyBits
	}

	res := mnemonic.Generate(s.language(params.Language), bits)
	defer res.Zero()
	if !res.OK() {
		return nil, &Error{
			Code:    CodeInvalidParams,
			Message: fmt.Sprintf("generate mnemonic: %s", res.Status),
			Data:    statusCode(res.Status),
		}
	}
	phrase := res.Phrase()

	info, err := s.keystore.ImportMnemonic(params.Name, res.Language, phrase, params.Passphrase,
		[]byte(params.Password), net)
	if err != nil {
		return nil, walletError("create wallet", err)
	}

	return &WalletCreateResult{
		Wallet:   info,
		Mnemonic: phrase,
	}, nil
}

func (s *Server) handleWalletImport(req *Request) (interface{}, *Error) {
	if err := s.requireWallet(); err != nil {
		return nil, err
	}

	var params WalletImportParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	// Normalize mnemonic: trim whitespace and collapse internal spaces/newlines.
	params.Mnemonic = strings.Join(strings.Fields(params.Mnemonic), " ")

	if params.Name == "" || params.Password == "" || params.Mnemonic == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "name, password, and mnemonic are required"}
	}
	net, rpcErr := s.resolveNetwork(params.Network)
	if rpcErr != nil {
		return nil, rpcErr
	}

	info, err := s.keystore.ImportMnemonic(params.Name, s.language(params.Language), params.Mnemonic,
		params.Passphrase, []byte(params.Password), net)
	if err != nil {
		return nil, walletError("import wallet", err)
	}
	return info, nil
}

func (s *Server) handleWalletList(_ *Request) (interface{}, *Error) {
	if err := s.requireWallet(); err != nil {
		return nil, err
	}
	list, err := s.keystore.List()
	if err != nil {
		return nil, walletError("list wallets", err)
	}
	return list, nil
}

func (s *Server) handleWalletDeriveAccount(req *Request) (interface{}, *Error) {
	if err := s.requireWallet(); err != nil {
		return nil, err
	}

	var params WalletDeriveAccountParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if params.Name == "" || params.Password == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "name and password are required"}
	}

	w, err := s.keystore.Open(params.Name, []byte(params.Password))
	if err != nil {
		return nil, walletError("open wallet", err)
	}
	defer w.Close()

	var acct *wallet.AccountEntry
	if params.Path != "" {
		acct, err = w.DeriveAccount(hdkey.Derivation(params.Path), params.Label)
	} else {
		coin := s.defaults.CoinType
		if params.Coin != nil {
			coin = *params.Coin
		}
		if coin >= hdkey.HardenedOffset {
			return nil, &Error{Code: CodeInvalidParams, Message: "coin must be below 2^31"}
		}
		acct, err = w.NextAccount(coin, params.Label)
	}
	if err != nil {
		return nil, walletError("derive account", err)
	}
	return acct, nil
}

func (s *Server) handleWalletListAccounts(req *Request) (interface{}, *Error) {
	if err := s.requireWallet(); err != nil {
		return nil, err
	}

	var params WalletNameParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	accounts, err := s.keystore.ListAccounts(params.Name)
	if err != nil {
		return nil, walletError("list accounts", err)
	}
	return accounts, nil
}
