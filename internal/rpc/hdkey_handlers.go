package rpc

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-hd/pkg/crypto"
	"github.com/Klingon-tech/klingnet-hd/pkg/hdkey"
	"github.com/Klingon-tech/klingnet-hd/pkg/mnemonic"
)

// newKeyResult describes node. The private serialization is included only
// when withPrivate is set and the node has a private key.
func newKeyResult(node *hdkey.HDKey, path string, withPrivate bool) (*KeyResult, error) {
	net := node.Network()
	xpub, err := hdkey.Serialize(node, node.ParentFingerprint(), net.Version(true), true)
	if err != nil {
		return nil, err
	}
	res := &KeyResult{
		Network:           net.Key(),
		Path:              path,
		Depth:             node.Depth(),
		Index:             node.Index(),
		Hardened:          node.Index() >= hdkey.HardenedOffset,
		ParentFingerprint: fmt.Sprintf("%08x", node.ParentFingerprint()),
		Fingerprint:       fmt.Sprintf("%08x", node.Fingerprint()),
		ChainCode:         hex.EncodeToString(node.ChainCode()),
		PublicKey:         hex.EncodeToString(node.PublicKey()),
		XPub:              xpub,
	}
	if withPrivate && node.IsPrivate() {
		xprv, err := hdkey.Serialize(node, node.ParentFingerprint(), net.Version(false), false)
		if err != nil {
			return nil, err
		}
		res.XPrv = xprv
	}
	return res, nil
}

// keyError maps derivation and decoding failures onto RPC errors.
func keyError(err error) *Error {
	switch {
	case errors.Is(err, hdkey.ErrInvalidPath),
		errors.Is(err, hdkey.ErrSeedSize),
		errors.Is(err, hdkey.ErrDeriveHardFromPublic),
		errors.Is(err, hdkey.ErrMaxDepth),
		errors.Is(err, hdkey.ErrExtendedKeyLength),
		errors.Is(err, hdkey.ErrUnknownVersion),
		errors.Is(err, hdkey.ErrInvalidKeyData),
		errors.Is(err, hdkey.ErrInvalidMasterState),
		errors.Is(err, crypto.ErrInvalidBase58),
		errors.Is(err, crypto.ErrChecksum):
		return &Error{Code: CodeInvalidParams, Message: err.Error()}
	default:
		return &Error{Code: CodeInternalError, Message: err.Error()}
	}
}

// deriveRoot builds the root node selected by params.
func (s *Server) deriveRoot(params *DeriveParam) (*hdkey.HDKey, *Error) {
	sources := 0
	for _, v := range []string{params.Phrase, params.Seed, params.Key} {
		if v != "" {
			sources++
		}
	}
	if sources != 1 {
		return nil, &Error{Code: CodeInvalidParams, Message: "exactly one of phrase, seed or key is required"}
	}

	if params.Key != "" {
		root, err := hdkey.ParseExtendedKey(params.Key)
		if err != nil {
			return nil, keyError(err)
		}
		return root, nil
	}

	net, rpcErr := s.resolveNetwork(params.Network)
	if rpcErr != nil {
		return nil, rpcErr
	}

	var seed []byte
	if params.Phrase != "" {
		stretched := mnemonic.WordsToSeed(params.Phrase, params.Passphrase)
		defer stretched.Zero()
		seed = stretched.Bytes()
	} else {
		decoded, err := hex.DecodeString(params.Seed)
		if err != nil {
			return nil, &Error{Code: CodeInvalidParams, Message: "seed must be hex"}
		}
		defer crypto.Zero(decoded)
		seed = decoded
	}

	root, err := hdkey.NewRootKey(seed, net)
	if err != nil {
		return nil, keyError(err)
	}
	return root, nil
}

func (s *Server) handleHDKeyDerive(req *Request) (interface{}, *Error) {
	var params DeriveParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	path := params.Path
	if path == "" {
		path = s.defaults.Path
	}

	root, rpcErr := s.deriveRoot(&params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	defer root.Zero()

	node, err := root.Extend(hdkey.Derivation(path))
	if err != nil {
		return nil, keyError(err)
	}
	defer node.Zero()

	res, err := newKeyResult(node, path, !params.Public)
	if err != nil {
		return nil, keyError(err)
	}
	return res, nil
}

func (s *Server) handleHDKeyDecode(req *Request) (interface{}, *Error) {
	var params DecodeParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if params.Key == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "key is required"}
	}

	node, err := hdkey.ParseExtendedKey(params.Key)
	if err != nil {
		return nil, keyError(err)
	}
	defer node.Zero()

	res, err := newKeyResult(node, "", true)
	if err != nil {
		return nil, keyError(err)
	}
	return res, nil
}
