// Package rpc implements the JSON-RPC 2.0 API server.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/Klingon-tech/klingnet-hd/config"
	klog "github.com/Klingon-tech/klingnet-hd/internal/log"
	"github.com/Klingon-tech/klingnet-hd/internal/wallet"
	"github.com/Klingon-tech/klingnet-hd/pkg/network"
	"github.com/rs/zerolog"
)

const (
	// maxBodySize is the maximum allowed request body size (1 MB).
	maxBodySize = 1 << 20
	// maxBatchSize bounds the number of calls in one batch request.
	maxBatchSize = 32
)

// Defaults fill in request fields a caller leaves empty.
type Defaults struct {
	Network     network.Profile
	Language    string
	EntropyBits int
	Path        string
	CoinType    uint32
}

// DefaultsFromConfig builds Defaults from a loaded configuration.
func DefaultsFromConfig(cfg *config.Config) (Defaults, error) {
	net, err := cfg.Profile()
	if err != nil {
		return Defaults{}, err
	}
	return Defaults{
		Network:     net,
		Language:    cfg.Mnemonic.Language,
		EntropyBits: cfg.Mnemonic.EntropyBits,
		Path:        cfg.Derivation.DefaultPath,
		CoinType:    cfg.Derivation.CoinType,
	}, nil
}

// Server is the JSON-RPC 2.0 HTTP server.
type Server struct {
	addr     string
	defaults Defaults
	keystore *wallet.Keystore // For wallet RPC (nil = disabled).
	access   accessPolicy
	server   *http.Server
	logger   zerolog.Logger
	ln       net.Listener
}

// New creates a new RPC server. The rpcCfg parameter controls IP filtering
// and CORS. A zero-value RPCConfig allows all IPs and disables CORS.
func New(addr string, defaults Defaults, rpcCfg ...config.RPCConfig) *Server {
	s := &Server{
		addr:     addr,
		defaults: defaults,
		logger:   klog.WithComponent("rpc"),
	}
	if len(rpcCfg) > 0 {
		s.access = newAccessPolicy(rpcCfg[0])
	}

	mux := http.NewServeMux()
	mux.Handle("/", s.access.wrap(http.HandlerFunc(s.handleRequest)))

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // Argon2 unlocks can be slow.
	}

	return s
}

// Start binds the listener and serves in a background goroutine.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("rpc listen: %w", err)
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("RPC server error")
		}
	}()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("RPC server listening")
	return nil
}

// Addr returns the listener address (useful when bound to :0).
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// SetKeystore enables the wallet_* methods.
func (s *Server) SetKeystore(ks *wallet.Keystore) {
	s.keystore = ks
}

// handleRequest decodes a single request or a batch and writes the matching
// response shape.
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, errorResponse(nil, CodeInvalidRequest, "only POST method is allowed"))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		writeJSON(w, errorResponse(nil, CodeParseError, "failed to read request body"))
		return
	}
	if len(body) > maxBodySize {
		writeJSON(w, errorResponse(nil, CodeInvalidRequest, "request body too large"))
		return
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '[' {
		writeJSON(w, s.process(body))
		return
	}

	var batch []json.RawMessage
	if err := json.Unmarshal(body, &batch); err != nil {
		writeJSON(w, errorResponse(nil, CodeParseError, "invalid JSON"))
		return
	}
	switch {
	case len(batch) == 0:
		writeJSON(w, errorResponse(nil, CodeInvalidRequest, "empty batch"))
		return
	case len(batch) > maxBatchSize:
		writeJSON(w, errorResponse(nil, CodeInvalidRequest, fmt.Sprintf("batch exceeds %d calls", maxBatchSize)))
		return
	}

	out := make([]Response, 0, len(batch))
	for _, raw := range batch {
		out = append(out, s.process(raw))
	}
	writeJSON(w, out)
}

// process handles one encoded request.
func (s *Server) process(raw []byte) Response {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return errorResponse(nil, CodeParseError, "invalid JSON")
	}
	if req.JSONRPC != "2.0" {
		return errorResponse(req.ID, CodeInvalidRequest, "jsonrpc must be \"2.0\"")
	}

	start := time.Now()
	result, rpcErr := s.dispatch(&req)
	if rpcErr != nil {
		s.logger.Debug().Str("method", req.Method).Int("code", rpcErr.Code).
			Dur("took", time.Since(start)).Msg(rpcErr.Message)
		return Response{JSONRPC: "2.0", Error: rpcErr, ID: req.ID}
	}
	s.logger.Trace().Str("method", req.Method).Dur("took", time.Since(start)).Msg("RPC call")
	return Response{JSONRPC: "2.0", Result: result, ID: req.ID}
}

// Invoke runs method in-process and decodes its result into result. It skips
// the HTTP layer, so IP filtering and CORS do not apply. Errors returned by
// the handler are *Error.
func (s *Server) Invoke(method string, params, result interface{}) error {
	res, rpcErr := s.dispatch(&Request{JSONRPC: "2.0", Method: method, Params: params})
	if rpcErr != nil {
		return rpcErr
	}
	if result == nil {
		return nil
	}
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal %s result: %w", method, err)
	}
	return json.Unmarshal(data, result)
}

// dispatch routes a request to the appropriate handler.
func (s *Server) dispatch(req *Request) (interface{}, *Error) {
	switch req.Method {
	case "mnemonic_getLanguages":
		return s.handleMnemonicGetLanguages(req)
	case "mnemonic_getWords":
		return s.handleMnemonicGetWords(req)
	case "mnemonic_generate":
		return s.handleMnemonicGenerate(req)
	case "mnemonic_encodeBytes":
		return s.handleMnemonicEncodeBytes(req)
	case "mnemonic_validate":
		return s.handleMnemonicValidate(req)
	case "mnemonic_toSeed":
		return s.handleMnemonicToSeed(req)
	case "hdkey_derive":
		return s.handleHDKeyDerive(req)
	case "hdkey_decode":
		return s.handleHDKeyDecode(req)
	case "wallet_create":
		return s.handleWalletCreate(req)
	case "wallet_import":
		return s.handleWalletImport(req)
	case "wallet_list":
		return s.handleWalletList(req)
	case "wallet_deriveAccount":
		return s.handleWalletDeriveAccount(req)
	case "wallet_listAccounts":
		return s.handleWalletListAccounts(req)
	default:
		return nil, &Error{Code: CodeMethodNotFound, Message: fmt.Sprintf("method %q not found", req.Method)}
	}
}

func errorResponse(id interface{}, code int, message string) Response {
	return Response{
		JSONRPC: "2.0",
		Error:   &Error{Code: code, Message: message},
		ID:      id,
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// parseParams unmarshals the request params into the given target.
func parseParams(req *Request, target interface{}) *Error {
	if req.Params == nil {
		return &Error{Code: CodeInvalidParams, Message: "params required"}
	}

	data, err := json.Marshal(req.Params)
	if err != nil {
		return &Error{Code: CodeInvalidParams, Message: "invalid params"}
	}

	if err := json.Unmarshal(data, target); err != nil {
		return &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)}
	}
	return nil
}

// parseOptionalParams is parseParams for endpoints whose params may be omitted.
func parseOptionalParams(req *Request, target interface{}) *Error {
	if req.Params == nil {
		return nil
	}
	return parseParams(req, target)
}

// resolveNetwork maps a network name to its profile, or the default when empty.
func (s *Server) resolveNetwork(name string) (network.Profile, *Error) {
	if name == "" {
		return s.defaults.Network, nil
	}
	p, ok := network.ByName(name)
	if !ok {
		return network.Profile{}, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("unknown network %q", name)}
	}
	return p, nil
}
