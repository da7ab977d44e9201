package rpc

import (
	"encoding/hex"
	"fmt"

	"github.com/Klingon-tech/klingnet-hd/pkg/crypto"
	"github.com/Klingon-tech/klingnet-hd/pkg/mnemonic"
)

// statusCode maps an engine status onto the wire enum.
func statusCode(s mnemonic.Status) int {
	switch s {
	case mnemonic.StatusOK:
		return StatusOK
	case mnemonic.StatusUnsupportedEntropy:
		return StatusUnsupportedEntropy
	default:
		return StatusUnknownError
	}
}

// newMnemonicResult copies res into its wire form. The caller still owns
// res and must Zero it.
func newMnemonicResult(res *mnemonic.Result) *MnemonicResult {
	out := &MnemonicResult{
		Status:     statusCode(res.Status),
		StatusName: res.Status.String(),
		Language:   res.Language,
		Words:      append([]string{}, res.Words...),
	}
	if res.OK() {
		out.Phrase = res.Phrase()
	}
	return out
}

func (s *Server) language(name string) string {
	if name == "" {
		return s.defaults.Language
	}
	return name
}

func (s *Server) handleMnemonicGetLanguages(_ *Request) (interface{}, *Error) {
	return &LanguagesResult{
		Languages: mnemonic.Languages(),
		Default:   s.defaults.Language,
	}, nil
}

func (s *Server) handleMnemonicGetWords(req *Request) (interface{}, *Error) {
	var params LanguageParam
	if err := parseOptionalParams(req, &params); err != nil {
		return nil, err
	}
	lang := s.language(params.Language)
	words := mnemonic.WordsFromLanguage(lang)
	if words == nil {
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("unknown language %q", lang)}
	}
	return &WordsResult{Language: lang, Words: words}, nil
}

func (s *Server) handleMnemonicGenerate(req *Request) (interface{}, *Error) {
	var params GenerateParam
	if err := parseOptionalParams(req, &params); err != nil {
		return nil, err
	}
	bits := params.EntropyBits
	if bits == 0 {
		bits = s.defaults.EntropyBits
	}

	res := mnemonic.Generate(s.language(params.Language), bits)
	defer res.Zero()
	return newMnemonicResult(res), nil
}

func (s *Server) handleMnemonicEncodeBytes(req *Request) (interface{}, *Error) {
	var params EncodeBytesParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	entropy, err := hex.DecodeString(params.Entropy)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: "entropy must be hex"}
	}
	defer crypto.Zero(entropy)

	bits := params.EntropyBits
	if bits == 0 {
		bits = len(entropy) * 8
	}
	res := mnemonic.EncodeBytes(entropy, s.language(params.Language), bits)
	defer res.Zero()
	return newMnemonicResult(res), nil
}

func (s *Server) handleMnemonicValidate(req *Request) (interface{}, *Error) {
	var params ValidateParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	return &ValidateResult{
		Valid: mnemonic.ValidateWords(s.language(params.Language), params.Phrase),
	}, nil
}

func (s *Server) handleMnemonicToSeed(req *Request) (interface{}, *Error) {
	var params ToSeedParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if params.Phrase == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "phrase is required"}
	}
	seed := mnemonic.WordsToSeed(params.Phrase, params.Passphrase)
	defer seed.Zero()
	return &SeedResult{Seed: hex.EncodeToString(seed.Bytes())}, nil
}
