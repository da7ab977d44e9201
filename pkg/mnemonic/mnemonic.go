// Package mnemonic implements BIP39: entropy to word phrases, phrase
// checksum validation and phrase to seed stretching.
package mnemonic

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Klingon-tech/klingnet-hd/internal/log"
	"github.com/Klingon-tech/klingnet-hd/pkg/crypto"
	"golang.org/x/text/unicode/norm"
)

// Entropy bounds in bits.
const (
	MinEntropyBits = 128
	MaxEntropyBits = 256
	bitsPerWord    = 11
)

// Status reports the outcome of Generate and EncodeBytes.
type Status int

const (
	StatusOK Status = iota
	StatusUnsupportedEntropy
	StatusUnknownError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnsupportedEntropy:
		return "unsupported_entropy"
	default:
		return "unknown_error"
	}
}

// Decoding errors.
var (
	ErrUnknownLanguage = errors.New("unknown mnemonic language")
	ErrWordCount       = errors.New("invalid mnemonic word count")
	ErrUnknownWord     = errors.New("word not in wordlist")
	ErrChecksum        = errors.New("mnemonic checksum mismatch")
)

// Result is the output of Generate and EncodeBytes. A result whose Status
// is not StatusOK carries no words and no entropy.
type Result struct {
	Words    []string
	Status   Status
	Raw      []byte
	Language string
}

// OK reports whether the result holds a phrase.
func (r *Result) OK() bool {
	return r != nil && r.Status == StatusOK
}

// Phrase joins the words with the language separator.
func (r *Result) Phrase() string {
	return strings.Join(r.Words, Separator(r.Language))
}

// Zero wipes the entropy and drops the word list.
func (r *Result) Zero() {
	crypto.Zero(r.Raw)
	r.Raw = nil
	for i := range r.Words {
		r.Words[i] = ""
	}
	r.Words = nil
}

func failed(s Status, language string) *Result {
	return &Result{Status: s, Language: language}
}

// Random is the entropy source used by Generate.
var Random io.Reader = rand.Reader

// ValidEntropyBits reports whether bits is a supported entropy size.
func ValidEntropyBits(bits int) bool {
	return bits >= MinEntropyBits && bits <= MaxEntropyBits && bits%32 == 0
}

// WordCount returns the phrase length for an entropy size.
func WordCount(entropyBits int) int {
	return (entropyBits + entropyBits/32) / bitsPerWord
}

// Generate draws entropyBits of randomness and encodes it as a phrase.
func Generate(language string, entropyBits int) *Result {
	l, ok := lookupLanguage(language)
	if !ok {
		return failed(StatusUnknownError, language)
	}
	if !ValidEntropyBits(entropyBits) {
		return failed(StatusUnsupportedEntropy, l.name)
	}

	entropy := make([]byte, entropyBits/8)
	defer crypto.Zero(entropy)
	if _, err := io.ReadFull(Random, entropy); err != nil {
		log.Mnemonic.Error().Err(err).Msg("Entropy source failed")
		return failed(StatusUnknownError, l.name)
	}
	return encode(entropy, l)
}

// EncodeBytes encodes caller-supplied entropy. len(entropy) must equal
// entropyBits/8.
func EncodeBytes(entropy []byte, language string, entropyBits int) *Result {
	l, ok := lookupLanguage(language)
	if !ok {
		return failed(StatusUnknownError, language)
	}
	if !ValidEntropyBits(entropyBits) || len(entropy)*8 != entropyBits {
		return failed(StatusUnsupportedEntropy, l.name)
	}
	return encode(entropy, l)
}

func encode(entropy []byte, l *language) *Result {
	bits := len(entropy) * 8
	sum := sha256.Sum256(entropy)
	defer crypto.Zero(sum[:])

	bit := func(i int) int {
		if i < bits {
			return int(entropy[i/8]>>(7-i%8)) & 1
		}
		i -= bits
		return int(sum[i/8]>>(7-i%8)) & 1
	}

	n := WordCount(bits)
	words := make([]string, n)
	for w := 0; w < n; w++ {
		idx := 0
		for j := 0; j < bitsPerWord; j++ {
			idx = idx<<1 | bit(w*bitsPerWord+j)
		}
		words[w] = l.words[idx]
	}

	return &Result{
		Words:    words,
		Status:   StatusOK,
		Raw:      append([]byte(nil), entropy...),
		Language: l.name,
	}
}

// splitPhrase normalizes the phrase and splits it on whitespace,
// including the ideographic space used by Japanese phrases.
func splitPhrase(phrase string) []string {
	return strings.Fields(norm.NFKD.String(phrase))
}

// DecodeWords returns the entropy encoded by a phrase, verifying its checksum.
func DecodeWords(language, phrase string) ([]byte, error) {
	l, ok := lookupLanguage(language)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, language)
	}

	words := splitPhrase(phrase)
	n := len(words)
	total := n * bitsPerWord
	// total = ENT + ENT/32, so ENT = total*32/33.
	if total%33 != 0 || !ValidEntropyBits(total*32/33) {
		return nil, fmt.Errorf("%w: %d", ErrWordCount, n)
	}
	bits := total * 32 / 33

	packed := make([]byte, (total+7)/8)
	defer crypto.Zero(packed)
	for w, word := range words {
		idx, ok := l.indexOf(word)
		if !ok {
			return nil, fmt.Errorf("%w: position %d", ErrUnknownWord, w+1)
		}
		for j := 0; j < bitsPerWord; j++ {
			if idx>>(bitsPerWord-1-j)&1 == 1 {
				pos := w*bitsPerWord + j
				packed[pos/8] |= 0x80 >> (pos % 8)
			}
		}
	}

	entropy := append([]byte(nil), packed[:bits/8]...)
	sum := sha256.Sum256(entropy)
	defer crypto.Zero(sum[:])
	for i := 0; i < bits/32; i++ {
		pos := bits + i
		want := sum[i/8] >> (7 - i%8) & 1
		got := packed[pos/8] >> (7 - pos%8) & 1
		if want != got {
			crypto.Zero(entropy)
			return nil, ErrChecksum
		}
	}
	return entropy, nil
}

// ValidateWords reports whether phrase is a well-formed phrase in language
// with a matching checksum.
func ValidateWords(language, phrase string) bool {
	entropy, err := DecodeWords(language, phrase)
	if err != nil {
		return false
	}
	crypto.Zero(entropy)
	return true
}
