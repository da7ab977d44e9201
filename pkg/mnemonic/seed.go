package mnemonic

import (
	"crypto/sha512"
	"strings"

	"github.com/Klingon-tech/klingnet-hd/pkg/crypto"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/text/unicode/norm"
)

// SeedSize is the length of a BIP39 seed in bytes.
const SeedSize = 64

// PBKDF2 parameters fixed by BIP39.
const (
	seedIterations = 2048
	saltPrefix     = "mnemonic"
)

// Seed is a 64-byte BIP39 seed. Call Zero when done with it.
type Seed [SeedSize]byte

// Bytes returns a slice aliasing the seed.
func (s *Seed) Bytes() []byte {
	return s[:]
}

// Zero wipes the seed.
func (s *Seed) Zero() {
	crypto.Zero(s[:])
}

// WordsToSeed stretches a phrase and optional passphrase into a seed.
// The phrase is not validated; any string is accepted.
func WordsToSeed(phrase, passphrase string) *Seed {
	password := []byte(norm.NFKD.String(phrase))
	salt := []byte(saltPrefix + norm.NFKD.String(passphrase))
	defer crypto.Zero(password)
	defer crypto.Zero(salt)

	key := pbkdf2.Key(password, salt, seedIterations, SeedSize, sha512.New)
	defer crypto.Zero(key)

	var seed Seed
	copy(seed[:], key)
	return &seed
}

// WordListToSeed is WordsToSeed for a pre-split phrase.
func WordListToSeed(words []string, passphrase string) *Seed {
	return WordsToSeed(strings.Join(words, " "), passphrase)
}
