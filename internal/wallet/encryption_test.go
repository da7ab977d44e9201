package wallet

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Klingon-tech/klingnet-hd/pkg/mnemonic"
)

// fastParams returns low-cost Argon2 params for fast tests.
func fastParams() EncryptionParams {
	return EncryptionParams{
		Memory:      64, // 64 KiB
		Iterations:  1,
		Parallelism: 1,
	}
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	plaintext := []byte("secret seed material")
	password := []byte("strong-password")

	encrypted, err := Encrypt(plaintext, password, fastParams())
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	if bytes.Contains(encrypted, plaintext) {
		t.Error("ciphertext contains plaintext")
	}

	decrypted, err := Decrypt(encrypted, password)
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("Decrypt() = %q, want %q", decrypted, plaintext)
	}
}

func TestDecrypt_WrongPassword(t *testing.T) {
	encrypted, err := Encrypt([]byte("data"), []byte("correct"), fastParams())
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	if _, err := Decrypt(encrypted, []byte("wrong")); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("Decrypt() with wrong password error = %v, want ErrWrongPassword", err)
	}
}

func TestDecrypt_TruncatedData(t *testing.T) {
	if _, err := Decrypt([]byte("too short"), []byte("pass")); err == nil {
		t.Error("Decrypt with truncated data should fail")
	}
}

func TestDecrypt_Tampered(t *testing.T) {
	tests := []struct {
		name   string
		offset func(n int) int
	}{
		{"auth tag", func(n int) int { return n - 1 }},
		{"salt", func(int) int { return 0 }},
		{"iterations header", func(int) int { return SaltSize + 4 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encrypted, err := Encrypt([]byte("data"), []byte("pass"), fastParams())
			if err != nil {
				t.Fatalf("Encrypt() error: %v", err)
			}
			encrypted[tt.offset(len(encrypted))] ^= 0x01
			if _, err := Decrypt(encrypted, []byte("pass")); err == nil {
				t.Error("Decrypt of tampered data should fail")
			}
		})
	}
}

func TestEncrypt_DifferentEachTime(t *testing.T) {
	plaintext := []byte("same data")
	password := []byte("same pass")

	enc1, err := Encrypt(plaintext, password, fastParams())
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	enc2, err := Encrypt(plaintext, password, fastParams())
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	if bytes.Equal(enc1, enc2) {
		t.Error("encrypting same data twice should produce different output (random salt/nonce)")
	}
}

func TestEncryptionParams_Validate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Errorf("DefaultParams().Validate() error: %v", err)
	}
	bad := []EncryptionParams{
		{Memory: 64, Iterations: 0, Parallelism: 1},
		{Memory: 64, Iterations: 1, Parallelism: 0},
		{Memory: 4, Iterations: 1, Parallelism: 1},
		{Memory: maxMemory + 1, Iterations: 1, Parallelism: 1},
	}
	for _, p := range bad {
		if err := p.Validate(); !errors.Is(err, ErrBadParams) {
			t.Errorf("Validate(%+v) error = %v, want ErrBadParams", p, err)
		}
		if _, err := Encrypt([]byte("x"), []byte("p"), p); err == nil {
			t.Errorf("Encrypt with %+v should fail", p)
		}
	}
}

func TestEncryptDecrypt_WalletSeed(t *testing.T) {
	seed := mnemonic.WordsToSeed("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about", "")
	defer seed.Zero()

	password := []byte("wallet-password-2024!")
	encrypted, err := Encrypt(seed.Bytes(), password, fastParams())
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	decrypted, err := Decrypt(encrypted, password)
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if !bytes.Equal(decrypted, seed.Bytes()) {
		t.Error("decrypted seed mismatch")
	}
}
