package crypto

import (
	"encoding/hex"
	"testing"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{
			name:  "empty input",
			input: []byte{},
			want:  "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262",
		},
		{
			name:  "hello",
			input: []byte("hello"),
			want:  "ea8f163db38682925e4491c5e58d4bb3506ef8c14eb78a86e908c5624a67200f",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hash(tt.input)
			if hex.EncodeToString(got[:]) != tt.want {
				t.Errorf("Hash(%q) = %x, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestSHA256(t *testing.T) {
	got := SHA256([]byte("abc"))
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if hex.EncodeToString(got[:]) != want {
		t.Errorf("SHA256(abc) = %x, want %s", got, want)
	}
}

func TestDoubleSHA256(t *testing.T) {
	got := DoubleSHA256([]byte{})
	want := "5df6e0e2761359d30a8275058e299fcc0381534545f55cf43e41983f5d4c9456"
	if hex.EncodeToString(got[:]) != want {
		t.Errorf("DoubleSHA256(empty) = %x, want %s", got, want)
	}

	once := SHA256([]byte("abc"))
	twice := SHA256(once[:])
	if DoubleSHA256([]byte("abc")) != twice {
		t.Error("DoubleSHA256 should equal SHA256(SHA256(x))")
	}
}

func TestHash160(t *testing.T) {
	pub, _ := hex.DecodeString("0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	got := Hash160(pub)
	want := "751e76e8199196d454941c45d1b3a323f1433bd6"
	if hex.EncodeToString(got[:]) != want {
		t.Errorf("Hash160(G) = %x, want %s", got, want)
	}
}

func TestHMACSHA512(t *testing.T) {
	// RFC 4231 test case 2.
	got := HMACSHA512([]byte("Jefe"), []byte("what do ya want for nothing?"))
	want := "164b7a7bfcf819e2e395fbe73b56e0a387bd64222e831fd610270cd7ea2505549758bf75c05a994a6d034f65f8f0e6fdcaeab1a34d4a6b4b636e070a38bce737"
	if hex.EncodeToString(got[:]) != want {
		t.Errorf("HMACSHA512() = %x, want %s", got, want)
	}
}

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	Zero(b)
	for i, v := range b {
		if v != 0 {
			t.Fatalf("byte %d = %d after Zero", i, v)
		}
	}
	Zero(nil)

	var k [32]byte
	k[31] = 0xff
	Zero32(&k)
	if k != [32]byte{} {
		t.Error("Zero32 left data behind")
	}
}
