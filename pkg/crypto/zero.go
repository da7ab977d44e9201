package crypto

import (
	"crypto/subtle"
	"runtime"
)

// Zero overwrites b with zeros.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	zero := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zero)
	runtime.KeepAlive(b)
}

// Zero32 wipes a 32-byte array in place.
func Zero32(b *[32]byte) {
	Zero(b[:])
}

// Zero64 wipes a 64-byte array in place.
func Zero64(b *[64]byte) {
	Zero(b[:])
}
