// Package cryptox holds the integrity primitives used by locksys: secret
// erasure, HMAC-SHA-256 over arbitrary byte spans, constant-time comparison
// and the device MAC built on top of a pluggable key source.
package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"runtime"
)

const (
	// DeviceKeyLen is the size of the device secret key in bytes.
	DeviceKeyLen = 16

	// MACLen is the size of every MAC produced by this package.
	MACLen = sha256.Size
)

// SecureZero overwrites every byte of b with zero.
//
// runtime.KeepAlive after the loop keeps the compiler from treating the
// stores as dead when b is not read again. Passing nil is a no-op.
func SecureZero(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// KeyedMAC returns HMAC-SHA-256(key, data).
func KeyedMAC(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

// ConstantTimeEqual reports whether a and b hold the same bytes.
//
// For equal lengths every byte is visited regardless of where the first
// difference is. Spans of different length are never equal.
func ConstantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
