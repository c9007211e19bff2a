package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/locksys/internal/common"
	"golang.org/x/crypto/hkdf"
)

// SealingKeyLen is the AES-256 key size used to seal the device key at rest.
const SealingKeyLen = 32

var ErrEmptySecret = errors.New("empty sealing secret")

// SealedKey is the on-disk envelope of a sealed device key.
type SealedKey struct {
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// DeriveSealingKey stretches a host-bound secret (for example the contents
// of /etc/machine-id) into an AES-256 key with HKDF-SHA-256.
//
// salt and info separate this use from any other derivation over the same
// secret. The caller owns the returned key and should wipe it after use.
func DeriveSealingKey(secret, salt []byte, info string) ([]byte, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	key := make([]byte, SealingKeyLen)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, []byte(info)), key); err != nil {
		return nil, err
	}

	return key, nil
}

// SealKey encrypts key with AES-GCM under sealingKey and returns the JSON
// encoded SealedKey envelope. A fresh random 12-byte nonce is generated for
// every call.
//
// Example:
//
//	sk, _ := DeriveSealingKey(machineID, salt, "locksys device key")
//	defer SecureZero(sk)
//
//	blob, err := SealKey(deviceKey, sk)
//	if err != nil {
//	    return err
//	}
//	_ = os.WriteFile("device.key.sealed", blob, 0o600)
func SealKey(key, sealingKey []byte) ([]byte, error) {
	aesgcm, err := newGCM(sealingKey)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())
	ciphertext := aesgcm.Seal(nil, nonce, key, nil)

	return json.Marshal(SealedKey{Nonce: nonce, Ciphertext: ciphertext})
}

// OpenKey reverses SealKey. The returned plaintext must be wiped by the
// caller once copied to its destination.
func OpenKey(sealed, sealingKey []byte) ([]byte, error) {
	var env SealedKey
	if err := json.Unmarshal(sealed, &env); err != nil {
		return nil, fmt.Errorf("decode sealed key: %w", err)
	}

	aesgcm, err := newGCM(sealingKey)
	if err != nil {
		return nil, err
	}
	if len(env.Nonce) != aesgcm.NonceSize() {
		return nil, fmt.Errorf("sealed key nonce: want %d bytes, got %d", aesgcm.NonceSize(), len(env.Nonce))
	}

	plaintext, err := aesgcm.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("open sealed key: %w", err)
	}

	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
