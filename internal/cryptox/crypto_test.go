package cryptox

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/dmitrijs2005/locksys/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyFunc func(dst []byte) error

func (f keyFunc) LoadDeviceKey(dst []byte) error { return f(dst) }

func fixedKey(t *testing.T) (KeySource, *[][]byte) {
	t.Helper()
	var handed [][]byte
	return keyFunc(func(dst []byte) error {
		for i := range dst {
			dst[i] = byte(i)
		}
		handed = append(handed, dst)
		return nil
	}), &handed
}

func TestSecureZero(t *testing.T) {
	buf := []byte("Abc12345!")
	SecureZero(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}

	SecureZero(nil)
}

func TestKeyedMAC_KnownVector(t *testing.T) {
	// RFC 4231, test case 2.
	got := KeyedMAC([]byte("Jefe"), []byte("what do ya want for nothing?"))
	assert.Equal(t, "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843", hex.EncodeToString(got))
}

func TestKeyedMAC_Deterministic(t *testing.T) {
	key := []byte("0123456789abcdef")
	a := KeyedMAC(key, []byte("payload"))
	b := KeyedMAC(key, []byte("payload"))
	assert.Equal(t, a, b)
	assert.Len(t, a, MACLen)
	assert.NotEqual(t, a, KeyedMAC(key, []byte("payloae")))
}

func TestConstantTimeEqual(t *testing.T) {
	a := []byte{1, 2, 3, 4}
	assert.True(t, ConstantTimeEqual(a, a))
	assert.True(t, ConstantTimeEqual(a, []byte{1, 2, 3, 4}))
	assert.False(t, ConstantTimeEqual(a, []byte{0, 2, 3, 4}))
	assert.False(t, ConstantTimeEqual(a, []byte{1, 2, 3, 5}))
	assert.False(t, ConstantTimeEqual(a, []byte{1, 2, 3}))
	assert.True(t, ConstantTimeEqual(nil, []byte{}))
}

func TestDeviceMAC_SumWipesKeyCopy(t *testing.T) {
	src, handed := fixedKey(t)
	m := NewDeviceMAC(src)

	sum, err := m.Sum([]byte("data"))
	require.NoError(t, err)

	key := make([]byte, DeviceKeyLen)
	for i := range key {
		key[i] = byte(i)
	}
	assert.Equal(t, KeyedMAC(key, []byte("data")), sum)

	require.Len(t, *handed, 1)
	assert.Equal(t, make([]byte, DeviceKeyLen), (*handed)[0], "key copy must be wiped")
}

func TestDeviceMAC_LoadFailureIsInternal(t *testing.T) {
	m := NewDeviceMAC(keyFunc(func(dst []byte) error {
		dst[0] = 0xFF
		return errors.New("no key")
	}))

	_, err := m.Sum([]byte("data"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInternal)

	ok, err := m.Verify([]byte("data"), make([]byte, MACLen))
	assert.False(t, ok)
	assert.ErrorIs(t, err, common.ErrInternal)
}

func TestDeviceMAC_Verify(t *testing.T) {
	src, _ := fixedKey(t)
	m := NewDeviceMAC(src)

	data := []byte("user record image")
	sum, err := m.Sum(data)
	require.NoError(t, err)

	ok, err := m.Verify(data, sum)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Verify(data, sum)
	require.NoError(t, err)
	assert.True(t, ok, "verification must be repeatable")

	tampered := append([]byte(nil), data...)
	tampered[3] ^= 0x01
	ok, err = m.Verify(tampered, sum)
	require.NoError(t, err)
	assert.False(t, ok)
}
