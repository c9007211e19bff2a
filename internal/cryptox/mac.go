package cryptox

import (
	"fmt"

	"github.com/dmitrijs2005/locksys/internal/common"
)

// KeySource loads the device secret key into dst, which is exactly
// DeviceKeyLen bytes long. Implementations live in the keystore package.
type KeySource interface {
	LoadDeviceKey(dst []byte) error
}

// Authenticator computes and checks device MACs. DeviceMAC is the
// production implementation.
type Authenticator interface {
	Sum(data []byte) ([]byte, error)
	Verify(data, mac []byte) (bool, error)
}

// DeviceMAC computes MACs keyed with the device secret.
//
// The key is never cached: every call loads a fresh copy from the source
// and wipes it before returning.
type DeviceMAC struct {
	keys KeySource
}

func NewDeviceMAC(keys KeySource) *DeviceMAC {
	return &DeviceMAC{keys: keys}
}

// Sum returns HMAC-SHA-256(deviceKey, data). A key that cannot be loaded
// is reported as common.ErrInternal.
func (m *DeviceMAC) Sum(data []byte) ([]byte, error) {
	key := make([]byte, DeviceKeyLen)
	defer SecureZero(key)

	if err := m.keys.LoadDeviceKey(key); err != nil {
		return nil, fmt.Errorf("%w: load device key: %v", common.ErrInternal, err)
	}

	return KeyedMAC(key, data), nil
}

// Verify recomputes the MAC over data and compares it with mac in constant
// time. The recomputed value is wiped before returning.
func (m *DeviceMAC) Verify(data, mac []byte) (bool, error) {
	sum, err := m.Sum(data)
	if err != nil {
		return false, err
	}
	defer SecureZero(sum)

	return ConstantTimeEqual(sum, mac), nil
}
