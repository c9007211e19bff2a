package keystore

import (
	"bytes"
	"fmt"
	"os"

	"github.com/dmitrijs2005/locksys/internal/cryptox"
	"github.com/dmitrijs2005/locksys/internal/filex"
)

const (
	sealSalt = "locksys/device-key/v1"
	sealInfo = "device key sealing"
)

// Sealed stores the device key encrypted under a key derived from a host
// identifier, so a copied key file is useless on another machine.
type Sealed struct {
	path          string
	machineIDPath string
}

func NewSealed(path, machineIDPath string) *Sealed {
	return &Sealed{path: path, machineIDPath: machineIDPath}
}

func (s *Sealed) sealingKey() ([]byte, error) {
	id, err := os.ReadFile(s.machineIDPath)
	if err != nil {
		return nil, fmt.Errorf("read machine id: %w", err)
	}
	defer cryptox.SecureZero(id)

	return cryptox.DeriveSealingKey(bytes.TrimSpace(id), []byte(sealSalt), sealInfo)
}

func (s *Sealed) LoadDeviceKey(dst []byte) error {
	if err := checkDst(dst); err != nil {
		return err
	}

	blob, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read sealed key: %w", err)
	}

	sk, err := s.sealingKey()
	if err != nil {
		return err
	}
	defer cryptox.SecureZero(sk)

	key, err := cryptox.OpenKey(blob, sk)
	if err != nil {
		return err
	}
	defer cryptox.SecureZero(key)

	if len(key) != cryptox.DeviceKeyLen {
		return fmt.Errorf("%w: sealed key holds %d bytes", ErrKeyLength, len(key))
	}
	copy(dst, key)
	return nil
}

func (s *Sealed) StoreDeviceKey(key []byte) error {
	if len(key) != cryptox.DeviceKeyLen {
		return ErrKeyLength
	}

	sk, err := s.sealingKey()
	if err != nil {
		return err
	}
	defer cryptox.SecureZero(sk)

	blob, err := cryptox.SealKey(key, sk)
	if err != nil {
		return fmt.Errorf("seal device key: %w", err)
	}

	return filex.AtomicWriteFile(s.path, blob, 0o600)
}
