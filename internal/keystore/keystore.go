// Package keystore provides the sources of the 128-bit device secret key.
//
// Every source copies the key into a caller-owned buffer on each call and
// wipes its own intermediate copies; nothing here caches the key in memory
// except Firmware, whose key is compiled in by definition.
package keystore

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/locksys/internal/config"
	"github.com/dmitrijs2005/locksys/internal/cryptox"
	"github.com/dmitrijs2005/locksys/internal/filex"
)

var (
	ErrKeyLength = errors.New("device key must be 16 bytes")
	ErrReadOnly  = errors.New("key source is read-only")
)

// Provisioner is implemented by sources that can persist a freshly
// generated device key.
type Provisioner interface {
	StoreDeviceKey(key []byte) error
}

// New returns the key source selected by cfg.KeySource. Relative key file
// paths are resolved inside cfg.StorageDir.
func New(cfg *config.Config) (cryptox.KeySource, error) {
	keyPath := cfg.KeyFile
	if !filepath.IsAbs(keyPath) {
		keyPath = filepath.Join(cfg.StorageDir, keyPath)
	}

	switch cfg.KeySource {
	case config.KeySourceFirmware:
		return NewFirmware(cfg.FirmwareKeyHex)
	case config.KeySourceFile:
		return NewFile(keyPath), nil
	case config.KeySourceSealed:
		return NewSealed(keyPath, cfg.MachineIDFile), nil
	default:
		return nil, fmt.Errorf("unknown key source %q", cfg.KeySource)
	}
}

func checkDst(dst []byte) error {
	if len(dst) != cryptox.DeviceKeyLen {
		return fmt.Errorf("%w: destination is %d bytes", ErrKeyLength, len(dst))
	}
	return nil
}

// Firmware serves a key embedded in the image (or given in configuration).
type Firmware struct {
	key [cryptox.DeviceKeyLen]byte
}

func NewFirmware(hexKey string) (*Firmware, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode firmware key: %w", err)
	}
	defer cryptox.SecureZero(raw)

	if len(raw) != cryptox.DeviceKeyLen {
		return nil, fmt.Errorf("%w: firmware key is %d bytes", ErrKeyLength, len(raw))
	}

	f := &Firmware{}
	copy(f.key[:], raw)
	return f, nil
}

func (f *Firmware) LoadDeviceKey(dst []byte) error {
	if err := checkDst(dst); err != nil {
		return err
	}
	copy(dst, f.key[:])
	return nil
}

func (f *Firmware) StoreDeviceKey([]byte) error {
	return ErrReadOnly
}

// File keeps the raw 16-byte key in a file readable only by the owner.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) LoadDeviceKey(dst []byte) error {
	if err := checkDst(dst); err != nil {
		return err
	}

	raw, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("read key file: %w", err)
	}
	defer cryptox.SecureZero(raw)

	if len(raw) != cryptox.DeviceKeyLen {
		return fmt.Errorf("%w: key file holds %d bytes", ErrKeyLength, len(raw))
	}
	copy(dst, raw)
	return nil
}

func (f *File) StoreDeviceKey(key []byte) error {
	if len(key) != cryptox.DeviceKeyLen {
		return ErrKeyLength
	}
	return filex.AtomicWriteFile(f.path, key, 0o600)
}
