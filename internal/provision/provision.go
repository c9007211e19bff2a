// Package provision prepares a device for first use: it installs the
// device key, formats the credential store and creates the root
// administrator with a random initial passphrase.
package provision

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"path/filepath"

	"github.com/dmitrijs2005/locksys/internal/common"
	"github.com/dmitrijs2005/locksys/internal/config"
	"github.com/dmitrijs2005/locksys/internal/cryptox"
	"github.com/dmitrijs2005/locksys/internal/filex"
	"github.com/dmitrijs2005/locksys/internal/hal"
	"github.com/dmitrijs2005/locksys/internal/keystore"
	"github.com/dmitrijs2005/locksys/internal/logging"
	"github.com/dmitrijs2005/locksys/internal/storage"
	"github.com/dmitrijs2005/locksys/internal/users"
	"github.com/google/uuid"
)

// InitPassFile receives the initial root administrator passphrase.
const InitPassFile = "init_pass.txt"

var ErrProvisioned = errors.New("device already provisioned, use -force to start over")

const (
	upperChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars   = "0123456789"
	specialChars = "!@#$^&*()"
	allChars     = upperChars + "abcdefghijklmnopqrstuvwxyz" + digitChars + specialChars
)

type Options struct {
	// Force wipes existing credentials and the event log first.
	Force bool

	// OutDir is where InitPassFile is written.
	OutDir string
}

type Result struct {
	DeviceID     string
	RootAdmin    string
	PasswordFile string

	// KeyGenerated is false when the key source is read-only and the
	// configured key was kept.
	KeyGenerated bool
}

// Run provisions the device described by cfg.
func Run(ctx context.Context, cfg *config.Config, st storage.Storage, keys cryptox.KeySource, clock hal.Clock, opts Options, log logging.Logger) (*Result, error) {
	deviceID := uuid.NewString()
	log = log.With("device_id", deviceID)

	if opts.Force {
		if err := st.Wipe(ctx); err != nil {
			return nil, err
		}
		log.Warn(ctx, "existing credentials and event log erased")
	} else if _, err := st.GetSystemState(ctx); err == nil {
		return nil, ErrProvisioned
	} else if !errors.Is(err, common.ErrUninitialized) {
		return nil, err
	}

	dir, err := filex.EnsureDir(opts.OutDir)
	if err != nil {
		return nil, err
	}

	res := &Result{
		DeviceID:     deviceID,
		RootAdmin:    cfg.RootAdminUsername,
		PasswordFile: filepath.Join(dir, InitPassFile),
	}

	generated, err := installKey(keys)
	if err != nil {
		return nil, err
	}
	res.KeyGenerated = generated
	if !generated {
		log.Warn(ctx, "key source is read-only, keeping the configured device key", "source", cfg.KeySource)
	}

	mac := cryptox.NewDeviceMAC(keys)
	store := users.NewStore(st, mac, clock, cfg.Password, cfg.MaxUsers)
	if err := store.Format(ctx); err != nil {
		return nil, err
	}

	pass, err := GeneratePassword(cfg.Password.MaxLength)
	if err != nil {
		return nil, err
	}
	defer cryptox.SecureZero(pass)

	// Add wipes its argument
	if err := store.Add(ctx, cfg.RootAdminUsername, append([]byte(nil), pass...), true); err != nil {
		return nil, fmt.Errorf("create root administrator: %w", err)
	}

	line := append(pass, '\n')
	defer cryptox.SecureZero(line)
	if err := filex.AtomicWriteFile(res.PasswordFile, line, 0o600); err != nil {
		return nil, fmt.Errorf("write %s: %w", InitPassFile, err)
	}

	log.Info(ctx, "device provisioned", "root_admin", cfg.RootAdminUsername, "password_file", res.PasswordFile)
	return res, nil
}

// installKey stores a fresh random device key when the source accepts one.
func installKey(keys cryptox.KeySource) (bool, error) {
	p, ok := keys.(keystore.Provisioner)
	if !ok {
		return false, nil
	}

	key := common.GenerateRandByteArray(cryptox.DeviceKeyLen)
	defer cryptox.SecureZero(key)

	err := p.StoreDeviceKey(key)
	if errors.Is(err, keystore.ErrReadOnly) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store device key: %w", err)
	}
	return true, nil
}

// GeneratePassword returns n random characters with at least one
// uppercase letter, one digit and one symbol.
func GeneratePassword(n int) ([]byte, error) {
	if n < 4 {
		return nil, fmt.Errorf("%w: password length %d", common.ErrInvalidInput, n)
	}

	out := make([]byte, n)
	sets := []string{upperChars, digitChars, specialChars}
	for i := range out {
		set := allChars
		if i < len(sets) {
			set = sets[i]
		}
		c, err := pick(len(set))
		if err != nil {
			return nil, err
		}
		out[i] = set[c]
	}

	for i := len(out) - 1; i > 0; i-- {
		j, err := pick(i + 1)
		if err != nil {
			return nil, err
		}
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func pick(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("%w: random source: %v", common.ErrInternal, err)
	}
	return int(v.Int64()), nil
}
