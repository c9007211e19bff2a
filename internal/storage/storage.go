// Package storage persists the byte images of the lock's records.
//
// It knows nothing about MACs or record fields: user slots, the system
// state and log entries are opaque fixed-size byte slices. Three backends
// are provided. FileStorage is the flat slot file plus append-only log used
// on devices, SQLiteStorage keeps the same images in a SQLite database, and
// MemoryStorage backs tests and throwaway simulations.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dmitrijs2005/locksys/internal/common"
	"github.com/dmitrijs2005/locksys/internal/config"
	"github.com/dmitrijs2005/locksys/internal/filex"
	"github.com/dmitrijs2005/locksys/internal/models"
)

// Storage is the persistence collaborator of the credential store, the
// throttle and the event log.
//
// Reading a slot or system state that was never written returns an error
// wrapping common.ErrNotFound or common.ErrUninitialized respectively; all
// other failures wrap common.ErrStorage.
type Storage interface {
	GetUser(ctx context.Context, index int) ([]byte, error)
	SetUser(ctx context.Context, index int, rec []byte) error
	GetSystemState(ctx context.Context) ([]byte, error)
	SetSystemState(ctx context.Context, state []byte) error

	AppendLog(ctx context.Context, rec []byte) error
	OpenLogStream(ctx context.Context) (io.ReadCloser, error)
	LogSize(ctx context.Context) (int64, error)

	// Wipe erases every slot, the system state and the log. Only the
	// provisioning tool calls it.
	Wipe(ctx context.Context) error

	Close() error
}

// New opens the backend selected by cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return NewMemoryStorage(cfg.MaxUsers), nil

	case config.BackendFile:
		dir, err := filex.EnsureDir(cfg.StorageDir)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
		}
		return NewFileStorage(filepath.Join(dir, cfg.UsersFile), filepath.Join(dir, cfg.LogFile), cfg.MaxUsers), nil

	case config.BackendSQLite:
		return NewSQLiteStorage(ctx, cfg.SQLiteDSN, cfg.MaxUsers)

	default:
		return nil, fmt.Errorf("%w: unknown backend %q", common.ErrStorage, cfg.StorageBackend)
	}
}

func checkSlot(index, maxUsers int) error {
	if index < 0 || index >= maxUsers {
		return fmt.Errorf("%w: slot %d outside 0..%d", common.ErrStorage, index, maxUsers-1)
	}
	return nil
}

func checkLen(b []byte, want int, what string) error {
	if len(b) != want {
		return fmt.Errorf("%w: %s is %d bytes, want %d", common.ErrStorage, what, len(b), want)
	}
	return nil
}

func checkUser(rec []byte) error { return checkLen(rec, models.UserRecordSize, "user record") }

func checkState(state []byte) error {
	return checkLen(state, models.SystemStateSize, "system state")
}

func checkLogRecord(rec []byte) error {
	return checkLen(rec, models.LogRecordSize, "log record")
}
