package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/locksys/internal/common"
	"github.com/dmitrijs2005/locksys/internal/models"
)

// FileStorage keeps user slots and the system state in one flat file and
// log records in a second, append-only file.
//
// Users file layout: slot i starts at i*UserRecordSize; the system state
// starts right after the last slot at maxUsers*UserRecordSize. Every write
// is followed by fsync.
type FileStorage struct {
	usersPath string
	logPath   string
	maxUsers  int
}

func NewFileStorage(usersPath, logPath string, maxUsers int) *FileStorage {
	return &FileStorage{usersPath: usersPath, logPath: logPath, maxUsers: maxUsers}
}

func (s *FileStorage) stateOffset() int64 {
	return int64(s.maxUsers) * models.UserRecordSize
}

func (s *FileStorage) readAt(off int64, n int, absent error) ([]byte, error) {
	f, err := os.Open(s.usersPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, absent
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open users file: %v", common.ErrStorage, err)
	}
	defer f.Close()

	buf := make([]byte, n)
	if _, err := f.ReadAt(buf, off); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, absent
		}
		return nil, fmt.Errorf("%w: read users file at %d: %v", common.ErrStorage, off, err)
	}
	return buf, nil
}

func (s *FileStorage) writeAt(off int64, b []byte) error {
	f, err := os.OpenFile(s.usersPath, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return fmt.Errorf("%w: open users file: %v", common.ErrStorage, err)
	}
	defer f.Close()

	if _, err := f.WriteAt(b, off); err != nil {
		return fmt.Errorf("%w: write users file at %d: %v", common.ErrStorage, off, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: sync users file: %v", common.ErrStorage, err)
	}
	return nil
}

func (s *FileStorage) GetUser(_ context.Context, index int) ([]byte, error) {
	if err := checkSlot(index, s.maxUsers); err != nil {
		return nil, err
	}
	return s.readAt(int64(index)*models.UserRecordSize, models.UserRecordSize,
		fmt.Errorf("%w: slot %d", common.ErrNotFound, index))
}

func (s *FileStorage) SetUser(_ context.Context, index int, rec []byte) error {
	if err := checkSlot(index, s.maxUsers); err != nil {
		return err
	}
	if err := checkUser(rec); err != nil {
		return err
	}
	return s.writeAt(int64(index)*models.UserRecordSize, rec)
}

func (s *FileStorage) GetSystemState(_ context.Context) ([]byte, error) {
	return s.readAt(s.stateOffset(), models.SystemStateSize,
		fmt.Errorf("%w: system state not written", common.ErrUninitialized))
}

func (s *FileStorage) SetSystemState(_ context.Context, state []byte) error {
	if err := checkState(state); err != nil {
		return err
	}
	return s.writeAt(s.stateOffset(), state)
}

// AppendLog writes rec with a single O_APPEND write so a record is never
// interleaved with another writer's bytes.
func (s *FileStorage) AppendLog(_ context.Context, rec []byte) error {
	if err := checkLogRecord(rec); err != nil {
		return err
	}

	f, err := os.OpenFile(s.logPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o600)
	if err != nil {
		return fmt.Errorf("%w: open log: %v", common.ErrStorage, err)
	}
	defer f.Close()

	if _, err := f.Write(rec); err != nil {
		return fmt.Errorf("%w: append log: %v", common.ErrStorage, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: sync log: %v", common.ErrStorage, err)
	}
	return nil
}

// OpenLogStream opens the log for sequential reading. A log that was never
// written reads as empty.
func (s *FileStorage) OpenLogStream(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.logPath)
	if errors.Is(err, fs.ErrNotExist) {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open log: %v", common.ErrStorage, err)
	}
	return f, nil
}

func (s *FileStorage) LogSize(_ context.Context) (int64, error) {
	fi, err := os.Stat(s.logPath)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: stat log: %v", common.ErrStorage, err)
	}
	return fi.Size(), nil
}

func (s *FileStorage) Wipe(_ context.Context) error {
	for _, p := range []string{s.usersPath, s.logPath} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: remove %s: %v", common.ErrStorage, p, err)
		}
	}
	return nil
}

func (s *FileStorage) Close() error { return nil }
