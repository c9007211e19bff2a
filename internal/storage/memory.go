package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/locksys/internal/common"
)

// MemoryStorage is a volatile Storage. Stored slices are copied on the way
// in and out, so callers can mutate or wipe their buffers freely.
type MemoryStorage struct {
	maxUsers int
	users    map[int][]byte
	state    []byte
	log      bytes.Buffer
}

func NewMemoryStorage(maxUsers int) *MemoryStorage {
	return &MemoryStorage{maxUsers: maxUsers, users: make(map[int][]byte)}
}

func clone(b []byte) []byte { return append([]byte(nil), b...) }

func (s *MemoryStorage) GetUser(_ context.Context, index int) ([]byte, error) {
	if err := checkSlot(index, s.maxUsers); err != nil {
		return nil, err
	}
	rec, ok := s.users[index]
	if !ok {
		return nil, fmt.Errorf("%w: slot %d", common.ErrNotFound, index)
	}
	return clone(rec), nil
}

func (s *MemoryStorage) SetUser(_ context.Context, index int, rec []byte) error {
	if err := checkSlot(index, s.maxUsers); err != nil {
		return err
	}
	if err := checkUser(rec); err != nil {
		return err
	}
	s.users[index] = clone(rec)
	return nil
}

func (s *MemoryStorage) GetSystemState(_ context.Context) ([]byte, error) {
	if s.state == nil {
		return nil, fmt.Errorf("%w: system state not written", common.ErrUninitialized)
	}
	return clone(s.state), nil
}

func (s *MemoryStorage) SetSystemState(_ context.Context, state []byte) error {
	if err := checkState(state); err != nil {
		return err
	}
	s.state = clone(state)
	return nil
}

func (s *MemoryStorage) AppendLog(_ context.Context, rec []byte) error {
	if err := checkLogRecord(rec); err != nil {
		return err
	}
	s.log.Write(rec)
	return nil
}

func (s *MemoryStorage) OpenLogStream(_ context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(clone(s.log.Bytes()))), nil
}

func (s *MemoryStorage) LogSize(_ context.Context) (int64, error) {
	return int64(s.log.Len()), nil
}

// RawLog exposes the log bytes for tests that corrupt the stream.
func (s *MemoryStorage) RawLog() []byte { return clone(s.log.Bytes()) }

// ReplaceLog overwrites the log bytes. Tests use it to inject corruption.
func (s *MemoryStorage) ReplaceLog(b []byte) {
	s.log.Reset()
	s.log.Write(b)
}

func (s *MemoryStorage) Wipe(_ context.Context) error {
	s.users = make(map[int][]byte)
	s.state = nil
	s.log.Reset()
	return nil
}

func (s *MemoryStorage) Close() error { return nil }
