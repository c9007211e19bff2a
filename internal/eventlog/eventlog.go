// Package eventlog is the tamper-evident, append-only record of security
// events.
//
// Each entry is a fixed-size models.LogRecord sealed with the device MAC.
// Readers never trust the stream: they resynchronize on the sync byte and
// report per-entry MAC validity instead of rejecting bad entries.
package eventlog

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/locksys/internal/common"
	"github.com/dmitrijs2005/locksys/internal/cryptox"
	"github.com/dmitrijs2005/locksys/internal/hal"
	"github.com/dmitrijs2005/locksys/internal/models"
	"github.com/dmitrijs2005/locksys/internal/storage"
)

// DefaultMaxSize is the log size above which the device refuses to start.
const DefaultMaxSize = 8150

type Log struct {
	st      storage.Storage
	mac     cryptox.Authenticator
	clock   hal.Clock
	maxSize int64
}

func New(st storage.Storage, mac cryptox.Authenticator, clock hal.Clock, maxSize int64) *Log {
	return &Log{st: st, mac: mac, clock: clock, maxSize: maxSize}
}

func (l *Log) MaxSize() int64 { return l.maxSize }

// Append seals one event and writes it with a single storage append.
// Payloads longer than models.LogPayloadMax are common.ErrInvalidInput.
func (l *Log) Append(ctx context.Context, typ models.EventType, payload []byte) error {
	rec, err := models.NewLogRecord(l.clock.Now(), typ, payload)
	if err != nil {
		return err
	}

	sum, err := l.mac.Sum(rec.SignedBytes())
	if err != nil {
		return err
	}
	copy(rec.MAC[:], sum)
	cryptox.SecureZero(sum)

	raw, _ := rec.MarshalBinary()
	return l.st.AppendLog(ctx, raw)
}

// Initialize checks the log before the device starts serving. A log larger
// than the configured maximum is common.ErrLogFull; otherwise the whole
// stream is read once to make sure it is readable.
func (l *Log) Initialize(ctx context.Context) error {
	size, err := l.st.LogSize(ctx)
	if err != nil {
		return err
	}
	if size > l.maxSize {
		return fmt.Errorf("%w: %d bytes, limit %d", common.ErrLogFull, size, l.maxSize)
	}

	s, err := l.Stream(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	for s.Next() {
	}
	return s.Err()
}

// Size returns the current log size in bytes.
func (l *Log) Size(ctx context.Context) (int64, error) {
	return l.st.LogSize(ctx)
}

// Entry is one decoded record and whether its MAC verified.
type Entry struct {
	Record models.LogRecord
	Valid  bool
}

// Entries reads the whole log. Entries with a bad MAC are returned with
// Valid set to false.
func (l *Log) Entries(ctx context.Context) ([]Entry, error) {
	s, err := l.Stream(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	var out []Entry
	for s.Next() {
		rec := s.Record()
		out = append(out, Entry{Record: rec, Valid: l.verify(&rec)})
	}
	return out, s.Err()
}

func (l *Log) verify(rec *models.LogRecord) bool {
	ok, err := l.mac.Verify(rec.SignedBytes(), rec.MAC[:])
	return err == nil && ok
}
