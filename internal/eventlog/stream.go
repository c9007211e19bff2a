package eventlog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/locksys/internal/common"
	"github.com/dmitrijs2005/locksys/internal/models"
)

// Stream iterates over the records of the log. Each call to Log.Stream
// opens a fresh reader, so a stream can be restarted by opening another.
//
//	s, err := log.Stream(ctx)
//	...
//	defer s.Close()
//	for s.Next() {
//	    rec := s.Record()
//	}
//	if err := s.Err(); err != nil { ... }
type Stream struct {
	rc  io.ReadCloser
	r   *bufio.Reader
	buf [models.LogRecordSize]byte
	rec models.LogRecord
	err error
}

func (l *Log) Stream(ctx context.Context) (*Stream, error) {
	rc, err := l.st.OpenLogStream(ctx)
	if err != nil {
		return nil, err
	}
	return &Stream{rc: rc, r: bufio.NewReader(rc)}, nil
}

// Next advances to the next record. Bytes before a sync byte are skipped.
// A record cut short by the end of the stream ends the iteration.
func (s *Stream) Next() bool {
	if s.err != nil {
		return false
	}

	for {
		c, err := s.r.ReadByte()
		if err != nil {
			s.fail(err)
			return false
		}
		if c == models.LogSyncByte {
			break
		}
	}

	s.buf[0] = models.LogSyncByte
	if _, err := io.ReadFull(s.r, s.buf[1:]); err != nil {
		s.fail(err)
		return false
	}

	if err := s.rec.UnmarshalBinary(s.buf[:]); err != nil {
		s.err = err
		return false
	}
	return true
}

func (s *Stream) fail(err error) {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		s.err = io.EOF
		return
	}
	s.err = fmt.Errorf("%w: read log: %v", common.ErrStorage, err)
}

// Record returns the record read by the last successful Next.
func (s *Stream) Record() models.LogRecord { return s.rec }

// Err returns the first read error. Reaching the end of the log, including
// a truncated trailing record, is not an error.
func (s *Stream) Err() error {
	if errors.Is(s.err, io.EOF) {
		return nil
	}
	return s.err
}

func (s *Stream) Close() error { return s.rc.Close() }
