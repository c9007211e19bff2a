package storage

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/locksys/internal/common"
	"github.com/dmitrijs2005/locksys/internal/dbx"
	"github.com/dmitrijs2005/locksys/internal/storage/migrations"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// SQLiteStorage keeps the same record images as FileStorage in three
// tables: user_slots, system_state and event_log.
type SQLiteStorage struct {
	db       *sql.DB
	maxUsers int
}

// RunMigrations brings the schema up to date. It is idempotent.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// NewSQLiteStorage opens dsn with the pure-Go SQLite driver and runs the
// migrations. The pool is limited to one connection: the lock has a single
// writer, and ":memory:" databases are per connection.
func NewSQLiteStorage(ctx context.Context, dsn string, maxUsers int) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", common.ErrStorage, err)
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: migrate sqlite: %v", common.ErrStorage, err)
	}

	return &SQLiteStorage{db: db, maxUsers: maxUsers}, nil
}

func (s *SQLiteStorage) GetUser(ctx context.Context, index int) ([]byte, error) {
	if err := checkSlot(index, s.maxUsers); err != nil {
		return nil, err
	}

	var rec []byte
	err := s.db.QueryRowContext(ctx, `SELECT record FROM user_slots WHERE slot = ?`, index).Scan(&rec)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: slot %d", common.ErrNotFound, index)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get slot %d: %v", common.ErrStorage, index, err)
	}
	return rec, nil
}

func (s *SQLiteStorage) SetUser(ctx context.Context, index int, rec []byte) error {
	if err := checkSlot(index, s.maxUsers); err != nil {
		return err
	}
	if err := checkUser(rec); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_slots (slot, record) VALUES (?, ?)
		ON CONFLICT(slot) DO UPDATE SET record = excluded.record
	`, index, rec)
	if err != nil {
		return fmt.Errorf("%w: failed to set slot %d: %v", common.ErrStorage, index, err)
	}
	return nil
}

func (s *SQLiteStorage) GetSystemState(ctx context.Context) ([]byte, error) {
	var state []byte
	err := s.db.QueryRowContext(ctx, `SELECT state FROM system_state WHERE id = 0`).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: system state not written", common.ErrUninitialized)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get system state: %v", common.ErrStorage, err)
	}
	return state, nil
}

func (s *SQLiteStorage) SetSystemState(ctx context.Context, state []byte) error {
	if err := checkState(state); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO system_state (id, state) VALUES (0, ?)
		ON CONFLICT(id) DO UPDATE SET state = excluded.state
	`, state)
	if err != nil {
		return fmt.Errorf("%w: failed to set system state: %v", common.ErrStorage, err)
	}
	return nil
}

func (s *SQLiteStorage) AppendLog(ctx context.Context, rec []byte) error {
	if err := checkLogRecord(rec); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `INSERT INTO event_log (record) VALUES (?)`, rec); err != nil {
		return fmt.Errorf("%w: failed to append log: %v", common.ErrStorage, err)
	}
	return nil
}

// OpenLogStream returns the concatenation of every stored record in append
// order, the same byte stream FileStorage would produce.
func (s *SQLiteStorage) OpenLogStream(ctx context.Context) (io.ReadCloser, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record FROM event_log ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read log: %v", common.ErrStorage, err)
	}
	defer rows.Close()

	var buf bytes.Buffer
	for rows.Next() {
		var rec []byte
		if err := rows.Scan(&rec); err != nil {
			return nil, fmt.Errorf("%w: failed to scan log row: %v", common.ErrStorage, err)
		}
		buf.Write(rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate log rows: %v", common.ErrStorage, err)
	}

	return io.NopCloser(&buf), nil
}

func (s *SQLiteStorage) LogSize(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(LENGTH(record)), 0) FROM event_log`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to size log: %v", common.ErrStorage, err)
	}
	return n, nil
}

func (s *SQLiteStorage) Wipe(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, q := range []string{
			`DELETE FROM user_slots`,
			`DELETE FROM system_state`,
			`DELETE FROM event_log`,
		} {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: failed to wipe: %v", common.ErrStorage, err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
