// Package throttle implements the device-wide brute-force delay kept in the
// system state.
//
// After each failed or attempted login the next attempt must wait
// min(PerFailure*failed, Max). The counter is shared by all accounts and
// only a fully successful authentication resets it.
package throttle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/locksys/internal/common"
	"github.com/dmitrijs2005/locksys/internal/cryptox"
	"github.com/dmitrijs2005/locksys/internal/hal"
	"github.com/dmitrijs2005/locksys/internal/models"
	"github.com/dmitrijs2005/locksys/internal/records"
	"github.com/dmitrijs2005/locksys/internal/storage"
)

const (
	DefaultPerFailure = 2 * time.Second
	DefaultMax        = 30 * time.Second
)

type Throttle struct {
	st         storage.Storage
	mac        cryptox.Authenticator
	clock      hal.Clock
	perFailure uint32
	max        uint32
}

// New returns a Throttle. Durations are truncated to whole seconds, the
// resolution of stored timestamps.
func New(st storage.Storage, mac cryptox.Authenticator, clock hal.Clock, perFailure, max time.Duration) *Throttle {
	return &Throttle{
		st:         st,
		mac:        mac,
		clock:      clock,
		perFailure: uint32(perFailure / time.Second),
		max:        uint32(max / time.Second),
	}
}

// Delay returns the wait in seconds that follows failed attempts.
func (t *Throttle) Delay(failed uint8) uint32 {
	d := uint64(t.perFailure) * uint64(failed)
	if d > uint64(t.max) {
		return t.max
	}
	return uint32(d)
}

// CheckAndRegisterAttempt admits or refuses one authentication attempt.
//
// While the delay since the last attempt has not elapsed it returns
// common.ErrThrottled and leaves the state untouched. Otherwise the
// attempt is counted, saturating at 255, and persisted before returning.
// Any failure to read, verify or write the state is common.ErrStorage.
func (t *Throttle) CheckAndRegisterAttempt(ctx context.Context) error {
	state, err := t.load(ctx)
	if err != nil {
		return err
	}

	now := t.clock.Now()
	if state.FailedAttempts > 0 {
		if elapsed := now - state.LastAttemptTime; elapsed < t.Delay(state.FailedAttempts) {
			return fmt.Errorf("%w: retry in %ds", common.ErrThrottled, t.Delay(state.FailedAttempts)-elapsed)
		}
	}

	if state.FailedAttempts < 255 {
		state.FailedAttempts++
	}
	state.LastAttemptTime = now

	return t.save(ctx, state)
}

// Reset clears the counter after a successful authentication.
func (t *Throttle) Reset(ctx context.Context) error {
	state, err := t.load(ctx)
	if err != nil {
		return err
	}

	state.FailedAttempts = 0
	state.LastAttemptTime = t.clock.Now()

	return t.save(ctx, state)
}

// Remaining reports how many seconds must pass before the next attempt is
// admitted. It never mutates the state.
func (t *Throttle) Remaining(ctx context.Context) (uint32, error) {
	state, err := t.load(ctx)
	if err != nil {
		return 0, err
	}
	if state.FailedAttempts == 0 {
		return 0, nil
	}
	elapsed := t.clock.Now() - state.LastAttemptTime
	if d := t.Delay(state.FailedAttempts); elapsed < d {
		return d - elapsed, nil
	}
	return 0, nil
}

func (t *Throttle) load(ctx context.Context) (*models.SystemState, error) {
	state, err := records.LoadState(ctx, t.st, t.mac)
	if err != nil {
		return nil, storageErr(err)
	}
	return state, nil
}

func (t *Throttle) save(ctx context.Context, state *models.SystemState) error {
	return storageErr(records.SaveState(ctx, t.st, t.mac, state))
}

func storageErr(err error) error {
	if err == nil || errors.Is(err, common.ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: system state: %v", common.ErrStorage, err)
}
