// Package locksys is the authentication engine of the lock.
//
// Engine gates the actuator on a username/passphrase check, enforces the
// device-wide throttle and the per-account lockout, and writes an evidence
// record to the tamper-evident log at every decision point. Every
// passphrase buffer handed to Engine is wiped before the call returns.
//
// Engine is not safe for concurrent use.
package locksys

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/locksys/internal/common"
	"github.com/dmitrijs2005/locksys/internal/config"
	"github.com/dmitrijs2005/locksys/internal/cryptox"
	"github.com/dmitrijs2005/locksys/internal/eventlog"
	"github.com/dmitrijs2005/locksys/internal/hal"
	"github.com/dmitrijs2005/locksys/internal/logging"
	"github.com/dmitrijs2005/locksys/internal/models"
	"github.com/dmitrijs2005/locksys/internal/policy"
	"github.com/dmitrijs2005/locksys/internal/storage"
	"github.com/dmitrijs2005/locksys/internal/throttle"
	"github.com/dmitrijs2005/locksys/internal/users"
	"github.com/google/uuid"
)

// AppVersion is written as the payload of the application start event.
const AppVersion byte = 1

type Engine struct {
	users    *users.Store
	throttle *throttle.Throttle
	events   *eventlog.Log
	mac      cryptox.Authenticator
	clock    hal.Clock
	actuator hal.Actuator
	log      logging.Logger

	policy      policy.Policy
	rootAdmin   string
	maxAttempts int
}

// New wires an Engine over its collaborators. The logger is tagged with a
// fresh boot_id so records of one power cycle can be correlated.
func New(cfg *config.Config, st storage.Storage, mac cryptox.Authenticator, clock hal.Clock, act hal.Actuator, log logging.Logger) *Engine {
	return &Engine{
		users:       users.NewStore(st, mac, clock, cfg.Password, cfg.MaxUsers),
		throttle:    throttle.New(st, mac, clock, cfg.ThrottlePerFailure, cfg.ThrottleMax),
		events:      eventlog.New(st, mac, clock, cfg.LogMaxSize),
		mac:         mac,
		clock:       clock,
		actuator:    act,
		log:         log.With("boot_id", uuid.NewString()),
		policy:      cfg.Password,
		rootAdmin:   cfg.RootAdminUsername,
		maxAttempts: cfg.MaxAttempts,
	}
}

// Init prepares the engine after power-up. It fails with common.ErrLogFull
// when the log has outgrown its limit and with common.ErrTamper when the
// root administrator record is missing or does not verify. In both cases
// the device must not serve requests.
func (e *Engine) Init(ctx context.Context) error {
	if err := e.events.Initialize(ctx); err != nil {
		e.log.Error(ctx, "event log unusable", "error", err)
		return err
	}

	if err := e.events.Append(ctx, models.EventApplicationStart, []byte{AppVersion}); err != nil {
		return err
	}

	if _, _, err := e.users.FindByUsername(ctx, e.rootAdmin); err != nil {
		if errors.Is(err, common.ErrInternal) {
			return err
		}
		e.log.Error(ctx, "root administrator missing or altered", "user", e.rootAdmin)
		return fmt.Errorf("%w: root administrator %q: %v", common.ErrTamper, e.rootAdmin, err)
	}

	e.log.Info(ctx, "lock ready", "version", AppVersion)
	return nil
}

// OpenLock authenticates username and, on success, opens the lock.
func (e *Engine) OpenLock(ctx context.Context, username string, passphrase []byte) error {
	defer cryptox.SecureZero(passphrase)

	if err := e.throttle.CheckAndRegisterAttempt(ctx); err != nil {
		e.log.Warn(ctx, "unlock refused", "user", username, "status", common.StatusOf(err))
		return err
	}

	if err := e.validateCredentials(username, passphrase); err != nil {
		return err
	}

	if err := e.events.Append(ctx, models.EventUnlockRequested, nil); err != nil {
		return err
	}

	_, rec, err := e.checkPassphrase(ctx, username, passphrase)
	if err != nil {
		e.log.Warn(ctx, "unlock denied", "user", username, "status", common.StatusOf(err))
		e.appendFailure(ctx, models.EventUnlockCheckFailed, err)
		return err
	}
	releaseRecord(rec)

	if err := e.events.Append(ctx, models.EventUnlocking, nil); err != nil {
		return err
	}

	if err := e.actuator.LockOpen(ctx); err != nil {
		return fmt.Errorf("%w: open lock: %v", common.ErrInternal, err)
	}

	e.log.Info(ctx, "lock opened", "user", username)
	return nil
}

// CloseLock records the event and closes the lock.
func (e *Engine) CloseLock(ctx context.Context) error {
	if err := e.events.Append(ctx, models.EventLocking, nil); err != nil {
		return err
	}
	if err := e.actuator.LockClose(ctx); err != nil {
		return fmt.Errorf("%w: close lock: %v", common.ErrInternal, err)
	}
	e.log.Info(ctx, "lock closed")
	return nil
}

// ResetPassphrase replaces the passphrase of username after checking the
// current one. Both buffers are wiped before returning.
func (e *Engine) ResetPassphrase(ctx context.Context, username string, current, next []byte) error {
	defer cryptox.SecureZero(current)
	defer cryptox.SecureZero(next)

	if err := e.throttle.CheckAndRegisterAttempt(ctx); err != nil {
		e.log.Warn(ctx, "passphrase change refused", "user", username, "status", common.StatusOf(err))
		return err
	}

	if err := e.validateCredentials(username, current); err != nil {
		return err
	}
	if err := policy.ValidateSafeString(next, e.policy.MaxLength); err != nil {
		return err
	}
	if err := e.policy.ValidatePassword(next); err != nil {
		return err
	}

	if err := e.events.Append(ctx, models.EventPassChangeRequested, nil); err != nil {
		return err
	}

	slot, rec, err := e.checkPassphrase(ctx, username, current)
	if err != nil {
		e.log.Warn(ctx, "passphrase change denied", "user", username, "status", common.StatusOf(err))
		e.appendFailure(ctx, models.EventPassChangeFailed, err)
		return err
	}

	err = e.storePassphrase(ctx, slot, rec, next)
	releaseRecord(rec)
	if err != nil {
		e.log.Error(ctx, "passphrase change failed", "user", username, "error", err)
		e.appendFailure(ctx, models.EventPassChangeFailed, err)
		return err
	}

	if err := e.events.Append(ctx, models.EventPassChangePassed, models.StatusPayload(common.StatusOK)); err != nil {
		return err
	}

	e.log.Info(ctx, "passphrase changed", "user", username)
	return nil
}

// AddUser creates an account. passphrase is wiped before returning.
func (e *Engine) AddUser(ctx context.Context, username string, passphrase []byte, admin bool) error {
	if err := e.users.Add(ctx, username, passphrase, admin); err != nil {
		e.log.Warn(ctx, "add user failed", "user", username, "status", common.StatusOf(err))
		return err
	}
	e.log.Info(ctx, "user added", "user", username, "admin", admin)
	return nil
}

func (e *Engine) IsAdmin(ctx context.Context, username string) (bool, error) {
	return e.users.IsAdmin(ctx, username)
}

// DumpLog writes every log entry with its MAC status to w.
func (e *Engine) DumpLog(ctx context.Context, w io.Writer) error {
	return e.events.Dump(ctx, w)
}

func (e *Engine) validateCredentials(username string, passphrase []byte) error {
	if err := policy.ValidateSafeString(username, models.UsernameLen); err != nil {
		return err
	}
	return policy.ValidateSafeString(passphrase, e.policy.MaxLength)
}

// appendFailure records a denied request. The request already failed, so
// a log write error is only reported to the diagnostic logger.
func (e *Engine) appendFailure(ctx context.Context, typ models.EventType, cause error) {
	if err := e.events.Append(ctx, typ, models.StatusPayload(common.StatusOf(cause))); err != nil {
		e.log.Error(ctx, "failed to record denied request", "event", typ.String(), "error", err)
	}
}
