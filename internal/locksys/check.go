package locksys

import (
	"context"

	"github.com/dmitrijs2005/locksys/internal/common"
	"github.com/dmitrijs2005/locksys/internal/cryptox"
	"github.com/dmitrijs2005/locksys/internal/models"
)

// releaseRecord wipes the password MAC held by a record that will not be
// saved again.
var releaseRecord = func(rec *models.UserRecord) {
	cryptox.SecureZero(rec.PasswordMAC[:])
}

// checkPassphrase verifies passphrase against the stored MAC of username
// and updates the per-account counters. passphrase is wiped as soon as its
// MAC is computed, and on every early return.
//
// On a mismatch the account's failure counter is incremented; reaching
// maxAttempts locks the account for good and returns
// common.ErrPermanentlyLocked. A locked account is refused without
// evaluating the passphrase.
//
// The record is released on every failure path. On success it is returned
// to the caller, which must release it.
func (e *Engine) checkPassphrase(ctx context.Context, username string, passphrase []byte) (int, *models.UserRecord, error) {
	defer cryptox.SecureZero(passphrase)

	slot, rec, err := e.users.FindByUsername(ctx, username)
	if err != nil {
		return 0, nil, err
	}
	keep := false
	defer func() {
		if !keep {
			releaseRecord(rec)
		}
	}()

	if rec.Has(models.FlagLocked) {
		return 0, nil, common.ErrPermanentlyLocked
	}

	entered, err := e.mac.Sum(passphrase)
	cryptox.SecureZero(passphrase)
	if err != nil {
		return 0, nil, err
	}
	match := cryptox.ConstantTimeEqual(entered, rec.PasswordMAC[:])
	cryptox.SecureZero(entered)

	rec.LastAttempt = e.clock.Now()

	if match {
		rec.FailedAttempts = 0
		if err := e.users.Save(ctx, slot, rec); err != nil {
			return 0, nil, err
		}
		if err := e.throttle.Reset(ctx); err != nil {
			return 0, nil, err
		}
		keep = true
		return slot, rec, nil
	}

	result := common.ErrAuthFailed
	if rec.FailedAttempts < 255 {
		rec.FailedAttempts++
	}
	if int(rec.FailedAttempts) >= e.maxAttempts {
		rec.Set(models.FlagLocked)
		result = common.ErrPermanentlyLocked
	}
	if err := e.users.Save(ctx, slot, rec); err != nil {
		return 0, nil, err
	}
	return 0, nil, result
}

// storePassphrase replaces the password MAC of rec with the MAC of next.
// A successful change also clears the counter and the force-reset flag.
func (e *Engine) storePassphrase(ctx context.Context, slot int, rec *models.UserRecord, next []byte) error {
	sum, err := e.mac.Sum(next)
	cryptox.SecureZero(next)
	if err != nil {
		return err
	}
	copy(rec.PasswordMAC[:], sum)
	cryptox.SecureZero(sum)

	rec.PasswordLastSet = e.clock.Now()
	rec.FailedAttempts = 0
	rec.Clear(models.FlagForceReset)

	return e.users.Save(ctx, slot, rec)
}
