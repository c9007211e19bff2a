// Package users is the credential store: fixed slots of MAC-sealed user
// records plus the user count kept in the system state.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/locksys/internal/common"
	"github.com/dmitrijs2005/locksys/internal/cryptox"
	"github.com/dmitrijs2005/locksys/internal/hal"
	"github.com/dmitrijs2005/locksys/internal/models"
	"github.com/dmitrijs2005/locksys/internal/policy"
	"github.com/dmitrijs2005/locksys/internal/records"
	"github.com/dmitrijs2005/locksys/internal/storage"
)

// Store looks up, creates and rewrites user records.
type Store struct {
	st       storage.Storage
	mac      cryptox.Authenticator
	clock    hal.Clock
	policy   policy.Policy
	maxUsers int
}

func NewStore(st storage.Storage, mac cryptox.Authenticator, clock hal.Clock, pol policy.Policy, maxUsers int) *Store {
	return &Store{st: st, mac: mac, clock: clock, policy: pol, maxUsers: maxUsers}
}

// FindByUsername scans every slot and returns the first record whose
// username equals name. Only the first models.UsernameLen bytes of name
// take part in the comparison. Slots that cannot be read, are empty or fail
// their integrity check are skipped. common.ErrNotFound is returned when no
// trusted record matches.
func (s *Store) FindByUsername(ctx context.Context, name string) (int, *models.UserRecord, error) {
	if name == "" {
		return 0, nil, fmt.Errorf("%w: empty username", common.ErrNotFound)
	}

	for slot := 0; slot < s.maxUsers; slot++ {
		rec, err := records.LoadUser(ctx, s.st, s.mac, slot)
		if err != nil {
			if errors.Is(err, common.ErrInternal) {
				return 0, nil, err
			}
			continue
		}
		if rec.MatchesName(name) {
			return slot, rec, nil
		}
	}

	return 0, nil, fmt.Errorf("%w: user %q", common.ErrNotFound, name)
}

// Add creates an enabled account in the next free slot. passphrase is
// wiped before Add returns, whatever the outcome.
//
// Usernames are not checked for uniqueness; FindByUsername resolves
// duplicates to the lowest slot.
func (s *Store) Add(ctx context.Context, username string, passphrase []byte, admin bool) error {
	defer cryptox.SecureZero(passphrase)

	if username == "" {
		return fmt.Errorf("%w: empty username", common.ErrInvalidInput)
	}
	if err := policy.ValidateSafeString(username, models.UsernameLen); err != nil {
		return err
	}
	if err := policy.ValidateSafeString(passphrase, s.policy.MaxLength); err != nil {
		return err
	}
	if err := s.policy.ValidatePassword(passphrase); err != nil {
		return err
	}

	now := s.clock.Now()
	rec := &models.UserRecord{
		Created:         now,
		LastAttempt:     now,
		PasswordLastSet: now,
		Flags:           models.FlagEnabled,
	}
	if admin {
		rec.Set(models.FlagAdmin)
	}
	if err := rec.SetUsername(username); err != nil {
		return err
	}

	pwMAC, err := s.mac.Sum(passphrase)
	if err != nil {
		return err
	}
	copy(rec.PasswordMAC[:], pwMAC)
	cryptox.SecureZero(pwMAC)

	state, err := records.LoadState(ctx, s.st, s.mac)
	if err != nil {
		return asStorage(err)
	}
	if int(state.UserCount) >= s.maxUsers {
		return fmt.Errorf("%w: credential store full (%d users)", common.ErrStorage, state.UserCount)
	}

	slot := int(state.UserCount)
	state.UserCount++
	if err := records.SaveState(ctx, s.st, s.mac, state); err != nil {
		return asStorage(err)
	}

	return asStorage(records.SaveUser(ctx, s.st, s.mac, slot, rec))
}

// IsAdmin reports whether name carries the admin flag. Lookup failures
// return false together with the error.
func (s *Store) IsAdmin(ctx context.Context, name string) (bool, error) {
	_, rec, err := s.FindByUsername(ctx, name)
	if err != nil {
		return false, err
	}
	return rec.Has(models.FlagAdmin), nil
}

// Save re-seals rec and writes it back to slot.
func (s *Store) Save(ctx context.Context, slot int, rec *models.UserRecord) error {
	return asStorage(records.SaveUser(ctx, s.st, s.mac, slot, rec))
}

// Format writes a fresh system state with no users and no failed
// attempts. Only provisioning calls it; existing slots become unreachable
// for Add but are still scanned by FindByUsername until overwritten.
func (s *Store) Format(ctx context.Context) error {
	state := &models.SystemState{LastAttemptTime: s.clock.Now()}
	return asStorage(records.SaveState(ctx, s.st, s.mac, state))
}

// Count returns the number of allocated slots.
func (s *Store) Count(ctx context.Context) (int, error) {
	state, err := records.LoadState(ctx, s.st, s.mac)
	if err != nil {
		return 0, asStorage(err)
	}
	return int(state.UserCount), nil
}

// asStorage folds every failure except a key failure into
// common.ErrStorage.
func asStorage(err error) error {
	if err == nil || errors.Is(err, common.ErrStorage) || errors.Is(err, common.ErrInternal) {
		return err
	}
	return fmt.Errorf("%w: %v", common.ErrStorage, err)
}
