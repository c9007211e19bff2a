// Package records loads and stores MAC-sealed user slots and the system
// state through a storage.Storage.
//
// Every record is verified against the device MAC on load. A record whose
// MAC does not match is reported with ErrIntegrity and must be treated as
// absent by callers.
package records

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/locksys/internal/common"
	"github.com/dmitrijs2005/locksys/internal/cryptox"
	"github.com/dmitrijs2005/locksys/internal/models"
	"github.com/dmitrijs2005/locksys/internal/storage"
)

// ErrIntegrity marks a stored record whose MAC does not verify. It wraps
// common.ErrStorage.
var ErrIntegrity = fmt.Errorf("%w: record MAC mismatch", common.ErrStorage)

func LoadUser(ctx context.Context, st storage.Storage, mac cryptox.Authenticator, slot int) (*models.UserRecord, error) {
	raw, err := st.GetUser(ctx, slot)
	if err != nil {
		return nil, err
	}

	rec := &models.UserRecord{}
	if err := rec.UnmarshalBinary(raw); err != nil {
		return nil, err
	}

	ok, err := mac.Verify(rec.SignedBytes(), rec.RecordMAC[:])
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: slot %d", ErrIntegrity, slot)
	}

	return rec, nil
}

// SaveUser recomputes rec.RecordMAC and writes the record to slot.
func SaveUser(ctx context.Context, st storage.Storage, mac cryptox.Authenticator, slot int, rec *models.UserRecord) error {
	sum, err := mac.Sum(rec.SignedBytes())
	if err != nil {
		return err
	}
	copy(rec.RecordMAC[:], sum)
	cryptox.SecureZero(sum)

	raw, _ := rec.MarshalBinary()
	return st.SetUser(ctx, slot, raw)
}

func LoadState(ctx context.Context, st storage.Storage, mac cryptox.Authenticator) (*models.SystemState, error) {
	raw, err := st.GetSystemState(ctx)
	if err != nil {
		return nil, err
	}

	state := &models.SystemState{}
	if err := state.UnmarshalBinary(raw); err != nil {
		return nil, err
	}

	ok, err := mac.Verify(state.SignedBytes(), state.MAC[:])
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: system state", ErrIntegrity)
	}

	return state, nil
}

// SaveState recomputes state.MAC and writes the system state.
func SaveState(ctx context.Context, st storage.Storage, mac cryptox.Authenticator, state *models.SystemState) error {
	sum, err := mac.Sum(state.SignedBytes())
	if err != nil {
		return err
	}
	copy(state.MAC[:], sum)
	cryptox.SecureZero(sum)

	raw, _ := state.MarshalBinary()
	return st.SetSystemState(ctx, raw)
}
