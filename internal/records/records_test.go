package records

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/locksys/internal/common"
	"github.com/dmitrijs2005/locksys/internal/config"
	"github.com/dmitrijs2005/locksys/internal/cryptox"
	"github.com/dmitrijs2005/locksys/internal/keystore"
	"github.com/dmitrijs2005/locksys/internal/models"
	"github.com/dmitrijs2005/locksys/internal/storage"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*storage.MemoryStorage, *cryptox.DeviceMAC) {
	t.Helper()
	keys, err := keystore.NewFirmware(config.DefaultFirmwareKeyHex)
	require.NoError(t, err)
	return storage.NewMemoryStorage(4), cryptox.NewDeviceMAC(keys)
}

func TestUser_SaveLoad(t *testing.T) {
	ctx := context.Background()
	st, mac := setup(t)

	rec := &models.UserRecord{Created: 100, FailedAttempts: 2, Flags: models.FlagEnabled}
	require.NoError(t, rec.SetUsername("alice"))
	require.NoError(t, SaveUser(ctx, st, mac, 1, rec))

	got, err := LoadUser(ctx, st, mac, 1)
	require.NoError(t, err)
	if diff := cmp.Diff(rec, got); diff != "" {
		t.Fatalf("loaded record mismatch (-want +got):\n%s", diff)
	}

	// saving an unchanged record is idempotent
	before := rec.RecordMAC
	require.NoError(t, SaveUser(ctx, st, mac, 1, rec))
	assert.Equal(t, before, rec.RecordMAC)
}

func TestUser_EveryByteFlipIsDetected(t *testing.T) {
	ctx := context.Background()
	st, mac := setup(t)

	rec := &models.UserRecord{Flags: models.FlagEnabled | models.FlagAdmin}
	require.NoError(t, rec.SetUsername("rootadmin"))
	require.NoError(t, SaveUser(ctx, st, mac, 0, rec))

	raw, err := st.GetUser(ctx, 0)
	require.NoError(t, err)

	for i := range raw {
		corrupt := append([]byte(nil), raw...)
		corrupt[i] ^= 0x01
		require.NoError(t, st.SetUser(ctx, 0, corrupt))

		_, err := LoadUser(ctx, st, mac, 0)
		require.ErrorIs(t, err, ErrIntegrity, "byte %d", i)
		require.ErrorIs(t, err, common.ErrStorage)
	}
}

func TestUser_AbsentSlot(t *testing.T) {
	st, mac := setup(t)
	_, err := LoadUser(context.Background(), st, mac, 3)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestState_SaveLoad(t *testing.T) {
	ctx := context.Background()
	st, mac := setup(t)

	_, err := LoadState(ctx, st, mac)
	require.ErrorIs(t, err, common.ErrUninitialized)

	state := &models.SystemState{FailedAttempts: 3, LastAttemptTime: 1000, UserCount: 2}
	require.NoError(t, SaveState(ctx, st, mac, state))

	got, err := LoadState(ctx, st, mac)
	require.NoError(t, err)
	assert.Equal(t, state, got)

	raw, _ := st.GetSystemState(ctx)
	raw[5]++
	require.NoError(t, st.SetSystemState(ctx, raw))
	_, err = LoadState(ctx, st, mac)
	assert.ErrorIs(t, err, ErrIntegrity)
}

type brokenKeys struct{}

func (brokenKeys) LoadDeviceKey([]byte) error { return assert.AnError }

func TestSave_KeyFailureIsInternal(t *testing.T) {
	st, _ := setup(t)
	mac := cryptox.NewDeviceMAC(brokenKeys{})

	err := SaveState(context.Background(), st, mac, &models.SystemState{})
	assert.ErrorIs(t, err, common.ErrInternal)

	_, err = st.GetSystemState(context.Background())
	assert.ErrorIs(t, err, common.ErrUninitialized, "nothing written")
}
