package models

import (
	"encoding/binary"
	"testing"

	"github.com/dmitrijs2005/locksys/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRecord_LayoutOffsets(t *testing.T) {
	var r UserRecord
	require.NoError(t, r.SetUsername("alice"))
	r.PasswordMAC[0] = 0xAA
	r.FailedAttempts = 3
	r.LastAttempt = 0x01020304
	r.Created = 0x05060708
	r.PasswordLastSet = 0x090A0B0C
	r.Flags = FlagEnabled | FlagAdmin
	r.RecordMAC[31] = 0xEE

	b, err := r.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, UserRecordSize)

	assert.Equal(t, []byte("alice"), b[0:5])
	assert.Equal(t, byte(0), b[5])
	assert.Equal(t, byte(0xAA), b[32])
	assert.Equal(t, byte(3), b[64])
	assert.Equal(t, uint32(0x01020304), binary.LittleEndian.Uint32(b[65:69]))
	assert.Equal(t, uint32(0x05060708), binary.LittleEndian.Uint32(b[69:73]))
	assert.Equal(t, uint32(0x090A0B0C), binary.LittleEndian.Uint32(b[73:77]))
	assert.Equal(t, byte(0x03), b[77])
	assert.Equal(t, []byte{0, 0}, b[78:80])
	assert.Equal(t, byte(0xEE), b[111])

	assert.Equal(t, b[:80], r.SignedBytes())

	var back UserRecord
	require.NoError(t, back.UnmarshalBinary(b))
	assert.Empty(t, cmp.Diff(r, back))
}

func TestUserRecord_Names(t *testing.T) {
	var r UserRecord
	require.NoError(t, r.SetUsername("bob"))
	assert.Equal(t, "bob", r.Name())
	assert.True(t, r.MatchesName("bob"))
	assert.False(t, r.MatchesName("Bob"))
	assert.False(t, r.MatchesName("bo"))
	assert.False(t, r.MatchesName(""))

	full := "abcdefghijklmnopqrstuvwxyz012345"
	require.NoError(t, r.SetUsername(full))
	assert.Equal(t, full, r.Name(), "a 32-byte name needs no terminator")
	assert.True(t, r.MatchesName(full))
	assert.True(t, r.MatchesName(full+"-suffix"), "bytes past the field width are ignored")
	assert.False(t, r.MatchesName(full[:31]+"X-suffix"))

	assert.ErrorIs(t, r.SetUsername(full+"6"), common.ErrInvalidInput)
}

func TestUserRecord_Flags(t *testing.T) {
	var r UserRecord
	r.Set(FlagEnabled)
	r.Set(FlagLocked)
	assert.True(t, r.Has(FlagLocked))
	r.Clear(FlagLocked)
	assert.False(t, r.Has(FlagLocked))
	assert.True(t, r.Has(FlagEnabled))
	assert.Equal(t, UserFlags(0x08), FlagForceReset)
}

func TestUserRecord_UnmarshalWrongSize(t *testing.T) {
	var r UserRecord
	assert.ErrorIs(t, r.UnmarshalBinary(make([]byte, 10)), common.ErrStorage)
}

func TestSystemState_LayoutOffsets(t *testing.T) {
	s := SystemState{FailedAttempts: 2, LastAttemptTime: 1000, UserCount: 7}
	s.MAC[0] = 0x55

	b, err := s.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, SystemStateSize)

	assert.Equal(t, byte(2), b[0])
	assert.Equal(t, uint32(1000), binary.LittleEndian.Uint32(b[1:5]))
	assert.Equal(t, byte(7), b[5])
	assert.Equal(t, byte(0x55), b[8])

	var back SystemState
	require.NoError(t, back.UnmarshalBinary(b))
	assert.Equal(t, s, back)

	assert.ErrorIs(t, back.UnmarshalBinary(b[:39]), common.ErrStorage)
}

func TestNewLogRecord(t *testing.T) {
	rec, err := NewLogRecord(42, EventUnlockCheckFailed, StatusPayload(common.StatusAuthFailed))
	require.NoError(t, err)

	assert.Equal(t, LogSyncByte, rec.Sync)
	assert.Equal(t, uint16(9), rec.Length)
	assert.Equal(t, []byte{5, 0, 0, 0}, rec.PayloadBytes())

	b, err := rec.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, LogRecordSize)
	assert.Equal(t, byte(0xA5), b[0])
	assert.Equal(t, uint16(9), binary.LittleEndian.Uint16(b[1:3]))
	assert.Equal(t, uint32(42), binary.LittleEndian.Uint32(b[3:7]))
	assert.Equal(t, byte(EventUnlockCheckFailed), b[7])
	assert.Equal(t, b[:131], rec.SignedBytes())
}

func TestNewLogRecord_PayloadBounds(t *testing.T) {
	rec, err := NewLogRecord(1, EventUnlocking, nil)
	require.NoError(t, err)
	assert.Equal(t, uint16(5), rec.Length)
	assert.Empty(t, rec.PayloadBytes())

	_, err = NewLogRecord(1, EventUnlocking, make([]byte, LogPayloadMax))
	assert.NoError(t, err)

	_, err = NewLogRecord(1, EventUnlocking, make([]byte, LogPayloadMax+1))
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestLogRecord_PayloadBytesClamped(t *testing.T) {
	rec := LogRecord{Length: 0xFFFF}
	assert.Len(t, rec.PayloadBytes(), LogPayloadMax)
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "APPLICATION_START", EventApplicationStart.String())
	assert.Equal(t, "PASS_CHANGE_PASSED", EventPassChangePassed.String())
	assert.Equal(t, EventType(8), EventPassChangePassed)
	assert.Equal(t, "EVENT_42", EventType(42).String())
}
