package models

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/dmitrijs2005/locksys/internal/common"
)

const (
	UsernameLen = 32
	MACLen      = 32

	// UserRecordSize is the packed on-disk size of a UserRecord.
	UserRecordSize = 112

	userSignedLen = UserRecordSize - MACLen
)

// UserFlags is the bit set stored in UserRecord.Flags.
type UserFlags uint8

const (
	FlagEnabled UserFlags = 1 << iota
	FlagAdmin
	FlagLocked
	FlagForceReset
)

// UserRecord is one credential slot.
//
// Layout (little endian, packed):
//
//	0   username[32]      NUL padded
//	32  password_mac[32]
//	64  failed_attempts   u8
//	65  last_attempt      u32
//	69  created           u32
//	73  password_last_set u32
//	77  flags             u8
//	78  reserved[2]
//	80  record_mac[32]    MAC over bytes 0..79
type UserRecord struct {
	Username        [UsernameLen]byte
	PasswordMAC     [MACLen]byte
	FailedAttempts  uint8
	LastAttempt     uint32
	Created         uint32
	PasswordLastSet uint32
	Flags           UserFlags
	Reserved        [2]byte
	RecordMAC       [MACLen]byte
}

// SetUsername stores name NUL padded. Names longer than UsernameLen are
// rejected.
func (r *UserRecord) SetUsername(name string) error {
	if len(name) > UsernameLen {
		return fmt.Errorf("%w: username longer than %d bytes", common.ErrInvalidInput, UsernameLen)
	}
	r.Username = [UsernameLen]byte{}
	copy(r.Username[:], name)
	return nil
}

// Name returns the username up to the first NUL.
func (r *UserRecord) Name() string {
	if i := bytes.IndexByte(r.Username[:], 0); i >= 0 {
		return string(r.Username[:i])
	}
	return string(r.Username[:])
}

// MatchesName reports whether the stored username equals the first
// UsernameLen bytes of name. The comparison is byte for byte and
// case-sensitive.
func (r *UserRecord) MatchesName(name string) bool {
	if len(name) == 0 {
		return false
	}
	if len(name) > UsernameLen {
		name = name[:UsernameLen]
	}
	return r.Name() == name
}

func (r *UserRecord) Has(f UserFlags) bool { return r.Flags&f != 0 }

func (r *UserRecord) Set(f UserFlags) { r.Flags |= f }

func (r *UserRecord) Clear(f UserFlags) { r.Flags &^= f }

// SignedBytes returns the byte image covered by RecordMAC.
func (r *UserRecord) SignedBytes() []byte {
	return r.appendSigned(make([]byte, 0, userSignedLen))
}

func (r *UserRecord) appendSigned(b []byte) []byte {
	b = append(b, r.Username[:]...)
	b = append(b, r.PasswordMAC[:]...)
	b = append(b, r.FailedAttempts)
	b = binary.LittleEndian.AppendUint32(b, r.LastAttempt)
	b = binary.LittleEndian.AppendUint32(b, r.Created)
	b = binary.LittleEndian.AppendUint32(b, r.PasswordLastSet)
	b = append(b, byte(r.Flags))
	b = append(b, r.Reserved[:]...)
	return b
}

func (r *UserRecord) MarshalBinary() ([]byte, error) {
	b := r.appendSigned(make([]byte, 0, UserRecordSize))
	return append(b, r.RecordMAC[:]...), nil
}

func (r *UserRecord) UnmarshalBinary(b []byte) error {
	if len(b) != UserRecordSize {
		return fmt.Errorf("%w: user record is %d bytes, want %d", common.ErrStorage, len(b), UserRecordSize)
	}
	copy(r.Username[:], b[0:32])
	copy(r.PasswordMAC[:], b[32:64])
	r.FailedAttempts = b[64]
	r.LastAttempt = binary.LittleEndian.Uint32(b[65:69])
	r.Created = binary.LittleEndian.Uint32(b[69:73])
	r.PasswordLastSet = binary.LittleEndian.Uint32(b[73:77])
	r.Flags = UserFlags(b[77])
	copy(r.Reserved[:], b[78:80])
	copy(r.RecordMAC[:], b[80:112])
	return nil
}
