package models

import (
	"encoding/binary"
	"fmt"

	"github.com/dmitrijs2005/locksys/internal/common"
)

const (
	// SystemStateSize is the packed on-disk size of SystemState.
	SystemStateSize = 40

	stateSignedLen = SystemStateSize - MACLen
)

// SystemState is the singleton throttle record stored after the last user
// slot.
//
// Layout (little endian, packed):
//
//	0  failed_attempts   u8
//	1  last_attempt_time u32
//	5  user_count        u8
//	6  reserved[2]
//	8  hmac[32]          MAC over bytes 0..7
type SystemState struct {
	FailedAttempts  uint8
	LastAttemptTime uint32
	UserCount       uint8
	Reserved        [2]byte
	MAC             [MACLen]byte
}

// SignedBytes returns the byte image covered by MAC.
func (s *SystemState) SignedBytes() []byte {
	b := make([]byte, 0, stateSignedLen)
	b = append(b, s.FailedAttempts)
	b = binary.LittleEndian.AppendUint32(b, s.LastAttemptTime)
	b = append(b, s.UserCount)
	return append(b, s.Reserved[:]...)
}

func (s *SystemState) MarshalBinary() ([]byte, error) {
	return append(s.SignedBytes(), s.MAC[:]...), nil
}

func (s *SystemState) UnmarshalBinary(b []byte) error {
	if len(b) != SystemStateSize {
		return fmt.Errorf("%w: system state is %d bytes, want %d", common.ErrStorage, len(b), SystemStateSize)
	}
	s.FailedAttempts = b[0]
	s.LastAttemptTime = binary.LittleEndian.Uint32(b[1:5])
	s.UserCount = b[5]
	copy(s.Reserved[:], b[6:8])
	copy(s.MAC[:], b[8:40])
	return nil
}
