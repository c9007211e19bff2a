package models

import (
	"encoding/binary"
	"fmt"

	"github.com/dmitrijs2005/locksys/internal/common"
)

const (
	// LogSyncByte starts every log record and lets readers resynchronize
	// after corrupted bytes.
	LogSyncByte byte = 0xA5

	// LogPayloadMax is the payload capacity of one record.
	LogPayloadMax = 123

	// LogRecordSize is the packed on-disk size of a LogRecord.
	LogRecordSize = 163

	logHeaderLen = 4 + 1
	logSignedLen = LogRecordSize - MACLen
)

// EventType enumerates the security-relevant events written to the log.
type EventType uint8

const (
	EventApplicationStart EventType = iota + 1
	EventUnlockRequested
	EventUnlocking
	EventLocking
	EventUnlockCheckFailed
	EventPassChangeRequested
	EventPassChangeFailed
	EventPassChangePassed
)

var eventNames = map[EventType]string{
	EventApplicationStart:    "APPLICATION_START",
	EventUnlockRequested:     "REQUEST_TO_UNLOCK",
	EventUnlocking:           "UNLOCKING_DEVICE",
	EventLocking:             "LOCKING_DEVICE",
	EventUnlockCheckFailed:   "UNLOCK_CHECK_FAILED",
	EventPassChangeRequested: "REQUEST_PASS_CHANGE",
	EventPassChangeFailed:    "PASS_CHANGE_FAILED",
	EventPassChangePassed:    "PASS_CHANGE_PASSED",
}

func (e EventType) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("EVENT_%d", uint8(e))
}

// LogRecord is one fixed-size entry of the tamper-evident log.
//
// Layout (little endian, packed):
//
//	0    sync       u8 (0xA5)
//	1    length     u16, timestamp + type + payload bytes
//	3    timestamp  u32
//	7    type       u8
//	8    payload[123]
//	131  mac[32]    MAC over bytes 0..130
type LogRecord struct {
	Sync      byte
	Length    uint16
	Timestamp uint32
	Type      EventType
	Payload   [LogPayloadMax]byte
	MAC       [MACLen]byte
}

// NewLogRecord builds an unsigned record. Payloads above LogPayloadMax are
// rejected with common.ErrInvalidInput.
func NewLogRecord(ts uint32, typ EventType, payload []byte) (*LogRecord, error) {
	if len(payload) > LogPayloadMax {
		return nil, fmt.Errorf("%w: log payload is %d bytes, max %d", common.ErrInvalidInput, len(payload), LogPayloadMax)
	}

	rec := &LogRecord{
		Sync:      LogSyncByte,
		Length:    uint16(logHeaderLen + len(payload)),
		Timestamp: ts,
		Type:      typ,
	}
	copy(rec.Payload[:], payload)

	return rec, nil
}

// PayloadBytes returns the filled prefix of Payload as declared by Length,
// clamped to the buffer capacity.
func (r *LogRecord) PayloadBytes() []byte {
	n := 0
	if int(r.Length) > logHeaderLen {
		n = int(r.Length) - logHeaderLen
	}
	if n > LogPayloadMax {
		n = LogPayloadMax
	}
	return r.Payload[:n]
}

// SignedBytes returns the byte image covered by MAC.
func (r *LogRecord) SignedBytes() []byte {
	b := make([]byte, 0, logSignedLen)
	b = append(b, r.Sync)
	b = binary.LittleEndian.AppendUint16(b, r.Length)
	b = binary.LittleEndian.AppendUint32(b, r.Timestamp)
	b = append(b, byte(r.Type))
	return append(b, r.Payload[:]...)
}

func (r *LogRecord) MarshalBinary() ([]byte, error) {
	return append(r.SignedBytes(), r.MAC[:]...), nil
}

func (r *LogRecord) UnmarshalBinary(b []byte) error {
	if len(b) != LogRecordSize {
		return fmt.Errorf("%w: log record is %d bytes, want %d", common.ErrStorage, len(b), LogRecordSize)
	}
	r.Sync = b[0]
	r.Length = binary.LittleEndian.Uint16(b[1:3])
	r.Timestamp = binary.LittleEndian.Uint32(b[3:7])
	r.Type = EventType(b[7])
	copy(r.Payload[:], b[8:131])
	copy(r.MAC[:], b[131:163])
	return nil
}

// StatusPayload encodes s as the 4-byte little-endian payload attached to
// failure events.
func StatusPayload(s common.Status) []byte {
	return binary.LittleEndian.AppendUint32(nil, uint32(s))
}
