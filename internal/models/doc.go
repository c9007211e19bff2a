// Package models defines the persisted records of the lock: user credential
// slots, the system throttle state and tamper-evident log entries.
//
// Every record has a fixed, packed little-endian layout encoded field by
// field, so the byte image that is MACed does not depend on Go's in-memory
// struct representation. Each type exposes SignedBytes (the span covered by
// its MAC) alongside encoding.BinaryMarshaler / BinaryUnmarshaler.
package models
