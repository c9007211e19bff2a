package common

import "errors"

// Status is the stable numeric result code surfaced to callers and written
// into log payloads. The numbering must not change once records exist.
type Status uint32

const (
	StatusOK Status = iota
	StatusInvalidInput
	StatusInternal
	StatusPermanentlyLocked
	StatusTimeout
	StatusAuthFailed
	StatusTamper
	StatusUninitialized
	StatusLogFull
	StatusStorage
	StatusNotFound
	StatusThrottled
)

var statusErrors = []struct {
	status Status
	err    error
}{
	{StatusInvalidInput, ErrInvalidInput},
	{StatusInternal, ErrInternal},
	{StatusPermanentlyLocked, ErrPermanentlyLocked},
	{StatusTimeout, ErrTimeout},
	{StatusAuthFailed, ErrAuthFailed},
	{StatusTamper, ErrTamper},
	{StatusUninitialized, ErrUninitialized},
	{StatusLogFull, ErrLogFull},
	{StatusStorage, ErrStorage},
	{StatusNotFound, ErrNotFound},
	{StatusThrottled, ErrThrottled},
}

var statusNames = map[Status]string{
	StatusOK:                "ok",
	StatusInvalidInput:      "invalid input",
	StatusInternal:          "internal",
	StatusPermanentlyLocked: "permanently locked",
	StatusTimeout:           "timeout",
	StatusAuthFailed:        "auth failed",
	StatusTamper:            "tamper",
	StatusUninitialized:     "uninitialized",
	StatusLogFull:           "log full",
	StatusStorage:           "storage",
	StatusNotFound:          "not found",
	StatusThrottled:         "throttled",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Err returns the sentinel error for s, or nil for StatusOK.
// Unknown codes map to ErrInternal.
func (s Status) Err() error {
	if s == StatusOK {
		return nil
	}
	for _, se := range statusErrors {
		if se.status == s {
			return se.err
		}
	}
	return ErrInternal
}

// StatusOf maps an error returned by any locksys component back to its
// status code. Errors outside the taxonomy are reported as StatusInternal.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	for _, se := range statusErrors {
		if errors.Is(err, se.err) {
			return se.status
		}
	}
	return StatusInternal
}
