// Package timex provides a time.Duration wrapper that config files can
// express either as a Go duration string ("2s", "1m30s") or as integer
// nanoseconds.
package timex

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type Duration struct {
	time.Duration
}

var ErrInvalidDuration = errors.New("invalid duration")

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		return d.parse(value)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidDuration, string(b))
	}
}

// MarshalText and UnmarshalText let TOML (and any other text based
// decoder) use the same string form.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	return d.parse(string(b))
}

func (d *Duration) parse(s string) error {
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDuration, err)
	}
	d.Duration = parsed
	return nil
}
