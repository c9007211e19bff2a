// Package policy implements the stateless input validators: the printable
// safe-string check applied to every username and passphrase, and the
// configurable password-strength rules.
package policy

import (
	"fmt"

	"github.com/dmitrijs2005/locksys/internal/common"
)

const (
	DefaultMinPasswordLength = 8
	DefaultMaxPasswordLength = 16
)

// Policy describes the password-strength rules. Each character-class
// requirement can be switched off individually.
type Policy struct {
	MinLength     int
	MaxLength     int
	RequireDigit  bool
	RequireUpper  bool
	RequireSymbol bool
}

// Default returns the device policy: 8 to 16 bytes with at least one digit,
// one uppercase letter and one symbol.
func Default() Policy {
	return Policy{
		MinLength:     DefaultMinPasswordLength,
		MaxLength:     DefaultMaxPasswordLength,
		RequireDigit:  true,
		RequireUpper:  true,
		RequireSymbol: true,
	}
}

// ValidateSafeString accepts s if it is at most maxLen bytes long and holds
// no control bytes: every byte must be at least 0x20 and not DEL (0x7F).
// Bytes above 0x7F pass, so UTF-8 names are accepted. An empty string is
// valid here; callers that need a value check for it themselves.
func ValidateSafeString[T ~string | ~[]byte](s T, maxLen int) error {
	if len(s) > maxLen {
		return fmt.Errorf("%w: longer than %d bytes", common.ErrInvalidInput, maxLen)
	}
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x20 || c == 0x7F {
			return fmt.Errorf("%w: control byte at offset %d", common.ErrInvalidInput, i)
		}
	}
	return nil
}

// ValidatePassword checks p against the length bounds and every enabled
// character-class rule. A symbol is any byte that is not an ASCII letter
// or digit.
func (p Policy) ValidatePassword(pw []byte) error {
	if len(pw) < p.MinLength || len(pw) > p.MaxLength {
		return fmt.Errorf("%w: password must be %d to %d characters", common.ErrInvalidInput, p.MinLength, p.MaxLength)
	}

	var hasDigit, hasUpper, hasSymbol bool
	for _, c := range pw {
		switch {
		case c >= '0' && c <= '9':
			hasDigit = true
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= 'a' && c <= 'z':
		default:
			hasSymbol = true
		}
	}

	switch {
	case p.RequireDigit && !hasDigit:
		return fmt.Errorf("%w: password needs a digit", common.ErrInvalidInput)
	case p.RequireUpper && !hasUpper:
		return fmt.Errorf("%w: password needs an uppercase letter", common.ErrInvalidInput)
	case p.RequireSymbol && !hasSymbol:
		return fmt.Errorf("%w: password needs a symbol", common.ErrInvalidInput)
	}

	return nil
}
