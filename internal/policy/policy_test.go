package policy

import (
	"testing"

	"github.com/dmitrijs2005/locksys/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestValidateSafeString(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		maxLen  int
		wantErr bool
	}{
		{name: "plain name", in: "alice", maxLen: 32},
		{name: "space and symbols", in: "a b~!", maxLen: 32},
		{name: "exactly max", in: "abcd", maxLen: 4},
		{name: "over max", in: "abcde", maxLen: 4, wantErr: true},
		{name: "empty", in: "", maxLen: 4},
		{name: "control byte", in: "ab\tc", maxLen: 32, wantErr: true},
		{name: "embedded NUL", in: "ab\x00c", maxLen: 32, wantErr: true},
		{name: "DEL", in: "ab\x7f", maxLen: 32, wantErr: true},
		{name: "utf-8", in: "caf\xc3\xa9", maxLen: 32},
		{name: "0x80 first", in: "\x80abc", maxLen: 32},
		{name: "0xFF", in: "ab\xff", maxLen: 32},
		{name: "utf-8 counts bytes", in: "\xc3\xa9\xc3\xa9\xc3", maxLen: 4, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSafeString(tt.in, tt.maxLen)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}

			// the byte form must behave identically
			errBytes := ValidateSafeString([]byte(tt.in), tt.maxLen)
			assert.Equal(t, err == nil, errBytes == nil)
		})
	}
}

func TestPolicy_ValidatePassword(t *testing.T) {
	p := Default()

	tests := []struct {
		name    string
		pw      string
		wantErr bool
	}{
		{name: "ok", pw: "Abc12345!"},
		{name: "ok max length", pw: "Abcdefgh1234567!"},
		{name: "too short", pw: "Ab1!", wantErr: true},
		{name: "too long", pw: "Abcdefgh12345678!", wantErr: true},
		{name: "no digit", pw: "Abcdefgh!", wantErr: true},
		{name: "no upper", pw: "abc12345!", wantErr: true},
		{name: "no symbol", pw: "Abc123456", wantErr: true},
		{name: "space counts as symbol", pw: "Abc 12345", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.ValidatePassword([]byte(tt.pw))
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPolicy_RulesCanBeDisabled(t *testing.T) {
	p := Default()
	p.RequireDigit = false
	p.RequireUpper = false
	p.RequireSymbol = false

	assert.NoError(t, p.ValidatePassword([]byte("abcdefgh")))
	assert.Error(t, p.ValidatePassword([]byte("abc")), "length is always enforced")
}
