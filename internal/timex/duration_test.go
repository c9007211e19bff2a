package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{name: "string seconds", in: `"2s"`, want: 2 * time.Second},
		{name: "string compound", in: `"1m30s"`, want: 90 * time.Second},
		{name: "nanoseconds", in: `1000000000`, want: time.Second},
		{name: "bad string", in: `"soon"`, wantErr: true},
		{name: "bool", in: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.in), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration)
		})
	}
}

func TestDuration_JSONInStruct(t *testing.T) {
	var cfg struct {
		Delay Duration `json:"delay"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"delay":"30s"}`), &cfg))
	assert.Equal(t, 30*time.Second, cfg.Delay.Duration)

	out, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"delay":"30s"}`, string(out))
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("500ms")))
	assert.Equal(t, 500*time.Millisecond, d.Duration)

	b, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "500ms", string(b))

	assert.ErrorIs(t, d.UnmarshalText([]byte("x")), ErrInvalidDuration)
}
