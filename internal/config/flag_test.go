package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	base := func() *Config {
		c := &Config{}
		c.LoadDefaults()
		return c
	}

	tests := []struct {
		expected    func() *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "Test1 OK",
			args: []string{"-b", "sqlite", "-dsn", "/tmp/lock.db", "-k", "sealed", "-kf", "/tmp/key", "-t", "10", "-f", "zap"},
			expected: func() *Config {
				c := base()
				c.StorageBackend = BackendSQLite
				c.SQLiteDSN = "/tmp/lock.db"
				c.KeySource = KeySourceSealed
				c.KeyFile = "/tmp/key"
				c.ThrottleMax = 10 * time.Second
				c.LogFormat = LogFormatZap
				return c
			},
		},
		{
			name: "Test2 foreign flags ignored",
			args: []string{"-c", "lock.toml", "-force", "-a", "gpio"},
			expected: func() *Config {
				c := base()
				c.Actuator = ActuatorGPIO
				return c
			},
		},
		{name: "Test3 incorrect throttle", args: []string{"-t", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := base()

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config, tt.args) })
				assert.Empty(t, cmp.Diff(tt.expected(), config))
			} else {
				require.Panics(t, func() { parseFlags(config, tt.args) })
			}
		})
	}
}
