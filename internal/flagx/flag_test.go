package flagx

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "lock.toml", "-b", "sqlite"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c", "lock.toml"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"--config=alt.toml", "-k", "sealed"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=alt.toml"},
		},
		{
			name:         "both short and long present, preserve order",
			args:         []string{"--config=first.json", "-c", "second.json", "-x", "1"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"--config=first.json", "-c", "second.json"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept as-is",
			args:         []string{"-c"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c"},
		},
		{
			name:         "flag followed by another flag (no value)",
			args:         []string{"-c", "-notvalue"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c"},
		},
		{
			name:         "value that looks like a flag but with equals form",
			args:         []string{"--config=--weird.json"},
			allowedFlags: []string{"--config"},
			want:         []string{"--config=--weird.json"},
		},
		{
			name:         "multiple allowed flags kept",
			args:         []string{"-b", "sqlite", "-c", "lock.toml", "--other", "x"},
			allowedFlags: []string{"-c", "-b"},
			want:         []string{"-b", "sqlite", "-c", "lock.toml"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{},
		},
		{
			name:         "path with spaces remains single arg",
			args:         []string{"-c", "/etc/locksys/lock.toml"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "/etc/locksys/lock.toml"},
		},
		{
			name:         "do not treat next dash-starting token as value",
			args:         []string{"-c", "--config=alt.json"},
			allowedFlags: []string{"-c", "--config"},
			want:         []string{"-c", "--config=alt.json"},
		},
		{
			name:         "repeated allowed flag is preserved in order",
			args:         []string{"-c", "one.json", "-c", "two.json"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "one.json", "-c", "two.json"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowedFlags)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FilterArgs() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestConfigFile(t *testing.T) {
	t.Run("short -c with value", func(t *testing.T) {
		assert.Equal(t, "/etc/locksys/short.toml", ConfigFile([]string{"-c", "/etc/locksys/short.toml"}))
	})

	t.Run("long -config with equals", func(t *testing.T) {
		assert.Equal(t, "lock.json", ConfigFile([]string{"-b", "sqlite", "-config=lock.json"}))
	})

	t.Run("unknown flags are ignored", func(t *testing.T) {
		assert.Empty(t, ConfigFile([]string{"-x", "1", "-y", "2"}))
	})

	t.Run("multiple flags, last wins", func(t *testing.T) {
		assert.Equal(t, "/path/2.toml", ConfigFile([]string{"-c", "/path/1.json", "-config", "/path/2.toml"}))
	})
}

func TestBool(t *testing.T) {
	assert.True(t, Bool([]string{"-c", "x.toml", "-force"}, "-force"))
	assert.True(t, Bool([]string{"-force=true"}, "-force"))
	assert.False(t, Bool([]string{"-force=false"}, "-force"))
	assert.False(t, Bool([]string{"-c", "x.toml"}, "-force"))
}
