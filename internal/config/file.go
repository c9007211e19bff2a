package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dmitrijs2005/locksys/internal/flagx"
	"github.com/dmitrijs2005/locksys/internal/timex"
)

// FileConfig is a DTO used exclusively for config file decoding. It is
// pre-filled from the current Config so keys absent from the file keep
// their earlier values. Durations use timex.Duration and may be written
// as "2s" or as integer nanoseconds (JSON only).
type FileConfig struct {
	StorageBackend string `json:"storage_backend" toml:"storage_backend"`
	StorageDir     string `json:"storage_dir" toml:"storage_dir"`
	UsersFile      string `json:"users_file" toml:"users_file"`
	LogFile        string `json:"log_file" toml:"log_file"`
	SQLiteDSN      string `json:"sqlite_dsn" toml:"sqlite_dsn"`

	KeySource      string `json:"key_source" toml:"key_source"`
	FirmwareKeyHex string `json:"firmware_key_hex" toml:"firmware_key_hex"`
	KeyFile        string `json:"key_file" toml:"key_file"`
	MachineIDFile  string `json:"machine_id_file" toml:"machine_id_file"`

	MaxUsers           int            `json:"max_users" toml:"max_users"`
	RootAdminUsername  string         `json:"root_admin_username" toml:"root_admin_username"`
	MaxAttempts        int            `json:"max_attempts" toml:"max_attempts"`
	ThrottlePerFailure timex.Duration `json:"throttle_per_failure" toml:"throttle_per_failure"`
	ThrottleMax        timex.Duration `json:"throttle_max" toml:"throttle_max"`
	PasswordDelay      timex.Duration `json:"password_delay" toml:"password_delay"`

	PasswordMinLength     int  `json:"password_min_length" toml:"password_min_length"`
	PasswordMaxLength     int  `json:"password_max_length" toml:"password_max_length"`
	PasswordRequireDigit  bool `json:"password_require_digit" toml:"password_require_digit"`
	PasswordRequireUpper  bool `json:"password_require_upper" toml:"password_require_upper"`
	PasswordRequireSymbol bool `json:"password_require_symbol" toml:"password_require_symbol"`

	LogMaxSize int64 `json:"log_max_size" toml:"log_max_size"`

	Actuator      string `json:"actuator" toml:"actuator"`
	GPIOValuePath string `json:"gpio_value_path" toml:"gpio_value_path"`

	LogLevel  string `json:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" toml:"log_format"`
}

// parseFile overlays cfg with the config file named by -c/-config in args.
//
// Files ending in ".toml" are decoded with BurntSushi/toml, anything else as
// JSON. Panics on read or decode errors, matching parseFlags.
func parseFile(cfg *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	fc := fromConfig(cfg)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), fc); err != nil {
			panic(err)
		}
	} else if err := json.Unmarshal(data, fc); err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func fromConfig(c *Config) *FileConfig {
	return &FileConfig{
		StorageBackend:        c.StorageBackend,
		StorageDir:            c.StorageDir,
		UsersFile:             c.UsersFile,
		LogFile:               c.LogFile,
		SQLiteDSN:             c.SQLiteDSN,
		KeySource:             c.KeySource,
		FirmwareKeyHex:        c.FirmwareKeyHex,
		KeyFile:               c.KeyFile,
		MachineIDFile:         c.MachineIDFile,
		MaxUsers:              c.MaxUsers,
		RootAdminUsername:     c.RootAdminUsername,
		MaxAttempts:           c.MaxAttempts,
		ThrottlePerFailure:    timex.Duration{Duration: c.ThrottlePerFailure},
		ThrottleMax:           timex.Duration{Duration: c.ThrottleMax},
		PasswordDelay:         timex.Duration{Duration: c.PasswordDelay},
		PasswordMinLength:     c.Password.MinLength,
		PasswordMaxLength:     c.Password.MaxLength,
		PasswordRequireDigit:  c.Password.RequireDigit,
		PasswordRequireUpper:  c.Password.RequireUpper,
		PasswordRequireSymbol: c.Password.RequireSymbol,
		LogMaxSize:            c.LogMaxSize,
		Actuator:              c.Actuator,
		GPIOValuePath:         c.GPIOValuePath,
		LogLevel:              c.LogLevel,
		LogFormat:             c.LogFormat,
	}
}

func (fc *FileConfig) apply(c *Config) {
	c.StorageBackend = fc.StorageBackend
	c.StorageDir = fc.StorageDir
	c.UsersFile = fc.UsersFile
	c.LogFile = fc.LogFile
	c.SQLiteDSN = fc.SQLiteDSN
	c.KeySource = fc.KeySource
	c.FirmwareKeyHex = fc.FirmwareKeyHex
	c.KeyFile = fc.KeyFile
	c.MachineIDFile = fc.MachineIDFile
	c.MaxUsers = fc.MaxUsers
	c.RootAdminUsername = fc.RootAdminUsername
	c.MaxAttempts = fc.MaxAttempts
	c.ThrottlePerFailure = fc.ThrottlePerFailure.Duration
	c.ThrottleMax = fc.ThrottleMax.Duration
	c.PasswordDelay = fc.PasswordDelay.Duration
	c.Password.MinLength = fc.PasswordMinLength
	c.Password.MaxLength = fc.PasswordMaxLength
	c.Password.RequireDigit = fc.PasswordRequireDigit
	c.Password.RequireUpper = fc.PasswordRequireUpper
	c.Password.RequireSymbol = fc.PasswordRequireSymbol
	c.LogMaxSize = fc.LogMaxSize
	c.Actuator = fc.Actuator
	c.GPIOValuePath = fc.GPIOValuePath
	c.LogLevel = fc.LogLevel
	c.LogFormat = fc.LogFormat
}
