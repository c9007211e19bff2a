// Package config loads runtime configuration for the lock console and the
// provisioning tool.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file (see parseFile) selected via -c or -config.
//     Files ending in .toml are read as TOML, everything else as JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # File schema
//
// Keys absent from the file keep their earlier value. Durations accept Go
// duration strings:
//
//	storage_backend = "sqlite"
//	sqlite_dsn      = "/var/lib/locksys/locksys.db"
//	key_source      = "sealed"
//	key_file        = "/var/lib/locksys/device.key"
//	throttle_max    = "30s"
//	actuator        = "gpio"
//	gpio_value_path = "/sys/class/gpio/gpio17/value"
//	log_format      = "zap"
//
// Primary API
//
//   - type Config                   holds every setting
//   - func LoadConfig() *Config     defaults, then file, then flags
//   - func (*Config) LoadDefaults() device defaults
//   - func (*Config) Validate()     rejects settings that break the record format
//
// Note: This package does not read environment variables directly; use the
// config file or flags.
package config
