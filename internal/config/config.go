package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/locksys/internal/policy"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"

	KeySourceFirmware = "firmware"
	KeySourceFile     = "file"
	KeySourceSealed   = "sealed"

	ActuatorLog  = "log"
	ActuatorGPIO = "gpio"

	LogFormatText = "text"
	LogFormatJSON = "json"
	LogFormatZap  = "zap"
)

// DefaultFirmwareKeyHex is the development key compiled into images that
// were never provisioned. Production devices use the file or sealed source.
const DefaultFirmwareKeyHex = "000102030405060708090a0b0c0d0e0f"

var ErrInvalidConfig = errors.New("invalid config")

// Config holds every runtime setting of the lock and its tools.
type Config struct {
	// Persistence.
	StorageBackend string
	StorageDir     string
	UsersFile      string
	LogFile        string
	SQLiteDSN      string

	// Device key.
	KeySource      string
	FirmwareKeyHex string
	KeyFile        string
	MachineIDFile  string

	// Credential store and authentication.
	MaxUsers           int
	RootAdminUsername  string
	MaxAttempts        int
	ThrottlePerFailure time.Duration
	ThrottleMax        time.Duration
	PasswordDelay      time.Duration
	Password           policy.Policy

	// Tamper-evident log.
	LogMaxSize int64

	// Lock actuator.
	Actuator      string
	GPIOValuePath string

	// Diagnostics.
	LogLevel  string
	LogFormat string
}

// LoadDefaults populates c with the device defaults.
func (c *Config) LoadDefaults() {
	c.StorageBackend = BackendFile
	c.StorageDir = "data"
	c.UsersFile = "users.dat"
	c.LogFile = "events.log"
	c.SQLiteDSN = "locksys.db"

	c.KeySource = KeySourceFirmware
	c.FirmwareKeyHex = DefaultFirmwareKeyHex
	c.KeyFile = "device.key"
	c.MachineIDFile = "/etc/machine-id"

	c.MaxUsers = 10
	c.RootAdminUsername = "rootadmin"
	c.MaxAttempts = 5
	c.ThrottlePerFailure = 2 * time.Second
	c.ThrottleMax = 30 * time.Second
	c.PasswordDelay = time.Second
	c.Password = policy.Default()

	c.LogMaxSize = 8150

	c.Actuator = ActuatorLog
	c.GPIOValuePath = "/sys/class/gpio/gpio17/value"

	c.LogLevel = "info"
	c.LogFormat = LogFormatText
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if -c/-config is given) and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg, os.Args[1:])
	parseFlags(cfg, os.Args[1:])
	return cfg
}

// Validate reports settings that would break the on-disk format or the
// authentication rules.
func (c *Config) Validate() error {
	switch {
	case c.MaxUsers < 1 || c.MaxUsers > 255:
		return fmt.Errorf("%w: max users must be 1..255, got %d", ErrInvalidConfig, c.MaxUsers)
	case c.MaxAttempts < 1 || c.MaxAttempts > 255:
		return fmt.Errorf("%w: max attempts must be 1..255, got %d", ErrInvalidConfig, c.MaxAttempts)
	case c.RootAdminUsername == "" || len(c.RootAdminUsername) > 32:
		return fmt.Errorf("%w: root admin username must be 1..32 bytes", ErrInvalidConfig)
	case c.ThrottlePerFailure < 0 || c.ThrottleMax < 0:
		return fmt.Errorf("%w: throttle delays must not be negative", ErrInvalidConfig)
	case c.Password.MinLength < 1 || c.Password.MinLength > c.Password.MaxLength:
		return fmt.Errorf("%w: password length bounds %d..%d", ErrInvalidConfig, c.Password.MinLength, c.Password.MaxLength)
	case c.LogMaxSize <= 0:
		return fmt.Errorf("%w: log max size must be positive", ErrInvalidConfig)
	}

	switch c.StorageBackend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, c.StorageBackend)
	}

	switch c.KeySource {
	case KeySourceFirmware, KeySourceFile, KeySourceSealed:
	default:
		return fmt.Errorf("%w: unknown key source %q", ErrInvalidConfig, c.KeySource)
	}

	switch c.Actuator {
	case ActuatorLog, ActuatorGPIO:
	default:
		return fmt.Errorf("%w: unknown actuator %q", ErrInvalidConfig, c.Actuator)
	}

	return nil
}
