package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/locksys/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-b string   storage backend: file, sqlite or memory
//	-d string   storage directory for the file backend
//	-dsn string SQLite data source name
//	-k string   key source: firmware, file or sealed
//	-kf string  device key file for the file and sealed sources
//	-a string   lock actuator: log or gpio
//	-gpio string value file driven by the gpio actuator
//	-t int      maximum throttle delay (in seconds)
//	-l string   log level: debug, info, warn or error
//	-f string   log format: text, json or zap
//
// args is filtered with flagx.FilterArgs so flags owned by other parsers
// (for example -c) do not cause errors here.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-b", "-d", "-dsn", "-k", "-kf", "-a", "-gpio", "-t", "-l", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.StorageBackend, "b", cfg.StorageBackend, "storage backend (file, sqlite, memory)")
	fs.StringVar(&cfg.StorageDir, "d", cfg.StorageDir, "storage directory")
	fs.StringVar(&cfg.SQLiteDSN, "dsn", cfg.SQLiteDSN, "sqlite data source name")
	fs.StringVar(&cfg.KeySource, "k", cfg.KeySource, "device key source (firmware, file, sealed)")
	fs.StringVar(&cfg.KeyFile, "kf", cfg.KeyFile, "device key file")
	fs.StringVar(&cfg.Actuator, "a", cfg.Actuator, "lock actuator (log, gpio)")
	fs.StringVar(&cfg.GPIOValuePath, "gpio", cfg.GPIOValuePath, "gpio value file")
	throttleMax := fs.Int("t", int(cfg.ThrottleMax.Seconds()), "maximum throttle delay (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format (text, json, zap)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.ThrottleMax = time.Duration(*throttleMax) * time.Second
}
