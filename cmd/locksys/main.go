package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/locksys/internal/buildinfo"
	"github.com/dmitrijs2005/locksys/internal/common"
	"github.com/dmitrijs2005/locksys/internal/config"
	"github.com/dmitrijs2005/locksys/internal/console"
	"github.com/dmitrijs2005/locksys/internal/cryptox"
	"github.com/dmitrijs2005/locksys/internal/hal"
	"github.com/dmitrijs2005/locksys/internal/keystore"
	"github.com/dmitrijs2005/locksys/internal/locksys"
	"github.com/dmitrijs2005/locksys/internal/logging"
	"github.com/dmitrijs2005/locksys/internal/storage"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx))
}

func run(ctx context.Context) int {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	log, err := logging.New(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	st, err := storage.New(ctx, cfg)
	if err != nil {
		log.Error(ctx, "failed to open storage", "backend", cfg.StorageBackend, "error", err)
		return int(common.StatusOf(err))
	}
	defer st.Close()

	keys, err := keystore.New(cfg)
	if err != nil {
		log.Error(ctx, "failed to open key source", "source", cfg.KeySource, "error", err)
		return int(common.StatusInternal)
	}

	act, err := hal.NewActuator(cfg, log)
	if err != nil {
		log.Error(ctx, "failed to set up actuator", "error", err)
		return int(common.StatusInternal)
	}

	engine := locksys.New(cfg, st, cryptox.NewDeviceMAC(keys), hal.SystemClock{}, act, log)

	if err := engine.Init(ctx); err != nil {
		if errors.Is(err, common.ErrTamper) {
			fmt.Println("Tampering Detected, Shutting Down.")
		} else {
			fmt.Println("Failed to initialize, Shutting Down.")
		}
		log.Error(ctx, "init failed", "status", common.StatusOf(err).String(), "error", err)
		return int(common.StatusOf(err))
	}

	app := console.NewApp(engine, os.Stdin, os.Stdout, cfg.PasswordDelay, log)
	app.Run(ctx)

	return 0
}
