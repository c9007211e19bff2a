package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/locksys/internal/buildinfo"
	"github.com/dmitrijs2005/locksys/internal/config"
	"github.com/dmitrijs2005/locksys/internal/flagx"
	"github.com/dmitrijs2005/locksys/internal/hal"
	"github.com/dmitrijs2005/locksys/internal/keystore"
	"github.com/dmitrijs2005/locksys/internal/logging"
	"github.com/dmitrijs2005/locksys/internal/provision"
	"github.com/dmitrijs2005/locksys/internal/storage"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	os.Exit(run(context.Background()))
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
		log.Error(ctx, "failed to open storage", "error", err)
		return 1
	}
	defer st.Close()

	keys, err := keystore.New(cfg)
	if err != nil {
		log.Error(ctx, "failed to open key source", "error", err)
		return 1
	}

	opts := provision.Options{
		Force:  flagx.Bool(os.Args[1:], "-force"),
		OutDir: cfg.StorageDir,
	}

	res, err := provision.Run(ctx, cfg, st, keys, hal.SystemClock{}, opts, log)
	if err != nil {
		log.Error(ctx, "provisioning failed", "error", err)
		return 1
	}

	fmt.Printf("Generated root admin account: %s\n", res.RootAdmin)
	fmt.Printf("Saved init password to:       %s\n", res.PasswordFile)
	fmt.Printf("Device id:                    %s\n", res.DeviceID)
	return 0
}
