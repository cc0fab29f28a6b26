// Package main runs the interactive PassHash shell on top of a local
// configuration store.
package main

import (
	"cmp"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/atinyakov/PassHash/internal/client/shell"
	"github.com/atinyakov/PassHash/internal/config"
	"github.com/atinyakov/PassHash/internal/logger"
	"github.com/atinyakov/PassHash/internal/repository"
	"github.com/atinyakov/PassHash/internal/service"
)

var (
	version   string
	buildDate string
)

func main() {
	fs := flag.NewFlagSet("passhash", flag.ExitOnError)
	showVer := fs.Bool("version", false, "show build version and date")
	options, err := config.ParseClient(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if *showVer {
		fmt.Printf("PassHash\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	// Logs go to stderr; stdout belongs to the shell.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store := repository.NewFileStore(options.StorePath)
	configs := service.NewConfigService(store, service.WithLogger(log.Log))

	sh := shell.New(service.NewHashService(), configs, os.Stdin, os.Stdout, shell.WithLogger(log.Log))
	if err := sh.Run(ctx); err != nil && ctx.Err() == nil {
		log.Log.Error("shell stopped", zap.Error(err))
		os.Exit(1)
	}
}
