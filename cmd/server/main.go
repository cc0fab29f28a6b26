// Package main initializes and starts the PassHash HTTP(S) server, setting
// up configuration, logging, the configuration store backend, services,
// handlers and optional TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/PassHash/internal/certgen"
	"github.com/atinyakov/PassHash/internal/config"
	"github.com/atinyakov/PassHash/internal/db"
	"github.com/atinyakov/PassHash/internal/logger"
	"github.com/atinyakov/PassHash/internal/repository"
	"github.com/atinyakov/PassHash/internal/server/handler/http"
	"github.com/atinyakov/PassHash/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, config file and environment configuration.
	options, err := config.ParseServer(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Pick the key-value backend for the configuration store.
	var store service.KeyValueStore
	if options.DatabaseDSN != "" {
		postgresDB, err := db.InitPostgres(ctx, options.DatabaseDSN)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		defer postgresDB.Close()
		store = repository.NewPostgresStore(postgresDB)
		zapLogger.Info("using postgres store")
	} else {
		fileStore := repository.NewFileStore(options.StorePath)
		store = fileStore
		zapLogger.Info("using file store", zap.String("path", fileStore.Path()))
	}

	// Initialize business-logic services.
	hashService := service.NewHashService()
	configService := service.NewConfigService(store, service.WithLogger(zapLogger))

	// Create HTTP handlers and build the router.
	hashHandler := &http.HashHandler{HashService: hashService}
	configHandler := &http.ConfigHandler{ConfigService: configService}
	router := http.NewRouter(hashHandler, configHandler, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if options.TLS {
		cert, created, err := certgen.LoadOrCreate(certgen.DefaultCertPath, certgen.DefaultKeyPath, certgen.HostsFor(options.Port))
		if err != nil {
			zapLogger.Fatal("failed to load server TLS cert/key", zap.Error(err))
		}
		if created {
			zapLogger.Info("generated self-signed certificate", zap.String("cert", certgen.DefaultCertPath))
		}
		server.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("shutdown failed", zap.Error(err))
		}
	}()

	if options.TLS {
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
		err = server.ListenAndServeTLS("", "")
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server failed", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
