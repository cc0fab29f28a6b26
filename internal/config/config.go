// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON config file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"server_address"`

	// DatabaseDSN selects the PostgreSQL backend when set.
	DatabaseDSN string `json:"database_dsn"`

	// StorePath is the JSON file used when no database is configured.
	StorePath string `json:"store_path"`

	// LogLevel is a zap level name.
	LogLevel string `json:"log_level"`

	// TLS serves the API over HTTPS with a self-signed certificate.
	TLS bool `json:"tls"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// Defaults.
const (
	DefaultAddress   = "localhost:8080"
	DefaultStorePath = "storage.json"
	DefaultLogLevel  = "info"
	DefaultConfig    = "config.json"
)

// DefaultShellLogLevel keeps routine logs out of the interactive shell.
const DefaultShellLogLevel = "warn"

func bindCommon(fs *flag.FlagSet, o *Options, logLevel string) {
	fs.StringVar(&o.StorePath, "store", DefaultStorePath, "path to the configuration store file")
	fs.StringVar(&o.LogLevel, "log-level", logLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&o.Config, "config", DefaultConfig, "path to config file")
	fs.StringVar(&o.Config, "c", DefaultConfig, "path to config file (shorthand)")
}

// ParseServer parses server flags from args, then applies the config file
// and environment overrides.
func ParseServer(fs *flag.FlagSet, args []string) (*Options, error) {
	o := &Options{}
	fs.StringVar(&o.Port, "a", DefaultAddress, "run on ip:port server")
	fs.StringVar(&o.DatabaseDSN, "d", "", "db address")
	fs.BoolVar(&o.TLS, "tls", false, "serve HTTPS with a self-signed certificate")
	bindCommon(fs, o, DefaultLogLevel)
	return parse(fs, args, o)
}

// ParseClient parses the interactive shell flags. Callers may register
// extra flags on fs before calling it.
func ParseClient(fs *flag.FlagSet, args []string) (*Options, error) {
	o := &Options{}
	bindCommon(fs, o, DefaultShellLogLevel)
	return parse(fs, args, o)
}

func parse(fs *flag.FlagSet, args []string, o *Options) (*Options, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		o.Config = configPath
	}
	if err := o.loadFile(); err != nil {
		return nil, err
	}

	if v := os.Getenv("SERVER_ADDRESS"); v != "" {
		o.Port = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		o.DatabaseDSN = v
	}
	if v := os.Getenv("STORE_PATH"); v != "" {
		o.StorePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		o.LogLevel = v
	}

	return o, nil
}

// loadFile merges the config file into o. A missing file is not an error.
func (o *Options) loadFile() error {
	if o.Config == "" {
		return nil
	}
	data, err := os.ReadFile(o.Config)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	if err := json.Unmarshal(data, o); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}
