package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CONFIG", "SERVER_ADDRESS", "DATABASE_DSN", "STORE_PATH", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestParseServer_Defaults(t *testing.T) {
	clearEnv(t)
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	opts, err := ParseServer(fs, []string{"-c", filepath.Join(t.TempDir(), "missing.json")})
	require.NoError(t, err)

	assert.Equal(t, DefaultAddress, opts.Port)
	assert.Equal(t, "", opts.DatabaseDSN)
	assert.Equal(t, DefaultStorePath, opts.StorePath)
	assert.Equal(t, DefaultLogLevel, opts.LogLevel)
	assert.False(t, opts.TLS)
}

func TestParseServer_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_address":":9000","store_path":"from-file.json","tls":true,"log_level":"debug"}`), 0o600))

	t.Setenv("CONFIG", path)
	t.Setenv("STORE_PATH", "from-env.json")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	opts, err := ParseServer(fs, []string{"-a", ":7000", "-d", "postgres://x"})
	require.NoError(t, err)

	assert.Equal(t, ":9000", opts.Port, "file overrides flags")
	assert.Equal(t, "postgres://x", opts.DatabaseDSN)
	assert.Equal(t, "from-env.json", opts.StorePath, "env overrides file")
	assert.Equal(t, "debug", opts.LogLevel)
	assert.True(t, opts.TLS)
	assert.Equal(t, path, opts.Config)
}

func TestParseServer_BadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	_, err := ParseServer(fs, []string{"-config", path})
	assert.ErrorContains(t, err, "parsing config file")
}

func TestParseClient(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "warn")

	fs := flag.NewFlagSet("passhash", flag.ContinueOnError)
	version := fs.Bool("version", false, "")
	opts, err := ParseClient(fs, []string{"-store", "vault.json", "-version", "-c", filepath.Join(t.TempDir(), "none.json")})
	require.NoError(t, err)

	assert.True(t, *version)
	assert.Equal(t, "vault.json", opts.StorePath)
	assert.Equal(t, "warn", opts.LogLevel)
	assert.Nil(t, fs.Lookup("a"), "server flags are not registered for the shell")
}

func TestParseClient_QuietByDefault(t *testing.T) {
	clearEnv(t)
	fs := flag.NewFlagSet("passhash", flag.ContinueOnError)
	opts, err := ParseClient(fs, []string{"-c", filepath.Join(t.TempDir(), "none.json")})
	require.NoError(t, err)
	assert.Equal(t, DefaultShellLogLevel, opts.LogLevel)
}
