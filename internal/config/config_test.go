package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("backend", "", "")
	flags.String("state-file", "", "")
	flags.String("pg-dsn", "", "")
	flags.String("key", "", "")
	return flags
}

func TestLoadDefaults(t *testing.T) {
	req := require.New(t)
	cfg, err := Load("", nil)
	req.NoError(err)
	req.Equal(BackendFile, cfg.Backend)
	req.Equal("./data/pool_state.json", cfg.StateFile)
	req.Equal(DefaultPoolAddress, cfg.PoolAddress)
	req.Equal("./data/events.jsonl", cfg.EventsOut)
	req.Equal("info", cfg.LogLevel)
	req.Equal(3, cfg.MaxRetries)
	req.Equal(500*time.Millisecond, cfg.RetryBackoff)
}

func TestLoadEnvAndFlags(t *testing.T) {
	req := require.New(t)
	t.Setenv("AMM_BACKEND", "postgres")
	t.Setenv("AMM_PG_DSN", "postgres://env")

	flags := newFlags()
	req.NoError(flags.Parse([]string{"--pg-dsn", "postgres://flag"}))

	cfg, err := Load("", flags)
	req.NoError(err)
	req.Equal(BackendPostgres, cfg.Backend)
	req.Equal("postgres://flag", cfg.PGDSN)
}

func TestLoadConfigFile(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "amm.yaml")
	req.NoError(os.WriteFile(path, []byte("backend: file\nstate-file: /tmp/pool.json\nlog-level: debug\n"), 0o644))

	cfg, err := Load(path, newFlags())
	req.NoError(err)
	req.Equal("/tmp/pool.json", cfg.StateFile)
	req.Equal("debug", cfg.LogLevel)
}

func TestLoadRejectsBadBackend(t *testing.T) {
	t.Setenv("AMM_BACKEND", "sqlite")
	_, err := Load("", nil)
	require.Error(t, err)

	t.Setenv("AMM_BACKEND", "postgres")
	_, err = Load("", nil)
	require.ErrorContains(t, err, "pg-dsn")
}

func TestLoadDotEnv(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), ".env")
	req.NoError(os.WriteFile(path, []byte("AMM_DOTENV_PROBE=from-file\n"), 0o644))
	t.Setenv("AMM_DOTENV_PROBE", "")
	req.NoError(os.Unsetenv("AMM_DOTENV_PROBE"))

	req.NoError(loadDotEnv(path))
	req.Equal("from-file", os.Getenv("AMM_DOTENV_PROBE"))
	req.NoError(loadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestLoadStats(t *testing.T) {
	req := require.New(t)
	flags := pflag.NewFlagSet("stats", pflag.ContinueOnError)
	flags.String("in", "", "")
	flags.Duration("window", 0, "")
	flags.Int32("decimals", 0, "")
	req.NoError(flags.Parse([]string{"--in", "events.jsonl", "--window", "1h", "--decimals", "6"}))

	cfg, err := LoadStats("", flags)
	req.NoError(err)
	req.Equal("events.jsonl", cfg.In)
	req.Equal(time.Hour, cfg.Window)
	req.EqualValues(6, cfg.Decimals)
}
