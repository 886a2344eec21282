package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"

	// DefaultPoolAddress is the pool's ledger identity when none is configured.
	DefaultPoolAddress = "0x00000000000000000000000000000000000A11CE"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Backend      string
	StateFile    string
	PGDSN        string
	PoolAddress  string
	EventsOut    string
	Key          string
	LogLevel     string
	RPCURL       string
	MaxRetries   int
	RetryBackoff time.Duration
}

// StatsConfig holds configuration for the stats command.
type StatsConfig struct {
	In       string
	Window   time.Duration
	Decimals int32
	LogLevel string
}

// Load merges .env, config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Backend:      strings.ToLower(strings.TrimSpace(v.GetString("backend"))),
		StateFile:    v.GetString("state-file"),
		PGDSN:        v.GetString("pg-dsn"),
		PoolAddress:  v.GetString("pool-address"),
		EventsOut:    v.GetString("events-out"),
		Key:          v.GetString("key"),
		LogLevel:     v.GetString("log-level"),
		RPCURL:       v.GetString("rpc"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
	}

	switch cfg.Backend {
	case BackendFile:
		if cfg.StateFile == "" {
			return Config{}, fmt.Errorf("state-file is required for the file backend")
		}
	case BackendPostgres:
		if cfg.PGDSN == "" {
			return Config{}, fmt.Errorf("pg-dsn is required for the postgres backend")
		}
	default:
		return Config{}, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	return cfg, nil
}

// LoadStats merges .env, config file, environment variables, and flags into
// StatsConfig.
func LoadStats(cfgFile string, flags *pflag.FlagSet) (StatsConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return StatsConfig{}, err
	}

	cfg := StatsConfig{
		In:       v.GetString("in"),
		Window:   v.GetDuration("window"),
		Decimals: v.GetInt32("decimals"),
		LogLevel: v.GetString("log-level"),
	}
	if cfg.In == "" {
		cfg.In = v.GetString("events-out")
	}
	if cfg.In == "" {
		return StatsConfig{}, fmt.Errorf("--in is required")
	}
	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("AMM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("backend", BackendFile)
	v.SetDefault("state-file", "./data/pool_state.json")
	v.SetDefault("pool-address", DefaultPoolAddress)
	v.SetDefault("events-out", "./data/events.jsonl")
	v.SetDefault("log-level", "info")
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

// loadDotEnv exports variables from path without overriding ones already
// set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
