package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	// EnvPrefix prefixes every environment key, e.g. CATALOG_ADDR.
	EnvPrefix = "CATALOG_"
	// EnvConfigFile points at an optional YAML file.
	EnvConfigFile = EnvPrefix + "CONFIG"
	// EnvDotEnvFile points at a dotenv file. Without it ./.env is read if present.
	EnvDotEnvFile = EnvPrefix + "ENV_FILE"

	defaultDotEnv = ".env"
)

// BindFlags registers the command-line overrides on flags. Flag names use
// dashes; they map onto the koanf keys with underscores.
func BindFlags(flags *pflag.FlagSet) {
	def := New()
	flags.String("log-level", def.LogLevel, "log level: debug, info, warn, error")
	flags.String("addr", def.Addr, "HTTP listen address")
	flags.String("db-path", def.DBPath, "SQLite database file")
	flags.Int("pool-size", def.PoolSize, "maximum open store connections")
	flags.Int("store-timeout-ms", def.StoreTimeoutMS, "timeout of a single store call in milliseconds")
}

// Load builds a Config by layering defaults, optional files, env vars and flags.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if CATALOG_CONFIG is set
//  3. dotenv file (CATALOG_ENV_FILE, or ./.env when present)
//  4. env (prefix CATALOG_)
//  5. flags that were explicitly set; flags may be nil
func Load(_ context.Context, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	if err := loadDotEnv(k); err != nil {
		return nil, err
	}

	// CATALOG_POOL_SIZE -> pool_size. Underscores are kept to match the
	// koanf tags; "." is the only nesting delimiter.
	envProvider := env.Provider(EnvPrefix, ".", envKey)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("%w: flags: %w", ErrLoadConfig, err)
		}
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if cfg.DBPath == "" && cfg.DBName != "" {
		cfg.DBPath = cfg.DBName + ".db"
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func Validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q (value %v)", ErrInvalidConfig, fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// loadDotEnv reads a dotenv file into k. Process environment still wins
// because env is loaded afterwards.
func loadDotEnv(k *koanf.Koanf) error {
	path, explicit := os.LookupEnv(EnvDotEnvFile)
	if !explicit || path == "" {
		path = defaultDotEnv
	}
	vals, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
	}
	for key, val := range vals {
		if !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		if err := k.Set(envKey(key), val); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrLoadConfig, key, err)
		}
	}
	return nil
}

func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}
