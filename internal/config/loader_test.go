package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/cardcatalog/internal/config"
	"github.com/smartystreets/goconvey/convey"
	"github.com/spf13/pflag"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx, nil)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("CATALOG_ADDR", ":9090")
			_ = os.Setenv("CATALOG_DB_PATH", "/var/lib/cards.db")
			_ = os.Setenv("CATALOG_POOL_SIZE", "8")
			_ = os.Setenv("CATALOG_STORE_TIMEOUT_MS", "250")

			cfg, err := config.Load(ctx, nil)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DBPath, convey.ShouldEqual, "/var/lib/cards.db")
				convey.So(cfg.PoolSize, convey.ShouldEqual, 8)
				convey.So(cfg.StoreTimeoutMS, convey.ShouldEqual, 250)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":7070"
pool_size: 5
log_level: debug
`)
			_ = os.Setenv("CATALOG_CONFIG", tmpFile)

			cfg, err := config.Load(ctx, nil)

			convey.Convey("Then it should merge the file with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.PoolSize, convey.ShouldEqual, 5)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.DBPath, convey.ShouldEqual, "cardcatalog.db")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(t, "addr: \":7070\"\npool_size: 5\n")
			_ = os.Setenv("CATALOG_CONFIG", tmpFile)
			_ = os.Setenv("CATALOG_POOL_SIZE", "9")

			cfg, err := config.Load(ctx, nil)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.PoolSize, convey.ShouldEqual, 9)
			})
		})

		convey.Convey("When a dotenv file is configured", func() {
			path := filepath.Join(t.TempDir(), "catalog.env")
			err := os.WriteFile(path, []byte("CATALOG_ADDR=:6060\nCATALOG_POOL_SIZE=4\nUNRELATED=1\n"), 0o600)
			convey.So(err, convey.ShouldBeNil)
			_ = os.Setenv("CATALOG_ENV_FILE", path)
			_ = os.Setenv("CATALOG_POOL_SIZE", "6")

			cfg, err := config.Load(ctx, nil)

			convey.Convey("Then it sits between the file and the process environment", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
				convey.So(cfg.PoolSize, convey.ShouldEqual, 6)
			})
		})

		convey.Convey("When the configured dotenv file is missing", func() {
			_ = os.Setenv("CATALOG_ENV_FILE", "/non/existent/catalog.env")

			_, err := config.Load(ctx, nil)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When flags are set", func() {
			_ = os.Setenv("CATALOG_ADDR", ":9090")
			_ = os.Setenv("CATALOG_POOL_SIZE", "8")
			flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
			config.BindFlags(flags)
			convey.So(flags.Parse([]string{"--addr", ":5050", "--db-path", ":memory:"}), convey.ShouldBeNil)

			cfg, err := config.Load(ctx, flags)

			convey.Convey("Then changed flags win and unchanged ones keep lower layers", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":5050")
				convey.So(cfg.DBPath, convey.ShouldEqual, ":memory:")
				convey.So(cfg.PoolSize, convey.ShouldEqual, 8)
			})
		})

		convey.Convey("When only a database name is given", func() {
			_ = os.Setenv("CATALOG_DB_PATH", "")
			_ = os.Setenv("CATALOG_DB_NAME", "cards")

			cfg, err := config.Load(ctx, nil)

			convey.Convey("Then it names the database file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DBPath, convey.ShouldEqual, "cards.db")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, "addr: [unclosed\n")
			_ = os.Setenv("CATALOG_CONFIG", tmpFile)

			_, err := config.Load(ctx, nil)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("CATALOG_CONFIG", "/non/existent/file.yaml")

			_, err := config.Load(ctx, nil)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("CATALOG_POOL_SIZE", "not_a_number")

			_, err := config.Load(ctx, nil)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestConfigValidation(t *testing.T) {
	convey.Convey("Given config validation", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		cases := []struct {
			name string
			key  string
			val  string
		}{
			{"empty addr", "CATALOG_ADDR", ""},
			{"zero pool size", "CATALOG_POOL_SIZE", "0"},
			{"oversized pool", "CATALOG_POOL_SIZE", "65"},
			{"unknown log level", "CATALOG_LOG_LEVEL", "verbose"},
			{"zero store timeout", "CATALOG_STORE_TIMEOUT_MS", "0"},
			{"port out of range", "CATALOG_DB_PORT", "70000"},
		}
		for _, tc := range cases {
			convey.Convey("When loading with "+tc.name, func() {
				_ = os.Setenv(tc.key, tc.val)

				cfg, err := config.Load(ctx, nil)

				convey.Convey("Then it should return a validation error", func() {
					convey.So(cfg, convey.ShouldBeNil)
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}
	})
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"CATALOG_CONFIG",
		"CATALOG_ENV_FILE",
		"CATALOG_LOG_LEVEL",
		"CATALOG_ADDR",
		"CATALOG_DB_PATH",
		"CATALOG_POOL_SIZE",
		"CATALOG_BUSY_TIMEOUT_MS",
		"CATALOG_STORE_TIMEOUT_MS",
		"CATALOG_SHUTDOWN_TIMEOUT_MS",
		"CATALOG_POOL_STATS_INTERVAL_MS",
		"CATALOG_DB_HOST",
		"CATALOG_DB_PORT",
		"CATALOG_DB_USER",
		"CATALOG_DB_PASSWORD",
		"CATALOG_DB_NAME",
	} {
		_ = os.Unsetenv(key)
	}
}
