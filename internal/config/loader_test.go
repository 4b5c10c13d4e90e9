package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/examscore/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.ModelPath, convey.ShouldEqual, "models/student_model.json")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("EXAMSCORE_ADDR", ":8080")
			_ = os.Setenv("EXAMSCORE_MODEL_PATH", "/srv/models/v1.json")
			_ = os.Setenv("EXAMSCORE_LOG_FORMAT", "json")
			_ = os.Setenv("EXAMSCORE_SHUTDOWN_TIMEOUT_SEC", "5")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ModelPath, convey.ShouldEqual, "/srv/models/v1.json")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.ShutdownTimeoutSec, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
# predictor settings
addr: ":9090"  # inline comment
model_path: "/data/student_model.json"
log_level: debug
`
			_ = os.Setenv("EXAMSCORE_CONFIG", createTempFile(t, "config.yaml", yamlContent))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.ModelPath, convey.ShouldEqual, "/data/student_model.json")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.ShutdownTimeoutSec, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
model_path: "/data/student_model.json"
`
			_ = os.Setenv("EXAMSCORE_CONFIG", createTempFile(t, "config.yaml", yamlContent))
			_ = os.Setenv("EXAMSCORE_ADDR", ":8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")                        // Overridden by env
				convey.So(cfg.ModelPath, convey.ShouldEqual, "/data/student_model.json") // From file
			})
		})

		convey.Convey("When loading config from a dotenv file", func() {
			envFile := createTempFile(t, "predictor.env", "EXAMSCORE_MODEL_PATH=/from/dotenv.json\nEXAMSCORE_ADDR=:7070\n")
			_ = os.Setenv("EXAMSCORE_ENV_FILE", envFile)
			_ = os.Setenv("EXAMSCORE_ADDR", ":6060")

			cfg, err := config.Load(ctx)

			convey.Convey("Then dotenv values apply without overriding the process env", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.ModelPath, convey.ShouldEqual, "/from/dotenv.json")
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
			})
		})

		convey.Convey("When the explicit dotenv file is missing", func() {
			_ = os.Setenv("EXAMSCORE_ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a dotenv load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(errors.Is(err, config.ErrEnvFile), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "absent.env")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			_ = os.Setenv("EXAMSCORE_CONFIG", createTempFile(t, "config.yaml", `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(errors.Is(err, config.ErrEnvFile), convey.ShouldBeFalse)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("EXAMSCORE_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("EXAMSCORE_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown log format", func() {
			_ = os.Setenv("EXAMSCORE_LOG_FORMAT", "logfmt")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("EXAMSCORE_SHUTDOWN_TIMEOUT_SEC", "soon")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.
func clearConfigEnvVars() {
	envVars := []string{
		"EXAMSCORE_CONFIG",
		"EXAMSCORE_ENV_FILE",
		"EXAMSCORE_ADDR",
		"EXAMSCORE_MODEL_PATH",
		"EXAMSCORE_LOG_LEVEL",
		"EXAMSCORE_LOG_FORMAT",
		"EXAMSCORE_SHUTDOWN_TIMEOUT_SEC",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
