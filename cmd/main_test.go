package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/examscore/internal/adapters/http/api"
	app "github.com/okian/examscore/internal/app"
	"github.com/okian/examscore/internal/domain/prediction"
	"github.com/smartystreets/goconvey/convey"
)

var shippedModel = filepath.Join("..", "models", "student_model.json")

// setEnv sets kv for the current Convey branch only.
func setEnv(kv map[string]string) {
	for k, v := range kv {
		_ = os.Setenv(k, v)
	}
	convey.Reset(func() {
		for k := range kv {
			_ = os.Unsetenv(k)
		}
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When the model artifact is missing", func() {
			missing := filepath.Join(t.TempDir(), "student_model.json")
			setEnv(map[string]string{"EXAMSCORE_MODEL_PATH": missing, "EXAMSCORE_ADDR": "127.0.0.1:0"})

			var stderr bytes.Buffer
			code := run(context.Background(), &stderr)

			convey.Convey("Then it exits non-zero with an actionable message", func() {
				convey.So(code, convey.ShouldEqual, 1)
				convey.So(stderr.String(), convey.ShouldContainSubstring, missing)
				convey.So(stderr.String(), convey.ShouldContainSubstring, "EXAMSCORE_MODEL_PATH")
			})
		})

		convey.Convey("When the configuration is invalid", func() {
			setEnv(map[string]string{"EXAMSCORE_LOG_FORMAT": "xml"})

			var stderr bytes.Buffer
			code := run(context.Background(), &stderr)

			convey.Convey("Then it exits non-zero before starting", func() {
				convey.So(code, convey.ShouldEqual, 1)
				convey.So(stderr.String(), convey.ShouldContainSubstring, "failed to load config")
			})
		})

		convey.Convey("When the model loads and the context is cancelled", func() {
			setEnv(map[string]string{"EXAMSCORE_MODEL_PATH": shippedModel, "EXAMSCORE_ADDR": "127.0.0.1:0"})
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			var stderr bytes.Buffer
			code := run(ctx, &stderr)

			convey.Convey("Then it shuts down cleanly", func() {
				convey.So(code, convey.ShouldEqual, 0)
				convey.So(stderr.Len(), convey.ShouldEqual, 0)
			})
		})
	})
}

func TestStartupMessage(t *testing.T) {
	convey.Convey("Given a failed start", t, func() {
		convey.Convey("When the model is unavailable", func() {
			err := errors.Join(prediction.ErrModelUnavailable, os.ErrNotExist)
			msg := startupMessage("models/student_model.json", err)

			convey.Convey("Then the message names the path and the setting", func() {
				convey.So(msg, convey.ShouldContainSubstring, `"models/student_model.json"`)
				convey.So(msg, convey.ShouldContainSubstring, "EXAMSCORE_MODEL_PATH")
			})
		})

		convey.Convey("When something else fails", func() {
			msg := startupMessage("m.json", errors.New("boom"))
			convey.So(msg, convey.ShouldEqual, "failed to start service: boom")
		})
	})
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given the root handler over a started service", t, func() {
		ctx := context.Background()
		svc := app.New(app.WithModelPath(shippedModel))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		h := newHandler(ctx, svc)
		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		convey.Convey("Then every surface is routed", func() {
			for _, path := range []string{"/", "/schema", "/healthz", "/stats", "/metrics", "/openapi.yaml", "/api-docs"} {
				convey.So(get(path).Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("And requests get an id", func() {
			convey.So(get("/healthz").Header().Get(api.RequestIDHeader), convey.ShouldNotBeEmpty)
		})

		convey.Convey("And predictions use the shipped model", func() {
			body := `{"attendance":85,"hours_studied":20,"previous_scores":75,"tutoring_sessions":1,` +
				`"physical_activity":3,"sleep_hours":7,"access_to_resources":"Medium","parental_involvement":"Medium"}`
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body)))

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"tier":"Good"`)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"above_average":true`)
		})
	})
}

func TestUpdateSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then a refresh does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("And the loop stops with its context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})
	})
}
