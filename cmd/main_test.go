package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/attrition/internal/adapters/repository"
	app "github.com/okian/attrition/internal/app"
	"github.com/okian/attrition/internal/config"
	"github.com/okian/attrition/internal/domain/features/featurestest"
	"github.com/okian/attrition/pkg/logger"
)

const testModel = `name: attrition-logit
version: "test-1"
intercept: -1
threshold: 0.5
columns:
  - name: heure_supplementaires
    weight: 2
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.Addr = "127.0.0.1:0"
	cfg.DatabasePath = filepath.Join(t.TempDir(), "main.db")
	cfg.ShutdownTimeout = time.Second
	return cfg
}

func TestNewScorer(t *testing.T) {
	convey.Convey("Given a configuration without a model path", t, func() {
		cfg := testConfig(t)

		convey.Convey("Then the embedded model is served without a watcher", func() {
			scorer, watcher, err := newScorer(cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			convey.So(watcher, convey.ShouldBeNil)
			convey.So(scorer.Holder().Load(), convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Given a configuration with a model artifact", t, func() {
		cfg := testConfig(t)
		cfg.ModelPath = filepath.Join(t.TempDir(), "model.yaml")
		convey.So(os.WriteFile(cfg.ModelPath, []byte(testModel), 0o600), convey.ShouldBeNil)

		convey.Convey("Then the artifact is served and watched", func() {
			scorer, watcher, err := newScorer(cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			convey.So(watcher, convey.ShouldNotBeNil)
			convey.So(scorer.Holder().Load().Version, convey.ShouldEqual, "test-1")
		})
	})

	convey.Convey("Given a model path that does not exist", t, func() {
		cfg := testConfig(t)
		cfg.ModelPath = filepath.Join(t.TempDir(), "missing.yaml")

		convey.Convey("Then newScorer fails", func() {
			_, _, err := newScorer(cfg, logger.Nop())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given the full HTTP handler", t, func() {
		cfg := testConfig(t)
		ctx := context.Background()
		store, err := repository.NewSQLiteStore(ctx, cfg.DatabasePath)
		convey.So(err, convey.ShouldBeNil)
		convey.Reset(func() { _ = store.Close() })

		svc := app.New(app.WithLogger(logger.Nop()), app.WithStore(store))
		h := newHandler(ctx, cfg, svc, logger.Nop())

		serve := func(method, path, body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(method, path, strings.NewReader(body))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			return w
		}

		convey.Convey("Then the docs routes carry a request id", func() {
			w := serve(http.MethodGet, "/api-docs", "")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("X-Request-ID"), convey.ShouldNotBeEmpty)

			w = serve(http.MethodGet, "/openapi.yaml", "")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then health and metrics respond", func() {
			convey.So(serve(http.MethodGet, "/health", "").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(serve(http.MethodGet, "/metrics", "").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then a prediction round-trips through the store", func() {
			raw, err := json.Marshal(map[string]any{"features": featurestest.Staying(time.Now().UTC().Year())})
			convey.So(err, convey.ShouldBeNil)

			w := serve(http.MethodPost, "/predict", string(raw))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)

			c, err := store.Count(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(c.Inputs, convey.ShouldEqual, 1)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a runnable configuration", t, func() {
		cfg := testConfig(t)
		ctx, cancel := context.WithCancel(context.Background())

		convey.Convey("When the context is cancelled", func() {
			done := make(chan error, 1)
			go func() { done <- run(ctx, cfg, logger.Nop()) }()
			time.Sleep(200 * time.Millisecond)
			cancel()

			convey.Convey("Then run shuts down cleanly", func() {
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(5 * time.Second):
					t.Fatal("run did not return")
				}
			})
		})
	})

	convey.Convey("Given an unusable database path", t, func() {
		cfg := testConfig(t)
		cfg.DatabasePath = filepath.Join(t.TempDir(), "missing", "dir", "main.db")

		convey.Convey("Then run fails fast", func() {
			err := run(context.Background(), cfg, logger.Nop())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestUpdateSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then it should update metrics without panicking", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("Then it should stop with its context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				close(done)
			}()
			cancel()
			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("updater did not stop")
			}
		})
	})
}
