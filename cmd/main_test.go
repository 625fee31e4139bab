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

	"github.com/okian/practiceplan/internal/config"
	"github.com/okian/practiceplan/pkg/logger"
	"github.com/okian/practiceplan/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakeMessagesAPI replies to every request with reply as the first text block,
// or with status when it is not 200.
func fakeMessagesAPI(status int, reply string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": reply}},
		})
	}))
}

func testConfig(baseURL string) *config.Config {
	cfg := config.New()
	cfg.LLM.BaseURL = baseURL
	cfg.LLM.APIKey = "test"
	cfg.LLM.Timeout = 5 * time.Second
	return cfg
}

func TestApplicationRoutes(t *testing.T) {
	convey.Convey("Given the application wired against a fake text-generation API", t, func() {
		ctx := context.Background()
		upstream := fakeMessagesAPI(http.StatusOK, "```html\n<h2>Plan</h2>\n```")
		defer upstream.Close()

		cfg := testConfig(upstream.URL)
		svc, err := newService(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		handler := newHandler(ctx, cfg, svc, logger.Get())

		convey.Convey("When a plan is requested", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/generate-plan",
				strings.NewReader(`{"scales":{"majorScale":1},"technique":{"alternatePicking":4}}`))
			handler.ServeHTTP(w, req)

			convey.Convey("Then the cleaned plan is returned", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				var body map[string]string
				convey.So(json.NewDecoder(w.Body).Decode(&body), convey.ShouldBeNil)
				convey.So(body["plan"], convey.ShouldEqual, "<h2>Plan</h2>")
				convey.So(w.Header().Get("X-Request-ID"), convey.ShouldNotBeEmpty)
			})
		})

		convey.Convey("When the supporting routes are requested", func() {
			for path, contentType := range map[string]string{
				"/health":       "application/json",
				"/stats":        "application/json",
				"/metrics":      "text/plain",
				"/":             "text/html",
				"/api-docs":     "text/html",
				"/openapi.yaml": "application/yaml",
			} {
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldStartWith, contentType)
			}
		})
	})

	convey.Convey("Given an upstream that fails", t, func() {
		ctx := context.Background()
		upstream := fakeMessagesAPI(529, "")
		defer upstream.Close()

		cfg := testConfig(upstream.URL)
		svc, err := newService(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		w := httptest.NewRecorder()
		newHandler(ctx, cfg, svc, logger.Get()).ServeHTTP(w,
			httptest.NewRequest(http.MethodPost, "/api/generate-plan", strings.NewReader(`{}`)))

		convey.Convey("Then a 500 with the upstream message is returned", func() {
			convey.So(w.Code, convey.ShouldEqual, http.StatusInternalServerError)
			var body map[string]string
			convey.So(json.NewDecoder(w.Body).Decode(&body), convey.ShouldBeNil)
			convey.So(body["error"], convey.ShouldContainSubstring, "Overloaded")
		})
	})
}

func TestNewServiceErrors(t *testing.T) {
	convey.Convey("Given a missing curriculum file", t, func() {
		cfg := testConfig("http://127.0.0.1:0")
		cfg.CurriculumPath = filepath.Join(t.TempDir(), "missing.json")

		_, err := newService(context.Background(), cfg, logger.Get())
		convey.So(err, convey.ShouldNotBeNil)
	})

	convey.Convey("Given a curriculum file on disk", t, func() {
		path := filepath.Join(t.TempDir(), "songs.yaml")
		convey.So(os.WriteFile(path, []byte("- title: Layla\n  artist: Derek and the Dominos\n  difficultyLevel: Advanced 2\n"), 0o600), convey.ShouldBeNil)
		cfg := testConfig("http://127.0.0.1:0")
		cfg.CurriculumPath = path

		svc, err := newService(context.Background(), cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()
		convey.So(svc.GetStats()["totalSongs"], convey.ShouldEqual, 1)
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should return once the context ends", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing system metrics update", func() {
			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateSystemMetrics()
				}, convey.ShouldNotPanic)
			})
		})
	})
}

func TestRunStopsOnCancel(t *testing.T) {
	convey.Convey("Given a running application", t, func() {
		upstream := fakeMessagesAPI(http.StatusOK, "<p>x</p>")
		defer upstream.Close()

		cfg := testConfig(upstream.URL)
		cfg.Addr = "127.0.0.1:0"

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		convey.Convey("Then run returns cleanly when the context ends", func() {
			convey.So(run(ctx, cfg, logger.Get()), convey.ShouldBeNil)
		})
	})
}

func TestConfigureMetrics(t *testing.T) {
	convey.Convey("Given a metrics section with a custom namespace and labels", t, func() {
		cfg := config.New()
		cfg.Metrics.Namespace = "guitar"
		cfg.Metrics.ConstLabels = map[string]string{"env": "test"}
		defer configureMetrics(config.New())

		configureMetrics(cfg)
		metrics.RecordHTTPRequest("/health", http.MethodGet, "200")

		convey.Convey("Then the served registry uses them", func() {
			families, err := metrics.GetRegistry().Gather()
			convey.So(err, convey.ShouldBeNil)

			var found bool
			for _, mf := range families {
				if mf.GetName() != "guitar_api_http_requests_total" {
					continue
				}
				found = true
				labels := map[string]string{}
				for _, lp := range mf.GetMetric()[0].GetLabel() {
					labels[lp.GetName()] = lp.GetValue()
				}
				convey.So(labels["env"], convey.ShouldEqual, "test")
			}
			convey.So(found, convey.ShouldBeTrue)
		})
	})
}
