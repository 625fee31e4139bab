package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/okian/practiceplan/internal/adapters/http/api"
	"github.com/okian/practiceplan/internal/domain/assessment"
	"github.com/okian/practiceplan/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type mockDependencies struct {
	mu       sync.Mutex
	plan     string
	err      error
	payloads []assessment.Payload
	ctxIDs   []string
	stats    map[string]interface{}
}

func (m *mockDependencies) GeneratePlan(ctx context.Context, payload assessment.Payload) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = append(m.payloads, payload)
	m.ctxIDs = append(m.ctxIDs, logger.RequestID(ctx))
	return m.plan, m.err
}

func (m *mockDependencies) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps *mockDependencies, opts ...api.ServerOption) http.Handler {
	mux := http.NewServeMux()
	api.NewServer(deps, opts...).Register(context.Background(), mux)
	return api.RequestIDMiddleware(mux)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockDependencies{plan: "<p>plan</p>", stats: map[string]interface{}{"totalSongs": 3}}
		handler := newMux(deps)

		Convey("Then the health endpoint reports ok", func() {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
			So(decodeBody(t, w)["status"], ShouldEqual, "ok")
		})

		Convey("Then the stats endpoint returns provider stats", func() {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decodeBody(t, w)["totalSongs"], ShouldEqual, float64(3))
		})

		Convey("Then the metrics endpoint serves the registry", func() {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			w = httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "practiceplan_api_http_requests_total")
		})

		Convey("Then unknown paths are not found", func() {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/unknown", nil))
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then wrong methods are not found", func() {
			for _, tc := range []struct{ method, path string }{
				{http.MethodGet, "/api/generate-plan"},
				{http.MethodPost, "/health"},
				{http.MethodPost, "/stats"},
				{http.MethodPost, "/metrics"},
			} {
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
				So(w.Code, ShouldEqual, http.StatusNotFound)
			}
		})
	})

	Convey("Given a nil mux", t, func() {
		So(func() {
			api.NewServer(&mockDependencies{}).Register(context.Background(), nil)
		}, ShouldPanic)
	})
}

func TestPlanHandler_HandleGeneratePlan(t *testing.T) {
	Convey("Given a plan handler", t, func() {
		deps := &mockDependencies{plan: "<h2>Your plan</h2>"}
		handler := newMux(deps)

		Convey("When a valid assessment is posted", func() {
			body := `{"scales":{"majorScale":1},"technique":{"alternatePicking":4},"struggles":["barre chords"]}`
			req := httptest.NewRequest(http.MethodPost, "/api/generate-plan", strings.NewReader(body))
			req.Header.Set(api.RequestIDHeader, "req-123")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			Convey("Then the plan is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decodeBody(t, w)["plan"], ShouldEqual, "<h2>Your plan</h2>")
			})

			Convey("Then the payload reaches the service in order", func() {
				So(deps.payloads, ShouldHaveLength, 1)
				So(assessment.Merge(deps.payloads[0]).Names(), ShouldResemble, []string{"majorScale", "alternatePicking"})
				So(deps.payloads[0].Struggles, ShouldResemble, []string{"barre chords"})
			})

			Convey("Then the request id is propagated", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "req-123")
				So(deps.ctxIDs[0], ShouldEqual, "req-123")
			})
		})

		Convey("When an empty object is posted", func() {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate-plan", strings.NewReader(`{}`)))

			Convey("Then containers are defaulted", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.payloads[0].Struggles, ShouldNotBeNil)
				So(deps.payloads[0].Scales, ShouldNotBeNil)
				So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)
			})
		})

		Convey("When the body is malformed", func() {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate-plan", strings.NewReader(`{"scales":`)))

			Convey("Then a 400 with an error field is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeBody(t, w)["error"], ShouldNotBeEmpty)
				So(deps.payloads, ShouldBeEmpty)
			})
		})

		Convey("When the collaborator fails", func() {
			deps.err = errors.New("dial tcp: connection refused")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate-plan", strings.NewReader(`{}`)))

			Convey("Then a 500 carries the underlying message", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeBody(t, w)["error"], ShouldEqual, "dial tcp: connection refused")
			})
		})

		Convey("When the collaborator fails without a message", func() {
			deps.err = errors.New("")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate-plan", strings.NewReader(`{}`)))

			Convey("Then the fallback message is used", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeBody(t, w)["error"], ShouldEqual, "Failed to generate practice plan")
			})
		})
	})

	Convey("Given a small body limit", t, func() {
		deps := &mockDependencies{plan: "x"}
		handler := newMux(deps, api.WithMaxBodyBytes(16))

		Convey("When the body is larger than the limit", func() {
			w := httptest.NewRecorder()
			body := `{"struggles":["` + strings.Repeat("a", 64) + `"]}`
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate-plan", strings.NewReader(body)))

			Convey("Then the request is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
				So(deps.payloads, ShouldBeEmpty)
			})
		})
	})
}

func TestKindErrors(t *testing.T) {
	Convey("Given a wrapped kind error", t, func() {
		cause := errors.New("boom")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		Convey("Then both the kind and the cause match", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: boom")
		})
	})

	Convey("Given a kind error without a cause", t, func() {
		err := api.NewKind("api.op", api.ErrPayloadTooLarge)
		So(errors.Is(err, api.ErrPayloadTooLarge), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "api.op: payload too large")
	})
}
