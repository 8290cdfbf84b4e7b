package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/angelmondragon/attire-backend/pkg/logger"
)

type recordedObservation struct {
	route  string
	status int
}

type stubObserver struct {
	seen []recordedObservation
}

func (s *stubObserver) ObserveRequest(route string, status int, _ time.Duration) {
	s.seen = append(s.seen, recordedObservation{route: route, status: status})
}

func TestLoggingObservesRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: &buf})
	observer := &stubObserver{}

	r := chi.NewRouter()
	r.Use(RequestID(logg), Logging(logg, observer))
	r.Get("/api/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/123", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if len(observer.seen) != 1 {
		t.Fatalf("expected one observation, got %d", len(observer.seen))
	}
	if observer.seen[0].route != "/api/orders/{id}" || observer.seen[0].status != http.StatusNotFound {
		t.Fatalf("unexpected observation %+v", observer.seen[0])
	}
	if resp.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected request id header")
	}
	if !strings.Contains(buf.String(), "request.complete") {
		t.Fatalf("expected completion log, got %s", buf.String())
	}
}

func TestRecovererWritesInternalError(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestRequestIDKeepsCallerValue(t *testing.T) {
	handler := RequestID(nil)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Header().Get(requestIDHeader) != "abc-123" {
		t.Fatalf("expected caller request id echoed, got %q", resp.Header().Get(requestIDHeader))
	}
}
