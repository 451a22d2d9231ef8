package http_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	perr "dropwatch/internal/platform/errors"
	phttp "dropwatch/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func TestNewServer_DefaultsAndRoutes(t *testing.T) {
	t.Parallel()

	optCalled := false
	srv := phttp.NewServer("", func(*chi.Mux) { optCalled = true })
	if !optCalled {
		t.Fatalf("expected option hook to run")
	}
	if srv.Addr() != ":4000" {
		t.Fatalf("default addr = %q", srv.Addr())
	}

	r := srv.Router()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-MW", "yes")
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "pong") })
	r.Route("/v1", func(v1 phttp.Router) {
		phttp.GetJSON(v1, "/windows/{handle}", func(req *http.Request) (any, error) {
			h := phttp.URLParam(req, "handle")
			if h == "missing" {
				return nil, perr.NotFoundf("no window for %q", h)
			}
			return map[string]string{"handle": h}, nil
		})
	})

	cases := []struct {
		path   string
		status int
	}{
		{"/ping", http.StatusOK},
		{"/v1/windows/abc", http.StatusOK},
		{"/v1/windows/missing", http.StatusNotFound},
		{"/nope", http.StatusNotFound},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, c.path, nil))
		if rec.Code != c.status {
			t.Fatalf("%s: status = %d, want %d", c.path, rec.Code, c.status)
		}
		if rec.Header().Get("X-MW") != "yes" {
			t.Fatalf("%s: middleware not applied", c.path)
		}
	}
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	srv := phttp.NewServer("127.0.0.1:0")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestServer_RunReportsListenError(t *testing.T) {
	t.Parallel()

	srv := phttp.NewServer("256.0.0.1:bad")
	err := srv.Run(context.Background())
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		t.Fatalf("expected listen error, got %v", err)
	}
}
