package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

type pingFunc func(ctx context.Context) (time.Duration, error)

func (f pingFunc) Ping(ctx context.Context) (time.Duration, error) { return f(ctx) }

func TestOpsHandler(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		ping   pingFunc
		status int
		body   string
	}{
		{
			name:   "healthy",
			path:   "/healthz",
			ping:   func(context.Context) (time.Duration, error) { return time.Millisecond, nil },
			status: http.StatusOK,
			body:   "ok",
		},
		{
			name:   "db down",
			path:   "/healthz",
			ping:   func(context.Context) (time.Duration, error) { return 0, errors.New("connection refused") },
			status: http.StatusServiceUnavailable,
			body:   "db not ok: connection refused",
		},
		{
			name:   "metrics",
			path:   "/metrics",
			ping:   func(context.Context) (time.Duration, error) { return 0, nil },
			status: http.StatusOK,
			body:   "school_db_ping_seconds",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			opsHandler(tt.ping).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			b, _ := io.ReadAll(rec.Body)
			if !strings.Contains(string(b), tt.body) {
				t.Fatalf("body %q does not contain %q", b, tt.body)
			}
		})
	}
}

func TestStartOps_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := StartOps(ctx, "127.0.0.1:0", pingFunc(func(context.Context) (time.Duration, error) { return 0, nil }), nopLog())
	cancel()

	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("ops server did not stop")
	}
}

func nopLog() *zap.SugaredLogger { return zap.NewNop().Sugar() }
