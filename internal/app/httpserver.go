package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/school-records/internal/metrics"
)

// Pinger is implemented by *db.Store.
type Pinger interface {
	Ping(ctx context.Context) (time.Duration, error)
}

type OpsServer struct {
	srv  *http.Server
	done chan struct{}
}

func opsHandler(p Pinger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
		defer cancel()
		d, err := p.Ping(ctx)
		if err != nil {
			http.Error(w, "db not ok: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		metrics.ObserveDBPing(d)
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// StartOps serves /healthz and /metrics on addr until ctx is done.
func StartOps(ctx context.Context, addr string, p Pinger, log *zap.SugaredLogger) *OpsServer {
	s := &OpsServer{
		srv:  &http.Server{Addr: addr, Handler: opsHandler(p), ReadHeaderTimeout: 5 * time.Second},
		done: make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("ops server", "addr", addr, "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shCtx) // закрываем аккуратно
	}()

	return s
}

// Done is closed once the listener has stopped.
func (s *OpsServer) Done() <-chan struct{} { return s.done }
