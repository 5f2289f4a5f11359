package metrics

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"coinex_bot/internal/modules/config"
	"coinex_bot/pkg/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

var ready atomic.Bool

// MarkReady дергает раннер после первого успешного цикла.
func MarkReady() { ready.Store(true) }

func NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		// liveness: процесс жив
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		// readiness: хотя бы один цикл дошёл до конца
		if !ready.Load() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	return mux
}

func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(NewMux),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, mux *http.ServeMux) {
			srv := &http.Server{Addr: cfg.Service.AdminAddr, Handler: mux}
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go func() {
						if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
							logger.Error("admin server: %v", err)
						}
					}()
					return nil
				},
				OnStop: func(ctx context.Context) error {
					shCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
					defer cancel()
					return srv.Shutdown(shCtx)
				},
			})
		}),
	)
}
