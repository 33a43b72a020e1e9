package worker

import (
	"context"
	"log"
	"net/http"

	"go.uber.org/fx"

	"github.com/docstream/cdc-worker/cdc"
)

// statusServerProvider reports whether the engine is actively watching: 200
// while the subscription is healthy, 503 while reconnecting or stopped.
func statusServerProvider(config WorkerConfig, engine *cdc.Engine[Document]) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		if engine.IsWatching() {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	return &http.Server{
		Addr:    config.StatusServerAddress,
		Handler: mux,
	}
}

func startStatusServer(components Components) {
	components.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := components.StatusServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Printf("http listen and serve error: %v", err)
					_ = components.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return components.StatusServer.Shutdown(ctx)
		},
	})
}
