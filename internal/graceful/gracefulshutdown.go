package graceful

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"FireGar/internal/utils/logger/sl"
)

// Operation is a named cleanup step run during shutdown.
type Operation func(ctx context.Context) error

// GracefulShutdown listens for termination signals and, once one arrives,
// runs all operations concurrently under a shared timeout. The returned
// channel closes after every operation has finished or given up.
func GracefulShutdown(ctx context.Context, timeout time.Duration, ops map[string]Operation, logger *slog.Logger) <-chan struct{} {
	op := "graceful.GracefulShutdown"
	log := logger.With(slog.String("op", op))

	wait := make(chan struct{})
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		received := <-sig

		log.Info("shutdown signal received", slog.String("signal", received.String()))

		ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var wg sync.WaitGroup
		for name, operation := range ops {
			wg.Add(1)
			go func(name string, operation Operation) {
				defer wg.Done()

				log.Info("stopping", slog.String("process", name))
				if err := operation(ctxTimeout); err != nil {
					log.Error("shutdown error", slog.String("process", name), sl.Err(err))
					return
				}
				log.Info("stopped", slog.String("process", name))
			}(name, operation)
		}

		wg.Wait()
		log.Info("graceful shutdown completed")
		close(wait)
	}()

	return wait
}
