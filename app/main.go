package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"FireGar/internal/assessment"
	"FireGar/internal/config"
	"FireGar/internal/graceful"
	"FireGar/internal/httpserver"
	"FireGar/internal/notify"
	"FireGar/internal/observability"
	"FireGar/internal/repositories"
	"FireGar/internal/utils/logger/handlers/slogpretty"
	"FireGar/internal/utils/logger/sl"
	"FireGar/internal/weather"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

var Version = "0.1"

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info(
		"starting gar assessment service",
		slog.String("env", cfg.Env),
		slog.String("version", Version),
	)

	metrics := observability.NewMetrics()
	repositoryService := repositories.New(log, cfg)

	weatherProvider := setupWeather(cfg, log)
	dispatcher := notify.NewDispatcher(
		setupNotifyProviders(cfg, log),
		cfg.Notify.AppBaseURL,
		metrics,
		log,
	)

	assessmentService := assessment.New(
		log,
		repositoryService,
		weatherProvider,
		dispatcher,
		metrics,
		nil, // real clock
		cfg.EditPolicy,
	)

	apiServer := httpserver.New(log, cfg, assessmentService)
	metricsServer := observability.NewMetricsServer(
		cfg.HttpServer.Address+":"+cfg.HttpServer.MetricsPort, log)

	maxSecond := 15 * time.Second
	waitShutdown := graceful.GracefulShutdown(
		context.Background(),
		maxSecond,
		map[string]graceful.Operation{
			"Repository service": func(ctx context.Context) error {
				return repositoryService.Shutdown(ctx)
			},
			"HTTP server": func(ctx context.Context) error {
				return apiServer.Shutdown(ctx)
			},
			"Metrics server": func(ctx context.Context) error {
				return metricsServer.Shutdown(ctx)
			},
		},
		log,
	)

	go func() {
		if err := apiServer.Start(); err != nil {
			log.Error("http server stopped", sl.Err(err))
		}
	}()
	go func() {
		if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", sl.Err(err))
		}
	}()

	<-waitShutdown
}

// setupWeather builds the cache-wrapped snapshot provider. The synthetic
// source is wired only in local development with an explicit opt-in, so
// fabricated readings can never reach a production path.
func setupWeather(cfg *config.Config, log *slog.Logger) weather.Provider {
	var source weather.Source
	if cfg.Env == envLocal && cfg.Weather.AllowSynthetic {
		log.Warn("using synthetic weather source; snapshots are flagged as synthetic")
		source = weather.SyntheticSource{}
	} else {
		source = weather.NewClient(cfg.Weather, log)
	}
	return weather.NewCachedProvider(source, cfg.Weather.CacheTTL, nil, log)
}

func setupNotifyProviders(cfg *config.Config, log *slog.Logger) []notify.Provider {
	var providers []notify.Provider
	for _, channel := range cfg.Notify.Channels {
		switch channel {
		case "email":
			p, err := notify.NewEmailProvider(cfg.Notify.SMTP)
			if err != nil {
				log.Error("error creating email provider", sl.Err(err))
				continue
			}
			providers = append(providers, p)
		case "telegram":
			p, err := notify.NewTelegramProvider(cfg.Notify.Telegram.ApiToken)
			if err != nil {
				log.Error("error creating telegram provider", sl.Err(err))
				continue
			}
			providers = append(providers, p)
		default:
			log.Warn("unknown notification channel", slog.String("channel", channel))
		}
	}
	if len(providers) == 0 {
		log.Warn("no notification providers configured; publish notifications will be dropped")
	}
	return providers
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog(slog.LevelDebug)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog(level slog.Level) *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: level,
		},
	}
	handler := opts.NewPrettyHandler(os.Stdout)
	return slog.New(handler)
}
