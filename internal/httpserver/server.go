package httpserver

import (
	"context"
	"fmt"
	"log/slog"

	"FireGar/internal/assessment"
	"FireGar/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Server exposes the assessment lifecycle over HTTP for the frontend.
type Server struct {
	app *fiber.App
	cfg *config.Config
	svc *assessment.Service
	log *slog.Logger
}

// New creates the HTTP server and registers all routes.
func New(logger *slog.Logger, cfg *config.Config, svc *assessment.Service) *Server {
	app := fiber.New(fiber.Config{
		AppName:     "FireGar",
		ReadTimeout: cfg.HttpServer.ReadTimeout,
	})
	app.Use(recover.New())

	s := &Server{
		app: app,
		cfg: cfg,
		svc: svc,
		log: logger.With(slog.String("component", "httpserver")),
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	api := app.Group("/api")
	api.Get("/stations", s.handleStations)
	api.Get("/assessments", s.handleList)
	api.Post("/assessments", s.handleStart)
	api.Post("/assessments/resume", s.handleResume)
	api.Get("/assessments/current", s.handleCurrent)
	api.Patch("/assessments/current", s.handleUpdate)
	api.Post("/assessments/current/next", s.handleNext)
	api.Post("/assessments/current/prev", s.handlePrev)
	api.Post("/assessments/current/weather", s.handleRefreshWeather)
	api.Post("/assessments/current/publish", s.handlePublish)
	api.Delete("/assessments/current", s.handleDiscard)
	api.Get("/assessments/:id", s.handleGet)

	return s
}

// Start begins serving. Blocks until Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.cfg.HttpServer.Address, s.cfg.HttpServer.Port)
	s.log.Info("http server listening", slog.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
