package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"FireGar/internal/config"
	"FireGar/internal/migrator"
	"FireGar/internal/utils/logger/sl"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Repository provides access to the database.
type Repository struct {
	DB  *sqlx.DB
	log *slog.Logger
}

// New creates a new repository, connects to the database, and runs migrations.
func New(logger *slog.Logger, cfg *config.Config) *Repository {
	op := "repositories.New()"
	log := logger.With(
		slog.String("op", op))

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s sslmode=disable password=%s search_path=%s",
		cfg.DBConfig.Host,
		cfg.DBConfig.Port,
		cfg.DBConfig.User,
		cfg.DBConfig.Name,
		cfg.DBConfig.Password,
		cfg.DBConfig.Schema,
	)

	conn, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		log.Error("error connecting to database", sl.Err(err))
		panic("error connecting to database")
	}

	log.Debug("sqlx connected to database")

	m := migrator.NewMigrator(conn, log, cfg.DBConfig.Schema)
	if err := m.Run(); err != nil {
		log.Error("error running database migrations", sl.Err(err))
		panic("error running database migrations")
	}

	return &Repository{
		DB:  conn,
		log: log,
	}
}

// Shutdown closes the database connection.
func (r *Repository) Shutdown(ctx context.Context) error {
	op := "Repository.Shutdown"
	select {
	case <-ctx.Done():
		return fmt.Errorf("force exit %s: %w", op, ctx.Err())
	default:
		if err := r.DB.Close(); err != nil {
			return fmt.Errorf("error exit %s: %w", op, err)
		}
		return nil
	}
}
