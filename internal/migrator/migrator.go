package migrator

import (
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator applies the embedded SQL migrations in lexical order, tracking
// applied versions in a schema_migrations table.
type Migrator struct {
	db     *sqlx.DB
	log    *slog.Logger
	schema string
}

// NewMigrator creates a new migrator instance.
func NewMigrator(db *sqlx.DB, log *slog.Logger, schema string) *Migrator {
	return &Migrator{
		db:     db,
		log:    log,
		schema: schema,
	}
}

// Run executes all pending migrations.
func (m *Migrator) Run() error {
	op := "migrator.Run"
	m.log.Info("starting database migrations")

	if err := m.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("%s: create migrations table: %w", op, err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("%s: read migrations dir: %w", op, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		if err := m.apply(file); err != nil {
			return fmt.Errorf("%s: migration %s: %w", op, file, err)
		}
	}

	m.log.Info("database migrations completed")
	return nil
}

func (m *Migrator) ensureMigrationsTable() error {
	if _, err := m.db.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, m.schema)); err != nil {
		return err
	}

	_, err := m.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`, m.schema))
	return err
}

func (m *Migrator) apply(filename string) error {
	version := strings.TrimSuffix(filename, ".sql")

	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s.schema_migrations WHERE version = $1`, m.schema)
	if err := m.db.Get(&count, query, version); err != nil {
		return err
	}
	if count > 0 {
		m.log.Debug("migration already applied", slog.String("version", version))
		return nil
	}

	m.log.Info("applying migration", slog.String("version", version))

	content, err := migrationsFS.ReadFile("migrations/" + filename)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}

	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec(fmt.Sprintf("SET search_path TO %s, public", m.schema)); err != nil {
		return fmt.Errorf("set search_path: %w", err)
	}

	if _, err = tx.Exec(string(content)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}

	insertQuery := fmt.Sprintf(
		`INSERT INTO %s.schema_migrations (version) VALUES ($1)`, m.schema)
	if _, err = tx.Exec(insertQuery, version); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	m.log.Info("migration applied", slog.String("version", version))
	return nil
}
