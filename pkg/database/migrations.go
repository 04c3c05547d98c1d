package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"flowtrace/pkg/logger"
)

// MigrationStatus состояние одной миграции
type MigrationStatus struct {
	Version int64
	Path    string
	Applied bool
}

// Migrator применяет SQL миграции goose поверх пула pgx
type Migrator struct {
	db       *sql.DB
	provider *goose.Provider
}

// NewMigrator создаёт мигратор. fsys содержит *.sql файлы в корне.
func NewMigrator(pool *pgxpool.Pool, fsys fs.FS) (*Migrator, error) {
	db := stdlib.OpenDBFromPool(pool)

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}

	return &Migrator{db: db, provider: provider}, nil
}

// Up применяет все новые миграции
func (m *Migrator) Up(ctx context.Context) error {
	results, err := m.provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, r := range results {
		logger.Log.Info("migration applied", "version", r.Source.Version, "path", r.Source.Path, "duration", r.Duration)
	}
	return nil
}

// Down откатывает последнюю миграцию
func (m *Migrator) Down(ctx context.Context) error {
	r, err := m.provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}
	logger.Log.Info("migration rolled back", "version", r.Source.Version)
	return nil
}

// Status состояние всех известных миграций
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration status: %w", err)
	}

	out := make([]MigrationStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, MigrationStatus{
			Version: s.Source.Version,
			Path:    s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}

// Version текущая версия схемы
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	return m.provider.GetDBVersion(ctx)
}

// Close закрывает sql.DB обёртку, пул остаётся открытым
func (m *Migrator) Close() error {
	return m.db.Close()
}

// RunMigrations применяет миграции, если autoMigrate включён
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, autoMigrate bool, fsys fs.FS) error {
	if !autoMigrate {
		logger.Log.Info("auto-migration is disabled")
		return nil
	}

	m, err := NewMigrator(pool, fsys)
	if err != nil {
		return err
	}
	defer m.Close()

	return m.Up(ctx)
}
