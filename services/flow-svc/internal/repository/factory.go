package repository

import (
	"fmt"

	"flowtrace/pkg/config"
	"flowtrace/pkg/database"
)

// Типы хранилища истории
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// New создаёт репозиторий по конфигурации. Для postgres нужен открытый db.
func New(cfg config.HistoryConfig, db database.DB) (RunRepository, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryRunRepository(cfg.MaxRuns), nil
	case BackendPostgres, "postgresql":
		if db == nil {
			return nil, fmt.Errorf("postgres history backend requires a database connection")
		}
		return NewPostgresRunRepository(db), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}
