// Package backend selects and constructs the record store implementation
// from configuration.
package backend

import (
	"fmt"

	"budgetflow/internal/config"
	"budgetflow/internal/log"
	"budgetflow/internal/store"
	"budgetflow/internal/store/memory"
	"budgetflow/internal/store/sqlite"
)

type Type string

const (
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc releases resources the backend holds.
type CleanupFunc func() error

// Result bundles the store with its cleanup. Cleanup is never nil.
type Result struct {
	Store   store.Store
	Cleanup CleanupFunc
}

// New builds the record store named by cfg.DataBackend.
func New(cfg *config.Config, logger *log.Logger) (*Result, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	blog := logger.WithComponent(log.ComponentBackend)

	backendType := Type(cfg.DataBackend)
	switch backendType {
	case MemoryBackend:
		blog.Info("using in-memory record store")
		return &Result{
			Store:   memory.New(),
			Cleanup: func() error { return nil },
		}, nil

	case SQLiteBackend:
		repo, err := sqlite.New(cfg.SQLiteDBPath, logger)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		blog.Info("using sqlite record store", "path", cfg.SQLiteDBPath)
		return &Result{
			Store:   repo,
			Cleanup: repo.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.DataBackend)
	}
}
