// Package backend selects and wires the account store implementation
// from configuration.
package backend

import (
	"fmt"
	"log/slog"

	"housefund/internal/config"
	"housefund/internal/store"
)

// Type identifies a store implementation.
type Type string

const (
	FileBackend   Type = "file"
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

func (t Type) IsValid() bool {
	switch t {
	case FileBackend, SQLiteBackend, MemoryBackend:
		return true
	}
	return false
}

// Result bundles the opened store with its cleanup function.
type Result struct {
	Store   store.Store
	Cleanup func() error
}

// Open creates the store named by the configuration.
func Open(cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch t {
	case FileBackend:
		s := store.NewFileStore(cfg.UsersFile)
		logger.Info("Initialized file backend", "path", cfg.UsersFile)
		return &Result{Store: s, Cleanup: s.Close}, nil

	case SQLiteBackend:
		s, err := store.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: s, Cleanup: s.Close}, nil

	case MemoryBackend:
		s := store.NewMemoryStore()
		logger.Warn("Initialized memory backend, data is lost on restart")
		return &Result{Store: s, Cleanup: s.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", t)
	}
}
