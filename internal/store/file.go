package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FileStore keeps the account map in a single JSON file. Saves write to
// a temp file in the same directory and rename over the target, so a
// crash mid-write never leaves a half-written store behind.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) (Accounts, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		slog.InfoContext(ctx, "Users file not found, starting with empty store", "path", s.path)
		return Accounts{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading users file %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return Accounts{}, nil
	}

	var records map[string]accountRecord
	if err := json.Unmarshal(data, &records); err != nil {
		slog.WarnContext(ctx, "Users file is not valid JSON, treating as empty store",
			"path", s.path, "error", err)
		return Accounts{}, nil
	}
	accounts, err := decodeAccounts(records)
	if err != nil {
		slog.WarnContext(ctx, "Users file has malformed records, treating as empty store",
			"path", s.path, "error", err)
		return Accounts{}, nil
	}
	return accounts, nil
}

func (s *FileStore) Save(ctx context.Context, accounts Accounts) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(encodeAccounts(accounts), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding accounts: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing users file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
