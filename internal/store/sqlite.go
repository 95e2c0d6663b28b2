package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"housefund/internal/core"
)

// SQLiteStore persists the account map in a SQLite database. Save
// rewrites all rows in one transaction; entry order is preserved by
// autoincrement ids.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (Accounts, error) {
	accounts := Accounts{}

	rows, err := s.db.QueryContext(ctx,
		"SELECT username, password_hash, role FROM accounts")
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var username, hash, role string
		if err := rows.Scan(&username, &hash, &role); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		acct, err := core.NewAccount(username, hash, core.Role(role))
		if err != nil {
			return nil, fmt.Errorf("account %q: %w", username, err)
		}
		accounts[acct.Username] = acct
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}

	if err := s.loadCredits(ctx, accounts); err != nil {
		return nil, err
	}
	if err := s.loadDebits(ctx, accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (s *SQLiteStore) loadCredits(ctx context.Context, accounts Accounts) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT username, source, amount_cents, description, recorded_at FROM credits ORDER BY id")
	if err != nil {
		return fmt.Errorf("querying credits: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var username, source, description, recordedAt string
		var cents int64
		if err := rows.Scan(&username, &source, &cents, &description, &recordedAt); err != nil {
			return fmt.Errorf("scanning credit: %w", err)
		}
		date, err := time.Parse(core.TimeLayout, recordedAt)
		if err != nil {
			return fmt.Errorf("credit for %q: bad date %q: %w", username, recordedAt, err)
		}
		acct, ok := accounts[username]
		if !ok {
			continue
		}
		acct.Credits = append(acct.Credits, core.Credit{
			Source:      source,
			Amount:      core.Money{Cents: cents},
			Description: description,
			Date:        date,
		})
	}
	return rows.Err()
}

func (s *SQLiteStore) loadDebits(ctx context.Context, accounts Accounts) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT username, category, amount_cents, description, recorded_at FROM debits ORDER BY id")
	if err != nil {
		return fmt.Errorf("querying debits: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var username, category, description, recordedAt string
		var cents int64
		if err := rows.Scan(&username, &category, &cents, &description, &recordedAt); err != nil {
			return fmt.Errorf("scanning debit: %w", err)
		}
		date, err := time.Parse(core.TimeLayout, recordedAt)
		if err != nil {
			return fmt.Errorf("debit for %q: bad date %q: %w", username, recordedAt, err)
		}
		acct, ok := accounts[username]
		if !ok {
			continue
		}
		acct.Debits = append(acct.Debits, core.Debit{
			Category:    core.Category(category),
			Amount:      core.Money{Cents: cents},
			Description: description,
			Date:        date,
		})
	}
	return rows.Err()
}

func (s *SQLiteStore) Save(ctx context.Context, accounts Accounts) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"credits", "debits", "accounts"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	usernames := make([]string, 0, len(accounts))
	for username := range accounts {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)

	for _, username := range usernames {
		acct := accounts[username]
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO accounts (username, password_hash, role) VALUES (?, ?, ?)",
			acct.Username, acct.PasswordHash, string(acct.Role)); err != nil {
			return fmt.Errorf("inserting account %q: %w", username, err)
		}
		for _, c := range acct.Credits {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO credits (username, source, amount_cents, description, recorded_at) VALUES (?, ?, ?, ?, ?)",
				acct.Username, c.Source, c.Amount.Cents, c.Description, c.Date.Format(core.TimeLayout)); err != nil {
				return fmt.Errorf("inserting credit for %q: %w", username, err)
			}
		}
		for _, d := range acct.Debits {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO debits (username, category, amount_cents, description, recorded_at) VALUES (?, ?, ?, ?, ?)",
				acct.Username, string(d.Category), d.Amount.Cents, d.Description, d.Date.Format(core.TimeLayout)); err != nil {
				return fmt.Errorf("inserting debit for %q: %w", username, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
