// Package store persists the full username→account map behind a small
// Load/Save contract. Saves always rewrite the whole map; concurrent
// processes get last-writer-wins semantics.
package store

import (
	"context"

	"housefund/internal/core"
)

// Accounts is the full persisted state, keyed by username.
type Accounts map[string]*core.Account

// Store is the durable account store. Load recovers an absent or
// unparseable backing store as an empty map instead of failing.
type Store interface {
	Load(ctx context.Context) (Accounts, error)
	Save(ctx context.Context, accounts Accounts) error
	Close() error
}

// Clone deep-copies the map so callers can mutate their copy freely.
func (a Accounts) Clone() Accounts {
	out := make(Accounts, len(a))
	for username, acct := range a {
		copied := *acct
		copied.Credits = append([]core.Credit(nil), acct.Credits...)
		copied.Debits = append([]core.Debit(nil), acct.Debits...)
		out[username] = &copied
	}
	return out
}
