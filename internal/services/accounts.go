// Package services orchestrates account and ledger operations over the
// store and the AMQP publisher.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"housefund/internal/auth"
	"housefund/internal/core"
	"housefund/internal/events"
	"housefund/internal/store"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrAlreadyExists      = errors.New("username already taken")
	ErrNotFound           = errors.New("account not found")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrReadOnly           = errors.New("account has read-only access")
	ErrNoOwner            = errors.New("no owner account registered")
)

// Publisher is the slice of the AMQP client the service needs.
type Publisher interface {
	PublishLedgerEntry(ctx context.Context, msg *events.LedgerEntryMessage) error
}

// AccountService owns every load-modify-save cycle against the store.
// The mutex serializes writers so two concurrent requests cannot lose
// each other's entries.
type AccountService struct {
	mu    sync.Mutex
	store store.Store
	pub   Publisher
	owner string
	now   func() time.Time
}

// NewAccountService creates the service. The owner username decides
// which registration gets the writable account; pub may be nil when no
// broker is configured.
func NewAccountService(st store.Store, pub Publisher, owner string) *AccountService {
	return &AccountService{
		store: st,
		pub:   pub,
		owner: strings.TrimSpace(owner),
		now:   time.Now,
	}
}

// AdoptOwner promotes the account matching the configured owner
// username when no owner exists yet. Legacy user files predate the role
// field and load everyone as a viewer; this runs once at startup so the
// original privileged account keeps its write access.
func (s *AccountService) AdoptOwner(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}
	for _, acct := range accounts {
		if acct.Role == core.RoleOwner {
			return nil
		}
	}
	acct, ok := accounts[s.owner]
	if !ok {
		return nil
	}
	acct.Role = core.RoleOwner
	if err := s.store.Save(ctx, accounts); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}
	slog.InfoContext(ctx, "Promoted configured owner account", "username", acct.Username)
	return nil
}

// Register creates a new account. The account matching the configured
// owner username becomes the single writable one; everyone else gets a
// viewer account.
func (s *AccountService) Register(ctx context.Context, username, password, confirm string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrInvalidInput
	}
	if password != confirm {
		return ErrPasswordMismatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}
	if _, exists := accounts[username]; exists {
		return ErrAlreadyExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	role := core.RoleViewer
	if username == s.owner {
		role = core.RoleOwner
	}
	acct, err := core.NewAccount(username, hash, role)
	if err != nil {
		return ErrInvalidInput
	}
	accounts[acct.Username] = acct

	if err := s.store.Save(ctx, accounts); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}

	slog.InfoContext(ctx, "Registered account", "username", acct.Username, "role", acct.Role)
	return nil
}

// Login verifies credentials. Accounts still carrying a legacy digest
// are upgraded to bcrypt on the first successful login.
func (s *AccountService) Login(ctx context.Context, username, password string) (*core.Account, error) {
	username = strings.TrimSpace(username)

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	acct, ok := accounts[username]
	if !ok || !auth.CheckPassword(password, acct.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if auth.NeedsRehash(acct.PasswordHash) {
		if hash, err := auth.HashPassword(password); err == nil {
			acct.PasswordHash = hash
			if err := s.store.Save(ctx, accounts); err != nil {
				slog.WarnContext(ctx, "Failed to persist password hash upgrade",
					"username", username, "error", err)
			} else {
				slog.InfoContext(ctx, "Upgraded legacy password hash", "username", username)
			}
		}
	}

	return acct, nil
}

// ResetPassword overwrites the stored hash for an existing account.
// There is no identity verification beyond knowing the username, which
// only works because the fund is shared within one household.
func (s *AccountService) ResetPassword(ctx context.Context, username, newPassword, confirm string) error {
	username = strings.TrimSpace(username)
	if username == "" || newPassword == "" {
		return ErrInvalidInput
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}
	acct, ok := accounts[username]
	if !ok {
		return ErrNotFound
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	acct.PasswordHash = hash

	if err := s.store.Save(ctx, accounts); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}

	slog.WarnContext(ctx, "Password reset without identity verification", "username", username)
	return nil
}

// AddCredit appends a credit to the actor's ledger and returns the new
// balance. Only the owner account may write.
func (s *AccountService) AddCredit(ctx context.Context, actor, source string, amount core.Money, description string) (core.Money, error) {
	var entry core.Credit
	balance, err := s.appendEntry(ctx, actor, func(acct *core.Account) error {
		if err := acct.AddCredit(source, amount, description, s.now()); err != nil {
			return err
		}
		entry = acct.Credits[len(acct.Credits)-1]
		return nil
	})
	if err != nil {
		return core.Money{}, err
	}

	s.publish(ctx, events.NewCreditMessage(actor, entry))
	return balance, nil
}

// AddDebit appends an expense to the actor's ledger and returns the new
// balance, which may be negative. Only the owner account may write.
func (s *AccountService) AddDebit(ctx context.Context, actor string, category core.Category, amount core.Money, description string) (core.Money, error) {
	var entry core.Debit
	balance, err := s.appendEntry(ctx, actor, func(acct *core.Account) error {
		if err := acct.AddDebit(category, amount, description, s.now()); err != nil {
			return err
		}
		entry = acct.Debits[len(acct.Debits)-1]
		return nil
	})
	if err != nil {
		return core.Money{}, err
	}

	if balance.Negative() {
		slog.WarnContext(ctx, "Balance went negative",
			"username", actor, "balance_cents", balance.Cents)
	}
	s.publish(ctx, events.NewDebitMessage(actor, entry))
	return balance, nil
}

func (s *AccountService) appendEntry(ctx context.Context, actor string, mutate func(*core.Account) error) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.store.Load(ctx)
	if err != nil {
		return core.Money{}, fmt.Errorf("load accounts: %w", err)
	}
	acct, ok := accounts[actor]
	if !ok {
		return core.Money{}, ErrNotFound
	}
	if acct.Role != core.RoleOwner {
		return core.Money{}, ErrReadOnly
	}
	if err := mutate(acct); err != nil {
		return core.Money{}, err
	}
	if err := s.store.Save(ctx, accounts); err != nil {
		return core.Money{}, fmt.Errorf("save accounts: %w", err)
	}
	return acct.Balance(), nil
}

func (s *AccountService) publish(ctx context.Context, msg *events.LedgerEntryMessage) {
	if s.pub == nil {
		return
	}
	// Entry is already persisted; a failed publish only delays the export
	if err := s.pub.PublishLedgerEntry(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger entry message",
			"username", msg.Username, "kind", msg.Kind, "error", err)
	}
}

// Account returns the stored account for a username.
func (s *AccountService) Account(ctx context.Context, username string) (*core.Account, error) {
	accounts, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	acct, ok := accounts[username]
	if !ok {
		return nil, ErrNotFound
	}
	return acct, nil
}

// Ledger returns the owner's account, the single ledger every user
// sees.
func (s *AccountService) Ledger(ctx context.Context) (*core.Account, error) {
	accounts, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	for _, acct := range accounts {
		if acct.Role == core.RoleOwner {
			return acct, nil
		}
	}
	return nil, ErrNoOwner
}

// Credits returns the owner's credits, optionally filtered by source.
func (s *AccountService) Credits(ctx context.Context, source string) ([]core.Credit, error) {
	ledger, err := s.Ledger(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.FilterCredits(source), nil
}

// Debits returns the owner's expenses filtered by optional category and
// month ("YYYY-MM").
func (s *AccountService) Debits(ctx context.Context, category core.Category, month string) ([]core.Debit, error) {
	ledger, err := s.Ledger(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.FilterDebits(category, month), nil
}

// CategoryTotals returns total spending per category for charts.
func (s *AccountService) CategoryTotals(ctx context.Context) ([]core.CategoryAmount, error) {
	ledger, err := s.Ledger(ctx)
	if err != nil {
		return nil, err
	}
	return core.SumByCategory(ledger.Debits), nil
}

// MonthlyTotals returns total spending per calendar month for charts.
func (s *AccountService) MonthlyTotals(ctx context.Context) ([]core.MonthAmount, error) {
	ledger, err := s.Ledger(ctx)
	if err != nil {
		return nil, err
	}
	return core.SumByMonth(ledger.Debits), nil
}

func (s *AccountService) loadSnapshot(ctx context.Context) (store.Accounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accounts, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	return accounts, nil
}

// Close releases the store and publisher connections.
func (s *AccountService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if closer, ok := s.pub.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close account service: %v", errs)
	}
	return nil
}
