// Package worker exports the owner ledger to CSV files. It runs in the
// housefund-worker binary, driven by AMQP ledger entry messages with a
// periodic full export as backup in case messages are lost.
package worker

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"housefund/internal/core"
	"housefund/internal/events"
	"housefund/internal/store"
)

// Exporter rewrites the CSV snapshots of the owner ledger.
type Exporter struct {
	store store.Store
	dir   string
}

func NewExporter(st store.Store, dir string) *Exporter {
	return &Exporter{store: st, dir: dir}
}

// HandleLedgerEntry processes a single ledger entry message. The message
// only signals that something changed; the export always re-reads the
// full ledger from the store.
func (e *Exporter) HandleLedgerEntry(ctx context.Context, msg *events.LedgerEntryMessage) error {
	slog.InfoContext(ctx, "Processing ledger entry message",
		"username", msg.Username,
		"kind", msg.Kind,
		"amount_cents", msg.AmountCents)

	return e.Export(ctx)
}

// Export writes ledger.csv, categories.csv and months.csv for the owner
// account. Without an owner there is nothing to export.
func (e *Exporter) Export(ctx context.Context) error {
	accounts, err := e.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}

	var owner *core.Account
	for _, acct := range accounts {
		if acct.Role == core.RoleOwner {
			owner = acct
			break
		}
	}
	if owner == nil {
		slog.WarnContext(ctx, "No owner account to export, skipping")
		return nil
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	if err := e.writeLedger(owner); err != nil {
		return err
	}
	if err := e.writeCategories(owner); err != nil {
		return err
	}
	if err := e.writeMonths(owner); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Exported owner ledger",
		"username", owner.Username,
		"credits", len(owner.Credits),
		"debits", len(owner.Debits),
		"dir", e.dir)
	return nil
}

func (e *Exporter) writeLedger(owner *core.Account) error {
	rows := [][]string{{"type", "label", "amount", "description", "date"}}
	for _, c := range owner.Credits {
		rows = append(rows, []string{
			"credit", c.Source, c.Amount.String(), c.Description, c.Date.Format(core.TimeLayout),
		})
	}
	for _, d := range owner.Debits {
		rows = append(rows, []string{
			"debit", string(d.Category), d.Amount.String(), d.Description, d.Date.Format(core.TimeLayout),
		})
	}
	rows = append(rows, []string{"balance", "", owner.Balance().String(), "", ""})
	return e.writeCSV("ledger.csv", rows)
}

func (e *Exporter) writeCategories(owner *core.Account) error {
	rows := [][]string{{"category", "total"}}
	for _, ca := range core.SumByCategory(owner.Debits) {
		rows = append(rows, []string{string(ca.Category), ca.Amount.String()})
	}
	return e.writeCSV("categories.csv", rows)
}

func (e *Exporter) writeMonths(owner *core.Account) error {
	rows := [][]string{{"month", "total"}}
	for _, ma := range core.SumByMonth(owner.Debits) {
		rows = append(rows, []string{ma.Month, ma.Amount.String()})
	}
	return e.writeCSV("months.csv", rows)
}

// writeCSV writes through a temp file and rename, like the account
// store, so readers never see a partial export.
func (e *Exporter) writeCSV(name string, rows [][]string) error {
	tmp, err := os.CreateTemp(e.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file for %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(e.dir, name)); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}
