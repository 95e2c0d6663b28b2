package worker

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housefund/internal/core"
	"housefund/internal/events"
	"housefund/internal/store"
)

func seedStore(t *testing.T) store.Store {
	t.Helper()
	owner, err := core.NewAccount("dass", "hash", core.RoleOwner)
	require.NoError(t, err)
	now, err := time.Parse(core.TimeLayout, "2026-04-01 08:00:00")
	require.NoError(t, err)
	require.NoError(t, owner.AddCredit("salary", core.Money{Cents: 200000}, "april pay", now))
	require.NoError(t, owner.AddDebit(core.CategoryFood, core.Money{Cents: 1550}, "lunch", now.Add(time.Hour)))
	require.NoError(t, owner.AddDebit(core.CategoryHousing, core.Money{Cents: 90000}, "rent", now.Add(2*time.Hour)))

	st := store.NewMemoryStore()
	require.NoError(t, st.Save(context.Background(), store.Accounts{"dass": owner}))
	return st
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(seedStore(t), dir)
	require.NoError(t, e.Export(context.Background()))

	ledger := readCSV(t, filepath.Join(dir, "ledger.csv"))
	require.Len(t, ledger, 5)
	assert.Equal(t, []string{"type", "label", "amount", "description", "date"}, ledger[0])
	assert.Equal(t, []string{"credit", "salary", "2000.00", "april pay", "2026-04-01 08:00:00"}, ledger[1])
	assert.Equal(t, []string{"debit", "Food", "15.50", "lunch", "2026-04-01 09:00:00"}, ledger[2])
	assert.Equal(t, "balance", ledger[4][0])
	assert.Equal(t, "1084.50", ledger[4][2])

	categories := readCSV(t, filepath.Join(dir, "categories.csv"))
	require.Len(t, categories, 3)
	assert.Equal(t, []string{"Food", "15.50"}, categories[1])
	assert.Equal(t, []string{"Housing", "900.00"}, categories[2])

	months := readCSV(t, filepath.Join(dir, "months.csv"))
	require.Len(t, months, 2)
	assert.Equal(t, []string{"2026-04", "915.50"}, months[1])
}

func TestExportWithoutOwner(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(store.NewMemoryStore(), dir)
	require.NoError(t, e.Export(context.Background()))

	_, err := os.Stat(filepath.Join(dir, "ledger.csv"))
	assert.True(t, os.IsNotExist(err), "no files should be written without an owner")
}

func TestHandleLedgerEntry(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(seedStore(t), dir)

	msg := &events.LedgerEntryMessage{Username: "dass", Kind: events.KindDebit, Label: "Food"}
	require.NoError(t, e.HandleLedgerEntry(context.Background(), msg))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
