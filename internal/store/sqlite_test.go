package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housefund/internal/core"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "housefund.db"))
	require.NoError(t, err)
	defer s.Close()

	want := testAccounts(t)
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	owner := got["dass"]
	require.NotNil(t, owner)
	assert.Equal(t, core.RoleOwner, owner.Role)
	require.Len(t, owner.Credits, 1)
	require.Len(t, owner.Debits, 2)
	assert.Equal(t, core.CategoryFood, owner.Debits[0].Category)
	assert.Equal(t, core.CategoryUtilities, owner.Debits[1].Category)
	assert.Equal(t, want["dass"].Balance(), owner.Balance())
}

func TestSQLiteStoreSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "housefund.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(ctx, testAccounts(t)))

	solo, err := core.NewAccount("solo", "hash", core.RoleOwner)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, Accounts{"solo": solo}))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got, "solo")
}

func TestSQLiteStoreEmptyDatabase(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "housefund.db"))
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}
