package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/application/port"
)

func TestLinkRepository_Reconcile(t *testing.T) {
	db := testDB(t)
	projectID := seedProject(t, db)
	scopeID := seedScopeItem(t, db, projectID)
	progA := seedProgrammeItem(t, db, projectID)
	progB := seedProgrammeItem(t, db, projectID)
	progC := seedProgrammeItem(t, db, projectID)

	repo := NewLinkRepository(db, zap.NewNop())
	ctx := context.Background()

	t.Run("inserts desired links", func(t *testing.T) {
		err := repo.Reconcile(ctx, port.RelScopeProgramme, scopeID, []string{progA, progB})
		require.NoError(t, err)

		ids, err := repo.LinkedIDs(ctx, port.RelScopeProgramme, scopeID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{progA, progB}, ids)
	})

	t.Run("surviving links keep their created_at", func(t *testing.T) {
		var before time.Time
		err := db.QueryRow(
			`SELECT created_at FROM scope_programme_links WHERE scope_item_id = ? AND programme_item_id = ?`,
			scopeID, progA).Scan(&before)
		require.NoError(t, err)

		// swap B for C; A survives
		err = repo.Reconcile(ctx, port.RelScopeProgramme, scopeID, []string{progA, progC})
		require.NoError(t, err)

		var after time.Time
		err = db.QueryRow(
			`SELECT created_at FROM scope_programme_links WHERE scope_item_id = ? AND programme_item_id = ?`,
			scopeID, progA).Scan(&after)
		require.NoError(t, err)
		assert.Equal(t, before, after)

		ids, err := repo.LinkedIDs(ctx, port.RelScopeProgramme, scopeID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{progA, progC}, ids)
	})

	t.Run("duplicate desired ids collapse", func(t *testing.T) {
		err := repo.Reconcile(ctx, port.RelScopeProgramme, scopeID, []string{progA, progA, progA})
		require.NoError(t, err)

		ids, err := repo.LinkedIDs(ctx, port.RelScopeProgramme, scopeID)
		require.NoError(t, err)
		assert.Equal(t, []string{progA}, ids)
	})

	t.Run("empty desired removes everything", func(t *testing.T) {
		err := repo.Reconcile(ctx, port.RelScopeProgramme, scopeID, nil)
		require.NoError(t, err)

		ids, err := repo.LinkedIDs(ctx, port.RelScopeProgramme, scopeID)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("reversed kind reads the same table", func(t *testing.T) {
		err := repo.Reconcile(ctx, port.RelScopeProgramme, scopeID, []string{progB})
		require.NoError(t, err)

		ids, err := repo.LinkedIDs(ctx, port.RelProgrammeScope, progB)
		require.NoError(t, err)
		assert.Equal(t, []string{scopeID}, ids)
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		err := repo.Reconcile(ctx, port.RelationKind("bogus"), scopeID, []string{progA})
		assert.Error(t, err)
	})
}

func TestLinkRepository_ReconcileIdempotent(t *testing.T) {
	db := testDB(t)
	projectID := seedProject(t, db)
	scopeID := seedScopeItem(t, db, projectID)
	progA := seedProgrammeItem(t, db, projectID)
	progB := seedProgrammeItem(t, db, projectID)

	repo := NewLinkRepository(db, zap.NewNop())
	ctx := context.Background()
	desired := []string{progA, progB}

	require.NoError(t, repo.Reconcile(ctx, port.RelScopeProgramme, scopeID, desired))
	first, err := repo.LinkedIDs(ctx, port.RelScopeProgramme, scopeID)
	require.NoError(t, err)

	require.NoError(t, repo.Reconcile(ctx, port.RelScopeProgramme, scopeID, desired))
	second, err := repo.LinkedIDs(ctx, port.RelScopeProgramme, scopeID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLinkRepository_Clear(t *testing.T) {
	db := testDB(t)
	projectID := seedProject(t, db)
	scopeID := seedScopeItem(t, db, projectID)
	progA := seedProgrammeItem(t, db, projectID)

	repo := NewLinkRepository(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Reconcile(ctx, port.RelScopeProgramme, scopeID, []string{progA}))
	require.NoError(t, repo.Clear(ctx, port.RelScopeProgramme, scopeID))

	ids, err := repo.LinkedIDs(ctx, port.RelScopeProgramme, scopeID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
