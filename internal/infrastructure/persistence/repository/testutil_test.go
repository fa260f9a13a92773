package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/domain/entity"
	"github.com/sitelink/claimworks/pkg/database"
)

// testDB opens a throwaway sqlite database and applies the schema
func testDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 4,
		MaxIdleConns: 2,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "migrations", "001_initial_schema.sql"))
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	return db
}

// seedProject inserts a project row and returns its ID
func seedProject(t *testing.T, db *database.DB) string {
	t.Helper()

	repo := NewProjectRepository(db, zap.NewNop())
	project := &entity.Project{
		ID:        uuid.NewString(),
		Name:      "Riverside Apartments",
		Status:    "active",
		RiskLevel: entity.RiskLow,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), project))
	return project.ID
}

// seedScopeItem inserts a scope item and returns its ID
func seedScopeItem(t *testing.T, db *database.DB, projectID string) string {
	t.Helper()

	repo := NewScopeRepository(db, zap.NewNop())
	item := &entity.ScopeItem{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Title:     "Structural steel erection",
		Status:    entity.StatusDraft,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), item))
	return item.ID
}

// seedProgrammeItem inserts a programme item and returns its ID
func seedProgrammeItem(t *testing.T, db *database.DB, projectID string) string {
	t.Helper()

	repo := NewProgrammeRepository(db, zap.NewNop())
	item := &entity.ProgrammeItem{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Title:     "Level 3 slab pour",
		Status:    entity.StatusDraft,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), item))
	return item.ID
}
