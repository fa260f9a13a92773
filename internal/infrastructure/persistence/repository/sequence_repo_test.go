package repository

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/domain/entity"
)

func TestSequenceRepository_NextNumber(t *testing.T) {
	db := testDB(t)
	projectID := seedProject(t, db)
	repo := NewSequenceRepository(db, zap.NewNop())
	ctx := context.Background()

	t.Run("starts at one and increments", func(t *testing.T) {
		n1, err := repo.NextNumber(ctx, projectID, entity.ClassClaim)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n1)

		n2, err := repo.NextNumber(ctx, projectID, entity.ClassClaim)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n2)
	})

	t.Run("classes count independently", func(t *testing.T) {
		n, err := repo.NextNumber(ctx, projectID, entity.ClassInvoice)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("projects count independently", func(t *testing.T) {
		otherProject := seedProject(t, db)
		n, err := repo.NextNumber(ctx, otherProject, entity.ClassClaim)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestSequenceRepository_NextNumberConcurrent(t *testing.T) {
	db := testDB(t)
	projectID := seedProject(t, db)
	repo := NewSequenceRepository(db, zap.NewNop())

	const callers = 20
	numbers := make([]int64, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n, err := repo.NextNumber(context.Background(), projectID, entity.ClassClaim)
			require.NoError(t, err)
			numbers[i] = n
		}(i)
	}
	wg.Wait()

	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	for i, n := range numbers {
		assert.Equal(t, int64(i+1), n, "numbers must be distinct and gap-free under concurrency")
	}
}
