package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/maxviazov/memo-service/internal/model"
	"github.com/maxviazov/memo-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteLessThan_StopsAtFailingRow(t *testing.T) {
	db, cleanup := openTemp(t)
	defer cleanup()
	repo := NewMemoRepository(db)
	ctx := context.Background()

	for i := 1; i <= 20; i++ {
		_, err := repo.Create(ctx, model.NewMemo(fmt.Sprintf("Sample...%d", i)))
		require.NoError(t, err)
	}

	const pinned = 6
	require.NoError(t, db.Exec(fmt.Sprintf(`CREATE TRIGGER pin_memo BEFORE DELETE ON memos
WHEN old.id = %d BEGIN SELECT RAISE(ABORT, 'memo is pinned'); END`, pinned)).Error)

	deleted, err := repo.DeleteLessThan(ctx, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrConstraint)
	assert.Equal(t, pinned-1, deleted)

	for id := int64(1); id < pinned; id++ {
		_, err := repo.GetByID(ctx, id)
		assert.ErrorIs(t, err, repository.ErrNotFound, "id %d should be gone", id)
	}
	for id := int64(pinned); id <= 20; id++ {
		_, err := repo.GetByID(ctx, id)
		assert.NoError(t, err, "id %d should remain", id)
	}
}

func TestDeleteLessThan_NothingToDelete(t *testing.T) {
	repo, cleanup := makeMemoRepo(t)
	defer cleanup()

	deleted, err := repo.DeleteLessThan(context.Background(), 100)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
