package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/maxviazov/memo-service/internal/repository"
	"github.com/maxviazov/memo-service/internal/repository/contract"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// openTemp opens a fresh database file per test so ids start at 1.
func openTemp(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "memo.db"), zerolog.Nop())
	require.NoError(t, err)
	return db, func() { _ = Close(db) }
}

func makeMemoRepo(t *testing.T) (repository.MemoRepository, func()) {
	db, cleanup := openTemp(t)
	return NewMemoRepository(db), cleanup
}

func makeTx(t *testing.T) (repository.TxManager, repository.MemoRepository, func()) {
	db, cleanup := openTemp(t)
	return NewTxManager(db), NewMemoRepository(db), cleanup
}

func makePinger(t *testing.T) (repository.Pinger, func()) {
	db, cleanup := openTemp(t)
	return NewPinger(db), cleanup
}

func TestMemoRepository_SQLiteContract(t *testing.T) {
	contract.RunMemoRepositoryContract(t, makeMemoRepo)
}

func TestTxManager_SQLiteContract(t *testing.T) {
	contract.RunTxManagerContract(t, makeTx)
}

func TestPinger_SQLiteContract(t *testing.T) {
	contract.RunPingerContract(t, makePinger)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("", zerolog.Nop())
	require.Error(t, err)
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memo.db")
	db, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, Close(db))

	db, err = Open(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, Close(db))
}
