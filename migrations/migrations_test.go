package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(FS, Dir+"/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, name := range files {
		data, err := fs.ReadFile(FS, name)
		require.NoError(t, err)
		body := string(data)
		assert.True(t, strings.Contains(body, "-- +goose Up"), "%s has no Up section", name)
		assert.True(t, strings.Contains(body, "-- +goose Down"), "%s has no Down section", name)
	}
}

func TestCreateMemosSchema(t *testing.T) {
	data, err := fs.ReadFile(FS, Dir+"/00001_create_memos.sql")
	require.NoError(t, err)
	body := string(data)
	assert.Contains(t, body, "CREATE TABLE")
	assert.Contains(t, body, "memo_text")
	assert.Contains(t, body, "200")
}
