package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesDataDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data.db")

	db, err := Open(Config{Path: path})
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")
	db, err := Open(Config{Path: path})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db))

	for _, table := range []string{"read_instances", "books"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		assert.NoError(t, err, "table %q", table)
	}
}

func TestMigrate_BooksRejectZeroTimesRead(t *testing.T) {
	db, err := Open(Config{Path: MemoryPath})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(context.Background(), db))

	_, err = db.Exec(`INSERT INTO books (title, author, times_read) VALUES ('Dune', 'Frank Herbert', 0)`)
	assert.Error(t, err)
}

func TestDefaultConfig_EnvOverride(t *testing.T) {
	t.Setenv("READLOG_DB_PATH", "/tmp/readlog-test.db")
	assert.Equal(t, "/tmp/readlog-test.db", DefaultConfig().Path)
}
