package sqlexec

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := Open(MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestOpen_Pragmas(t *testing.T) {
	e := openTestEngine(t)

	synchronous, err := e.pragma("synchronous")
	require.NoError(t, err)
	assert.Equal(t, "0", synchronous)

	tempStore, err := e.pragma("temp_store")
	require.NoError(t, err)
	assert.Equal(t, "2", tempStore)
}

func TestOpen_SchemaApplied(t *testing.T) {
	e := openTestEngine(t)

	rows, err := e.Query(context.Background(), "SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	require.NoError(t, err)
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		tables = append(tables, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"sales"}, tables)
}

func TestOpen_FileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.db")

	e, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, e.Close())

	// The schema is idempotent.
	e, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, e.Close())
}

func TestClose_NilDB(t *testing.T) {
	var e Engine
	assert.NoError(t, e.Close())
}
