package factory

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemory(t *testing.T) {
	store, err := Open(BackendMemory, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	assert.NotNil(t, store)
}

func TestOpenSQLite(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "bookings.db")
	store, err := Open(BackendSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	assert.NotNil(t, store)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("postgres", "")
	assert.Error(t, err)
}
