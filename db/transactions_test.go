package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utsav7416/smart-home-controls/internal/keyval"
)

func openTestStore(t *testing.T) *Store {
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGetMissingKey(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get("never-written")
	assert.ErrorIs(t, err, keyval.ErrNotFound)
}

func TestSetThenGet(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Set("smart_home_devices", `{"Kitchen":[]}`))

	v, err := store.Get("smart_home_devices")
	require.NoError(t, err)
	assert.Equal(t, `{"Kitchen":[]}`, v)
}

func TestSetOverwritesLastWriterWins(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Set("k", "first"))
	require.NoError(t, store.Set("k", "second"))

	v, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "second", v)
}

func TestKeysSorted(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Set("b", "2"))
	require.NoError(t, store.Set("a", "1"))

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
}
