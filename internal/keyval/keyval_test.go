package keyval

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetMissing(t *testing.T) {
	m := NewMemory()
	_, err := m.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySetGet(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set("k", "v"))

	v, err := m.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	f := NewFile(path)

	_, err := f.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.Set("a", "1"))
	require.NoError(t, f.Set("b", "2"))

	// A separate handle sees the same document.
	other := NewFile(path)
	v, err := other.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestBrokerNotifiesSubscribersAfterPersist(t *testing.T) {
	b := NewBroker(NewMemory())

	var seen []string
	cancel := b.Subscribe("k", func(value string) {
		// The store already holds the new value when the signal fires.
		stored, err := b.Get("k")
		require.NoError(t, err)
		assert.Equal(t, value, stored)
		seen = append(seen, value)
	})
	defer cancel()

	require.NoError(t, b.Set("k", "one"))
	require.NoError(t, b.Set("k", "two"))

	assert.Equal(t, []string{"one", "two"}, seen)
}

func TestBrokerSubscribeIsKeyScoped(t *testing.T) {
	b := NewBroker(NewMemory())

	calls := 0
	cancel := b.Subscribe("watched", func(string) { calls++ })
	defer cancel()

	require.NoError(t, b.Set("other", "x"))
	assert.Equal(t, 0, calls)
}

func TestBrokerCancelStopsNotifications(t *testing.T) {
	b := NewBroker(NewMemory())

	calls := 0
	cancel := b.Subscribe("k", func(string) { calls++ })

	require.NoError(t, b.Set("k", "one"))
	cancel()
	cancel() // safe to call twice
	require.NoError(t, b.Set("k", "two"))

	assert.Equal(t, 1, calls)
}

func TestBrokerPollObservesWrites(t *testing.T) {
	b := NewBroker(NewMemory())
	require.NoError(t, b.Set("k", "v1"))

	got := make(chan string, 16)
	cancel := b.Poll("k", 5*time.Millisecond, func(value string, err error) {
		if err == nil {
			got <- value
		}
	})
	defer cancel()

	select {
	case v := <-got:
		assert.Equal(t, "v1", v)
	case <-time.After(time.Second):
		t.Fatal("poller never observed the stored value")
	}
}

func TestBrokerPollReportsMissingKey(t *testing.T) {
	b := NewBroker(NewMemory())

	errs := make(chan error, 16)
	cancel := b.Poll("missing", 5*time.Millisecond, func(_ string, err error) {
		errs <- err
	})
	defer cancel()

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrNotFound)
	case <-time.After(time.Second):
		t.Fatal("poller never ticked")
	}
}
