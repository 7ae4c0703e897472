package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wishcraft/wishcraft-server/internal/store"
)

func setupDrafts(t *testing.T) *store.Drafts {
	t.Helper()
	d, err := store.OpenDrafts(filepath.Join(t.TempDir(), "drafts"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestDrafts_SaveLoadDelete(t *testing.T) {
	d := setupDrafts(t)
	ctx := context.Background()

	require.NoError(t, d.SaveDraft(ctx, "abc", []byte(`{"step":1}`), time.Hour))

	data, err := d.LoadDraft(ctx, "abc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"step":1}`, string(data))

	require.NoError(t, d.SaveDraft(ctx, "abc", []byte(`{"step":2}`), time.Hour))
	data, err = d.LoadDraft(ctx, "abc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"step":2}`, string(data))

	n, err := d.CountDrafts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, d.DeleteDraft(ctx, "abc"))
	_, err = d.LoadDraft(ctx, "abc")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Deleting twice is fine.
	require.NoError(t, d.DeleteDraft(ctx, "abc"))
}

func TestDrafts_LoadMissing(t *testing.T) {
	d := setupDrafts(t)

	_, err := d.LoadDraft(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDrafts_EmptyID(t *testing.T) {
	d := setupDrafts(t)

	err := d.SaveDraft(context.Background(), "", []byte("x"), time.Hour)
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestDrafts_CancelledContext(t *testing.T) {
	d := setupDrafts(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, d.SaveDraft(ctx, "abc", []byte("x"), time.Hour), context.Canceled)
	_, err := d.LoadDraft(ctx, "abc")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDrafts_Expiry(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for a TTL to pass")
	}
	d := setupDrafts(t)
	ctx := context.Background()

	require.NoError(t, d.SaveDraft(ctx, "short", []byte("x"), time.Second))
	require.NoError(t, d.SaveDraft(ctx, "long", []byte("y"), time.Hour))

	assert.Eventually(t, func() bool {
		_, err := d.LoadDraft(ctx, "short")
		return err != nil
	}, 5*time.Second, 100*time.Millisecond)

	_, err := d.LoadDraft(ctx, "long")
	assert.NoError(t, err)

	n, err := d.CountDrafts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDrafts_InMemory(t *testing.T) {
	d, err := store.OpenDraftsInMemory(nil)
	require.NoError(t, err)
	defer d.Close()

	ctx := context.Background()
	require.NoError(t, d.SaveDraft(ctx, "m", []byte("z"), 0))
	data, err := d.LoadDraft(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, "z", string(data))
}
