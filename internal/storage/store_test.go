package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SaveAndGetLocation(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.SaveLocation(PageSearch, "q=climate&sortBy=publishedAt&page=1&page_size=10"))

	got, err := store.GetLocation(PageSearch)
	require.NoError(t, err)
	assert.Equal(t, "q=climate&sortBy=publishedAt&page=1&page_size=10", got)
}

func TestStore_GetLocation_Missing(t *testing.T) {
	store := setupTestStore(t)

	got, err := store.GetLocation(PageHeadlines)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_SaveLocation_LastWriterWins(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.SaveLocation(PageSearch, "q=a&page=1"))
	require.NoError(t, store.SaveLocation(PageSearch, "?q=b&page=2"))
	require.NoError(t, store.SaveLocation(PageSearch, "?q=b&page=2"))

	got, err := store.GetLocation(PageSearch)
	require.NoError(t, err)
	assert.Equal(t, "q=b&page=2", got)
}

func TestStore_PagesAreIndependent(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.SaveLocation(PageSearch, "q=rates"))
	require.NoError(t, store.SaveLocation(PageHeadlines, "page=2&category=sports"))

	locs, err := store.Locations()
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, "q=rates", locs[PageSearch].Query)
	assert.Equal(t, "page=2&category=sports", locs[PageHeadlines].Query)
	assert.WithinDuration(t, time.Now(), locs[PageSearch].UpdatedAt, time.Minute)

	require.NoError(t, store.ClearLocation(PageSearch))
	got, err := store.GetLocation(PageSearch)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = store.GetLocation(PageHeadlines)
	require.NoError(t, err)
	assert.Equal(t, "page=2&category=sports", got)
}

func TestStore_Meta(t *testing.T) {
	store := setupTestStore(t)

	v, err := store.GetMeta(MetaVersion)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, store.SetMeta("theme", "dark"))
	v, err = store.GetMeta("theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", v)

	require.NoError(t, store.TouchLastRun("1.2.3"))
	v, err = store.GetMeta(MetaVersion)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v)

	lastRun, err := store.GetMeta(MetaLastRun)
	require.NoError(t, err)
	ts, err := time.Parse(time.RFC3339, lastRun)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveLocation(PageSearch, "q=persisted"))
	require.NoError(t, store.Close())

	store, err = NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.GetLocation(PageSearch)
	require.NoError(t, err)
	assert.Equal(t, "q=persisted", got)
}

func TestNewStore_LockedFileTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locked.db")

	first, err := NewStore(path)
	require.NoError(t, err)
	defer first.Close()

	_, err = NewStoreWithTimeout(path, 50*time.Millisecond)
	assert.Error(t, err)
}
