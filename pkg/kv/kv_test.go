package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, KeyAuthToken, "first"))
	require.NoError(t, s.Set(ctx, KeyAuthToken, "second"))
	v, ok, err := s.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", v)

	require.NoError(t, SetJSON(ctx, s, KeyFavoriteJobs, []int64{3, 1}))
	var favs []int64
	found, err := GetJSON(ctx, s, KeyFavoriteJobs, &favs)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []int64{3, 1}, favs)

	require.NoError(t, s.Delete(ctx, KeyAuthToken))
	_, ok, _ = s.Get(ctx, KeyAuthToken)
	assert.False(t, ok)
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rise.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	exerciseStore(t, s)

	require.NoError(t, s.Set(context.Background(), KeyDraft, `{"step1":{}}`))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()
	v, ok, err := reopened.Get(context.Background(), KeyDraft)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"step1":{}}`, v)
}

func TestGetJSONMissingKey(t *testing.T) {
	var v map[string]string
	found, err := GetJSON(context.Background(), NewMemory(), "nope", &v)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, v)
}
