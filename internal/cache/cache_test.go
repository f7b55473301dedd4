package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGetOverwrite(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, ok, err := s.Get(ctx, KeyBoard)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, KeyBoard, `{"v":1}`))
	require.NoError(t, s.Put(ctx, KeyBoard, `{"v":2}`))

	got, ok, err := s.Get(ctx, KeyBoard)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"v":2}`, got)

	require.NoError(t, s.Delete(ctx, KeyBoard))
	require.NoError(t, s.Delete(ctx, KeyBoard))
	_, ok, err = s.Get(ctx, KeyBoard)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, KeyProfile, "saved"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got, ok, err := s.Get(ctx, KeyProfile)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "saved", got)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	type payload struct {
		Names []string `json:"names"`
	}

	var out payload
	ok, err := GetJSON(ctx, s, "missing", &out)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, PutJSON(ctx, s, "p", payload{Names: []string{"a", "b"}}))
	ok, err = GetJSON(ctx, s, "p", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, out.Names)

	require.NoError(t, s.Put(ctx, "bad", "{not-json"))
	_, err = GetJSON(ctx, s, "bad", &out)
	assert.ErrorContains(t, err, "decode bad")
}
