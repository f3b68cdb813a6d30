package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/objfs/core"
)

// storeContract exercises the behavior every Store must share.
func storeContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	obj := &core.Object{Name: "a.txt", Bytes: 3, Headers: map[string]string{"K": "v"}}
	require.NoError(t, s.Set(ctx, "k1", &Entry{Kind: KindObject, Object: obj}))

	e, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, KindObject, e.Kind)
	assert.Equal(t, "a.txt", e.Object.Name)
	assert.Equal(t, "v", e.Object.Headers["K"])

	require.NoError(t, s.Set(ctx, "k2", &Entry{Kind: KindListing, Listing: []*core.Object{{Name: "a/"}, {Name: "a/b"}}}))
	e, ok, err = s.Get(ctx, "k2")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, e.Listing, 2)
	assert.Equal(t, "a/b", e.Listing[1].Name)

	require.NoError(t, s.Remove(ctx, "k1"))
	require.NoError(t, s.Remove(ctx, "k1"))
	_, ok, err = s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Flush(ctx))
	_, ok, err = s.Get(ctx, "k2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestMemoryStore_Copies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	obj := &core.Object{Name: "a.txt", Content: []byte("abc")}
	require.NoError(t, s.Set(ctx, "k", &Entry{Kind: KindObject, Object: obj}))
	obj.Content[0] = 'x'

	e, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(e.Object.Content))

	e.Object.Name = "mutated"
	e2, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", e2.Object.Name)
	assert.Equal(t, 1, s.Len())
}
