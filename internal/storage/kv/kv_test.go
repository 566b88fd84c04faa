package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()

	file, err := NewFile(t.TempDir())
	require.NoError(t, err)

	return map[string]Store{
		"memory": NewMemory(),
		"file":   file,
	}
}

func TestStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()

	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "cart")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, "cart", []byte(`[{"id":1}]`)))

			got, err := s.Get(ctx, "cart")
			require.NoError(t, err)
			assert.Equal(t, `[{"id":1}]`, string(got))

			// Overwrite replaces the previous value.
			require.NoError(t, s.Set(ctx, "cart", []byte(`[]`)))
			got, err = s.Get(ctx, "cart")
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(got))

			require.NoError(t, s.Delete(ctx, "cart"))
			_, err = s.Get(ctx, "cart")
			require.ErrorIs(t, err, ErrNotFound)

			// Deleting an absent key is a no-op.
			require.NoError(t, s.Delete(ctx, "cart"))
		})
	}
}

func TestStore_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()

	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(ctx, "wishlist", []byte(`[1]`)))
			require.NoError(t, s.Set(ctx, "compare", []byte(`[2]`)))
			require.NoError(t, s.Delete(ctx, "wishlist"))

			got, err := s.Get(ctx, "compare")
			require.NoError(t, err)
			assert.Equal(t, `[2]`, string(got))
		})
	}
}

func TestFile_EscapesUnsafeKeys(t *testing.T) {
	ctx := context.Background()
	s, err := NewFile(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "../escape", []byte("x")))
	got, err := s.Get(ctx, "../escape")
	require.NoError(t, err)
	assert.Equal(t, "x", string(got))
}

func TestLoadSaveJSON(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	type item struct {
		ID  int    `json:"id"`
		Qty int    `json:"qty"`
		N   string `json:"n"`
	}

	var out []item
	found, err := LoadJSON(ctx, s, "cart", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, out)

	in := []item{{ID: 1, Qty: 2, N: "rice"}}
	require.NoError(t, SaveJSON(ctx, s, "cart", in))

	found, err = LoadJSON(ctx, s, "cart", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}
