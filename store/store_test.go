package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type widget struct {
	Versioned
	Name string `json:"name"`
}

func TestTypedRoundTrip(t *testing.T) {
	kv := NewMemKV()
	typed := NewTyped[widget](kv, "widget")

	id, err := typed.NextID()
	require.NoError(t, err)
	require.False(t, id.IsZero())

	w := &widget{Versioned: Versioned{ID: id, Version: 1}, Name: "alpha"}
	require.NoError(t, typed.Put(id, w))

	loaded, ok, err := typed.Get(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "alpha", loaded.Name)
	require.Equal(t, uint64(1), loaded.Version)

	loaded.Version = 2
	loaded.Name = "beta"
	require.NoError(t, typed.Put(id, loaded))

	reloaded, ok, err := typed.Get(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(2), reloaded.Version)
	require.Equal(t, "beta", reloaded.Name)
}

func TestTypedSequentialIDsAreStable(t *testing.T) {
	kv := NewMemKV()
	typed := NewTyped[widget](kv, "widget")
	first, err := typed.NextID()
	require.NoError(t, err)
	second, err := typed.NextID()
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestMemKVForEachOrdersByKey(t *testing.T) {
	kv := NewMemKV()
	require.NoError(t, kv.Put("b", []byte("z"), []byte("1")))
	require.NoError(t, kv.Put("b", []byte("a"), []byte("2")))
	var order []string
	require.NoError(t, kv.ForEach("b", func(key, value []byte) error {
		order = append(order, string(key))
		return nil
	}))
	require.Equal(t, []string{"a", "z"}, order)
}
