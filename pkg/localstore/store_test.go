package localstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutGetRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, store.Put("produits_v2", payload{Name: "Chaise", Count: 2}))

	var got payload
	found, err := store.Get("produits_v2", &got)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Chaise", got.Name)
	require.Equal(t, 2, got.Count)
}

func TestGetMissingSlotReportsFalse(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	var dest map[string]any
	found, err := store.Get("never_written", &dest)
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, dest)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put("session", "token"))
	require.NoError(t, store.Delete("session"))
	require.NoError(t, store.Delete("session"))

	var dest string
	found, err := store.Get("session", &dest)
	require.NoError(t, err)
	require.False(t, found)
}

func TestSlotNamesAreSanitized(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put("user_prefs_abc/../../etc", map[string]int{"monthlyGoal": 500}))

	var dest map[string]int
	found, err := store.Get("user_prefs_abc/../../etc", &dest)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 500, dest["monthlyGoal"])
}

func TestPutReplacesPreviousContent(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put("sku_counter", 1))
	require.NoError(t, store.Put("sku_counter", 7))

	var counter int
	found, err := store.Get("sku_counter", &counter)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 7, counter)
}
