package jsonfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Geek-master-100/ai-customer-reception/internal/core/shop"
)

func newTestStore(t *testing.T) *ShopStore {
	t.Helper()
	store := NewShopStore(filepath.Join(t.TempDir(), "shops.json"), zerolog.Nop())
	store.Load()
	return store
}

func TestShopStore(t *testing.T) {
	t.Run("load missing file starts empty", func(t *testing.T) {
		store := newTestStore(t)

		assert.Empty(t, store.GetShops("pdd"))
		assert.Empty(t, store.Platforms())
		_, err := os.Stat(store.Path())
		assert.True(t, os.IsNotExist(err), "load must not create the document")
	})

	t.Run("load unparsable file starts empty", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "shops.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		store := NewShopStore(path, zerolog.Nop())
		store.Load()

		assert.Empty(t, store.GetShops("pdd"))
	})

	t.Run("add persists and stamps platform", func(t *testing.T) {
		store := newTestStore(t)

		added := store.AddShop("pdd", shop.Record{UserName: "Alice", SessionID: "s1"})
		require.True(t, added)

		got, ok := store.FindShop("pdd", "s1")
		require.True(t, ok)
		assert.Equal(t, "pdd", got.Platform)

		_, err := os.Stat(store.Path())
		assert.NoError(t, err)
	})

	t.Run("add keeps first seen record", func(t *testing.T) {
		store := newTestStore(t)
		first := shop.Record{UserName: "Alice", MallName: "Alice Shop", SessionID: "s1"}
		second := shop.Record{UserName: "Alice Renamed", MallName: "Other", SessionID: "s1"}

		assert.True(t, store.AddShop("pdd", first))
		assert.False(t, store.AddShop("pdd", second))

		shops := store.GetShops("pdd")
		require.Len(t, shops, 1)
		assert.Equal(t, "Alice", shops[0].UserName)
		assert.Equal(t, "Alice Shop", shops[0].MallName)
	})

	t.Run("update replaces existing", func(t *testing.T) {
		store := newTestStore(t)
		store.AddShop("pdd", shop.Record{UserName: "Alice", SessionID: "s1"})

		ok := store.UpdateShop("pdd", shop.Record{UserName: "Alice Renamed", SessionID: "s1"})
		require.True(t, ok)

		got, _ := store.FindShop("pdd", "s1")
		assert.Equal(t, "Alice Renamed", got.UserName)
		assert.Len(t, store.GetShops("pdd"), 1)
	})

	t.Run("update missing returns false", func(t *testing.T) {
		store := newTestStore(t)

		assert.False(t, store.UpdateShop("pdd", shop.Record{SessionID: "nope"}))
		_, err := os.Stat(store.Path())
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("remove", func(t *testing.T) {
		store := newTestStore(t)
		store.AddShop("pdd", shop.Record{SessionID: "s1"})
		store.AddShop("pdd", shop.Record{SessionID: "s2"})

		assert.True(t, store.RemoveShop("pdd", "s1"))
		assert.False(t, store.RemoveShop("pdd", "s1"))

		shops := store.GetShops("pdd")
		require.Len(t, shops, 1)
		assert.Equal(t, "s2", shops[0].SessionID)
	})

	t.Run("platforms are isolated", func(t *testing.T) {
		store := newTestStore(t)
		store.AddShop("pdd", shop.Record{SessionID: "s1"})
		store.AddShop("jd", shop.Record{SessionID: "s1"})

		assert.Len(t, store.GetShops("pdd"), 1)
		assert.Len(t, store.GetShops("jd"), 1)
		assert.Equal(t, []string{"jd", "pdd"}, store.Platforms())
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		store := newTestStore(t)
		store.AddShop("pdd", shop.Record{UserName: "Alice", SessionID: "s1"})

		shops := store.GetShops("pdd")
		shops[0].UserName = "mutated"

		got, _ := store.FindShop("pdd", "s1")
		assert.Equal(t, "Alice", got.UserName)
	})

	t.Run("write failure keeps memory authoritative", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("file"), 0o644))

		// The parent of the document is a regular file so every write fails.
		store := NewShopStore(filepath.Join(blocker, "shops.json"), zerolog.Nop())
		store.Load()

		assert.True(t, store.AddShop("pdd", shop.Record{UserName: "Alice", SessionID: "s1"}))
		got, ok := store.FindShop("pdd", "s1")
		require.True(t, ok)
		assert.Equal(t, "Alice", got.UserName)
	})
}

func TestShopStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shops.json")
	store := NewShopStore(path, zerolog.Nop())
	store.Load()

	want := []shop.Record{
		{UserName: "Alice", MallName: "Alice Shop", UserID: "u1", MallID: "m1", AvatarURL: "https://a/1.png", SessionID: "s1", Platform: "pdd"},
		{UserName: "Bob", MallName: "Bob Shop", UserID: "u2", MallID: "m2", SessionID: "s2", Platform: "pdd"},
		{UserName: "Carol", UserID: "u3", SessionID: "s3", Platform: "pdd"},
	}
	for _, r := range want {
		require.True(t, store.AddShop("pdd", r))
	}

	reloaded := NewShopStore(path, zerolog.Nop())
	reloaded.Load()

	if diff := cmp.Diff(want, reloaded.GetShops("pdd")); diff != "" {
		t.Errorf("reloaded shops mismatch (-want +got):\n%s", diff)
	}
}

func TestShopStore_DocumentShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shops.json")
	store := NewShopStore(path, zerolog.Nop())
	store.Load()
	store.AddShop("pdd", shop.Record{UserName: "Alice", AvatarURL: "x.png", SessionID: "s1"})

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"pdd": [{
			"userName": "Alice",
			"mallName": "",
			"userId": "",
			"mallId": "",
			"avatar": "x.png",
			"sessionId": "s1",
			"platform": "pdd"
		}]
	}`, string(data))
}
