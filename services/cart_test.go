package services

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickcompare/models"
)

func item(id, shop, price string) models.CartLineItem {
	return models.CartLineItem{ID: id, Name: "item " + id, ShopName: shop, Price: price}
}

func newHydratedCart(t *testing.T) (*CartStore, *memStore) {
	t.Helper()
	store := newMemStore()
	cart := NewCartStore(store, testLogger())
	cart.Hydrate(context.Background())
	return cart, store
}

func TestCartAddDuplicateIsNoOp(t *testing.T) {
	cart, _ := newHydratedCart(t)
	ctx := context.Background()

	cart.Add(ctx, item("7-Blinkit", "Blinkit", "120"))
	cart.Add(ctx, item("7-Blinkit", "Blinkit", "999"))

	require.Equal(t, 1, cart.Len())
	assert.Equal(t, "120", cart.Items()[0].Price, "second add must not replace the first")
}

func TestCartRemoveMissingIsNoOp(t *testing.T) {
	cart, _ := newHydratedCart(t)
	ctx := context.Background()

	cart.Add(ctx, item("7-Blinkit", "Blinkit", "120"))
	cart.Remove(ctx, "no-such-id")

	assert.Equal(t, 1, cart.Len())
}

func TestCartClear(t *testing.T) {
	cart, _ := newHydratedCart(t)
	ctx := context.Background()

	cart.Add(ctx, item("7-Blinkit", "Blinkit", "120"))
	cart.Add(ctx, item("7-Zepto", "Zepto", "110"))
	cart.Clear(ctx)

	assert.Zero(t, cart.Len())
	assert.False(t, cart.Contains("7-Blinkit"))
}

func TestCartContainsIgnoresSearchDiscriminator(t *testing.T) {
	cart, _ := newHydratedCart(t)
	cart.Add(context.Background(), item("7-Blinkit", "Blinkit", "120"))

	assert.True(t, cart.Contains("7-Blinkit"))
	assert.True(t, cart.Contains("7-Blinkit", "some-other-search"))
	assert.False(t, cart.Contains("7-Zepto"))
}

func TestCartItemsByVendorFiltersAndPreservesOrder(t *testing.T) {
	cart, _ := newHydratedCart(t)
	ctx := context.Background()

	cart.Add(ctx, item("1-Blinkit", "Blinkit", "10"))
	cart.Add(ctx, item("2-Zepto", "Zepto", "20"))
	cart.Add(ctx, item("3-Blinkit", "Blinkit", "30"))
	cart.Add(ctx, item("4-blinkit", "blinkit", "40")) // case-sensitive: different vendor

	got := cart.ItemsByVendor("Blinkit")
	require.Len(t, got, 2)
	assert.Equal(t, "1-Blinkit", got[0].ID)
	assert.Equal(t, "3-Blinkit", got[1].ID)

	assert.Len(t, cart.ItemsByVendor("Zepto"), 1)
	assert.Empty(t, cart.ItemsByVendor("Swiggy"))
}

func TestCartVendorTotal(t *testing.T) {
	cart, _ := newHydratedCart(t)
	ctx := context.Background()

	cart.Add(ctx, item("7-Blinkit", "Blinkit", "120"))
	cart.Add(ctx, item("8-Blinkit", "Blinkit", "35.50"))
	cart.Add(ctx, item("7-Zepto", "Zepto", "110"))

	assert.InDelta(t, 155.50, cart.VendorTotal("Blinkit"), 1e-9)
	assert.InDelta(t, 110, cart.VendorTotal("Zepto"), 1e-9)
	assert.Zero(t, cart.VendorTotal("Swiggy"), "empty vendor sums to 0")
}

func TestCartVendorTotalPoisonsToNaN(t *testing.T) {
	cart, _ := newHydratedCart(t)
	ctx := context.Background()

	cart.Add(ctx, item("7-Blinkit", "Blinkit", "120"))
	cart.Add(ctx, item("8-Blinkit", "Blinkit", "free"))

	assert.True(t, math.IsNaN(cart.VendorTotal("Blinkit")),
		"unparseable price must surface as NaN, not 0")
}

func TestCartVendorSummaries(t *testing.T) {
	cart, _ := newHydratedCart(t)
	ctx := context.Background()

	cart.Add(ctx, item("7-Blinkit", "Blinkit", "120"))
	cart.Add(ctx, item("7-Zepto", "Zepto", "110"))
	cart.Add(ctx, item("8-Blinkit", "Blinkit", "30"))

	summaries := cart.VendorSummaries()
	require.Len(t, summaries, 2)
	assert.Equal(t, "Blinkit", summaries[0].Vendor)
	assert.Equal(t, 2, summaries[0].Items)
	assert.InDelta(t, 150, summaries[0].Total, 1e-9)
	assert.Equal(t, "Zepto", summaries[1].Vendor)
}

func TestCartPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	first := NewCartStore(store, testLogger())
	first.Hydrate(ctx)
	first.Add(ctx, item("7-Blinkit", "Blinkit", "120"))
	first.Add(ctx, item("7-Zepto", "Zepto", "110"))

	second := NewCartStore(store, testLogger())
	second.Hydrate(ctx)

	require.Equal(t, 2, second.Len())
	got := second.Items()
	assert.Equal(t, "7-Blinkit", got[0].ID)
	assert.Equal(t, "Blinkit", got[0].ShopName)
	assert.Equal(t, "120", got[0].Price)
	assert.Equal(t, "7-Zepto", got[1].ID)
	assert.True(t, second.Contains("7-Zepto"))
}

func TestCartWritesSuppressedBeforeHydrate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.data["quickcompare:cart"] = `[{"id":"7-Zepto","shopName":"Zepto","price":"110"}]`

	cart := NewCartStore(store, testLogger())
	cart.Add(ctx, item("1-Blinkit", "Blinkit", "10"))

	// The pre-hydration add must not have overwritten persisted state.
	raw, ok := store.get("quickcompare:cart")
	require.True(t, ok)
	assert.Contains(t, raw, "7-Zepto")
	assert.NotContains(t, raw, "1-Blinkit")
}

func TestCartConcurrentMutationsPersistFinalState(t *testing.T) {
	ctx := context.Background()
	cart, store := newHydratedCart(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			cart.Add(ctx, item(strconv.Itoa(n)+"-Blinkit", "Blinkit", "10"))
		}(i)
	}
	wg.Wait()

	// The last durable write must reflect every mutation; a stale
	// snapshot overwriting a newer one would lose items here.
	raw, ok := store.get("quickcompare:cart")
	require.True(t, ok)
	var persisted []models.CartLineItem
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	assert.Len(t, persisted, cart.Len())
	assert.Equal(t, 20, cart.Len())
}

func TestCartStorageFailureKeepsMemoryAuthoritative(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	cart := NewCartStore(store, testLogger())
	cart.Hydrate(ctx)

	store.failAll = true
	cart.Add(ctx, item("7-Blinkit", "Blinkit", "120"))

	assert.Equal(t, 1, cart.Len(), "in-memory cart survives a failed write")
	assert.True(t, cart.Contains("7-Blinkit"))
}
