package services

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"quickcompare/models"
	"quickcompare/storage"
	"quickcompare/utils"
)

// cartStorageKey is the fixed namespace the serialized cart lives under.
const cartStorageKey = "quickcompare:cart"

// CartStore is the single source of truth for the multi-vendor cart.
// Items are unique by ID; insertion order is preserved. Every mutation
// persists the full list to the KV store, except before the store has
// hydrated, when writes are suppressed so an empty default cannot
// clobber not-yet-loaded persisted state.
//
// Storage failures are logged and swallowed: the in-memory list stays
// authoritative for the session.
type CartStore struct {
	store  storage.KVStore
	logger *utils.Logger

	mu       sync.RWMutex
	items    []models.CartLineItem
	index    map[string]struct{}
	hydrated bool
}

// NewCartStore creates an empty, not-yet-hydrated CartStore.
func NewCartStore(store storage.KVStore, logger *utils.Logger) *CartStore {
	return &CartStore{
		store:  store,
		logger: logger,
		index:  make(map[string]struct{}),
	}
}

// Hydrate loads the persisted cart exactly once at startup. Whatever the
// outcome, the store is marked hydrated afterwards so mutations begin
// persisting.
func (c *CartStore) Hydrate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hydrated {
		return
	}
	c.hydrated = true

	raw, ok, err := c.store.Get(ctx, cartStorageKey)
	if err != nil {
		c.logger.Warn("[cart] load failed, starting empty: %v", err)
		return
	}
	if !ok || raw == "" {
		return
	}

	var items []models.CartLineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		c.logger.Warn("[cart] corrupt persisted cart, starting empty: %v", err)
		return
	}

	c.items = items
	for _, it := range items {
		c.index[it.ID] = struct{}{}
	}
	c.logger.Info("[cart] hydrated %d item(s)", len(items))
}

// Add inserts the item unless an entry with the same ID already exists,
// in which case the call is a logged no-op.
func (c *CartStore) Add(ctx context.Context, item models.CartLineItem) {
	c.mu.Lock()
	if _, dup := c.index[item.ID]; dup {
		c.mu.Unlock()
		c.logger.Debug("[cart] %q already in cart, ignoring", item.ID)
		return
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}
	c.items = append(c.items, item)
	c.index[item.ID] = struct{}{}
	c.persistLocked(ctx)
	c.mu.Unlock()

	c.logger.Info("[cart] added %q (%s)", item.Name, item.ShopName)
}

// Remove deletes the item with the given ID. Absent IDs are a no-op.
func (c *CartStore) Remove(ctx context.Context, id string) {
	c.mu.Lock()
	if _, ok := c.index[id]; !ok {
		c.mu.Unlock()
		return
	}
	delete(c.index, id)
	for i, it := range c.items {
		if it.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	c.persistLocked(ctx)
	c.mu.Unlock()

	c.logger.Info("[cart] removed %q", id)
}

// Clear empties the cart.
func (c *CartStore) Clear(ctx context.Context) {
	c.mu.Lock()
	c.items = nil
	c.index = make(map[string]struct{})
	c.persistLocked(ctx)
	c.mu.Unlock()

	c.logger.Info("[cart] cleared")
}

// Contains reports whether an item with the given ID is in the cart.
// The optional search-ID discriminator is accepted for call-site
// compatibility but ignored: membership is by ID alone.
func (c *CartStore) Contains(id string, _ ...string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.index[id]
	return ok
}

// Len returns the number of line items.
func (c *CartStore) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Items returns a snapshot of all line items in insertion order.
func (c *CartStore) Items() []models.CartLineItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.CartLineItem, len(c.items))
	copy(out, c.items)
	return out
}

// ItemsByVendor returns the items whose ShopName matches vendor exactly
// (case-sensitive), preserving insertion order.
func (c *CartStore) ItemsByVendor(vendor string) []models.CartLineItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []models.CartLineItem
	for _, it := range c.items {
		if it.ShopName == vendor {
			out = append(out, it)
		}
	}
	return out
}

// VendorTotal sums the parsed prices of the vendor's items. An empty
// vendor yields 0. Any unparseable price string poisons the sum to NaN;
// callers must treat a non-finite total as a display error, never
// coerce it to 0.
func (c *CartStore) VendorTotal(vendor string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var total float64
	for _, it := range c.items {
		if it.ShopName != vendor {
			continue
		}
		total += parsePrice(it.Price)
	}
	return total
}

// Vendors returns the distinct vendors present, in first-seen order.
func (c *CartStore) Vendors() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]struct{})
	var out []string
	for _, it := range c.items {
		if _, ok := seen[it.ShopName]; ok {
			continue
		}
		seen[it.ShopName] = struct{}{}
		out = append(out, it.ShopName)
	}
	return out
}

// VendorSummaries returns the per-vendor section aggregates, vendors in
// first-seen order.
func (c *CartStore) VendorSummaries() []models.VendorSummary {
	vendors := c.Vendors()
	out := make([]models.VendorSummary, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, models.VendorSummary{
			Vendor: v,
			Items:  len(c.ItemsByVendor(v)),
			Total:  c.VendorTotal(v),
		})
	}
	return out
}

// persistLocked writes the full list to the KV store, or nothing before
// hydration. Caller must hold c.mu; holding it across the write keeps
// durable writes in the same order the mutations were applied, so a
// stale snapshot can never overwrite a newer one.
func (c *CartStore) persistLocked(ctx context.Context) {
	if !c.hydrated {
		return
	}
	raw, err := json.Marshal(c.items)
	if err != nil {
		c.logger.Error("[cart] marshal failed: %v", err)
		return
	}
	if err := c.store.Set(ctx, cartStorageKey, string(raw)); err != nil {
		c.logger.Warn("[cart] persist failed: %v", err)
	}
}

// parsePrice mirrors parseFloat semantics on the backend's price
// strings: a leading numeric prefix parses, anything else is NaN.
func parsePrice(s string) float64 {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err == nil {
		return f
	}
	// parseFloat in the consuming UI accepted a numeric prefix; keep that.
	for i := len(s); i > 0; i-- {
		if f, err := strconv.ParseFloat(s[:i], 64); err == nil {
			return f
		}
	}
	return math.NaN()
}
