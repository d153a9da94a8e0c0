package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"quickcompare/api"
	"quickcompare/config"
	"quickcompare/device"
	"quickcompare/models"
	"quickcompare/services"
	"quickcompare/storage"
	"quickcompare/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.Verbose)
	ctx := context.Background()

	logger.Info("=== quickcompare starting ===")
	logger.Info("Config — backend: %s | storage: %s | debounce: %dms",
		cfg.APIBaseURL, cfg.StorageBackend, cfg.SearchDebounceMs)

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("Failed to open %s storage: %v", cfg.StorageBackend, err)
		os.Exit(1)
	}
	defer store.Close()

	client := api.NewClient(cfg.APIBaseURL, logger)
	geocoder := api.NewGeocodeClient(cfg.GeocodeBaseURL, logger)
	creds := services.NewCredentialManager(client, logger, nil)

	resolver := services.NewLocationResolver(creds, geocoder, device.Unavailable{},
		store, services.LogAlerter{Logger: logger}, logger)
	resolver.Hydrate(ctx)

	cart := services.NewCartStore(store, logger)
	cart.Hydrate(ctx)

	debounce := utils.NewDebouncer(time.Duration(cfg.SearchDebounceMs) * time.Millisecond)
	search := services.NewSearchService(client, resolver, debounce, logger)

	if loc := resolver.Current(); loc.Selectable() {
		logger.Info("Delivery location: %s", loc.Address)
	} else {
		logger.Info("No delivery location set — searches run without coordinates")
	}

	if lists, err := search.Trending(ctx); err == nil {
		logger.Info("Trending now: %v", lists.Trending)
	}

	result, err := search.Search(ctx, cfg.SearchQuery)
	if err != nil {
		logger.Error("Search %q failed: %v", cfg.SearchQuery, err)
	} else {
		logger.Info("Search %q: %d product(s)", result.Query, len(result.Products))
		for _, p := range result.Products {
			if offer, ok := cheapestOffer(p); ok {
				cart.Add(ctx, p.LineItem(offer))
			}
		}
	}

	printCart(cart)
}

func openStore(cfg *config.Config, logger *utils.Logger) (storage.KVStore, error) {
	switch cfg.StorageBackend {
	case "postgres":
		return storage.NewPostgresStore(cfg.DSN(), logger)
	case "redis":
		return storage.NewRedisStore(cfg.RedisURL, cfg.RedisPrefix)
	default:
		return storage.NewFileStore(cfg.StatePath)
	}
}

// cheapestOffer picks the offer with the lowest parseable price.
func cheapestOffer(p models.ProductComparison) (models.VendorOffer, bool) {
	best := -1
	bestPrice := math.Inf(1)
	for i, o := range p.Offers {
		var price float64
		if _, err := fmt.Sscanf(o.Price, "%f", &price); err != nil {
			continue
		}
		if price < bestPrice {
			best, bestPrice = i, price
		}
	}
	if best < 0 {
		return models.VendorOffer{}, false
	}
	return p.Offers[best], true
}

func printCart(cart *services.CartStore) {
	fmt.Println()
	fmt.Println("  Cart by vendor")
	fmt.Println("  ──────────────────────────────────────")
	summaries := cart.VendorSummaries()
	if len(summaries) == 0 {
		fmt.Println("  (empty)")
	}
	for _, s := range summaries {
		total := fmt.Sprintf("₹%.2f", s.Total)
		if math.IsNaN(s.Total) {
			total = "unavailable"
		}
		fmt.Printf("  %-12s %2d item(s)  %s\n", s.Vendor, s.Items, total)
	}
	fmt.Println()
}
