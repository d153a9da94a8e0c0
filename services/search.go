package services

import (
	"context"

	"github.com/google/uuid"

	"quickcompare/models"
	"quickcompare/utils"
)

// CompareAPI is the comparison-backend surface the search service uses.
// api.Client satisfies it.
type CompareAPI interface {
	SearchResults(ctx context.Context, itemName string, lat, lon float64) ([]models.ProductComparison, error)
	Trending(ctx context.Context) (models.TrendingLists, error)
}

// SearchService runs debounced product searches against the comparison
// backend and stamps every result batch with a provenance ID that cart
// line items carry back to the search that produced them.
type SearchService struct {
	api      CompareAPI
	resolver *LocationResolver
	debounce *utils.Debouncer
	logger   *utils.Logger
}

// NewSearchService creates a SearchService using the given debounce
// window for keystroke-driven searches.
func NewSearchService(api CompareAPI, resolver *LocationResolver, debounce *utils.Debouncer, logger *utils.Logger) *SearchService {
	return &SearchService{
		api:      api,
		resolver: resolver,
		debounce: debounce,
		logger:   logger,
	}
}

// Search queries the backend with the current location's coordinates
// (0,0 when none are known) and tags results with a fresh search ID.
func (s *SearchService) Search(ctx context.Context, query string) (models.SearchResult, error) {
	var lat, lon float64
	if loc := s.resolver.Current(); loc.HasCoordinates() {
		lat, lon = *loc.Lat, *loc.Lon
	}

	products, err := s.api.SearchResults(ctx, query, lat, lon)
	if err != nil {
		s.logger.Warn("[search] %q failed: %v", query, err)
		return models.SearchResult{}, err
	}

	searchID := uuid.NewString()
	for i := range products {
		products[i].SearchID = searchID
	}

	s.logger.Info("[search] %q matched %d product(s)", query, len(products))
	return models.SearchResult{SearchID: searchID, Query: query, Products: products}, nil
}

// ScheduleSearch debounces keystroke-driven searches: each call
// replaces the previously pending one, and only the last survives the
// quiet window. The debounce does not cancel requests already in
// flight, so with rapid typing the last response to resolve wins, not
// the last request issued.
func (s *SearchService) ScheduleSearch(ctx context.Context, query string, deliver func(models.SearchResult, error)) (cancel func()) {
	return s.debounce.Schedule(func() {
		deliver(s.Search(ctx, query))
	})
}

// Trending fetches the home-screen suggestion lists.
func (s *SearchService) Trending(ctx context.Context) (models.TrendingLists, error) {
	lists, err := s.api.Trending(ctx)
	if err != nil {
		s.logger.Warn("[search] trending failed: %v", err)
		return models.TrendingLists{}, err
	}
	return lists, nil
}
