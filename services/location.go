package services

import (
	"context"
	"strconv"
	"sync"

	"quickcompare/device"
	"quickcompare/models"
	"quickcompare/storage"
	"quickcompare/utils"
)

// Storage keys for the persisted location. The address string is the
// durable unit; coordinates are persisted separately and only when a
// resolution produced them.
const (
	addressStorageKey = "quickcompare:location"
	latStorageKey     = "quickcompare:lat"
	lonStorageKey     = "quickcompare:lon"
)

// autoLocateSuggestionID identifies the synthetic "use device location"
// suggestion row.
const autoLocateSuggestionID = "auto-locate"

// GeocodeProvider is the remote geocoding/places surface the resolver
// needs. api.GeocodeClient satisfies it.
type GeocodeProvider interface {
	ReverseGeocode(ctx context.Context, key string, lat, lon float64) (models.PlaceAddress, error)
	ForwardGeocode(ctx context.Context, key, address string) (float64, float64, error)
	Autocomplete(ctx context.Context, key, query string) ([]models.LocationSuggestion, error)
}

// Alerter receives the user-facing alerts failures are converted into.
type Alerter interface {
	Alert(title, message string)
}

// LogAlerter writes alerts to the logger. The app shell replaces it
// with a dialog-backed implementation.
type LogAlerter struct {
	Logger *utils.Logger
}

func (a LogAlerter) Alert(title, message string) {
	a.Logger.Warn("[alert] %s: %s", title, message)
}

// LocationResolver owns the user's selected location. Its address field
// walks the sentinel state machine: unset, detecting, resolved, or one
// of the terminal failure strings. Failures never propagate to callers
// as errors; they become sentinel states plus an alert.
type LocationResolver struct {
	creds  *CredentialManager
	geo    GeocodeProvider
	dev    device.LocationProvider
	store  storage.KVStore
	alert  Alerter
	logger *utils.Logger

	mu        sync.Mutex
	current   models.Location
	detecting bool
}

// NewLocationResolver creates a resolver in the unset state.
func NewLocationResolver(creds *CredentialManager, geo GeocodeProvider, dev device.LocationProvider,
	store storage.KVStore, alert Alerter, logger *utils.Logger) *LocationResolver {
	return &LocationResolver{
		creds:   creds,
		geo:     geo,
		dev:     dev,
		store:   store,
		alert:   alert,
		logger:  logger,
		current: models.Location{Address: models.AddressUnset},
	}
}

// Hydrate restores the persisted address and coordinates, if any.
func (r *LocationResolver) Hydrate(ctx context.Context) {
	addr, ok, err := r.store.Get(ctx, addressStorageKey)
	if err != nil || !ok || addr == "" {
		if err != nil {
			r.logger.Warn("[location] load failed: %v", err)
		}
		return
	}

	loc := models.Location{Address: addr}
	if latRaw, ok, _ := r.store.Get(ctx, latStorageKey); ok {
		if lonRaw, ok, _ := r.store.Get(ctx, lonStorageKey); ok {
			lat, errLat := strconv.ParseFloat(latRaw, 64)
			lon, errLon := strconv.ParseFloat(lonRaw, 64)
			if errLat == nil && errLon == nil {
				loc.Lat, loc.Lon = &lat, &lon
			}
		}
	}

	if !loc.Selectable() {
		// A sentinel persisted by an interrupted session is not a location.
		return
	}

	r.mu.Lock()
	r.current = loc
	r.mu.Unlock()
	r.logger.Info("[location] restored %q", addr)
}

// Current returns the current location.
func (r *LocationResolver) Current() models.Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Detecting reports whether an auto-locate run is in progress.
func (r *LocationResolver) Detecting() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.detecting
}

// AutoLocate resolves the device's GPS position to a display address:
// credential, permission, fix, remote reverse geocode, then the
// on-device fallback. Every exit path releases the detecting flag, so
// the UI can never be left stuck on the detecting sentinel.
func (r *LocationResolver) AutoLocate(ctx context.Context) models.Location {
	r.mu.Lock()
	if r.detecting {
		cur := r.current
		r.mu.Unlock()
		return cur
	}
	r.detecting = true
	r.current = models.Location{Address: models.AddressDetecting}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.detecting = false
		r.mu.Unlock()
	}()

	key, err := r.creds.Ensure(ctx)
	if err != nil {
		r.logger.Error("[location] credential unavailable: %v", err)
		r.setAddress(models.AddressUnavailable)
		r.alert.Alert("Connection problem", "Could not reach the server. Check your connection and try again.")
		return r.Current()
	}

	granted, err := r.dev.RequestPermission(ctx)
	if err != nil || !granted {
		if err != nil {
			r.logger.Warn("[location] permission request failed: %v", err)
		} else {
			r.logger.Info("[location] permission denied")
		}
		// Denial aborts to the unset state, even over a prior selection.
		r.setAddress(models.AddressUnset)
		return r.Current()
	}

	pos, err := r.dev.CurrentPosition(ctx)
	if err != nil {
		r.logger.Error("[location] GPS fix failed: %v", err)
		r.setAddress(models.AddressUnavailable)
		r.alert.Alert("Location unavailable", "Could not determine your position.")
		return r.Current()
	}

	r.persistCoordinates(ctx, pos.Lat, pos.Lon)

	display := ""
	addr, err := r.geo.ReverseGeocode(ctx, key, pos.Lat, pos.Lon)
	if err != nil {
		r.logger.Warn("[location] remote reverse geocode failed: %v", err)
	} else {
		display = addr.Display()
	}

	if display == "" {
		display, err = r.dev.ReverseGeocode(ctx, pos.Lat, pos.Lon)
		if err != nil {
			r.logger.Warn("[location] device reverse geocode failed: %v", err)
			display = ""
		}
	}

	if display == "" {
		r.setAddress(models.AddressNotFound)
		r.alert.Alert("Location not found", "We couldn't turn your position into an address. Try searching instead.")
		return r.Current()
	}

	loc := models.Location{Address: display, Lat: &pos.Lat, Lon: &pos.Lon}
	r.setLocation(loc)
	r.persistAddress(ctx, display)
	r.logger.Info("[location] resolved to %q", display)
	return loc
}

// SearchLocations queries place autocomplete for the raw text. A
// synthetic "use current location" row leads every non-empty result.
// Any failure, including a missing credential, yields an empty list,
// never an error.
func (r *LocationResolver) SearchLocations(ctx context.Context, query string) []models.LocationSuggestion {
	key, err := r.creds.Ensure(ctx)
	if err != nil {
		r.logger.Warn("[location] search skipped, no credential: %v", err)
		return []models.LocationSuggestion{}
	}

	predictions, err := r.geo.Autocomplete(ctx, key, query)
	if err != nil {
		r.logger.Warn("[location] autocomplete %q failed: %v", query, err)
		return []models.LocationSuggestion{}
	}

	out := make([]models.LocationSuggestion, 0, len(predictions)+1)
	out = append(out, models.LocationSuggestion{
		ID:           autoLocateSuggestionID,
		Name:         "Use current location",
		FullName:     "Detect automatically via GPS",
		IsAutoLocate: true,
	})
	return append(out, predictions...)
}

// UpdateLocation overwrites the current location with a user-chosen one
// and persists the address. When the caller supplied no coordinates and
// a credential is already cached, the address is forward-geocoded
// best-effort to fill them in; failure is silent.
func (r *LocationResolver) UpdateLocation(ctx context.Context, loc models.Location) {
	if !loc.Selectable() {
		r.logger.Warn("[location] rejecting non-selectable address %q", loc.Address)
		return
	}

	r.setLocation(loc)
	r.persistAddress(ctx, loc.Address)

	if loc.HasCoordinates() {
		r.persistCoordinates(ctx, *loc.Lat, *loc.Lon)
		return
	}

	key, ok := r.creds.Cached()
	if !ok {
		return
	}
	lat, lon, err := r.geo.ForwardGeocode(ctx, key, loc.Address)
	if err != nil {
		r.logger.Debug("[location] forward geocode %q failed: %v", loc.Address, err)
		return
	}
	r.mu.Lock()
	if r.current.Address == loc.Address {
		r.current.Lat, r.current.Lon = &lat, &lon
	}
	r.mu.Unlock()
	r.persistCoordinates(ctx, lat, lon)
}

func (r *LocationResolver) setAddress(addr string) {
	r.setLocation(models.Location{Address: addr})
}

func (r *LocationResolver) setLocation(loc models.Location) {
	r.mu.Lock()
	r.current = loc
	r.mu.Unlock()
}

func (r *LocationResolver) persistAddress(ctx context.Context, addr string) {
	if err := r.store.Set(ctx, addressStorageKey, addr); err != nil {
		r.logger.Warn("[location] persist address failed: %v", err)
	}
}

func (r *LocationResolver) persistCoordinates(ctx context.Context, lat, lon float64) {
	if err := r.store.Set(ctx, latStorageKey, strconv.FormatFloat(lat, 'f', -1, 64)); err != nil {
		r.logger.Warn("[location] persist lat failed: %v", err)
		return
	}
	if err := r.store.Set(ctx, lonStorageKey, strconv.FormatFloat(lon, 'f', -1, 64)); err != nil {
		r.logger.Warn("[location] persist lon failed: %v", err)
	}
}
