package services

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"quickcompare/device"
	"quickcompare/models"
	"quickcompare/utils"
)

func testLogger() *utils.Logger { return utils.NewLogger(false) }

// memStore is an in-memory KVStore with optional fault injection.
type memStore struct {
	mu      sync.Mutex
	data    map[string]string
	failAll bool
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return "", false, errors.New("store down")
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errors.New("store down")
	}
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

// fakeFetcher serves a pre-encoded credential or a fixed error.
type fakeFetcher struct {
	mu      sync.Mutex
	encoded string
	err     error
	calls   int
}

func (f *fakeFetcher) FetchEncodedKey(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.encoded, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// encodeTimes base64-encodes plaintext n times, the way the backend does.
func encodeTimes(plaintext string, n int) string {
	out := plaintext
	for i := 0; i < n; i++ {
		out = base64.StdEncoding.EncodeToString([]byte(out))
	}
	return out
}

// credsWithKey returns a manager whose fetcher serves a key decodable at
// the given hour.
func credsWithKey(key string, hour int) *CredentialManager {
	fetcher := &fakeFetcher{encoded: encodeTimes(key, hour)}
	return NewCredentialManager(fetcher, testLogger(), fixedHour(hour))
}

// fixedHour returns a clock whose 12-hour value is always hour.
func fixedHour(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2024, 3, 1, hour%12, 0, 0, 0, time.UTC)
	}
}

// fakeGeo scripts the remote geocoding provider.
type fakeGeo struct {
	reverseAddr models.PlaceAddress
	reverseErr  error
	forwardLat  float64
	forwardLon  float64
	forwardErr  error
	suggestions []models.LocationSuggestion
	suggestErr  error
}

func (g *fakeGeo) ReverseGeocode(_ context.Context, _ string, _, _ float64) (models.PlaceAddress, error) {
	return g.reverseAddr, g.reverseErr
}

func (g *fakeGeo) ForwardGeocode(_ context.Context, _, _ string) (float64, float64, error) {
	return g.forwardLat, g.forwardLon, g.forwardErr
}

func (g *fakeGeo) Autocomplete(_ context.Context, _, _ string) ([]models.LocationSuggestion, error) {
	return g.suggestions, g.suggestErr
}

// fakeDevice scripts the platform location bridge.
type fakeDevice struct {
	granted    bool
	permErr    error
	pos        device.Position
	posErr     error
	revAddress string
	revErr     error
}

func (d *fakeDevice) RequestPermission(context.Context) (bool, error) {
	return d.granted, d.permErr
}

func (d *fakeDevice) CurrentPosition(context.Context) (device.Position, error) {
	return d.pos, d.posErr
}

func (d *fakeDevice) ReverseGeocode(context.Context, float64, float64) (string, error) {
	return d.revAddress, d.revErr
}

// recordAlerter captures user-facing alerts.
type recordAlerter struct {
	mu     sync.Mutex
	titles []string
}

func (a *recordAlerter) Alert(title, _ string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.titles = append(a.titles, title)
}

func (a *recordAlerter) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.titles)
}
