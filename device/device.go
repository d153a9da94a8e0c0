// Package device abstracts the host platform's location capabilities so
// the resolver can be driven by a real device bridge in the app and by
// fakes in tests.
package device

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the platform exposes no location
// service at all.
var ErrUnavailable = errors.New("device: location services unavailable")

// Position is a raw GPS fix.
type Position struct {
	Lat float64
	Lon float64
}

// LocationProvider is the platform location bridge: permission prompt,
// high-accuracy fix, and the on-device reverse-geocode fallback used
// when the remote provider fails.
type LocationProvider interface {
	// RequestPermission prompts for location access and reports whether
	// it was granted.
	RequestPermission(ctx context.Context) (bool, error)

	// CurrentPosition returns a high-accuracy GPS fix.
	CurrentPosition(ctx context.Context) (Position, error)

	// ReverseGeocode resolves coordinates to a display address using the
	// platform's own geocoder. Returns "" with an error when it cannot.
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

// Unavailable is the LocationProvider for platforms without location
// services. Every call fails with ErrUnavailable.
type Unavailable struct{}

func (Unavailable) RequestPermission(context.Context) (bool, error) {
	return false, ErrUnavailable
}

func (Unavailable) CurrentPosition(context.Context) (Position, error) {
	return Position{}, ErrUnavailable
}

func (Unavailable) ReverseGeocode(context.Context, float64, float64) (string, error) {
	return "", ErrUnavailable
}
