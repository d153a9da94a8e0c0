package models

import "strings"

// Sentinel address values. They mark transient resolver states and must
// never be treated as a selectable location by callers.
const (
	AddressUnset       = "Select Location"
	AddressDetecting   = "Detecting location..."
	AddressNotFound    = "Location not found"
	AddressUnavailable = "Location services unavailable"
)

// Location is the user's currently selected delivery location. The address
// string is the unit of durable persistence; coordinates are optional and
// persisted separately, only when a resolution produced them.
type Location struct {
	Address string
	Lat     *float64
	Lon     *float64
}

// Selectable reports whether the address is a real, user-actionable
// location rather than one of the sentinel states.
func (l Location) Selectable() bool {
	switch l.Address {
	case "", AddressUnset, AddressDetecting, AddressNotFound, AddressUnavailable:
		return false
	}
	return true
}

// HasCoordinates reports whether both coordinates are present.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lon != nil
}

// PlaceAddress is the structured result of a reverse-geocode lookup.
type PlaceAddress struct {
	Locality  string // city / town
	AdminArea string // first-level administrative region
	Country   string
}

// Display joins the non-empty components with ", " to build the address
// string shown to the user.
func (p PlaceAddress) Display() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Locality, p.AdminArea, p.Country} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// LocationSuggestion is one row of a place-autocomplete result list.
// The synthetic "use device location" row carries IsAutoLocate and is
// always injected as the first row of a non-empty suggestion list.
type LocationSuggestion struct {
	ID           string
	Name         string // short label
	FullName     string // complete description
	IsAutoLocate bool
}
