package models

import "time"

// CartLineItem is one vendor-specific offer the user has added to the cart.
// ID follows the "{productID}-{vendorName}" convention, so (product, vendor)
// is the real identity key: the same product from two vendors yields two
// distinct line items.
type CartLineItem struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Image    string    `json:"image"`
	Quantity string    `json:"quantity"` // vendor-specific packaging unit, e.g. "500 ml"
	ShopName string    `json:"shopName"`
	Price    string    `json:"price"` // decimal-as-string, exactly as the backend delivered it
	URL      string    `json:"url"`   // deep link to the vendor's purchase page
	SearchID string    `json:"searchId,omitempty"`
	AddedAt  time.Time `json:"addedAt"`
}

// VendorSummary is the per-vendor aggregate shown as a cart section header.
// Total is NaN when any of the vendor's price strings failed to parse;
// callers must check math.IsNaN before rendering.
type VendorSummary struct {
	Vendor string
	Items  int
	Total  float64
}
