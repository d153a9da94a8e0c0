package models

// VendorOffer is one vendor's price for a compared product.
type VendorOffer struct {
	Store    string
	Price    string // decimal-as-string
	Quantity string
	URL      string
}

// ProductComparison is one product with its offers across vendors, as
// flattened from the comparison backend's search response. SearchID links
// the product back to the search that produced it.
type ProductComparison struct {
	ID       string
	Name     string
	Image    string
	SearchID string
	Offers   []VendorOffer
}

// LineItem builds the cart line item for one of the product's offers.
func (p ProductComparison) LineItem(offer VendorOffer) CartLineItem {
	return CartLineItem{
		ID:       p.ID + "-" + offer.Store,
		Name:     p.Name,
		Image:    p.Image,
		Quantity: offer.Quantity,
		ShopName: offer.Store,
		Price:    offer.Price,
		URL:      offer.URL,
		SearchID: p.SearchID,
	}
}

// SearchResult is one completed comparison search.
type SearchResult struct {
	SearchID string
	Query    string
	Products []ProductComparison
}

// TrendingLists holds the home-screen suggestion lists.
type TrendingLists struct {
	Trending   []string
	DailyNeeds []string
}

// AuthResponse is the {status, message} envelope the signup/signin
// endpoints reply with.
type AuthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Success reports whether the backend accepted the request.
func (a AuthResponse) Success() bool {
	return a.Status == "success"
}
