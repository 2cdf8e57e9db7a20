// internal/models/search.go
package models

// SearchFilters mirrors the filter panel a caller composes a query from.
type SearchFilters struct {
	Operation string `json:"operation,omitempty"`
	Category  string `json:"category,omitempty"`
	Rooms     string `json:"rooms,omitempty"`
	PriceMin  string `json:"priceMin,omitempty"`
	PriceMax  string `json:"priceMax,omitempty"`
	Keywords  string `json:"keywords,omitempty"`
	District  string `json:"district,omitempty"`
	City      string `json:"city,omitempty"`
}

// IsZero reports whether no filter was set.
func (f SearchFilters) IsZero() bool {
	return f == SearchFilters{}
}

// SearchRequest is the transport-neutral request accepted by the HTTP API and
// the aggregate-listings job worker. Query wins over Phone, Phone over Filters.
type SearchRequest struct {
	Query   string         `json:"query,omitempty"`
	Phone   string         `json:"phone,omitempty"`
	Filters *SearchFilters `json:"filters,omitempty"`
	// Limit caps the returned listings; zero means no cap.
	Limit int `json:"limit,omitempty"`
}

type SearchResponse struct {
	RunID    string    `json:"runId"`
	Mode     string    `json:"mode"`
	Count    int       `json:"count"`
	Listings []Listing `json:"listings"`
}

// NewSearchResponse trims listings to limit when it is positive.
func NewSearchResponse(runID, mode string, listings []Listing, limit int) SearchResponse {
	if listings == nil {
		listings = []Listing{}
	}
	if limit > 0 && len(listings) > limit {
		listings = listings[:limit]
	}
	return SearchResponse{RunID: runID, Mode: mode, Count: len(listings), Listings: listings}
}
