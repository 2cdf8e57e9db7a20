// internal/workers/realestate/aggregate-listings/models.go
package aggregatelistings

import "github.com/Dr-Musa/najah-realestate/internal/models"

type Input struct {
	Query   string                `json:"query,omitempty"`
	Phone   string                `json:"phone,omitempty"`
	Filters *models.SearchFilters `json:"filters,omitempty"`
	Limit   int                   `json:"limit,omitempty"`
}

func (in *Input) request() models.SearchRequest {
	return models.SearchRequest{Query: in.Query, Phone: in.Phone, Filters: in.Filters, Limit: in.Limit}
}

type Output struct {
	RunID    string           `json:"runId"`
	Mode     string           `json:"mode"`
	Count    int              `json:"count"`
	Listings []models.Listing `json:"listings"`
}
