package listing

import (
	"strings"

	"github.com/Dr-Musa/najah-realestate/internal/models"
)

const phoneMarker = "رقم الجوال"

// ComposeQuery joins the non-empty filters in the order the search panel
// presents them.
func ComposeQuery(f models.SearchFilters) string {
	var rooms, price string
	if r := strings.TrimSpace(f.Rooms); r != "" {
		rooms = r + " غرف"
	}
	lo, hi := strings.TrimSpace(f.PriceMin), strings.TrimSpace(f.PriceMax)
	if lo != "" || hi != "" {
		if lo == "" {
			lo = "0"
		}
		if hi == "" {
			hi = "مفتوح"
		}
		price = "سعر " + lo + " الى " + hi
	}

	parts := []string{f.Operation, f.Category, rooms, price, f.Keywords, f.District, f.City}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

func PhoneQuery(phone string) string {
	return phoneMarker + " " + strings.TrimSpace(phone)
}

// QueryFromRequest resolves a SearchRequest into one query string.
func QueryFromRequest(req models.SearchRequest) string {
	if q := strings.TrimSpace(req.Query); q != "" {
		return q
	}
	if p := strings.TrimSpace(req.Phone); p != "" {
		return PhoneQuery(p)
	}
	if req.Filters != nil {
		return ComposeQuery(*req.Filters)
	}
	return ""
}
