package listing

import (
	"sort"

	"github.com/Dr-Musa/najah-realestate/internal/models"
)

// Dedupe keeps the first listing for each exact URI. The input is not modified.
func Dedupe(listings []models.Listing) []models.Listing {
	seen := make(map[string]struct{}, len(listings))
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if _, dup := seen[l.URI]; dup {
			continue
		}
		seen[l.URI] = struct{}{}
		out = append(out, l)
	}
	return out
}

// Rank sorts listings by trust score, highest first, keeping input order on ties.
func Rank(listings []models.Listing) []models.Listing {
	out := append([]models.Listing(nil), listings...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TrustScore > out[j].TrustScore
	})
	return out
}
