package listing

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Dr-Musa/najah-realestate/internal/models"
)

// Draft is a fully populated listing awaiting a trust score.
type Draft struct {
	Listing      models.Listing
	PriceMatched bool
}

// Extractor turns raw fragments into drafts. It holds no per-fragment state.
type Extractor struct {
	rooms RoomGuesser
}

func NewExtractor(rooms RoomGuesser) *Extractor {
	if rooms == nil {
		rooms = NewRandomRoomGuesser(1)
	}
	return &Extractor{rooms: rooms}
}

// Extract resolves every listing field of f. ok is false when the fragment
// carries a phone that contradicts the target phone on a low-signal source.
func (e *Extractor) Extract(f models.RawFragment, intent ParsedIntent) (d Draft, ok bool) {
	f = normalizeFragment(f)
	t := newFragmentText(f)

	source := detectSource(f.URI)
	phone, keep := reconcilePhone(extractPhone(t.lower), source, intent.Mode)
	if !keep {
		return Draft{}, false
	}

	price, priceMatched := extractPrice(t)
	rooms, estimated := extractRooms(t, intent, e.rooms)
	city, district := resolveLocation(t.lower)
	image := pickImage(t)

	l := models.Listing{
		Title:          f.Title,
		URI:            f.URI,
		Source:         source,
		Snippet:        f.Snippet,
		Price:          price,
		OwnerName:      extractOwner(t, source),
		ImageURL:       image,
		Images:         []string{image},
		Rooms:          rooms,
		RoomsEstimated: estimated,
		Bathrooms:      extractBathrooms(t, rooms),
		Area:           extractArea(t),
		Location:       formatLocation(city, district),
		City:           city,
		District:       district,
	}
	if phone != "" {
		l.Phone = &phone
	}

	return Draft{Listing: l, PriceMatched: priceMatched}, true
}

func normalizeFragment(f models.RawFragment) models.RawFragment {
	return models.RawFragment{
		Title:   strings.TrimSpace(norm.NFC.String(f.Title)),
		URI:     f.URI,
		Snippet: strings.TrimSpace(norm.NFC.String(f.Snippet)),
	}
}
