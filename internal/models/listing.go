// internal/models/listing.go
package models

// Source is the normalized upstream platform a fragment was published on.
type Source string

const (
	SourceAqar     Source = "Aqar"
	SourceHaraj    Source = "Haraj"
	SourceBayut    Source = "Bayut"
	SourceWasalt   Source = "Wasalt"
	SourceOpenSooq Source = "OpenSooq"
	SourceZaahib   Source = "Zaahib"
	SourceOther    Source = "Other"
)

// RawFragment is one search result unit as returned by the provider.
type RawFragment struct {
	Title   string `json:"title"`
	URI     string `json:"uri"`
	Snippet string `json:"snippet"`
}

type Listing struct {
	Title          string   `json:"title"`
	URI            string   `json:"uri"`
	Source         Source   `json:"source"`
	Snippet        string   `json:"snippet"`
	Price          string   `json:"price"`
	Phone          *string  `json:"phone"`
	OwnerName      string   `json:"ownerName"`
	ImageURL       string   `json:"imageUrl"`
	Images         []string `json:"images"`
	Rooms          string   `json:"rooms"`
	RoomsEstimated bool     `json:"roomsEstimated"`
	Bathrooms      string   `json:"bathrooms"`
	Area           string   `json:"area"`
	Location       string   `json:"location"`
	City           string   `json:"city"`
	District       string   `json:"district,omitempty"`
	TrustScore     int      `json:"trustScore"`
	TrustLevel     string   `json:"trustLevel"`
}

// PhoneValue returns the phone number or "" when none is known.
func (l Listing) PhoneValue() string {
	if l.Phone == nil {
		return ""
	}
	return *l.Phone
}
