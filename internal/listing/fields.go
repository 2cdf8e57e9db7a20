package listing

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/Dr-Musa/najah-realestate/internal/models"
)

const (
	PricePlaceholder  = "السعر عند الاتصال"
	LocalMobilePrefix = "05"
	defaultBathsSmall = "2"
	defaultBathsLarge = "4"
	villaKeyword      = "فيلا"
	apartmentKeyword  = "شقة"
	locationSeparator = "، "
)

var (
	phonePattern     = regexp.MustCompile(`(?:05|9665|\+9665)\d{8}`)
	pricePattern     = regexp.MustCompile(`(?i)(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?\s*(?:ريال|sr|رس|الف|مليون)`)
	bathroomsPattern = regexp.MustCompile(`(\d+)\s*حمام`)
	areaPattern      = regexp.MustCompile(`(\d+)\s*(?:م2|م²|متر|م)(?:[^\x{0600}-\x{06FF}]|$)`)
)

// fragmentText holds the views of a fragment the heuristics read from.
type fragmentText struct {
	title    string
	snippet  string
	original string
	lower    string
}

func newFragmentText(f models.RawFragment) fragmentText {
	original := f.Title + " " + f.Snippet
	return fragmentText{
		title:    f.Title,
		snippet:  f.Snippet,
		original: original,
		lower:    strings.ToLower(original),
	}
}

type sourceRule struct {
	hostFragment string
	source       models.Source
}

var sourceTable = []sourceRule{
	{"aqar.fm", models.SourceAqar},
	{"haraj.com", models.SourceHaraj},
	{"bayut.sa", models.SourceBayut},
	{"wasalt.com", models.SourceWasalt},
	{"opensooq", models.SourceOpenSooq},
	{"zaahib", models.SourceZaahib},
}

func detectSource(uri string) models.Source {
	host := strings.ToLower(uri)
	if u, err := url.Parse(strings.TrimSpace(uri)); err == nil && u.Host != "" {
		host = strings.ToLower(u.Host)
	}
	for _, rule := range sourceTable {
		if strings.Contains(host, rule.hostFragment) {
			return rule.source
		}
	}
	return models.SourceOther
}

func extractPhone(lower string) string {
	return phonePattern.FindString(lower)
}

// reconcilePhone applies the target-phone rule. keep is false when the
// fragment must be discarded.
func reconcilePhone(extracted string, source models.Source, mode SearchMode) (phone string, keep bool) {
	if !mode.IsPhone() {
		return extracted, true
	}
	switch {
	case extracted != "" && strings.Contains(extracted, mode.TargetPhone):
		return extracted, true
	case extracted == "":
		return mode.TargetPhone, true
	default:
		return extracted, source == models.SourceHaraj || source == models.SourceAqar
	}
}

func extractPrice(t fragmentText) (string, bool) {
	if m := pricePattern.FindString(t.snippet); m != "" {
		return m, true
	}
	if m := pricePattern.FindString(t.title); m != "" {
		return m, true
	}
	return PricePlaceholder, false
}

func extractBathrooms(t fragmentText, rooms string) string {
	if m := bathroomsPattern.FindStringSubmatch(t.snippet); m != nil {
		return m[1]
	}
	n, err := strconv.Atoi(rooms)
	if err != nil {
		n = 3
	}
	if n > 3 {
		return defaultBathsLarge
	}
	return defaultBathsSmall
}

func extractArea(t fragmentText) string {
	if m := areaPattern.FindStringSubmatch(t.snippet); m != nil {
		return m[1]
	}
	switch {
	case strings.Contains(t.lower, villaKeyword):
		return "350"
	case strings.Contains(t.lower, apartmentKeyword):
		return "140"
	default:
		return "500"
	}
}

// resolveLocation finds a city and, when possible, one of its districts.
// district is empty when only the city (or nothing) was recognised.
func resolveLocation(lower string) (city, district string) {
	for _, c := range saudiCities {
		if strings.Contains(lower, c) {
			city = c
			break
		}
	}

	if city != "" {
		for _, d := range Districts(city) {
			if strings.Contains(lower, d) {
				return city, d
			}
		}
		return city, ""
	}

	for _, cd := range saudiDistricts {
		for _, d := range cd.districts {
			if strings.Contains(lower, d) {
				return cd.city, d
			}
		}
	}
	return CapitalCity, ""
}

func formatLocation(city, district string) string {
	if district == "" {
		return city
	}
	return city + locationSeparator + district
}

type imageRule struct {
	keywords []string
	url      string
}

const fallbackImage = "https://images.unsplash.com/photo-1544984243-ec57ea16fe25?q=80&w=800"

var imageTable = []imageRule{
	{[]string{"أرض", "land"}, "https://images.unsplash.com/photo-1599809272520-27d27e725804?q=80&w=800"},
	{[]string{"عمارة", "building"}, "https://images.unsplash.com/photo-1574958269340-fa927503f3dd?q=80&w=800"},
	{[]string{"شقة", "apartment"}, "https://images.unsplash.com/photo-1502672260266-1c1ef2d93688?q=80&w=800"},
	{[]string{"فيلا", "villa"}, "https://images.unsplash.com/photo-1628744876497-eb30460be9f6?q=80&w=800"},
	{[]string{"مكتب", "office"}, "https://images.unsplash.com/photo-1497366216548-37526070297c?q=80&w=800"},
}

func pickImage(t fragmentText) string {
	content := strings.ToLower(t.title + t.snippet)
	for _, rule := range imageTable {
		for _, kw := range rule.keywords {
			if strings.Contains(content, kw) {
				return rule.url
			}
		}
	}
	return fallbackImage
}
