package listing

import (
	"strings"
	"unicode/utf8"

	"github.com/Dr-Musa/najah-realestate/internal/models"
)

const (
	MinTrustScore = 20
	MaxTrustScore = 100

	baseScore          = 50
	priceBonus         = 5
	localPhoneBonus    = 10
	districtBonus      = 5
	namedOwnerBonus    = 5
	minNamedOwnerRunes = 6
	targetMatchScore   = 95
	targetMissScore    = 45
)

var sourceBonus = map[models.Source]int{
	models.SourceAqar:   30,
	models.SourceBayut:  25,
	models.SourceWasalt: 25,
	models.SourceHaraj:  15,
}

// Score computes the bounded trust score of a draft. It is deterministic.
func Score(d Draft, intent ParsedIntent) int {
	l := d.Listing
	phone := l.PhoneValue()

	if intent.Mode.IsPhone() {
		if phone != "" && strings.Contains(phone, intent.Mode.TargetPhone) {
			return clamp(targetMatchScore)
		}
		return clamp(targetMissScore)
	}

	total := baseScore + sourceBonus[l.Source]
	if d.PriceMatched {
		total += priceBonus
	}
	if strings.HasPrefix(phone, LocalMobilePrefix) {
		total += localPhoneBonus
	}
	if l.District != "" {
		total += districtBonus
	}
	if utf8.RuneCountInString(l.OwnerName) >= minNamedOwnerRunes && !IsGenericOwner(l.OwnerName) {
		total += namedOwnerBonus
	}
	return clamp(total)
}

func clamp(score int) int {
	if score < MinTrustScore {
		return MinTrustScore
	}
	if score > MaxTrustScore {
		return MaxTrustScore
	}
	return score
}

// Trust level bands.
const (
	TrustHigh   = "high"
	TrustMedium = "medium"
	TrustWeak   = "weak"
)

var trustLabels = map[string]string{
	TrustHigh:   "موثوقية عالية",
	TrustMedium: "موثوقية متوسطة",
	TrustWeak:   "بيانات ضعيفة",
}

// TrustLevel maps a score onto its band and Arabic display label.
func TrustLevel(score int) (level, label string) {
	switch {
	case score >= 80:
		level = TrustHigh
	case score >= 50:
		level = TrustMedium
	default:
		level = TrustWeak
	}
	return level, trustLabels[level]
}
