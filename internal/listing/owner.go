package listing

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Dr-Musa/najah-realestate/internal/models"
)

const (
	OwnerHarajUser   = "مستخدم حراج"
	OwnerAqarBroker  = "وسيط عقار"
	OwnerAdvertiser  = "معلن عقاري"
	maxCompanyTokens = 6
	maxLabelledRunes = 30
)

var (
	companyPattern     = regexp.MustCompile(`(?:شركة|شركه|مؤسسة|مكتب|عقارات|مجموعة)\s+[\x{0600}-\x{06FF}\s0-9]{3,40}`)
	ownerLabelPattern  = regexp.MustCompile(`(?:المعلن|المالك|بواسطة|الكاتب)[:\s\-]+([\x{0600}-\x{06FF}\s]+)`)
	harajMemberPattern = regexp.MustCompile(`عضو\s+(\d+)`)
)

var genericOwners = map[string]struct{}{
	OwnerHarajUser:  {},
	OwnerAqarBroker: {},
	OwnerAdvertiser: {},
}

// IsGenericOwner reports whether name is one of the anonymous fallback labels.
func IsGenericOwner(name string) bool {
	_, ok := genericOwners[name]
	return ok
}

type ownerRule struct {
	name  string
	match func(t fragmentText, source models.Source) (string, bool)
}

// ownerRules are tried in order; the generic fallback runs only if all miss.
var ownerRules = []ownerRule{
	{name: "company", match: matchCompany},
	{name: "label", match: matchOwnerLabel},
	{name: "haraj_member", match: matchHarajMember},
}

func matchCompany(t fragmentText, _ models.Source) (string, bool) {
	m := companyPattern.FindString(t.original)
	if m == "" {
		return "", false
	}
	tokens := strings.Fields(m)
	if len(tokens) > maxCompanyTokens {
		tokens = tokens[:maxCompanyTokens]
	}
	return strings.Join(tokens, " "), true
}

func matchOwnerLabel(t fragmentText, _ models.Source) (string, bool) {
	m := ownerLabelPattern.FindStringSubmatch(t.original)
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	if name == "" || utf8.RuneCountInString(name) >= maxLabelledRunes {
		return "", false
	}
	return name, true
}

func matchHarajMember(t fragmentText, source models.Source) (string, bool) {
	if source != models.SourceHaraj {
		return "", false
	}
	m := harajMemberPattern.FindStringSubmatch(t.snippet)
	if m == nil {
		return "", false
	}
	return fmt.Sprintf("عضو حراج %s", m[1]), true
}

func fallbackOwner(source models.Source) string {
	switch source {
	case models.SourceHaraj:
		return OwnerHarajUser
	case models.SourceAqar:
		return OwnerAqarBroker
	default:
		return OwnerAdvertiser
	}
}

func extractOwner(t fragmentText, source models.Source) string {
	for _, rule := range ownerRules {
		if name, ok := rule.match(t, source); ok {
			return name
		}
	}
	return fallbackOwner(source)
}
