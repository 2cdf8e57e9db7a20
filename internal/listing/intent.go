package listing

import (
	"regexp"
	"strconv"
)

var (
	desiredRoomsPattern = regexp.MustCompile(`(\d+)\s*غرف`)
	targetPhonePattern  = regexp.MustCompile(`رقم الجوال\s*([0-9+]+)`)
	nonDigitPattern     = regexp.MustCompile(`\D`)
)

// ModeKind tags which search strategy a run follows.
type ModeKind string

const (
	ModeGeneral ModeKind = "general"
	ModePhone   ModeKind = "phone"
)

// SearchMode is decided once per query and read by the prompt builder, the
// extractor's discard rule and the scorer's override.
type SearchMode struct {
	Kind        ModeKind
	TargetPhone string
}

func GeneralMode() SearchMode {
	return SearchMode{Kind: ModeGeneral}
}

// PhoneMode returns a phone-scoped mode, or the general mode when digits is empty.
func PhoneMode(digits string) SearchMode {
	if digits == "" {
		return GeneralMode()
	}
	return SearchMode{Kind: ModePhone, TargetPhone: digits}
}

func (m SearchMode) IsPhone() bool {
	return m.Kind == ModePhone && m.TargetPhone != ""
}

func (m SearchMode) String() string {
	if m.Kind == "" {
		return string(ModeGeneral)
	}
	return string(m.Kind)
}

type ParsedIntent struct {
	DesiredRooms *int
	Mode         SearchMode
}

// ParseIntent extracts the desired room count and target phone from a
// composed query. Anything it cannot recognise is treated as absent.
func ParseIntent(query string) ParsedIntent {
	intent := ParsedIntent{Mode: GeneralMode()}

	if m := desiredRoomsPattern.FindStringSubmatch(query); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			intent.DesiredRooms = &n
		}
	}

	if m := targetPhonePattern.FindStringSubmatch(query); m != nil {
		intent.Mode = PhoneMode(nonDigitPattern.ReplaceAllString(m[1], ""))
	}

	return intent
}
