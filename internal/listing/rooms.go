package listing

import (
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

var explicitRoomsPattern = regexp.MustCompile(`(\d+)\s*(?:غرف|غرفة|نوم|ماستر)`)

// RoomGuesser supplies a placeholder room count when nothing in the fragment
// or the query states one.
type RoomGuesser interface {
	GuessRooms(villa bool) int
}

type randomRoomGuesser struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomRoomGuesser returns a guesser yielding 4-6 for villas and 2-3
// otherwise. The same seed yields the same sequence.
func NewRandomRoomGuesser(seed int64) RoomGuesser {
	return &randomRoomGuesser{rnd: rand.New(rand.NewSource(seed))}
}

func (g *randomRoomGuesser) GuessRooms(villa bool) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if villa {
		return 4 + g.rnd.Intn(3)
	}
	return 2 + g.rnd.Intn(2)
}

// FixedRoomGuesser always answers with the same counts.
type FixedRoomGuesser struct {
	Villa int
	Other int
}

func (g FixedRoomGuesser) GuessRooms(villa bool) int {
	if villa {
		return g.Villa
	}
	return g.Other
}

type roomsRule struct {
	name  string
	match func(t fragmentText, intent ParsedIntent) (string, bool)
}

var roomsRules = []roomsRule{
	{name: "two_rooms", match: func(t fragmentText, _ ParsedIntent) (string, bool) {
		return "2", strings.Contains(t.lower, "غرفتين")
	}},
	{name: "single_room", match: func(t fragmentText, _ ParsedIntent) (string, bool) {
		return "1", strings.Contains(t.lower, "غرفة واحدة") || strings.Contains(t.lower, "استوديو")
	}},
	{name: "explicit", match: func(t fragmentText, _ ParsedIntent) (string, bool) {
		if m := explicitRoomsPattern.FindStringSubmatch(t.lower); m != nil {
			return m[1], true
		}
		return "", false
	}},
	{name: "desired", match: func(_ fragmentText, intent ParsedIntent) (string, bool) {
		if intent.DesiredRooms == nil {
			return "", false
		}
		return strconv.Itoa(*intent.DesiredRooms), true
	}},
}

// extractRooms returns the room count and whether it came from the guesser.
func extractRooms(t fragmentText, intent ParsedIntent, guesser RoomGuesser) (string, bool) {
	for _, rule := range roomsRules {
		if rooms, ok := rule.match(t, intent); ok {
			return rooms, false
		}
	}
	villa := strings.Contains(t.lower, villaKeyword)
	return strconv.Itoa(guesser.GuessRooms(villa)), true
}
