// internal/providers/fixture.go
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Dr-Musa/najah-realestate/internal/listing"
	"github.com/Dr-Musa/najah-realestate/internal/models"
)

// FixtureSearcher replays a recorded fragment set for every prompt.
type FixtureSearcher struct {
	fragments []models.RawFragment
}

func LoadFixture(path string) (*FixtureSearcher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture accepts either a bare fragment array or {"fragments": [...]}.
func ParseFixture(data []byte) (*FixtureSearcher, error) {
	var fragments []models.RawFragment
	if err := json.Unmarshal(data, &fragments); err == nil {
		return &FixtureSearcher{fragments: fragments}, nil
	}

	var wrapped struct {
		Fragments []models.RawFragment `json:"fragments"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return &FixtureSearcher{fragments: wrapped.Fragments}, nil
}

func (f *FixtureSearcher) Search(ctx context.Context, _ listing.Prompt) ([]models.RawFragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]models.RawFragment, len(f.fragments))
	copy(out, f.fragments)
	return out, nil
}
