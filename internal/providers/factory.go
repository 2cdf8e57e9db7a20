// internal/providers/factory.go
package providers

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dr-Musa/najah-realestate/internal/common/config"
	apperrors "github.com/Dr-Musa/najah-realestate/internal/common/errors"
	"github.com/Dr-Musa/najah-realestate/internal/common/gemini"
	"github.com/Dr-Musa/najah-realestate/internal/common/logger"
	"github.com/Dr-Musa/najah-realestate/internal/common/ratelimit"
	"github.com/Dr-Musa/najah-realestate/internal/common/websearch"
	"github.com/Dr-Musa/najah-realestate/internal/listing"
)

// New builds the configured searcher. A non-nil rdb with rate limiting
// enabled wraps live providers in the shared limiter; fixtures are never
// limited.
func New(cfg *config.Config, rdb redis.Cmdable, log logger.Logger) (listing.Searcher, error) {
	var (
		searcher listing.Searcher
		name     string
	)

	switch cfg.Provider.Kind {
	case config.ProviderGemini:
		g := cfg.Provider.Gemini
		if g.APIKey == "" {
			return nil, apperrors.NewProviderNotConfiguredError(cfg.Provider.Kind)
		}
		name = gemini.ProviderName
		searcher = gemini.NewClient(&gemini.Config{
			BaseURL:    g.BaseURL,
			APIKey:     g.APIKey,
			Model:      g.Model,
			Timeout:    config.GetDuration(g.Timeout),
			MaxRetries: g.MaxRetries,
		}, log)

	case config.ProviderWebSearch:
		w := cfg.Provider.WebSearch
		if w.APIKey == "" || w.EngineID == "" {
			return nil, apperrors.NewProviderNotConfiguredError(cfg.Provider.Kind)
		}
		name = websearch.ProviderName
		searcher = websearch.NewClient(&websearch.Config{
			BaseURL:    w.BaseURL,
			APIKey:     w.APIKey,
			EngineID:   w.EngineID,
			Timeout:    config.GetDuration(w.Timeout),
			MaxResults: w.MaxResults,
		}, log)

	case config.ProviderFixture:
		fixture, err := LoadFixture(cfg.Provider.FixturePath)
		if err != nil {
			return nil, err
		}
		return fixture, nil

	default:
		return nil, apperrors.NewProviderNotConfiguredError(cfg.Provider.Kind)
	}

	if !cfg.RateLimit.Enabled || rdb == nil {
		return searcher, nil
	}
	return ratelimit.Wrap(searcher, rdb, ratelimit.Config{
		Provider:  name,
		Requests:  cfg.RateLimit.Requests,
		Window:    time.Duration(cfg.RateLimit.Window) * time.Millisecond,
		KeyPrefix: cfg.RateLimit.KeyPrefix,
	}, log), nil
}
