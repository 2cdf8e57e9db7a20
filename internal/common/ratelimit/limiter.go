// internal/common/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/Dr-Musa/najah-realestate/internal/common/errors"
	"github.com/Dr-Musa/najah-realestate/internal/common/logger"
	"github.com/Dr-Musa/najah-realestate/internal/common/metrics"
	"github.com/Dr-Musa/najah-realestate/internal/listing"
	"github.com/Dr-Musa/najah-realestate/internal/models"
)

type Config struct {
	Provider  string
	Requests  int
	Window    time.Duration
	KeyPrefix string
}

// Searcher gates an inner searcher with a fixed-window counter kept in Redis,
// so every replica shares one provider budget. Redis failures let the call
// through.
type Searcher struct {
	inner  listing.Searcher
	rdb    redis.Cmdable
	config Config
	logger logger.Logger
}

// Wrap returns inner unchanged when the limit is not positive.
func Wrap(inner listing.Searcher, rdb redis.Cmdable, config Config, log logger.Logger) listing.Searcher {
	if inner == nil || rdb == nil || config.Requests <= 0 || config.Window <= 0 {
		return inner
	}
	return &Searcher{
		inner:  inner,
		rdb:    rdb,
		config: config,
		logger: log.With(map[string]interface{}{"component": "rate-limiter", "provider": config.Provider}),
	}
}

func (s *Searcher) Search(ctx context.Context, prompt listing.Prompt) ([]models.RawFragment, error) {
	if err := s.take(ctx); err != nil {
		return nil, err
	}
	return s.inner.Search(ctx, prompt)
}

func (s *Searcher) key() string {
	return s.config.KeyPrefix + ":" + s.config.Provider
}

// windowScript increments the counter and returns it with the window's
// remaining milliseconds. A counter without a TTL gets one in the same call.
var windowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

func (s *Searcher) take(ctx context.Context) error {
	reply, err := windowScript.Run(ctx, s.rdb, []string{s.key()}, s.config.Window.Milliseconds()).Int64Slice()
	if err != nil || len(reply) != 2 {
		if err == nil {
			err = fmt.Errorf("unexpected window reply %v", reply)
		}
		s.logger.Warn("Rate limiter unavailable, allowing call", map[string]interface{}{"error": err.Error()})
		return nil
	}
	count := reply[0]
	retryAfter := time.Duration(reply[1]) * time.Millisecond

	if count <= int64(s.config.Requests) {
		return nil
	}

	if retryAfter <= 0 {
		retryAfter = s.config.Window
	}

	metrics.RateLimited.WithLabelValues(s.config.Provider).Inc()
	s.logger.Warn("Provider call rate limited", map[string]interface{}{
		"count":      count,
		"limit":      s.config.Requests,
		"retryAfter": retryAfter.String(),
	})
	return apperrors.NewProviderRateLimitedError(s.config.Provider, retryAfter)
}
