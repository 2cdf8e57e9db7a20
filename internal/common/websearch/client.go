// internal/common/websearch/client.go
package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/Dr-Musa/najah-realestate/internal/common/errors"
	"github.com/Dr-Musa/najah-realestate/internal/common/logger"
	"github.com/Dr-Musa/najah-realestate/internal/common/metrics"
	"github.com/Dr-Musa/najah-realestate/internal/listing"
	"github.com/Dr-Musa/najah-realestate/internal/models"
)

const ProviderName = "websearch"

var (
	ErrSearchTimeout = errors.New("PROVIDER_TIMEOUT")
	ErrSearchFailed  = errors.New("PROVIDER_REQUEST_FAILED")
)

type Config struct {
	BaseURL    string
	APIKey     string
	EngineID   string
	Timeout    time.Duration
	MaxResults int
}

// Client queries a Custom Search JSON endpoint with the prompt's plain terms.
// It has no grounding, so result snippets are all the extractor gets.
type Client struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	if config.MaxResults <= 0 || config.MaxResults > 10 {
		config.MaxResults = 10
	}
	return &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: log.With(map[string]interface{}{"provider": ProviderName}),
	}
}

type searchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// Search implements listing.Searcher.
func (c *Client) Search(ctx context.Context, prompt listing.Prompt) ([]models.RawFragment, error) {
	fragments, err := c.search(ctx, prompt)
	if err != nil {
		if errors.Is(err, ErrSearchTimeout) {
			return nil, apperrors.NewProviderTimeoutError(ProviderName, err)
		}
		return nil, apperrors.NewProviderRequestFailedError(ProviderName, err)
	}
	return fragments, nil
}

func (c *Client) search(ctx context.Context, prompt listing.Prompt) ([]models.RawFragment, error) {
	terms := prompt.Terms
	if terms == "" {
		terms = prompt.Query
	}

	params := url.Values{}
	params.Add("key", c.config.APIKey)
	params.Add("cx", c.config.EngineID)
	params.Add("q", terms)
	params.Add("num", strconv.Itoa(c.config.MaxResults))
	params.Add("lr", "lang_ar")
	params.Add("gl", "sa")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil || strings.Contains(err.Error(), "Client.Timeout") || strings.Contains(err.Error(), "deadline") {
			metrics.ProviderRequests.WithLabelValues(ProviderName, "timeout").Inc()
			return nil, fmt.Errorf("%w: %v", ErrSearchTimeout, err)
		}
		metrics.ProviderRequests.WithLabelValues(ProviderName, "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderRequests.WithLabelValues(ProviderName, "error").Inc()
		return nil, fmt.Errorf("%w: status %d", ErrSearchFailed, resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		metrics.ProviderRequests.WithLabelValues(ProviderName, "error").Inc()
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchFailed, err)
	}
	metrics.ProviderRequests.WithLabelValues(ProviderName, "ok").Inc()

	fragments := make([]models.RawFragment, 0, len(result.Items))
	for _, item := range result.Items {
		if item.Link == "" {
			continue
		}
		fragments = append(fragments, models.RawFragment{
			Title:   item.Title,
			URI:     item.Link,
			Snippet: item.Snippet,
		})
	}

	c.logger.Debug("Web search completed", map[string]interface{}{
		"terms":   terms,
		"results": len(fragments),
	})
	return fragments, nil
}
