// internal/common/gemini/client.go
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/Dr-Musa/najah-realestate/internal/common/errors"
	"github.com/Dr-Musa/najah-realestate/internal/common/logger"
	"github.com/Dr-Musa/najah-realestate/internal/common/metrics"
	"github.com/Dr-Musa/najah-realestate/internal/listing"
	"github.com/Dr-Musa/najah-realestate/internal/models"
)

const ProviderName = "gemini"

var (
	ErrProviderTimeout       = errors.New("PROVIDER_TIMEOUT")
	ErrProviderRequestFailed = errors.New("PROVIDER_REQUEST_FAILED")
	ErrProviderRateLimited   = errors.New("PROVIDER_RATE_LIMITED")
)

type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	// Backoff is the delay before the first retry; it doubles per attempt.
	Backoff time.Duration
}

// Client calls generateContent with the Google Search grounding tool and
// turns the grounding chunks into raw fragments.
type Client struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	if config.Backoff == 0 {
		config.Backoff = 200 * time.Millisecond
	}
	return &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: log.With(map[string]interface{}{"provider": ProviderName}),
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *content              `json:"systemInstruction,omitempty"`
	Contents          []content             `json:"contents"`
	Tools             []map[string]struct{} `json:"tools"`
}

type groundingChunk struct {
	Web *struct {
		URI     string `json:"uri"`
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
	} `json:"web"`
}

type groundingSupport struct {
	Segment struct {
		Text string `json:"text"`
	} `json:"segment"`
	GroundingChunkIndices []int `json:"groundingChunkIndices"`
}

type generateResponse struct {
	Candidates []struct {
		GroundingMetadata *struct {
			GroundingChunks   []groundingChunk   `json:"groundingChunks"`
			GroundingSupports []groundingSupport `json:"groundingSupports"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

// Search implements listing.Searcher.
func (c *Client) Search(ctx context.Context, prompt listing.Prompt) ([]models.RawFragment, error) {
	body, err := json.Marshal(generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: prompt.SystemInstruction}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: prompt.Text}}}},
		Tools:             []map[string]struct{}{{"google_search": {}}},
	})
	if err != nil {
		return nil, providerError(fmt.Errorf("%w: encode request: %v", ErrProviderRequestFailed, err))
	}

	data, err := c.post(ctx, body)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(ProviderName, statusLabel(err)).Inc()
		return nil, providerError(err)
	}
	metrics.ProviderRequests.WithLabelValues(ProviderName, "ok").Inc()

	var resp generateResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, providerError(fmt.Errorf("%w: decode response: %v", ErrProviderRequestFailed, err))
	}

	fragments := toFragments(resp)
	c.logger.Info("Grounded search completed", map[string]interface{}{
		"mode":      prompt.Mode.String(),
		"fragments": len(fragments),
	})
	return fragments, nil
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent",
		strings.TrimRight(c.config.BaseURL, "/"), url.PathEscape(c.config.Model))
}

func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.config.Backoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrProviderTimeout, ctx.Err())
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProviderRequestFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.config.APIKey)

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil || isTimeout(err) {
				return nil, fmt.Errorf("%w: %v", ErrProviderTimeout, err)
			}
			lastErr = err
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK && readErr == nil:
			return data, nil
		case resp.StatusCode == http.StatusOK:
			lastErr = readErr
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("%w: status %d", ErrProviderRateLimited, resp.StatusCode)
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
		default:
			return nil, fmt.Errorf("%w: status %d: %s", ErrProviderRequestFailed, resp.StatusCode, truncate(string(data), 200))
		}

		c.logger.Warn("Provider request failed", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   lastErr.Error(),
		})
	}

	if errors.Is(lastErr, ErrProviderRateLimited) {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %v", ErrProviderRequestFailed, lastErr)
}

// toFragments keeps chunks carrying a web reference. A chunk without its own
// snippet gets the answer segments that cite it.
func toFragments(resp generateResponse) []models.RawFragment {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return []models.RawFragment{}
	}
	meta := resp.Candidates[0].GroundingMetadata

	cited := make(map[int][]string)
	for _, s := range meta.GroundingSupports {
		text := strings.TrimSpace(s.Segment.Text)
		if text == "" {
			continue
		}
		for _, idx := range s.GroundingChunkIndices {
			cited[idx] = append(cited[idx], text)
		}
	}

	out := make([]models.RawFragment, 0, len(meta.GroundingChunks))
	for i, chunk := range meta.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		snippet := chunk.Web.Snippet
		if snippet == "" {
			snippet = strings.Join(cited[i], " ")
		}
		out = append(out, models.RawFragment{
			Title:   chunk.Web.Title,
			URI:     chunk.Web.URI,
			Snippet: snippet,
		})
	}
	return out
}

func isTimeout(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "deadline") ||
		strings.Contains(msg, "Client.Timeout")
}

func statusLabel(err error) string {
	switch {
	case errors.Is(err, ErrProviderTimeout):
		return "timeout"
	case errors.Is(err, ErrProviderRateLimited):
		return "rate_limited"
	default:
		return "error"
	}
}

// providerError lifts a sentinel-wrapped failure into its StandardError.
func providerError(err error) error {
	switch {
	case errors.Is(err, ErrProviderTimeout):
		return apperrors.NewProviderTimeoutError(ProviderName, err)
	case errors.Is(err, ErrProviderRateLimited):
		return apperrors.NewProviderRateLimitedError(ProviderName, 0).WithCause(err)
	default:
		return apperrors.NewProviderRequestFailedError(ProviderName, err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
