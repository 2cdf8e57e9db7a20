package websearch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Dr-Musa/najah-realestate/internal/common/errors"
	"github.com/Dr-Musa/najah-realestate/internal/common/logger"
	"github.com/Dr-Musa/najah-realestate/internal/listing"
)

func newTestClient(t *testing.T, url string) *Client {
	return NewClient(&Config{
		BaseURL:    url,
		APIKey:     "key",
		EngineID:   "cx",
		Timeout:    time.Second,
		MaxResults: 5,
	}, logger.NewTestLogger(t))
}

func TestSearch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "key", q.Get("key"))
		assert.Equal(t, "cx", q.Get("cx"))
		assert.Equal(t, `"0551234567" عقار`, q.Get("q"))
		assert.Equal(t, "5", q.Get("num"))
		w.Write([]byte(`{"items":[
			{"title":"فيلا للبيع","link":"https://sa.aqar.fm/1","snippet":"فيلا 5 غرف"},
			{"title":"بدون رابط","link":"","snippet":"x"}
		]}`))
	}))
	defer server.Close()

	prompt := listing.BuildPrompt("رقم الجوال 0551234567", listing.PhoneMode("0551234567"))
	fragments, err := newTestClient(t, server.URL).Search(context.Background(), prompt)
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	assert.Equal(t, "https://sa.aqar.fm/1", fragments[0].URI)
	assert.Equal(t, "فيلا 5 غرف", fragments[0].Snippet)
}

func TestSearch_FallsBackToQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "شقة جدة", r.URL.Query().Get("q"))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	fragments, err := newTestClient(t, server.URL).Search(context.Background(), listing.Prompt{Query: "شقة جدة"})
	require.NoError(t, err)
	assert.Empty(t, fragments)
}

func TestSearch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Search(context.Background(), listing.Prompt{Query: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSearchFailed))
	assert.Equal(t, apperrors.ErrCodeProviderRequestFailed, apperrors.CodeOf(err))
}

func TestSearch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	client.client.Timeout = 10 * time.Millisecond

	_, err := client.Search(context.Background(), listing.Prompt{Query: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSearchTimeout))
	assert.Equal(t, apperrors.ErrCodeProviderTimeout, apperrors.CodeOf(err))
}

func TestNewClient_ClampsMaxResults(t *testing.T) {
	c := NewClient(&Config{MaxResults: 50}, logger.NewNoOpLogger())
	assert.Equal(t, 10, c.config.MaxResults)
}
