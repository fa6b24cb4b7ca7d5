package gemini

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-bot/internal/core/ai/provider"
	"recipe-bot/internal/infrastructure/config"
	"recipe-bot/internal/pkg/common"
)

func newTestClient(t *testing.T, retries int, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(),
		config.GeminiConfig{APIKey: "test-key", Model: "gemini-1.5-flash-latest"},
		Options{BaseURL: srv.URL + "/", MaxRetries: retries, RetryDelay: time.Millisecond},
	)
	require.NoError(t, err)
	return c
}

func TestGenerate(t *testing.T) {
	c := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "gemini-1.5-flash-latest:generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "Title: Omelette\n"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 10, "candidatesTokenCount": 20, "totalTokenCount": 30}
		}`))
	})

	resp, err := c.Generate(context.Background(), &provider.Request{Prompt: "eggs"})
	require.NoError(t, err)
	assert.Equal(t, "Title: Omelette", resp.Content)
	assert.Equal(t, 30, resp.Usage.TotalTokens)
	assert.Equal(t, "gemini", c.Name())
}

func TestGenerateEmptyText(t *testing.T) {
	c := newTestClient(t, 0, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"role": "model", "parts": [{"text": "   "}]}}]}`))
	})

	_, err := c.Generate(context.Background(), &provider.Request{Prompt: "eggs"})
	assert.True(t, errors.Is(err, common.ErrEmptyUpstream))
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, 2, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": {"code": 503, "message": "overloaded", "status": "UNAVAILABLE"}}`))
	})

	_, err := c.Generate(context.Background(), &provider.Request{Prompt: "eggs"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrBackendFailure))
	assert.Equal(t, int32(3), calls.Load())
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), config.GeminiConfig{}, Options{})
	assert.True(t, errors.Is(err, common.ErrConfiguration))
}
