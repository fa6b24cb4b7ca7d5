package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-bot/internal/core/ai/provider"
	"recipe-bot/internal/infrastructure/config"
	"recipe-bot/internal/pkg/common"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(config.OpenRouterConfig{
		APIKey:    "sk-test",
		Model:     "google/gemini-flash-1.5",
		MaxTokens: 1000,
		BaseURL:   srv.URL,
	}, 5*time.Second)
	require.NoError(t, err)
	return c
}

func TestGenerate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "google/gemini-flash-1.5", req.Model)
		assert.Equal(t, 1000, req.MaxTokens)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "make soup", req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"gen-1","choices":[{"message":{"role":"assistant","content":" Title: Soup \n"}}],"usage":{"total_tokens":42}}`))
	})

	resp, err := c.Generate(context.Background(), &provider.Request{Prompt: "make soup"})
	require.NoError(t, err)
	assert.Equal(t, "Title: Soup", resp.Content)
	assert.Equal(t, "google/gemini-flash-1.5", resp.Model)
	assert.Equal(t, 42, resp.Usage.TotalTokens)
	assert.Equal(t, "openrouter", c.Name())
}

func TestGenerateEmptyChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.Generate(context.Background(), &provider.Request{Prompt: "x"})
	assert.True(t, errors.Is(err, common.ErrEmptyUpstream))
}

func TestGenerateUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","code":429}}`))
	})

	_, err := c.Generate(context.Background(), &provider.Request{Prompt: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrBackendFailure))
	assert.Contains(t, err.Error(), "rate limited")
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(config.OpenRouterConfig{}, time.Second)
	assert.True(t, errors.Is(err, common.ErrConfiguration))
}
