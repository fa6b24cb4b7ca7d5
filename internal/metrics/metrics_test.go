package metrics_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-bot/internal/metrics"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRecordersExposeSeries(t *testing.T) {
	metrics.RecordWebhook("whatsapp", "deferred")
	metrics.RecordIntent("telegram", "recipe_request")
	metrics.RecordJob("generate_recipe", nil)
	metrics.RecordJob("create_payment", errors.New("boom"))
	metrics.ObserveAIRequest("gemini", 1500*time.Millisecond, nil)
	metrics.RecordPayment("success")
	metrics.SetQueueDepth(3)

	body := scrape(t)
	for _, want := range []string{
		`recipe_bot_webhook_requests_total{outcome="deferred",platform="whatsapp"}`,
		`recipe_bot_intents_total{kind="recipe_request",platform="telegram"}`,
		`recipe_bot_jobs_total{job="generate_recipe",result="ok"}`,
		`recipe_bot_jobs_total{job="create_payment",result="error"}`,
		`recipe_bot_ai_request_duration_seconds_count{provider="gemini",result="ok"}`,
		`recipe_bot_payments_total{status="success"}`,
		`recipe_bot_queue_depth 3`,
	} {
		assert.Contains(t, body, want)
	}
}
