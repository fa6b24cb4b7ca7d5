package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

func okHandler(c *gin.Context) { c.String(http.StatusOK, "ok") }

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitPerClient(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(2, time.Minute))
	r.GET("/", okHandler)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", "").Code)

	w := do(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "TOO_MANY_REQUESTS")

	other := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(other, req)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestDeduplication(t *testing.T) {
	d := NewDeduplicator(time.Minute)
	defer d.Close()

	r := gin.New()
	r.Use(d.Middleware())
	r.POST("/api/v1/recipes/generate", func(c *gin.Context) {
		body, _ := c.GetRawData()
		c.String(http.StatusOK, string(body))
	})
	r.GET("/api/v1/recipes", okHandler)

	first := do(r, http.MethodPost, "/api/v1/recipes/generate", `{"ingredients":["egg"]}`)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, `{"ingredients":["egg"]}`, first.Body.String(), "body is restored for the handler")

	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/api/v1/recipes/generate", `{"ingredients":["egg"]}`).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/v1/recipes/generate", `{"ingredients":["rice"]}`).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/recipes", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/recipes", "").Code)
}

func TestDeduplicationWindowExpires(t *testing.T) {
	d := NewDeduplicator(time.Second)
	defer d.Close()
	now := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	assert.False(t, d.seen("POST:/x"))
	assert.True(t, d.seen("POST:/x"))

	now = now.Add(2 * time.Second)
	assert.False(t, d.seen("POST:/x"))

	now = now.Add(time.Hour)
	d.cleanup()
	assert.Empty(t, d.requests)
}

func TestBodySizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodySizeLimit(8))
	r.POST("/", func(c *gin.Context) {
		if _, err := c.GetRawData(); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/", "small").Code)

	w := do(r, http.MethodPost, "/", strings.Repeat("x", 64))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "PAYLOAD_TOO_LARGE")
}

func TestRecoveryAndLogger(t *testing.T) {
	r := gin.New()
	r.Use(requestid.New(), Logger(), Recovery())
	r.GET("/panic", func(*gin.Context) { panic("boom") })
	r.GET("/ok", okHandler)

	w := do(r, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")

	w = do(r, http.MethodGet, "/ok", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestWebhookPlatform(t *testing.T) {
	tests := map[string]string{
		"/webhook/whatsapp":                 "whatsapp",
		"/api/v1/webhook/telegram/setup":    "telegram",
		"/api/v1/payments/webhook/razorpay": "razorpay",
		"/api/v1/recipes/generate":          "",
	}
	for path, want := range tests {
		assert.Equal(t, want, webhookPlatform(path), path)
	}
}
