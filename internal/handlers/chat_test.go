package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qualiasolutions/theracoach/internal/config"
	"github.com/Qualiasolutions/theracoach/internal/i18n"
	"github.com/Qualiasolutions/theracoach/internal/middleware"
	"github.com/Qualiasolutions/theracoach/internal/ratelimit"
	"github.com/Qualiasolutions/theracoach/internal/services/ai"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newTestRouter wires the chat route the way cmd/server does, pointed at
// the given upstream. apiKey may be empty to simulate a missing credential.
func newTestRouter(t *testing.T, upstreamURL, apiKey string) http.Handler {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{MaxBodyBytes: 1 << 20},
		Upstream: config.UpstreamConfig{
			BaseURL:        upstreamURL,
			APIKey:         apiKey,
			Model:          "test-model",
			Temperature:    0.3,
			MaxTokens:      1024,
			RequestTimeout: 5 * time.Second,
		},
		RateLimit: config.RateLimitConfig{
			Store:            "memory",
			MaxRequests:      20,
			Window:           time.Minute,
			CleanupThreshold: 1000,
		},
	}

	logger := testLogger()
	metrics := middleware.NewMetrics()
	localizer := i18n.NewLocalizer("en")
	limiter := ratelimit.NewMemoryLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window, cfg.RateLimit.CleanupThreshold)
	client := ai.NewClient(&cfg.Upstream, metrics, logger)
	handler := NewChatHandler(cfg, client, localizer, metrics, logger)

	var chat http.Handler = http.HandlerFunc(handler.HandleChat)
	chat = middleware.RateLimit(limiter, localizer, metrics, logger)(chat)
	chat = middleware.RequireConfigured(client.Configured, localizer, metrics, logger)(chat)

	router := mux.NewRouter()
	router.Handle("/api/chat", chat).Methods(http.MethodPost)
	return router
}

func sseUpstream(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, body)
	}))
}

func postChat(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const validBody = `{"messages":[{"role":"user","content":"hello"}],"userAge":8}`

func TestChatStreamsUpstreamReply(t *testing.T) {
	upstream := sseUpstream(t, "data: {\"choices\":[{\"delta\":{\"content\":\"Hi\"}}]}\n\ndata: [DONE]\n\n")
	defer upstream.Close()

	rec := postChat(newTestRouter(t, upstream.URL, "key"), validBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hi", rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "19", rec.Header().Get(middleware.RateLimitHeaderRemaining))
}

func TestChatSkipsMalformedStreamLines(t *testing.T) {
	upstream := sseUpstream(t,
		"data: {\"choices\":[{\"delta\":{\"content\":\"Hi\"}}]}\n"+
			"data: {not json\n"+
			"data: {\"choices\":[{\"delta\":{\"content\":\"!\"}}]}\n"+
			"data: [DONE]\n")
	defer upstream.Close()

	rec := postChat(newTestRouter(t, upstream.URL, "key"), validBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hi!", rec.Body.String())
}

func TestChatRejectsMalformedBody(t *testing.T) {
	upstream := sseUpstream(t, "data: [DONE]\n")
	defer upstream.Close()

	rec := postChat(newTestRouter(t, upstream.URL, "key"), "{not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid request format")
}

func TestChatRejectsInvalidRequestData(t *testing.T) {
	upstream := sseUpstream(t, "data: [DONE]\n")
	defer upstream.Close()
	router := newTestRouter(t, upstream.URL, "key")

	bodies := []string{
		`{"messages":[],"userAge":8}`,
		`{"messages":[{"role":"system","content":"hi"}]}`,
		`{"messages":[{"role":"user","content":"hi"}],"userAge":1}`,
		`{"messages":[{"role":"user","content":"hi"}],"userAge":10.5}`,
	}
	for _, body := range bodies {
		rec := postChat(router, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
		assert.Contains(t, rec.Body.String(), "Invalid request data")
	}
}

func TestChatRateLimitsAfterQuota(t *testing.T) {
	upstream := sseUpstream(t, "data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\ndata: [DONE]\n")
	defer upstream.Close()
	router := newTestRouter(t, upstream.URL, "key")

	for i := 0; i < 20; i++ {
		rec := postChat(router, validBody)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := postChat(router, validBody)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get(middleware.RateLimitHeaderRemaining))
	assert.NotEmpty(t, rec.Header().Get(middleware.RateLimitHeaderReset))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "Too many requests")
}

func TestChatDistinctClientsHaveIndependentQuotas(t *testing.T) {
	upstream := sseUpstream(t, "data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\ndata: [DONE]\n")
	defer upstream.Close()
	router := newTestRouter(t, upstream.URL, "key")

	exhaust := func(ip string) *httptest.ResponseRecorder {
		var rec *httptest.ResponseRecorder
		for i := 0; i < 21; i++ {
			req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(validBody))
			req.Header.Set("X-Forwarded-For", ip)
			rec = httptest.NewRecorder()
			router.ServeHTTP(rec, req)
		}
		return rec
	}

	assert.Equal(t, http.StatusTooManyRequests, exhaust("10.1.1.1").Code)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(validBody))
	req.Header.Set("X-Forwarded-For", "10.2.2.2")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChatUnavailableWithoutAPIKey(t *testing.T) {
	upstream := sseUpstream(t, "data: [DONE]\n")
	defer upstream.Close()

	rec := postChat(newTestRouter(t, upstream.URL, ""), validBody)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "temporarily unavailable")
}

func TestChatHidesUpstreamFailureDetail(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded for key sk-123"}`, http.StatusPaymentRequired)
	}))
	defer upstream.Close()

	rec := postChat(newTestRouter(t, upstream.URL, "key"), validBody)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "sk-123")
	assert.Contains(t, rec.Body.String(), "Something went wrong")
}

func TestChatLocalizesErrors(t *testing.T) {
	upstream := sseUpstream(t, "data: [DONE]\n")
	defer upstream.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("{not json"))
	req.Header.Set("Accept-Language", "el")
	rec := httptest.NewRecorder()
	newTestRouter(t, upstream.URL, "key").ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Μη έγκυρη μορφή αιτήματος")
}
