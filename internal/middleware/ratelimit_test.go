package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qualiasolutions/theracoach/internal/i18n"
	"github.com/Qualiasolutions/theracoach/internal/models"
)

type stubLimiter struct {
	decision models.Decision
	err      error
}

func (s *stubLimiter) Check(context.Context, string) (models.Decision, error) {
	return s.decision, s.err
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func runRateLimit(t *testing.T, limiter *stubLimiter) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		d, ok := DecisionFromContext(r.Context())
		require.True(t, ok)
		w.Header().Set(RateLimitHeaderRemaining, strconv.Itoa(d.Remaining))
		w.WriteHeader(http.StatusOK)
	})

	handler := RateLimit(limiter, i18n.NewLocalizer("en"), NewMetrics(), testLogger())(next)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", nil))
	return rec, reached
}

func TestRateLimitAllowsAndRecordsDecision(t *testing.T) {
	limiter := &stubLimiter{decision: models.Decision{Allowed: true, Remaining: 7}}

	rec, reached := runRateLimit(t, limiter)

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", rec.Header().Get(RateLimitHeaderRemaining))
}

func TestRateLimitBlocksWithRetryMetadata(t *testing.T) {
	resetAt := time.Now().Add(42 * time.Second)
	limiter := &stubLimiter{decision: models.Decision{Allowed: false, Remaining: 0, ResetAt: resetAt}}

	rec, reached := runRateLimit(t, limiter)

	assert.False(t, reached)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get(RateLimitHeaderRemaining))
	assert.Equal(t, strconv.FormatInt(resetAt.Unix(), 10), rec.Header().Get(RateLimitHeaderReset))

	retryAfter, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, retryAfter, 1)
	assert.LessOrEqual(t, retryAfter, 43)
}

func TestRateLimitFailsOpenOnStoreError(t *testing.T) {
	limiter := &stubLimiter{err: errors.New("redis gone")}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := DecisionFromContext(r.Context())
		assert.False(t, ok)
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimit(limiter, i18n.NewLocalizer("en"), NewMetrics(), testLogger())(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
