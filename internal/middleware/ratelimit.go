// Package middleware carries the cross-cutting pieces of the request path:
// the rate-limit gate and Prometheus metrics.
package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Qualiasolutions/theracoach/internal/i18n"
	"github.com/Qualiasolutions/theracoach/internal/models"
	"github.com/Qualiasolutions/theracoach/internal/ratelimit"
)

type contextKey string

const decisionKey contextKey = "ratelimit.decision"

// RateLimitHeaderRemaining exposes the caller's remaining quota.
const RateLimitHeaderRemaining = "X-RateLimit-Remaining"

// RateLimitHeaderReset exposes the window reset time as a unix timestamp.
const RateLimitHeaderReset = "X-RateLimit-Reset"

// DecisionFromContext returns the rate-limit decision recorded for this
// request, if the rate limit middleware ran.
func DecisionFromContext(ctx context.Context) (models.Decision, bool) {
	d, ok := ctx.Value(decisionKey).(models.Decision)
	return d, ok
}

// RateLimit gates requests on the limiter before any body parsing happens.
// Rejected requests get a 429 with retry metadata and never reach the next
// handler. A failing limiter store fails open: throttling is a guard rail
// here, not worth taking the whole service down for.
func RateLimit(limiter ratelimit.Limiter, localizer *i18n.Localizer, metrics *Metrics, logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier := ratelimit.ClientIP(r)

			decision, err := limiter.Check(r.Context(), identifier)
			if err != nil {
				logger.WithError(err).WithField("identifier", identifier).
					Error("Rate limit check failed, allowing request")
				metrics.RecordRateLimitError()
				next.ServeHTTP(w, r)
				return
			}

			if !decision.Allowed {
				logger.WithFields(logrus.Fields{
					"identifier": identifier,
					"reset_at":   decision.ResetAt,
				}).Warn("Rate limit exceeded")
				metrics.RecordRateLimitExceeded()

				retryAfter := int(math.Ceil(time.Until(decision.ResetAt).Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}

				w.Header().Set(RateLimitHeaderRemaining, "0")
				w.Header().Set(RateLimitHeaderReset, strconv.FormatInt(decision.ResetAt.Unix(), 10))
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprintln(w, localizer.Get(r.Header.Get("Accept-Language"), i18n.MsgRateLimitExceeded))
				return
			}

			ctx := context.WithValue(r.Context(), decisionKey, decision)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
