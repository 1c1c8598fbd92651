package middleware

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Qualiasolutions/theracoach/internal/i18n"
)

// RequireConfigured short-circuits every request with 503 while the
// upstream credential is missing. The condition is logged loudly at boot;
// per request it only produces a clean generic response, never a crash and
// never an upstream call.
func RequireConfigured(configured func() bool, localizer *i18n.Localizer, metrics *Metrics, logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !configured() {
				logger.Error("Rejecting request: upstream API key is not configured")
				metrics.RecordRequest("unconfigured")
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusServiceUnavailable)
				fmt.Fprintln(w, localizer.Get(r.Header.Get("Accept-Language"), i18n.MsgServiceUnavailable))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
