package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alfagnish/authapi/internal/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// AccessLog logs each /api/ request with method, path, status code, duration
// and request id, and records its latency under the matched route pattern.
func AccessLog(logger logrus.FieldLogger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			if m != nil {
				m.RequestDuration.
					WithLabelValues(routePattern(r), r.Method, strconv.Itoa(status)).
					Observe(duration.Seconds())
			}

			// Scrapes and profiler hits are not worth a log line.
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				return
			}
			logger.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     status,
				"duration":   duration.Round(time.Microsecond).String(),
				"request_id": RequestIDFromContext(r.Context()),
			}).Info("request")
		})
	}
}

// routePattern keeps metric label cardinality bounded: /api/users/1 and
// /api/users/2 report under the same pattern.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
