package httpapi

import (
	"net/http"

	"github.com/signalsfoundry/starfield-simulator/internal/logging"
)

const requestIDHeader = "X-Request-Id"

// RequestID ensures every request carries a request_id, sourcing it from
// the inbound header if provided, and attaches a per-request logger
// annotated with request_id, method, and path.
func RequestID(base logging.Logger, next http.Handler) http.Handler {
	if base == nil {
		base = logging.Noop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if incoming := r.Header.Get(requestIDHeader); incoming != "" {
			ctx = logging.ContextWithRequestID(ctx, incoming)
		}

		ctx, reqLog := logging.WithRequestLogger(ctx, base.With(
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
		))
		ctx = logging.ContextWithLogger(ctx, reqLog)

		w.Header().Set(requestIDHeader, logging.RequestIDFromContext(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
