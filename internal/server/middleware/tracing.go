package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Tracing creates an OpenTelemetry server span per request using the
// globally registered tracer provider. Spans are named "METHOD /path".
func Tracing(enabled bool, serviceName string) Middleware {
	if !enabled {
		return passthrough
	}

	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, serviceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}
}
