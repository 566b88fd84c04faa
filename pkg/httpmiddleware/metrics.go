package httpmiddleware

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Metrics records a request counter and a latency histogram per method and
// status code, and tags the active span with the request id.
func Metrics(m *app.Telemetry) (Middleware, error) {
	meter := m.MeterProvider().Meter("freshmart.http")

	requests, err := meter.Int64Counter("http.server.request_count",
		metric.WithDescription("Number of handled HTTP requests"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create request counter")
	}

	duration, err := meter.Float64Histogram("http.server.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("HTTP request handling duration"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create duration histogram")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			if id := RequestIDFromContext(r.Context()); id != "" {
				trace.SpanFromContext(r.Context()).
					SetAttributes(attribute.String("http.request_id", id))
			}

			next.ServeHTTP(rec, r)

			attrs := metric.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.Int("http.status_code", rec.status),
			)
			requests.Add(r.Context(), 1, attrs)
			duration.Record(r.Context(), float64(time.Since(start))/float64(time.Millisecond), attrs)
		})
	}, nil
}
