package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/marquee/pkg/metrics"
)

// MetricsMiddleware records request count, latency and error class for one
// route. Chart routes are labelled per chart so each chart has its own
// latency series.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		label := endpointLabel(endpoint, r)
		code := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(label, r.Method, code)
		metrics.RecordHTTPRequestDuration(label, r.Method, code, float64(time.Since(start).Microseconds())/1000.0)

		if kind := errorClass(rec.status); kind != "" {
			metrics.RecordErrorByComponent("http", kind)
		}
	}
}

// endpointLabel appends the chart name for chart and layout routes. Unknown
// names collapse into "other" to bound label cardinality.
func endpointLabel(endpoint string, r *http.Request) string {
	var chart string
	switch endpoint {
	case "charts":
		chart = strings.TrimSuffix(r.PathValue("file"), ".svg")
	case "layout":
		chart = r.PathValue("chart")
	default:
		return endpoint
	}
	if !knownChart(chart) {
		chart = "other"
	}
	return endpoint + "/" + chart
}

func errorClass(status int) string {
	switch {
	case status < http.StatusBadRequest:
		return ""
	case status == http.StatusServiceUnavailable:
		return "unavailable"
	case status >= http.StatusInternalServerError:
		return "server_error"
	case status == http.StatusTooManyRequests:
		return "backpressure"
	case status == http.StatusConflict:
		return "superseded"
	case status == http.StatusNotFound:
		return "not_found"
	default:
		return "client_error"
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
