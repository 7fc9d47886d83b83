// internal/metrics/metrics.go
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "prometheus_client"

// Recorder counts backend API traffic. It implements api.Observer.
type Recorder struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// Summary is the aggregate shown on the dashboard
type Summary struct {
	Requests int
	Failed   int
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Backend API requests by method and status class",
			},
			[]string{"method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "Backend API request latency",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 8),
			},
			[]string{"method"},
		),
	}
	r.registry.MustRegister(r.requests, r.duration)
	return r
}

// StatusClass buckets an HTTP status: "2xx", "4xx" and so on, or "error"
// when no response arrived.
func StatusClass(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}

func (r *Recorder) ObserveRequest(method string, status int, elapsed time.Duration) {
	r.requests.WithLabelValues(method, StatusClass(status)).Inc()
	r.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Registry exposes the collectors for scraping or inspection
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Summary totals requests and failures. Anything outside 2xx and 3xx
// counts as failed.
func (r *Recorder) Summary() Summary {
	var s Summary
	families, err := r.registry.Gather()
	if err != nil {
		return s
	}
	for _, mf := range families {
		if mf.GetName() != namespace+"_api_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			n := int(m.GetCounter().GetValue())
			s.Requests += n
			for _, l := range m.GetLabel() {
				if l.GetName() == "status" && l.GetValue() != "2xx" && l.GetValue() != "3xx" {
					s.Failed += n
				}
			}
		}
	}
	return s
}
