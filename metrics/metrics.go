// Package metrics exposes Prometheus collectors for SRFax client calls.
//
// A Collector is registered on a caller-supplied registry and handed to the
// client with srfax.WithMetrics:
//
//	reg := prometheus.NewRegistry()
//	m, err := metrics.New(reg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := srfax.New(id, pwd, srfax.WithMetrics(m))
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "srfax"

// Collector records per-action request counts and latencies.
type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// ErrNilRegisterer is returned by New when no registry is given.
var ErrNilRegisterer = errors.New("metrics: registerer is required")

// New creates a Collector and registers it on reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		return nil, ErrNilRegisterer
	}

	c := &Collector{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "client_requests_total",
				Help:      "Total number of SRFax API requests",
			},
			[]string{"action", "outcome"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "client_request_duration_seconds",
				Help:      "Duration of SRFax API requests in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"action"},
		),
	}

	for _, col := range []prometheus.Collector{c.RequestsTotal, c.RequestDuration} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// ObserveRequest records one completed round trip.
func (c *Collector) ObserveRequest(action, outcome string, duration time.Duration) {
	c.RequestsTotal.WithLabelValues(action, outcome).Inc()
	c.RequestDuration.WithLabelValues(action).Observe(duration.Seconds())
}
