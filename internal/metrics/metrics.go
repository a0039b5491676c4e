// Package metrics counts API requests and harvest outcomes for one run and
// exports them to a node-exporter textfile or a Pushgateway.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// JobName is the Pushgateway job label.
const JobName = "scholar_harvest"

// Registry holds the collectors of one run.
type Registry struct {
	reg *prometheus.Registry

	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	PapersTotal        *prometheus.CounterVec
	LastRunTimestamp   prometheus.Gauge
}

// New creates a Registry with all collectors registered.
func New() *Registry {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Registry{
		reg: reg,
		APIRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scholar_api_requests_total",
				Help: "Total number of metadata API requests",
			},
			[]string{"service", "status"},
		),
		APIRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scholar_api_request_duration_seconds",
				Help:    "Duration of metadata API requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service"},
		),
		PapersTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scholar_papers_total",
				Help: "Papers processed by harvests, by outcome",
			},
			[]string{"action"},
		),
		LastRunTimestamp: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "scholar_harvest_last_run_timestamp_seconds",
				Help: "Unix time the last harvest finished",
			},
		),
	}
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ObserveRequest records one API request.
func (r *Registry) ObserveRequest(service, status string, elapsed time.Duration) {
	r.APIRequestsTotal.WithLabelValues(service, status).Inc()
	r.APIRequestDuration.WithLabelValues(service).Observe(elapsed.Seconds())
}

// ObservePaper records one per-paper outcome.
func (r *Registry) ObservePaper(action string) {
	r.PapersTotal.WithLabelValues(action).Inc()
}

// MarkFinished sets the last-run gauge.
func (r *Registry) MarkFinished(t time.Time) {
	r.LastRunTimestamp.Set(float64(t.Unix()))
}

// WriteTextfile writes the metrics in text exposition format, for the node
// exporter's textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

// Push sends the metrics to a Pushgateway, grouped by ISSN.
func (r *Registry) Push(ctx context.Context, gatewayURL, issn string) error {
	err := push.New(gatewayURL, JobName).
		Gatherer(r.reg).
		Grouping("issn", issn).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("pushing metrics: %w", err)
	}
	return nil
}
