// Package metrics instruments intents and persistence with Prometheus.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the bucket list collectors on a private registry.
type Recorder struct {
	registry *prometheus.Registry
	intents  *prometheus.CounterVec
	persist  prometheus.Histogram
	tasks    *prometheus.GaugeVec
}

// New creates a Recorder and registers its collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		intents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bucketlist_intents_total",
				Help: "Intents processed, by intent and result.",
			},
			[]string{"intent", "result"},
		),
		persist: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bucketlist_persist_seconds",
				Help:    "Time spent transforming and persisting one intent.",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
		),
		tasks: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bucketlist_tasks",
				Help: "Tasks in the current collection, by state.",
			},
			[]string{"state"},
		),
	}
	r.registry.MustRegister(r.intents, r.persist, r.tasks)
	return r
}

// ObserveIntent records one processed intent.
func (r *Recorder) ObserveIntent(intent string, err error, d time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.intents.WithLabelValues(intent, result).Inc()
	r.persist.Observe(d.Seconds())
}

// SetTasks records the size of the current collection.
func (r *Recorder) SetTasks(total, completed int) {
	r.tasks.WithLabelValues("completed").Set(float64(completed))
	r.tasks.WithLabelValues("pending").Set(float64(total - completed))
}

// Registry returns the private registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return r.ServeListener(ctx, ln)
}

// ServeListener exposes /metrics on ln until ctx is cancelled.
func (r *Recorder) ServeListener(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
