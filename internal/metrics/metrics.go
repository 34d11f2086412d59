// Package metrics exposes workout tracker counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the store and the controller report to.
type Recorder interface {
	WorkoutAdded(kind string)
	ValidationFailed(kind string)
	StorageWriteFailed()
	StorageCorrupt()
}

type Collector struct {
	added            *prometheus.CounterVec
	validationFailed *prometheus.CounterVec
	writeFailed      prometheus.Counter
	corrupt          prometheus.Counter
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		added: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mapty_workouts_added_total",
			Help: "Workouts created, by type.",
		}, []string{"type"}),
		validationFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mapty_validation_failures_total",
			Help: "Rejected workout forms, by type.",
		}, []string{"type"}),
		writeFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mapty_storage_write_failures_total",
			Help: "Collection writes that did not reach storage.",
		}),
		corrupt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mapty_storage_corrupt_loads_total",
			Help: "Loads that discarded unreadable stored data.",
		}),
	}

	reg.MustRegister(
		c.added,
		c.validationFailed,
		c.writeFailed,
		c.corrupt,
	)

	return c
}

func (c *Collector) WorkoutAdded(kind string) {
	c.added.WithLabelValues(kind).Inc()
}

func (c *Collector) ValidationFailed(kind string) {
	c.validationFailed.WithLabelValues(kind).Inc()
}

func (c *Collector) StorageWriteFailed() {
	c.writeFailed.Inc()
}

func (c *Collector) StorageCorrupt() {
	c.corrupt.Inc()
}

// Handler serves the scrape endpoint for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) WorkoutAdded(string)     {}
func (Nop) ValidationFailed(string) {}
func (Nop) StorageWriteFailed()     {}
func (Nop) StorageCorrupt()         {}
