// Package metrics holds the Prometheus collectors for record mirrors and
// store writes. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the ledger's collectors.
type Metrics struct {
	deliveries   *prometheus.CounterVec
	records      *prometheus.GaugeVec
	decodeErrors *prometheus.CounterVec
	writes       *prometheus.HistogramVec
	writeErrors  *prometheus.CounterVec
	staleMirrors *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "academy",
			Name:      "mirror_deliveries_total",
			Help:      "Snapshots delivered to a collection mirror.",
		}, []string{"collection"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "academy",
			Name:      "mirror_records",
			Help:      "Records currently held by a collection mirror.",
		}, []string{"collection"}),
		decodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "academy",
			Name:      "mirror_decode_errors_total",
			Help:      "Pushed records skipped because they could not be decoded.",
		}, []string{"collection"}),
		writes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "academy",
			Name:      "store_write_duration_seconds",
			Help:      "Latency of write-through calls to the record store.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collection", "op"}),
		writeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "academy",
			Name:      "store_write_errors_total",
			Help:      "Write-through calls rejected by the record store.",
		}, []string{"collection", "op"}),
		staleMirrors: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "academy",
			Name:      "mirror_stale",
			Help:      "1 when a mirror's listener dropped without being detached.",
		}, []string{"collection"}),
	}
	if reg != nil {
		reg.MustRegister(m.deliveries, m.records, m.decodeErrors, m.writes, m.writeErrors, m.staleMirrors)
	}
	return m
}

// Delivered records a snapshot of n records applied to a mirror.
func (m *Metrics) Delivered(collection string, n int) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(collection).Inc()
	m.records.WithLabelValues(collection).Set(float64(n))
}

// DecodeFailed records a pushed record that was skipped.
func (m *Metrics) DecodeFailed(collection string) {
	if m == nil {
		return
	}
	m.decodeErrors.WithLabelValues(collection).Inc()
}

// Wrote records a write-through call and its outcome.
func (m *Metrics) Wrote(collection, op string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.writes.WithLabelValues(collection, op).Observe(time.Since(started).Seconds())
	if err != nil {
		m.writeErrors.WithLabelValues(collection, op).Inc()
	}
}

// SetStale flags or clears a mirror's stale state.
func (m *Metrics) SetStale(collection string, stale bool) {
	if m == nil {
		return
	}
	v := 0.0
	if stale {
		v = 1
	}
	m.staleMirrors.WithLabelValues(collection).Set(v)
}
