package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	// DirectionDecode is binary to text
	DirectionDecode = "decode"
	// DirectionEncode is text to binary
	DirectionEncode = "encode"
)

// Metrics holds the Prometheus metrics of conversion runs
type Metrics struct {
	registry *prometheus.Registry

	recordsTotal       *prometheus.CounterVec
	stringsTotal       *prometheus.CounterVec
	bytesWrittenTotal  *prometheus.CounterVec
	conversionsTotal   *prometheus.CounterVec
	conversionDuration *prometheus.HistogramVec
	errorsTotal        *prometheus.CounterVec
}

// New creates the metrics on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		recordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maplink_records_total",
				Help: "Total number of map-link records converted",
			},
			[]string{"direction"},
		),

		stringsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maplink_strings_total",
				Help: "Total number of unique strings in converted string pools",
			},
			[]string{"direction"},
		),

		bytesWrittenTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maplink_bytes_written_total",
				Help: "Total number of output bytes written",
			},
			[]string{"direction"},
		),

		conversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maplink_conversions_total",
				Help: "Total number of conversion runs",
			},
			[]string{"direction", "status"},
		),

		conversionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "maplink_conversion_duration_seconds",
				Help:    "Conversion duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"direction"},
		),

		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maplink_errors_total",
				Help: "Total number of failed conversions by error kind",
			},
			[]string{"kind"},
		),
	}
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordSuccess records a completed conversion
func (m *Metrics) RecordSuccess(direction string, records, strings, bytesWritten int, duration time.Duration) {
	m.recordsTotal.WithLabelValues(direction).Add(float64(records))
	m.stringsTotal.WithLabelValues(direction).Add(float64(strings))
	m.bytesWrittenTotal.WithLabelValues(direction).Add(float64(bytesWritten))
	m.conversionsTotal.WithLabelValues(direction, statusSuccess).Inc()
	m.conversionDuration.WithLabelValues(direction).Observe(duration.Seconds())
}

// RecordFailure records a failed conversion; kind is a short error class
func (m *Metrics) RecordFailure(direction, kind string, duration time.Duration) {
	m.conversionsTotal.WithLabelValues(direction, statusError).Inc()
	m.conversionDuration.WithLabelValues(direction).Observe(duration.Seconds())
	m.errorsTotal.WithLabelValues(kind).Inc()
}

// WriteTextfile writes all metrics in the node_exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
