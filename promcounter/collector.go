// Package promcounter exports distributed counters as Prometheus metrics.
package promcounter

import (
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/constraints"
)

// Source is anything that can report a total, such as a
// *distcounter.Counter or a *distcounter.Local.
type Source[T constraints.Integer] interface {
	Load() T
}

// ValueKind selects the Prometheus type of the exported metric.
type ValueKind int

const (
	// Counter exports a monotonic counter. Use it only for sources that are
	// never decremented or exchanged to a smaller value.
	Counter ValueKind = iota
	// Gauge exports a value that may go up and down.
	Gauge
)

// Collector is a prometheus.Collector reporting the total of one Source on
// every scrape.
type Collector[T constraints.Integer] struct {
	src       Source[T]
	desc      *prometheus.Desc
	valueType prometheus.ValueType
}

// New returns a Collector for src. The metric name is built from the
// namespace, subsystem and name in opts.
func New[T constraints.Integer](src Source[T], opts prometheus.Opts, kind ValueKind) *Collector[T] {
	vt := prometheus.CounterValue
	if kind == Gauge {
		vt = prometheus.GaugeValue
	}
	return &Collector[T]{
		src: src,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(opts.Namespace, opts.Subsystem, opts.Name),
			opts.Help,
			nil,
			opts.ConstLabels,
		),
		valueType: vt,
	}
}

// Describe implements prometheus.Collector.
func (c *Collector[T]) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *Collector[T]) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, c.valueType, float64(c.src.Load()))
}
