package status

import "sync/atomic"

// Registry is the central metrics facade
// Subsystems cache pointers during construction; tick loops write directly to atomics
type Registry struct {
	Counters *MetricMap[atomic.Int64]
	Gauges   *MetricMap[Gauge]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Counters: NewMetricMap[atomic.Int64](),
		Gauges:   NewMetricMap[Gauge](),
	}
}

// Counter is shorthand for Counters.Get
func (r *Registry) Counter(key string) *atomic.Int64 {
	return r.Counters.Get(key)
}

// Gauge is shorthand for Gauges.Get
func (r *Registry) Gauge(key string) *Gauge {
	return r.Gauges.Get(key)
}

// Snapshot copies every metric into a plain map, counters converted to float64
func (r *Registry) Snapshot() map[string]float64 {
	out := make(map[string]float64, r.Counters.Count()+r.Gauges.Count())
	r.Counters.Range(func(key string, c *atomic.Int64) {
		out[key] = float64(c.Load())
	})
	r.Gauges.Range(func(key string, g *Gauge) {
		out[key] = g.Get()
	})
	return out
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Counters.Count() + r.Gauges.Count()
}
