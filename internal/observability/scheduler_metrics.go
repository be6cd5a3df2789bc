package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RoutingCollector exposes routing/deconfliction-specific Prometheus metrics:
// A* path computation latency, intersection-engine queue depth, and the hit
// ratio of the flight-path window cache that backs paths_overlapping_in_time.
type RoutingCollector struct {
	gatherer prometheus.Gatherer

	PathComputationDuration prometheus.Histogram
	IntersectionChecksQueued prometheus.Gauge
	ConflictsRejectedTotal  prometheus.Counter
	FlightWindowCacheRatio  prometheus.Gauge
}

// NewRoutingCollector registers routing metrics against the provided registerer.
func NewRoutingCollector(reg prometheus.Registerer) (*RoutingCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	pathHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "routing_path_computation_duration_seconds",
		Help:    "Duration of A* best_path computations.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})
	pathHistogram, err := registerHistogram(reg, pathHistogram, "routing_path_computation_duration_seconds")
	if err != nil {
		return nil, err
	}

	queueGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "routing_intersection_checks_queued",
		Help: "Number of check_intersection requests currently awaiting a store round trip.",
	})
	queueGauge, err = registerGauge(reg, queueGauge, "routing_intersection_checks_queued")
	if err != nil {
		return nil, err
	}

	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "routing_conflicts_rejected_total",
		Help: "Cumulative number of check_intersection calls that returned intersects=true.",
	})
	conflicts, err = registerCounter(reg, conflicts, "routing_conflicts_rejected_total")
	if err != nil {
		return nil, err
	}

	cacheRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "routing_flight_window_cache_hit_ratio",
		Help: "Hit ratio for the flight-path window cache in front of paths_overlapping_in_time.",
	})
	cacheRatio, err = registerGauge(reg, cacheRatio, "routing_flight_window_cache_hit_ratio")
	if err != nil {
		return nil, err
	}

	return &RoutingCollector{
		gatherer:                 gatherer,
		PathComputationDuration:  pathHistogram,
		IntersectionChecksQueued: queueGauge,
		ConflictsRejectedTotal:   conflicts,
		FlightWindowCacheRatio:   cacheRatio,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *RoutingCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObservePathComputation records an A* computation duration measurement.
func (c *RoutingCollector) ObservePathComputation(d time.Duration) {
	if c == nil || c.PathComputationDuration == nil {
		return
	}
	c.PathComputationDuration.Observe(d.Seconds())
}

// SetIntersectionChecksQueued updates the in-flight intersection-check gauge.
func (c *RoutingCollector) SetIntersectionChecksQueued(count int) {
	if c == nil || c.IntersectionChecksQueued == nil {
		return
	}
	c.IntersectionChecksQueued.Set(float64(count))
}

// IncConflictsRejected increments the conflict counter.
func (c *RoutingCollector) IncConflictsRejected() {
	if c == nil || c.ConflictsRejectedTotal == nil {
		return
	}
	c.ConflictsRejectedTotal.Inc()
}

// SetFlightWindowCacheHitRatio sets the flight-path window cache hit ratio.
func (c *RoutingCollector) SetFlightWindowCacheHitRatio(ratio float64) {
	if c == nil || c.FlightWindowCacheRatio == nil {
		return
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	c.FlightWindowCacheRatio.Set(ratio)
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
