package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters/histograms for the scheduling engine.
type SchedulingMetrics struct {
	bookingsTotal    *prometheus.CounterVec
	slotQueriesTotal *prometheus.CounterVec
	slotQueryLatency prometheus.Histogram
	cacheTotal       *prometheus.CounterVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicdesk",
			Subsystem: "booking",
			Name:      "requests_total",
			Help:      "Total booking attempts by result",
		}, []string{"result"}),
		slotQueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicdesk",
			Subsystem: "slots",
			Name:      "queries_total",
			Help:      "Total slot queries by result",
		}, []string{"result"}),
		slotQueryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinicdesk",
			Subsystem: "slots",
			Name:      "query_latency_seconds",
			Help:      "Latency of slot generation and occupancy resolution",
			Buckets:   prometheus.DefBuckets,
		}),
		cacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicdesk",
			Subsystem: "slots",
			Name:      "cache_total",
			Help:      "Slot cache lookups by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.slotQueriesTotal, m.slotQueryLatency, m.cacheTotal)
	return m
}

// ObserveBooking counts one booking attempt. Result is one of booked,
// slot_taken, conflict, invalid, error.
func (m *SchedulingMetrics) ObserveBooking(result string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(result).Inc()
}

func (m *SchedulingMetrics) ObserveSlotQuery(result string, seconds float64) {
	if m == nil {
		return
	}
	m.slotQueriesTotal.WithLabelValues(result).Inc()
	m.slotQueryLatency.Observe(seconds)
}

func (m *SchedulingMetrics) ObserveCache(outcome string) {
	if m == nil {
		return
	}
	m.cacheTotal.WithLabelValues(outcome).Inc()
}
