package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type rewardMetrics struct {
	claims   *prometheus.CounterVec
	minted   *prometheus.CounterVec
	rejected *prometheus.CounterVec
}

var (
	rewardMetricsOnce sync.Once
	rewardRegistry    *rewardMetrics
)

// Rewards returns the metrics registry tracking reward claims and mints.
func Rewards() *rewardMetrics {
	rewardMetricsOnce.Do(func() {
		rewardRegistry = &rewardMetrics{
			claims: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "mintforge",
				Subsystem: "rewards",
				Name:      "claims_total",
				Help:      "Count of successful reward claims segmented by program.",
			}, []string{"program"}),
			minted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "mintforge",
				Subsystem: "rewards",
				Name:      "minted_units_total",
				Help:      "Cumulative token units minted segmented by program.",
			}, []string{"program"}),
			rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "mintforge",
				Subsystem: "rewards",
				Name:      "rejected_claims_total",
				Help:      "Count of rejected reward claims segmented by program and reason.",
			}, []string{"program", "reason"}),
		}
		prometheus.MustRegister(rewardRegistry.claims, rewardRegistry.minted, rewardRegistry.rejected)
	})
	return rewardRegistry
}

// RecordClaim increments the claim counter and adds the minted units for the
// supplied program.
func (m *rewardMetrics) RecordClaim(program string, units float64) {
	if m == nil {
		return
	}
	program = normalizeLabel(program)
	m.claims.WithLabelValues(program).Inc()
	if units > 0 {
		m.minted.WithLabelValues(program).Add(units)
	}
}

// RecordReject increments the rejection counter for the program and reason.
func (m *rewardMetrics) RecordReject(program, reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(program), normalizeLabel(reason)).Inc()
}

func normalizeLabel(v string) string {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" {
		return "unknown"
	}
	return v
}
