package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors exposed on the bonusserver's /metrics endpoint (§4.4's bonus
// flow is the only thing this process serves, so its metrics surface is
// scoped to bonus creation/distribution volume).
var (
	BonusesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "usdtgverse",
		Subsystem: "bonus",
		Name:      "created_total",
		Help:      "Total number of bonuses created, regardless of distribution outcome.",
	})

	BonusesDistributed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "usdtgverse",
		Subsystem: "bonus",
		Name:      "distributed_total",
		Help:      "Total number of bonuses successfully distributed.",
	})

	BonusCreateRejections = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "usdtgverse",
		Subsystem: "bonus",
		Name:      "create_rejections_total",
		Help:      "Total number of bonus creation attempts rejected (below threshold or malformed wallet).",
	})

	BonusAmountDistributed = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "usdtgverse",
		Subsystem: "bonus",
		Name:      "distributed_major_units",
		Help:      "Distribution of bonus amounts distributed, in major USDTg units.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})
)

func init() {
	prometheus.MustRegister(BonusesCreated, BonusesDistributed, BonusCreateRejections, BonusAmountDistributed)
}
