package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	refreshCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "refresher_cycles_total",
		Help: "Total number of completed refresh cycles",
	})

	refreshedWallets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "refresher_wallets_refreshed_total",
		Help: "Total number of wallet and chain pairs refreshed",
	})

	refreshErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "refresher_errors_total",
		Help: "Total number of failed wallet refreshes",
	})

	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "refresher_cycle_duration_seconds",
		Help:    "Duration of a refresh cycle in seconds",
		Buckets: prometheus.DefBuckets,
	})

	refreshLastRun = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "refresher_last_cycle_timestamp_seconds",
		Help: "Unix time of the last completed refresh cycle",
	})
)
