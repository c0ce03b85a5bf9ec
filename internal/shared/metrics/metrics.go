package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "league_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"service", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "league_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "route"},
	)

	// Boletim
	SlipMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "league_slip_mutations_total",
			Help: "Total number of bet slip mutations",
		},
		[]string{"op", "result"}, // add/remove/stake/leg..., ok/rejected/error
	)

	SlipStoreConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "league_slip_store_conflicts_total",
			Help: "Optimistic transaction retries on slip sessions",
		},
	)

	Placements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "league_placements_total",
			Help: "Total number of bet submissions",
		},
		[]string{"kind", "result"}, // bets/parlay, ok/rejected/error/replayed
	)

	// Odds
	OddsCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "league_odds_cache_lookups_total",
			Help: "Odds cache lookups by result",
		},
		[]string{"result"}, // hit/miss
	)

	OptionsLocked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "league_options_locked_total",
			Help: "Betting options locked at kickoff",
		},
	)

	WSClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "league_ws_clients",
			Help: "Connected WebSocket clients",
		},
	)
)
