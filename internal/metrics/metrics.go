package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Game Metrics
var (
	SpawnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSpawnsTotal,
			Help: HelpTextSpawnsTotal,
		},
		[]string{LabelRarity},
	)

	CatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCatchesTotal,
			Help: HelpTextCatchesTotal,
		},
		[]string{LabelResult},
	)

	CritsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCritsTotal,
			Help: HelpTextCritsTotal,
		},
	)

	FeversTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameFeversTotal,
			Help: HelpTextFeversTotal,
		},
	)

	GachaDrawsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameGachaDrawsTotal,
			Help: HelpTextGachaDrawsTotal,
		},
		[]string{LabelTable},
	)

	ItemsUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameItemsUsed,
			Help: HelpTextItemsUsed,
		},
		[]string{LabelItem},
	)

	ItemsCrafted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameItemsCrafted,
			Help: HelpTextItemsCrafted,
		},
		[]string{LabelItem},
	)

	BattlesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameBattlesTotal,
			Help: HelpTextBattlesTotal,
		},
		[]string{LabelOutcome},
	)

	GoldEarned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameGoldEarned,
			Help: HelpTextGoldEarned,
		},
	)

	GoldSpent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameGoldSpent,
			Help: HelpTextGoldSpent,
		},
	)
)
