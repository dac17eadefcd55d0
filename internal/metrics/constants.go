package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Game metric names
const (
	MetricNameSpawnsTotal     = "fish_spawns_total"
	MetricNameCatchesTotal    = "catch_attempts_total"
	MetricNameCritsTotal      = "catch_crits_total"
	MetricNameFeversTotal     = "fevers_total"
	MetricNameGachaDrawsTotal = "gacha_draws_total"
	MetricNameItemsUsed       = "items_used_total"
	MetricNameItemsCrafted    = "items_crafted_total"
	MetricNameBattlesTotal    = "battles_total"
	MetricNameGoldEarned      = "gold_earned_total"
	MetricNameGoldSpent       = "gold_spent_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Game metric help text
const (
	HelpTextSpawnsTotal     = "Total number of fish spawned"
	HelpTextCatchesTotal    = "Total number of catch attempts"
	HelpTextCritsTotal      = "Total number of critical catches"
	HelpTextFeversTotal     = "Total number of fevers triggered"
	HelpTextGachaDrawsTotal = "Total number of gacha draws"
	HelpTextItemsUsed       = "Total number of items used"
	HelpTextItemsCrafted    = "Total number of items crafted"
	HelpTextBattlesTotal    = "Total number of settled raid battles"
	HelpTextGoldEarned      = "Total gold credited to players"
	HelpTextGoldSpent       = "Total gold spent by players"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelRarity  = "rarity"
	LabelResult  = "result"
	LabelTable   = "table"
	LabelItem    = "item"
	LabelOutcome = "outcome"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds. These buckets range from 1ms to 10s to capture various latency
// patterns: fast (1-10ms), normal (10-100ms), slow (100ms-1s), very slow (1-10s)
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
