package main

import "errors"

// KnownMetrics is the set of metric names exported by restock-monitor plus
// recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"restock_http_request_duration_seconds_bucket": true,
	"restock_http_requests_total":                  true,

	// Health metrics.
	"restock_healthz_up": true,
	"restock_readyz_up":  true,

	// Run metrics.
	"restock_runs_total":                  true,
	"restock_run_duration_seconds_bucket": true,
	"restock_last_run_timestamp_seconds":  true,

	// Check metrics.
	"restock_checks_total":                  true,
	"restock_fetch_duration_seconds_bucket": true,
	"restock_item_in_stock":                 true,
	"restock_transitions_total":             true,

	// Snapshot metrics.
	"restock_snapshot_writes_total": true,
	"restock_snapshot_errors_total": true,

	// Notification metrics.
	"restock_notifications_sent_total":             true,
	"restock_notification_failures_total":          true,
	"restock_notification_duration_seconds_bucket": true,

	// Pause metrics.
	"restock_pause_toggles_total": true,
	"restock_paused":              true,

	// Recording rules.
	"restock:http_requests:rate5m":    true,
	"restock:http_errors:rate5m":      true,
	"restock:runs:rate1h":             true,
	"restock:fetch_duration:p95_1h":   true,
	"restock:checks_unknown:ratio1h":  true,

	// Standard Prometheus metrics referenced in dashboards and alerts.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
