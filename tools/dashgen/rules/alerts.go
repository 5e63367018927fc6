package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// restock-monitor operational monitoring.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "restock-alerts",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "restock-alerts",
					Rules: []Rule{
						{
							Alert: "RestockMonitorDown",
							Expr:  `absent(up{job="restock-monitor"})`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Restock monitor is down",
								"description": "The restock-monitor job has been absent for more than 5 minutes. No restocks will be announced.",
							},
						},
						{
							Alert: "RestockReadinessDown",
							Expr:  `restock_readyz_up == 0`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Pause flag backend unreachable",
								"description": "The readiness probe cannot read the pause flag. Checks keep running but /pause and /status will fail.",
							},
						},
						{
							Alert: "RestockChecksStalled",
							// Overnight there is no schedule window, so allow 12h between runs.
							Expr: `(time() - restock_last_run_timestamp_seconds > 43200) and on() (restock_paused == 0)`,
							For:  "10m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "No completed check in 12 hours",
								"description": "Monitoring is not paused, yet no check run has completed for more than 12 hours.",
							},
						},
						{
							Alert: "RestockRunFailures",
							Expr:  `increase(restock_runs_total{outcome="failed"}[1h]) > 0`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Check runs are failing",
								"description": "At least one check run failed in the last hour, usually because the snapshot could not be read or written.",
							},
						},
						{
							Alert: "RestockPageUnclassifiable",
							Expr:  `restock:checks_unknown:ratio1h > 0.5`,
							For:   "1h",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Product page can no longer be classified",
								"description": "More than half of the checks for {{ $labels.item }} returned unknown for an hour. The page layout may have changed.",
							},
						},
						{
							Alert: "RestockHighErrorRate",
							Expr:  `restock:http_errors:rate5m / restock:http_requests:rate5m > 0.05`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "High HTTP error rate on restock monitor",
								"description": "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
							},
						},
						{
							Alert: "RestockNotificationFailures",
							Expr:  `increase(restock_notification_failures_total[15m]) > 0`,
							For:   "1m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "Restock notifications are failing",
								"description": "One or more Discord webhook deliveries failed. A restock may have gone unannounced.",
							},
						},
						{
							Alert: "RestockSnapshotErrors",
							Expr:  `increase(restock_snapshot_errors_total[15m]) > 0`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Snapshot file errors",
								"description": "The availability snapshot could not be read or written. Duplicate notifications are possible.",
							},
						},
					},
				},
			},
		},
	}
}
