package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: "monitoring.coreos.com/v1",
		Kind:       "PrometheusRule",
		Metadata: PrometheusRuleMetadata{
			Name: "restock-recording-rules",
			Labels: map[string]string{
				"prometheus": "system-rules-prometheus",
			},
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "restock-recording",
					Rules: []Rule{
						{
							Record: "restock:http_requests:rate5m",
							Expr:   `sum(rate(restock_http_requests_total[5m]))`,
						},
						{
							Record: "restock:http_errors:rate5m",
							Expr:   `sum(rate(restock_http_requests_total{status=~"5.."}[5m]))`,
						},
						{
							Record: "restock:runs:rate1h",
							Expr:   `sum by (outcome) (rate(restock_runs_total[1h]))`,
						},
						{
							Record: "restock:fetch_duration:p95_1h",
							Expr:   `histogram_quantile(0.95, sum(rate(restock_fetch_duration_seconds_bucket[1h])) by (le))`,
						},
						{
							Record: "restock:checks_unknown:ratio1h",
							Expr: `sum by (item) (rate(restock_checks_total{availability="unknown"}[1h]))` +
								` / sum by (item) (rate(restock_checks_total[1h]))`,
						},
					},
				},
			},
		},
	}
}
