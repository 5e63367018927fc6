// Package validate checks generated dashboards and rules: every expression
// must parse as PromQL and reference only known metrics.
package validate

import (
	"encoding/json"
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/restock-monitor/tools/dashgen/rules"
)

// Result collects validation findings. Errors fail generation; warnings do not.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether there are no errors.
func (r Result) Ok() bool {
	return len(r.Errors) == 0
}

func (r *Result) merge(o Result) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

// Expr parses expr and reports unknown metric names. where prefixes every
// finding.
func Expr(where, expr string, known map[string]bool) Result {
	var res Result

	node, err := parser.ParseExpr(expr)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: invalid PromQL %q: %v", where, expr, err))
		return res
	}

	parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
		vs, ok := n.(*parser.VectorSelector)
		if !ok || vs.Name == "" {
			return nil
		}
		if !known[vs.Name] {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: unknown metric %q", where, vs.Name))
		}
		return nil
	})

	return res
}

// panelJSON is the subset of the dashboard model needed to reach targets.
type panelJSON struct {
	Title   string `json:"title"`
	Type    string `json:"type"`
	Targets []struct {
		Expr string `json:"expr"`
	} `json:"targets"`
	Panels []panelJSON `json:"panels"`
}

// Dashboard validates every Prometheus target of dash, including panels
// nested in rows.
func Dashboard(dash dashboard.Dashboard, known map[string]bool) Result {
	var res Result

	data, err := json.Marshal(dash)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("marshaling dashboard: %v", err))
		return res
	}

	var doc struct {
		Panels []panelJSON `json:"panels"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("decoding dashboard: %v", err))
		return res
	}

	titles := make(map[string]bool)
	var walk func(ps []panelJSON)
	walk = func(ps []panelJSON) {
		for _, p := range ps {
			if p.Type != "row" {
				if titles[p.Title] {
					res.Warnings = append(res.Warnings, fmt.Sprintf("duplicate panel title %q", p.Title))
				}
				titles[p.Title] = true
				if len(p.Targets) == 0 {
					res.Errors = append(res.Errors, fmt.Sprintf("panel %q has no targets", p.Title))
				}
			}
			for i, t := range p.Targets {
				res.merge(Expr(fmt.Sprintf("panel %q target %d", p.Title, i), t.Expr, known))
			}
			walk(p.Panels)
		}
	}
	walk(doc.Panels)

	return res
}

// Rules validates every expression of cr. Recording rules may only reference
// metrics known before them, and their names become known afterwards.
func Rules(cr rules.PrometheusRule, known map[string]bool) Result {
	var res Result

	seen := make(map[string]bool)
	for _, g := range cr.Spec.Groups {
		for _, r := range g.Rules {
			name := r.Record
			if name == "" {
				name = r.Alert
			}
			if name == "" {
				res.Errors = append(res.Errors, fmt.Sprintf("group %s: rule without record or alert name", g.Name))
				continue
			}
			if seen[name] {
				res.Errors = append(res.Errors, fmt.Sprintf("group %s: duplicate rule %s", g.Name, name))
			}
			seen[name] = true

			if r.Alert != "" && r.Annotations["summary"] == "" {
				res.Warnings = append(res.Warnings, fmt.Sprintf("alert %s has no summary", r.Alert))
			}

			res.merge(Expr(fmt.Sprintf("rule %s", name), r.Expr, known))
		}
	}

	return res
}
