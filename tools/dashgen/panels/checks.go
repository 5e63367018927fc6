package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// RunsByOutcome returns a timeseries panel showing check runs per hour split
// by outcome (completed, paused, failed).
func RunsByOutcome() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Runs / hour").
		Description("Check runs per hour by outcome").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`restock:runs:rate1h * 3600`, "{{outcome}}", "A")).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("last", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleBars)
}

// RunDuration returns a timeseries panel showing the p95 run duration,
// including the optional warm-up delay.
func RunDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Run Duration (p95)").
		Description("95th percentile duration of one check run").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			`histogram_quantile(0.95, sum(rate(`+Sel("restock_run_duration_seconds_bucket")+`[1h])) by (le))`,
			"p95", "A",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(15, 30)).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// FetchDuration returns a timeseries panel showing the p95 page fetch
// latency. Fetches time out at fetch.timeout.
func FetchDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Fetch Latency (p95)").
		Description("95th percentile product page fetch duration").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`restock:fetch_duration:p95_1h`, "p95", "A")).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(5, 15)).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// ItemStock returns a stat panel with one tile per item showing its last
// known availability.
func ItemStock() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("In Stock").
		Description("Last known availability per item (1 = in stock)").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(FullWidth).
		WithTarget(PromQuery(Sel("restock_item_in_stock"), "{{item}}", "A")).
		Thresholds(ThresholdsRedGreen(1)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone).
		TextMode(common.BigValueTextModeValueAndName)
}

// UnknownRatio returns a timeseries panel showing the share of checks that
// could not be classified. A sustained rise usually means the product page
// layout changed.
func UnknownRatio() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Unknown Classifications %").
		Description("Share of checks classified as unknown, per item").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`restock:checks_unknown:ratio1h * 100`, "{{item}}", "A")).
		Unit("percent").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenYellowRed(20, 50)).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}

// Transitions returns a timeseries panel showing availability transitions
// recorded in the snapshot.
func Transitions() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Transitions").
		Description("Snapshot transitions per hour by new availability").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum by (to) (increase(`+Sel("restock_transitions_total")+`[1h]))`,
			"{{to}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleBars)
}
