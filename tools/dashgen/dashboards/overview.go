// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/restock-monitor/tools/dashgen/panels"
)

// UID is the stable dashboard identifier used for provisioning.
const UID = "restock-overview"

// BuildOverview constructs the Restock Monitor overview dashboard.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Restock Monitor").
		Uid(UID).
		Tags([]string{"restock", panels.Job}).
		Refresh("1m").
		Time("now-24h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.PausedStat()).
		WithPanel(panels.LastRunStat()))

	b.WithRow(dashboard.NewRowBuilder("Stock").
		WithPanel(panels.ItemStock()).
		WithPanel(panels.UnknownRatio()).
		WithPanel(panels.Transitions()))

	b.WithRow(dashboard.NewRowBuilder("Checks").
		WithPanel(panels.RunsByOutcome()).
		WithPanel(panels.RunDuration()).
		WithPanel(panels.FetchDuration()))

	b.WithRow(dashboard.NewRowBuilder("Notifications & Pause").
		WithPanel(panels.NotificationsSent()).
		WithPanel(panels.NotificationFailures()).
		WithPanel(panels.NotificationLatency()).
		WithPanel(panels.PauseToggles()).
		WithPanel(panels.SnapshotErrors()))

	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
