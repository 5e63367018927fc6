package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/restock-monitor/internal/api/client"
	domain "github.com/donaldgifford/restock-monitor/pkg/types"
)

func stateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the last known availability of every item",
		Args:  cobra.NoArgs,
		RunE:  runState,
	}
}

func runState(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if c := remote(); c != nil {
		items, err := c.Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("reading snapshot: %w", err)
		}
		return printSnapshot(cmd.OutOrStdout(), items)
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	return printSnapshot(cmd.OutOrStdout(), snapshotItems(snap, a.cfg.Items))
}

// snapshotItems joins snapshot entries with configured display names.
// Entries for items no longer configured are kept without a name.
func snapshotItems(snap map[string]bool, items []domain.TrackedItem) []apiclient.SnapshotItem {
	names := make(map[string]string, len(items))
	for _, it := range items {
		names[it.Code] = it.Name
	}

	entries := domain.Entries(snap)
	out := make([]apiclient.SnapshotItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, apiclient.SnapshotItem{Code: e.Code, Name: names[e.Code], InStock: e.InStock})
	}
	return out
}
