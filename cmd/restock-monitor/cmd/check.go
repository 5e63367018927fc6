package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run one stock check",
		Long: "Fetches every configured product page once, updates the snapshot and\n" +
			"sends a Discord notification for each item that came back in stock.\n" +
			"Intended to be run by an external scheduler such as cron or CI.",
		Args: cobra.NoArgs,
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if c := remote(); c != nil {
		report, err := c.Check(ctx)
		if err != nil {
			return fmt.Errorf("running remote check: %w", err)
		}
		return printReport(cmd.OutOrStdout(), report)
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.engine.RunCheck(ctx)
	if report != nil {
		if perr := printReport(cmd.OutOrStdout(), report); perr != nil {
			return perr
		}
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	return nil
}
