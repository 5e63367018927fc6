package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/restock-monitor/internal/api/client"
	"github.com/donaldgifford/restock-monitor/internal/pause"
)

func pauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause scheduled checks",
		Long: "Sets the pause flag on the configured backend. Runs that start while\n" +
			"the flag is set return immediately without fetching anything.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return setPaused(cmd, true)
		},
	}
}

func resumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume scheduled checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return setPaused(cmd, false)
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether monitoring is paused",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func setPaused(cmd *cobra.Command, paused bool) error {
	ctx := cmd.Context()

	if c := remote(); c != nil {
		st, err := c.SetPause(ctx, paused)
		if err != nil {
			return fmt.Errorf("updating pause flag: %w", err)
		}
		return printPauseState(cmd.OutOrStdout(), *st)
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.flag.SetPaused(ctx, paused); err != nil {
		if errors.Is(err, pause.ErrReadOnly) {
			return fmt.Errorf("the %s pause backend cannot be changed from here: %w", a.flag.Backend(), err)
		}
		return fmt.Errorf("updating pause flag: %w", err)
	}
	a.log.Info("pause flag updated", "paused", paused, "backend", a.flag.Backend())

	return printPauseState(cmd.OutOrStdout(), apiclient.PauseState{Paused: paused, Backend: a.flag.Backend()})
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if c := remote(); c != nil {
		st, err := c.GetPause(ctx)
		if err != nil {
			return fmt.Errorf("reading pause flag: %w", err)
		}
		return printPauseState(cmd.OutOrStdout(), *st)
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	paused, err := a.flag.Paused(ctx)
	if err != nil {
		return fmt.Errorf("reading pause flag: %w", err)
	}
	return printPauseState(cmd.OutOrStdout(), apiclient.PauseState{Paused: paused, Backend: a.flag.Backend()})
}
