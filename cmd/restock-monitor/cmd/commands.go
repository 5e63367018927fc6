package cmd

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/restock-monitor/internal/api/handlers"
	"github.com/donaldgifford/restock-monitor/internal/config"
	domain "github.com/donaldgifford/restock-monitor/pkg/types"
)

func commandsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commands",
		Short: "Manage Discord slash commands",
	}
	cmd.AddCommand(commandsRegisterCmd())
	return cmd
}

func commandsRegisterCmd() *cobra.Command {
	var guildID string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register the /pause, /resume and /status slash commands",
		Long: "Overwrites the application's slash commands with /pause, /resume and\n" +
			"/status. Global commands can take up to an hour to appear; pass\n" +
			"--guild to register them on one server immediately.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := requireRegistration(cfg.Interactions); err != nil {
				return err
			}

			s, err := discordgo.New("Bot " + cfg.Interactions.BotToken)
			if err != nil {
				return fmt.Errorf("creating discord session: %w", err)
			}

			registered, err := s.ApplicationCommandBulkOverwrite(
				cfg.Interactions.ApplicationID,
				guildID,
				handlers.SlashCommands(),
				discordgo.WithContext(cmd.Context()),
			)
			if err != nil {
				return fmt.Errorf("registering commands: %w", err)
			}

			for _, c := range registered {
				fmt.Fprintf(cmd.OutOrStdout(), "registered /%s (%s)\n", c.Name, c.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&guildID, "guild", "", "register on a single guild instead of globally")
	return cmd
}

func requireRegistration(ic config.InteractionsConfig) error {
	if ic.ApplicationID == "" {
		return fmt.Errorf("%w: interactions.application_id", domain.ErrConfigurationMissing)
	}
	if ic.BotToken == "" {
		return fmt.Errorf("%w: interactions.bot_token", domain.ErrConfigurationMissing)
	}
	return nil
}
