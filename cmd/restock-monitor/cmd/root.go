// Package cmd implements the CLI commands for restock-monitor.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/restock-monitor/internal/api/client"
)

var rootCmd = &cobra.Command{
	Use:   "restock-monitor",
	Short: "Watch product pages and announce restocks on Discord",
	Long: "restock-monitor polls a fixed set of product pages, classifies each one as\n" +
		"in stock, out of stock or unknown, and posts a Discord notification when\n" +
		"an item comes back. Run `check` from an external scheduler, or `serve` for\n" +
		"the HTTP API, the Discord slash-command endpoint and an in-process cron.",
	SilenceUsage: true,
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		String("config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().
		String("server", "", "API server URL; when set, commands go through a running instance")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")

	cobra.CheckErr(viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")))
	cobra.CheckErr(viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server")))
	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))

	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(pauseCmd())
	rootCmd.AddCommand(resumeCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(stateCmd())
	rootCmd.AddCommand(commandsCmd())
	rootCmd.AddCommand(versionCmd())
}

// initConfig resolves CLI settings from flags, RESTOCK_* environment
// variables and an optional ~/.restock-monitor.yaml, in that order.
func initConfig() {
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetConfigType("yaml")
	viper.SetConfigName(".restock-monitor")

	viper.SetEnvPrefix("RESTOCK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using CLI settings from:", viper.ConfigFileUsed())
	}
}

func configPath() string {
	return viper.GetString("config")
}

// remote returns a client when --server is set, nil otherwise.
func remote() *apiclient.Client {
	server := viper.GetString("server")
	if server == "" {
		return nil
	}
	return apiclient.New(server)
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
