package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "rosterctl",
		Short: "CLI tool for the club roster",
		Long: `rosterctl talks to the roster API and maintains the roster store.

Remote commands (login, players, roster, watch, ...) use the server URL and
saved session token. Maintenance commands (admin, clear-data) open the
configured store directly and do not need a running server.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load token from file if not provided via flag/env
			if err := cfg.LoadToken(); err != nil {
				return err
			}

			// Create HTTP client
			client = NewClient(cfg.ServerURL, cfg.Token)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: ROSTER_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Session token (env: ROSTER_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: ROSTER_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "Server config file for maintenance commands (env: ROSTER_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newMeCmd())
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newPlayersCmd())
	rootCmd.AddCommand(newRosterCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newAdminCmd())
	rootCmd.AddCommand(newClearDataCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func output(cmd *cobra.Command) *Output {
	return NewOutput(cmd.OutOrStdout(), cfg.Output)
}
