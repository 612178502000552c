package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/arise-roster/internal/config"
	"github.com/mcoot/arise-roster/internal/factory"
	"github.com/mcoot/arise-roster/internal/services/accounts"
)

// openStore wires the application against the configured store for
// commands that bypass the HTTP API
func openStore(ctx context.Context) (*factory.App, *config.Config, error) {
	appCfg, err := config.Load(cfg.ConfigFile)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cfg.Verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	app, err := factory.New(ctx, factory.ConfigFrom(appCfg, logger))
	if err != nil {
		return nil, nil, err
	}
	if app.StorageType == factory.StorageTypeMemory {
		_ = app.Close()
		return nil, nil, errors.New("maintenance commands need a persistent store; set storage.type to redis or postgres")
	}
	return app, appCfg, nil
}

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Account maintenance against the configured store",
	}

	cmd.AddCommand(newAdminCreateCmd())
	cmd.AddCommand(newAdminSetPasswordCmd())
	cmd.AddCommand(newAdminNormalizeCmd())

	return cmd
}

func newAdminCreateCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pass == "" {
				pass = os.Getenv("ROSTER_PASSWORD")
			}
			if pass == "" {
				return errors.New("--pass (or ROSTER_PASSWORD) is required")
			}

			app, _, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			summary, err := app.AccountsService.Create(cmd.Context(), accounts.SystemSession(), accounts.CreateInput{
				Username: user,
				Password: pass,
				Role:     "admin",
			})
			if err != nil {
				return err
			}

			output(cmd).PrintMessage(fmt.Sprintf("Created admin %s (%s)", summary.Username, summary.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "admin", "Username")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (env: ROSTER_PASSWORD)")

	return cmd
}

func newAdminSetPasswordCmd() *cobra.Command {
	var pass string

	cmd := &cobra.Command{
		Use:   "set-password <username>",
		Short: "Replace an account's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pass == "" {
				pass = os.Getenv("ROSTER_PASSWORD")
			}
			if pass == "" {
				return errors.New("--pass (or ROSTER_PASSWORD) is required")
			}

			app, _, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			if err := app.AccountsService.SetPassword(cmd.Context(), accounts.SystemSession(), args[0], pass); err != nil {
				return err
			}

			output(cmd).PrintMessage(fmt.Sprintf("Password updated for %s", args[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&pass, "pass", "", "New password (env: ROSTER_PASSWORD)")

	return cmd
}

func newAdminNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize",
		Short: "Backfill account status and default names",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, _, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			changed, err := app.AccountsService.Normalize(cmd.Context(), accounts.SystemSession())
			if err != nil {
				return err
			}

			output(cmd).PrintMessage(fmt.Sprintf("Normalized %d accounts", changed))
			return nil
		},
	}
}

func newClearDataCmd() *cobra.Command {
	var keep string
	var all, yes bool

	cmd := &cobra.Command{
		Use:   "clear-data",
		Short: "Remove players, staff accounts, activity and sessions",
		Long: `Remove every player, coach and assistant account, activity entry and
session from the configured store. The bootstrap admin is kept unless --all
is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear data without --yes")
			}

			app, appCfg, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			if keep == "" && !all {
				keep = appCfg.Bootstrap.AdminUsername
			}
			result, err := app.AccountsService.ClearData(cmd.Context(), accounts.SystemSession(), keep)
			if err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&keep, "keep", "", "Username to keep (default: the bootstrap admin)")
	cmd.Flags().BoolVar(&all, "all", false, "Remove every account, including admins")
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")

	return cmd
}
