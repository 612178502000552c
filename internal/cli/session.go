package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/arise-roster/internal/api/request"
	"github.com/mcoot/arise-roster/internal/api/response"
	"github.com/mcoot/arise-roster/internal/services/auth"
)

func newLoginCmd() *cobra.Command {
	var user, pass, role string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pass == "" {
				pass = os.Getenv("ROSTER_PASSWORD")
			}
			if user == "" || pass == "" {
				return errors.New("--user and --pass (or ROSTER_PASSWORD) are required")
			}

			req := request.LoginRequest{Username: user, Password: pass, Role: role}
			var result response.Login

			if err := client.Post("/api/auth/login", req, &result); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			output(cmd).Print(&result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (env: ROSTER_PASSWORD)")
	cmd.Flags().StringVar(&role, "role", "", "Role to sign in as: admin, coach, assistant")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the saved token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Token != "" {
				if err := client.Post("/api/auth/logout", nil, nil); err != nil {
					return err
				}
			}
			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}

			output(cmd).PrintMessage("Logged out")
			return nil
		},
	}
}

func newMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result auth.Profile

			if err := client.Get("/api/auth/me", &result); err != nil {
				return err
			}

			output(cmd).Print(&result)
			return nil
		},
	}
}
