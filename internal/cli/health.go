package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/arise-roster/internal/api/response"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Health

			if err := client.Get("/api/health", &result); err != nil {
				return err
			}

			output(cmd).Print(&result)
			return nil
		},
	}
}
