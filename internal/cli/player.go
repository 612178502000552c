package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/arise-roster/internal/api/response"
	"github.com/mcoot/arise-roster/internal/model"
)

func newPlayersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "players",
		Short: "Roster player commands",
	}

	cmd.AddCommand(newPlayersListCmd())
	cmd.AddCommand(newPlayersGetCmd())
	cmd.AddCommand(newPlayersDeleteCmd())

	return cmd
}

func newPlayersListCmd() *cobra.Command {
	var nccRef string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the players visible to the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/player/search"
			if nccRef != "" {
				var player model.Player
				if err := client.Get(path+"?nccRef="+url.QueryEscape(nccRef), &player); err != nil {
					return err
				}
				output(cmd).Print(&player)
				return nil
			}

			var players []*model.Player
			if err := client.Get(path, &players); err != nil {
				return err
			}

			output(cmd).Print(players)
			return nil
		},
	}

	cmd.Flags().StringVar(&nccRef, "ncc-ref", "", "Look up a single player by NCC reference")

	return cmd
}

func newPlayersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var player model.Player

			if err := client.Get("/api/player/"+url.PathEscape(args[0]), &player); err != nil {
				return err
			}

			output(cmd).Print(&player)
			return nil
		},
	}
}

func newPlayersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Message

			if err := client.Delete("/api/player/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			output(cmd).PrintMessage(result.Message)
			return nil
		},
	}
}
