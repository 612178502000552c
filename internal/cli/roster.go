package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mcoot/arise-roster/internal/api/response"
	"github.com/mcoot/arise-roster/internal/services/spreadsheet"
)

func newRosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Spreadsheet export and import",
	}

	cmd.AddCommand(newRosterExportCmd())
	cmd.AddCommand(newRosterImportCmd())

	return cmd
}

func newRosterExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the visible roster as an .xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, filename, err := client.Download("/api/stats/export/excel")
			if err != nil {
				return err
			}

			if out == "" {
				out = filename
			}
			if out == "" {
				return errors.New("server did not name the file; pass --out")
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			output(cmd).PrintMessage(fmt.Sprintf("Wrote %s (%d bytes)", out, len(data)))
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output path (default: server-provided filename)")

	return cmd
}

func newRosterImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Upload a workbook and merge it into the roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			var result response.Import
			err = client.Upload("/api/stats/import/excel", "excelFile", filepath.Base(path),
				spreadsheet.ContentTypeXLSX, data, &result)
			if err != nil {
				return err
			}

			output(cmd).Print(&result)
			return nil
		},
	}
}
