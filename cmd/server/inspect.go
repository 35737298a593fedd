package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvview/internal/core"
)

func inspectCommand(a *app) *cobra.Command {
	var (
		delimiter string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Parse a local file and print its summary",
		Long: `inspect runs the upload pipeline on a local file: decompression,
encoding detection, delimiter resolution and parsing. It prints the same
summary the page shows, or the full table view as JSON with --json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			up := core.Upload{
				Payload:   core.Payload{Filename: filepath.Base(args[0]), Data: data},
				Delimiter: core.ParseDelimiterChoice(delimiter),
			}

			view, err := core.NewViewer(a.cfg).Run(cmd.Context(), up)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), core.FormatUserError(err))
				return fmt.Errorf("failed to parse file: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}

			fmt.Fprintln(out, view.Summary.Loaded())
			fmt.Fprintln(out, view.Summary.Counts())
			fmt.Fprintf(out, "Delimiter: %q\n", view.Delimiter)
			fmt.Fprintf(out, "Encoding: %s\n", view.Encoding)
			for _, col := range view.Columns {
				fmt.Fprintf(out, "  %-24s %s\n", col.Name, col.Type)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&delimiter, "delimiter", "d", "auto", "delimiter: auto, comma, tab, semicolon, pipe or a single character")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the table view as JSON")
	return cmd
}
