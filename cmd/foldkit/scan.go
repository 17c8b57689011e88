package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agusx1211/foldkit/internal/scan"
	"github.com/agusx1211/foldkit/internal/structure"
)

func newScanCmd(a *app) *cobra.Command {
	var (
		jsonOutput bool
		showTree   bool
	)

	cmd := &cobra.Command{
		Use:   "scan [directory]",
		Short: "Walk a folder and report files, sizes and line counts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := dirArg(args)
			if err != nil {
				return err
			}
			scanner := scan.New(a.fs,
				scan.WithIgnore(a.cfg.Scan.Ignore),
				scan.WithLineCountLimit(a.cfg.LineCountLimit),
				scan.WithLogger(a.log),
			)
			t, err := scanner.Scan(cmd.Context(), root)
			if err != nil {
				return err
			}
			stats := scan.Analyze(t)

			out := cmd.OutOrStdout()
			if jsonOutput {
				data, err := json.MarshalIndent(stats, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal stats to JSON: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			if showTree {
				fmt.Fprintln(out, structure.Render(structure.RootName(root), structure.FromTree(t, structure.ViewFull)))
			}
			fmt.Fprint(out, scan.Report(stats))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the report as JSON")
	cmd.Flags().BoolVar(&showTree, "tree", false, "Print the scanned tree before the report")
	return cmd
}
