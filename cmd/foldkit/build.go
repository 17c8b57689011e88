package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agusx1211/foldkit/internal/fsaccess"
	"github.com/agusx1211/foldkit/internal/structure"
)

func newBuildCmd(a *app) *cobra.Command {
	var (
		input  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "build <base>",
		Short: "Create folders and empty files from a structure diagram",
		Long: `Create folders and empty files from a structure diagram.

The diagram is read from --input, or from stdin. Its root is created inside
<base>. Files that already exist are left untouched.

Examples:
  foldkit tree ./app --full | foldkit build /tmp/copy
  foldkit build . -i layout.txt --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.readInput(cmd, input)
			if err != nil {
				return err
			}

			var target fsaccess.Accessor = a.fs
			if dryRun {
				target = fsaccess.NewOverlay(a.fs)
			}
			res, err := structure.NewBuilder(target, structure.WithLogger(a.log)).Build(cmd.Context(), args[0], text)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintln(out, "dry run, nothing was written")
			}
			fmt.Fprintf(out, "%s: %d created, %d existing, %d failed\n", res.Outcome(), res.Created, res.Existing, res.Failed)
			for _, e := range res.Errors {
				fmt.Fprintf(out, "  %v\n", e)
			}
			if res.Outcome() == structure.OutcomeNothing && res.Failed > 0 {
				return fmt.Errorf("failed to create any entry under %s", args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Diagram file (default stdin)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be created without touching the disk")
	return cmd
}

func newParseCmd(a *app) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Print the entries of a structure diagram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.readInput(cmd, input)
			if err != nil {
				return err
			}
			entries := structure.Parse(text)
			if len(entries) == 0 {
				return structure.ErrEmptyStructure
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, e := range entries {
				kind := "folder"
				if e.IsFile {
					kind = "file"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\n", e.Level, kind, e.FullPath)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Diagram file (default stdin)")
	return cmd
}
