package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agusx1211/foldkit/internal/distribute"
)

func newDistributeCmd(a *app) *cobra.Command {
	var (
		input  string
		dryRun bool
		only   []string
		skip   []string
	)

	cmd := &cobra.Command{
		Use:   "distribute <target>",
		Short: "Split a blob into files under a target folder",
		Long: `Split a blob into files under <target>.

A line that starts with a comment marker (//, #, /*, *) and names a file with a
known extension opens a new file; the lines after it are its content. Files
are written in the order they first appear and existing files are
overwritten. Nothing is written when any path would land outside <target>.

Examples:
  foldkit collect ./app | foldkit distribute /tmp/app
  foldkit distribute . -i answer.md --dry-run
  foldkit distribute . -i answer.md --only 'src/**' --skip '**/*.md'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := a.readInput(cmd, input)
			if err != nil {
				return err
			}
			detector, err := distribute.NewDetector(a.cfg.Distribute.Extensions)
			if err != nil {
				return err
			}
			dist := distribute.New(a.fs,
				distribute.WithDetector(detector),
				distribute.WithPatterns(only, skip),
				distribute.WithLogger(a.log),
			)

			out := cmd.OutOrStdout()
			if dryRun {
				plan, err := dist.Plan(blob, args[0])
				if err != nil {
					return err
				}
				printPlan(out, plan)
				if !plan.OK() {
					return &distribute.PlanError{Problems: plan.Problems}
				}
				return nil
			}

			res, err := dist.Distribute(cmd.Context(), blob, args[0])
			for _, w := range res.Plan.Warnings {
				a.log.Warn(w)
			}
			for _, p := range res.Written {
				fmt.Fprintf(out, "wrote %s\n", p)
			}
			var planErr *distribute.PlanError
			if errors.As(err, &planErr) {
				printPlan(out, res.Plan)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d files written\n", len(res.Written))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Blob file (default stdin)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show where each file would go without writing")
	cmd.Flags().StringArrayVar(&only, "only", nil, "Only write files matching this glob (repeatable)")
	cmd.Flags().StringArrayVar(&skip, "skip", nil, "Do not write files matching this glob (repeatable)")
	return cmd
}

func printPlan(w io.Writer, plan distribute.Plan) {
	for _, t := range plan.Targets {
		fmt.Fprintf(w, "write %s (%d bytes)\n", t.Path, len(t.Block.Content))
	}
	for _, b := range plan.Skipped {
		fmt.Fprintf(w, "skip %s\n", b.Path)
	}
	for _, warning := range plan.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	for _, p := range plan.Problems {
		fmt.Fprintf(w, "problem: %s\n", p)
	}
}
