package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/agusx1211/foldkit/internal/collect"
	"github.com/agusx1211/foldkit/internal/config"
	"github.com/agusx1211/foldkit/internal/filter"
	"github.com/agusx1211/foldkit/internal/tree"
)

type filterFlags struct {
	include          []string
	exclude          []string
	includeGitIgnore bool
	includeGit       bool
	includeBin       bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.include, "include", nil, "Only collect files matching this glob (repeatable)")
	cmd.Flags().StringArrayVar(&f.exclude, "exclude", nil, "Skip files matching this glob; a trailing / skips a folder (repeatable)")
	cmd.Flags().BoolVar(&f.includeGitIgnore, "include-gitignore", false, "Include files that would normally be ignored by .gitignore")
	cmd.Flags().BoolVar(&f.includeGit, "include-git", false, "Include the .git directory and its contents")
	cmd.Flags().BoolVar(&f.includeBin, "include-bin", false, "Include binary files")
}

// newFilter merges the rules of the root's .foldkit file with the flags.
func (a *app) newFilter(root string, flags filterFlags) (*filter.Filter, error) {
	opts := filter.Options{
		BaseDir:          root,
		FS:               a.fs.Afero(),
		IncludeGitIgnore: flags.includeGitIgnore,
		IncludeGit:       flags.includeGit,
		IncludeBin:       flags.includeBin,
		IgnoreNames:      a.cfg.Scan.Ignore,
	}

	rules, err := config.ReadRules(filepath.Join(root, config.ProfileFileName), a.cfg.Profile)
	switch {
	case err == nil:
		opts.Include = append(opts.Include, rules.Include...)
		opts.Exclude = append(opts.Exclude, rules.Exclude...)
	case !os.IsNotExist(err):
		return nil, err
	}
	opts.Include = append(opts.Include, flags.include...)
	opts.Exclude = append(opts.Exclude, flags.exclude...)

	f, err := filter.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter: %w", err)
	}
	return f, nil
}

func newCollectCmd(a *app) *cobra.Command {
	var (
		selects []string
		all     bool
		output  string
		force   bool
		tokens  bool
		model   string
		flags   filterFlags
	)

	cmd := &cobra.Command{
		Use:   "collect <root>",
		Short: "Concatenate files into one blob with a header per file",
		Long: `Concatenate files below <root> into one blob. Every file is preceded by a
"# ===== path =====" header, so the blob can be split again with distribute.

Without --select every top-level entry is collected. The .foldkit file in
<root> and the filter flags decide which files inside folders take part.

Examples:
  foldkit collect . > blob.txt
  foldkit collect ./app --select 'src/**/*.ts' --select README.md -o blob.txt
  foldkit collect . --tokens --model gpt-4o`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all && len(selects) > 0 {
				return fmt.Errorf("only one of --all or --select may be set")
			}
			ctx := cmd.Context()
			root, err := dirArg(args)
			if err != nil {
				return err
			}
			flt, err := a.newFilter(root, flags)
			if err != nil {
				return err
			}

			loader := tree.NewLoader(a.fs, tree.WithLogger(a.log))
			t, err := loader.LoadRoot(ctx, root)
			if err != nil {
				return err
			}
			if len(selects) > 0 {
				t, err = loader.LoadMatching(ctx, t, func(n tree.Node) bool {
					return flt.ShouldInclude(n.Path, !n.IsFile)
				})
				if err != nil {
					return err
				}
				if t, err = collect.SelectPatterns(t, root, selects); err != nil {
					return err
				}
			} else {
				for _, id := range t.Roots() {
					n := t.Node(id)
					if !flt.ShouldInclude(n.Path, !n.IsFile) {
						continue
					}
					if t, err = t.SetSelected(n.Path, true); err != nil {
						return err
					}
				}
			}

			collector := collect.New(a.fs, root, collect.WithFilter(flt), collect.WithLogger(a.log))
			res, err := collector.Collect(ctx, t)
			if err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{"read": res.Read, "failed": res.Failed}).Info("collected files")

			out := cmd.OutOrStdout()
			report := cmd.ErrOrStderr()
			if output != "" {
				if err := a.writeBlob(output, res.Blob, force); err != nil {
					return err
				}
				fmt.Fprintf(out, "Output written to: %s (%d files, %d failed)\n", output, res.Read, res.Failed)
				report = out
			} else {
				fmt.Fprint(out, res.Blob)
			}

			if tokens {
				text, err := buildTokenReport(res.Blob, model, res.Files)
				if err != nil {
					return err
				}
				fmt.Fprint(report, text)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&selects, "select", nil, "Select paths matching this glob relative to <root> (repeatable)")
	cmd.Flags().BoolVar(&all, "all", false, "Select every top-level entry (the default)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the blob to a file instead of stdout")
	cmd.Flags().BoolVar(&force, "force", false, "Allow overwriting a file that is not a previous blob")
	cmd.Flags().BoolVar(&tokens, "tokens", false, "Print a token count report")
	cmd.Flags().StringVar(&model, "model", "gpt-4o", "Model whose tokenizer is used by --tokens")
	flags.register(cmd)
	return cmd
}

func (a *app) writeBlob(path, blob string, force bool) error {
	if info, err := a.fs.Stat(path); err == nil && !force {
		if info.IsDir() {
			return fmt.Errorf("refusing to overwrite %s: it is a folder", path)
		}
		ok, err := isBlob(a.fs, path)
		if err != nil {
			return fmt.Errorf("failed to check existing file: %w", err)
		}
		if !ok {
			return fmt.Errorf("refusing to overwrite %s: file exists and doesn't appear to be collect output. Use --force to override", path)
		}
	}
	if err := a.fs.WriteFile(path, blob); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return nil
}
