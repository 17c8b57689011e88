package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agusx1211/foldkit/internal/fsaccess"
	"github.com/agusx1211/foldkit/internal/structure"
	"github.com/agusx1211/foldkit/internal/tree"
)

func newTreeCmd(a *app) *cobra.Command {
	var (
		full     bool
		excludes []string
		expands  []string
	)

	cmd := &cobra.Command{
		Use:   "tree [directory]",
		Short: "Print a folder as a structure diagram",
		Long: `Print a folder as a structure diagram.

By default only the top level is shown, plus the folders opened with --expand.
--full walks every folder that is not excluded.

Examples:
  foldkit tree
  foldkit tree ./app --expand src --expand src/components
  foldkit tree ./app --full --exclude node_modules`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			root, err := dirArg(args)
			if err != nil {
				return err
			}

			loader := tree.NewLoader(a.fs, tree.WithLogger(a.log))
			t, err := loader.LoadRoot(ctx, root)
			if err != nil {
				return err
			}

			for _, p := range expands {
				if t, err = reveal(ctx, loader, t, root, absPath(root, p)); err != nil {
					return err
				}
			}
			for _, p := range excludes {
				path := absPath(root, p)
				if parent := filepath.Dir(path); parent != root {
					if t, err = reveal(ctx, loader, t, root, parent); err != nil {
						return err
					}
				}
				if t, err = t.SetExcluded(path, true); err != nil {
					return fmt.Errorf("cannot exclude %s: %w", p, err)
				}
			}

			view := structure.ViewCurrent
			if full {
				view = structure.ViewFull
				if t, err = loader.LoadAll(ctx, t); err != nil {
					return err
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), structure.Render(structure.RootName(root), structure.FromTree(t, view)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Walk every folder instead of the current view")
	cmd.Flags().StringArrayVar(&excludes, "exclude", nil, "Mark a path as excluded (repeatable)")
	cmd.Flags().StringArrayVar(&expands, "expand", nil, "Open a folder in the current view (repeatable)")
	return cmd
}

// reveal opens every folder from root down to path, loading those that are
// not loaded yet.
func reveal(ctx context.Context, loader *tree.Loader, t *tree.Tree, root, path string) (*tree.Tree, error) {
	rel, ok := fsaccess.Rel(root, path)
	if !ok || rel == "." {
		return t, fmt.Errorf("%s is not inside %s", path, root)
	}

	var err error
	cur := root
	for _, part := range strings.Split(rel, "/") {
		cur = filepath.Join(cur, part)
		id, ok := t.Lookup(cur)
		if !ok {
			return t, fmt.Errorf("%s: %w", cur, tree.ErrNotFound)
		}
		n := t.Node(id)
		if n.IsFile {
			return t, fmt.Errorf("%s: %w", cur, tree.ErrNotFolder)
		}
		if n.Expanded {
			continue
		}
		if t, err = loader.Expand(ctx, t, cur); err != nil {
			return t, err
		}
	}
	return t, nil
}
