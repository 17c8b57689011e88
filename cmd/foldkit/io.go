package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agusx1211/foldkit/internal/fsaccess"
)

// readInput returns the contents of path, or of stdin when path is empty or
// "-".
func (a *app) readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	content, err := a.fs.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return content, nil
}

// absPath resolves p against root unless it is already absolute.
func absPath(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

// dirArg returns the absolute form of the first argument, or of the working
// directory when there is none.
func dirArg(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	return abs, nil
}

// isBlob reports whether the file at path looks like collect output, so it
// can be overwritten without --force.
func isBlob(fs fsaccess.Accessor, path string) (bool, error) {
	content, err := fs.ReadFile(path)
	if err != nil {
		return false, err
	}
	if content == "" {
		return true, nil
	}
	return strings.HasPrefix(content, "\n\n# ===== ") || strings.HasPrefix(content, "\n\n# [Error reading "), nil
}
