package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agusx1211/foldkit/internal/comments"
)

func newStripCmd(a *app) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "strip",
		Short: "Remove comments from source text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.readInput(cmd, input)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), comments.Strip(text))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Source file (default stdin)")
	return cmd
}
