package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/agusx1211/foldkit/internal/config"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect and choose profiles of a .foldkit file",
	}
	cmd.AddCommand(newProfileListCmd(a), newProfileUseCmd(a))
	return cmd
}

func newProfileListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [directory]",
		Short: "List the profiles defined in a .foldkit file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dirArg(args)
			if err != nil {
				return err
			}
			path := filepath.Join(dir, config.ProfileFileName)
			names, err := config.ProfileNames(path)
			if os.IsNotExist(err) {
				return fmt.Errorf("no %s file in %s", config.ProfileFileName, dir)
			}
			if err != nil {
				return err
			}
			sort.Strings(names)

			out := cmd.OutOrStdout()
			for _, name := range names {
				marker := " "
				if name == a.cfg.Profile {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, name)
			}
			return nil
		},
	}
}

func newProfileUseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name> [directory]",
		Short: "Make a profile the default of a .foldkit file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dirArg(args[1:])
			if err != nil {
				return err
			}
			path := filepath.Join(dir, config.ProfileFileName)

			hasProfiles, hasProfile, _, err := config.ProfileInfo(path, args[0])
			if err != nil && !os.IsNotExist(err) {
				return err
			}
			if hasProfiles && !hasProfile {
				a.log.WithField("profile", args[0]).Warn("profile is not defined; the default profile will be used")
			}
			if err := config.SetDefaultProfile(path, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "default profile set to %s in %s\n", args[0], path)
			return nil
		},
	}
}
