package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agusx1211/foldkit/internal/config"
	"github.com/agusx1211/foldkit/internal/fsaccess"
)

// app holds what every subcommand needs once the root command has run its
// persistent pre-run.
type app struct {
	cfgFile  string
	logLevel string
	profile  string

	cfg *config.Config
	log *logrus.Logger
	fs  *fsaccess.FS
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "foldkit",
		Short: "Draw, build, collect and distribute folder structures",
		Long: `foldkit works with project folders as text. It renders folder trees as
diagrams, creates folders from diagrams, concatenates selected files into
one blob and splits such a blob back into files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "Config file (default $HOME/.config/foldkit/config.yaml)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warning, error)")
	cmd.PersistentFlags().StringVar(&a.profile, "profile", "", "Profile from the .foldkit file to use")

	cmd.AddCommand(
		newTreeCmd(a),
		newBuildCmd(a),
		newParseCmd(a),
		newCollectCmd(a),
		newDistributeCmd(a),
		newScanCmd(a),
		newStripCmd(a),
		newProfileCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	v := viper.New()
	if a.logLevel != "" {
		v.Set("log_level", a.logLevel)
	}
	if a.profile != "" {
		v.Set("profile", a.profile)
	}
	cfg, err := config.Load(v, a.cfgFile)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.SetOutput(cmd.ErrOrStderr())

	a.cfg = cfg
	a.log = logger
	a.fs = fsaccess.NewOS()
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
