package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dylandreimerink/asmviz/cmd/debug"
	"github.com/dylandreimerink/asmviz/cmd/tui"
)

var (
	log      = logrus.New()
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "asmviz",
	Short: "asmviz steps through assembly listings and visualizes registers, stack and code",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		lvl, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		log.SetLevel(lvl)

		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	log.SetOutput(os.Stderr)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"Log level for session events: trace, debug, info, warn, error")

	rootCmd.AddCommand(
		debug.DebugCmd(log),
		tui.Command(log),
		exportCommand(),
		graphCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
