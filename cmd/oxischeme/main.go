// Command oxischeme is the core's command-line entry point: zero
// arguments starts the REPL, one or more arguments are file paths
// evaluated in order.
package main

import (
	"github.com/oxischeme/oxischeme/internal/cli"
	"github.com/oxischeme/oxischeme/internal/errors"
	"github.com/spf13/cobra"
)

func main() {
	var (
		jsonOutput  bool
		debugMode   bool
		noPrompt    bool
		evalStr     string
		historyFile string
		maxHistory  int
		watch       bool
	)

	root := &cobra.Command{
		Use:           "oxischeme [files...]",
		Short:         "A Scheme interpreter with precise GC and trampolined tail calls",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := cli.NewLogger(debugMode, debugMode)

			if evalStr != "" {
				return runEval(logger, evalStr)
			}

			if len(args) == 0 {
				return runREPL(logger, historyFile, maxHistory, noPrompt, watch)
			}

			return runBatch(logger, args)
		},
	}

	root.Flags().BoolVarP(&jsonOutput, "json", "j", false, "output version info as JSON")
	root.Flags().BoolVarP(&debugMode, "debug", "d", false, "enable debug logging")
	root.Flags().BoolVar(&noPrompt, "no-prompt", false, "disable the interactive prompt string")
	root.Flags().StringVarP(&evalStr, "eval", "e", "", "evaluate an expression and exit")
	root.Flags().StringVar(&historyFile, "history", ".oxischeme_history", "REPL history file path")
	root.Flags().IntVar(&maxHistory, "max-history", 1000, "maximum REPL history entries")
	root.Flags().BoolVarP(&watch, "watch", "w", false, "re-evaluate loaded files when they change on disk")

	var showVersion bool
	root.Flags().BoolVarP(&showVersion, "version", "V", false, "show version information")

	originalRunE := root.RunE
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if showVersion {
			cli.PrintVersion("oxischeme", jsonOutput)
			return nil
		}

		return originalRunE(cmd, args)
	}

	if err := root.Execute(); err != nil {
		cli.ExitWithError("%s", errors.Message(err))
	}
}
