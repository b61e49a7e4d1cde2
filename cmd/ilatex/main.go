package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/exsitu-projects/ilatex-sub001/latex/grammar"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose int
	var logPath string

	rootCmd := &cobra.Command{
		Use:           "ilatex",
		Short:         "Incremental parser for a constrained LaTeX dialect",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var path *string
			if logPath != "" {
				path = &logPath
			}
			commonlog.Configure(verbose, path)
		},
	}

	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newReplayCmd())
	rootCmd.AddCommand(newDialectCmd())
	rootCmd.AddCommand(newLSPCmd())

	return rootCmd
}

// loadDialect returns the default dialect extended with the file at path,
// if any.
func loadDialect(path string) (*grammar.Dialect, error) {
	d := grammar.DefaultDialect()
	if path == "" {
		return d, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dialect: %w", err)
	}
	defer f.Close()
	extra, err := grammar.LoadDialect(f)
	if err != nil {
		return nil, fmt.Errorf("load dialect %s: %w", path, err)
	}
	return d.Merge(extra), nil
}
