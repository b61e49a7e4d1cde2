package main

import (
	"github.com/spf13/cobra"

	"github.com/exsitu-projects/ilatex-sub001/latex/document"
	"github.com/exsitu-projects/ilatex-sub001/lsp"
)

func newLSPCmd() *cobra.Command {
	var dialectPath string
	var enable []string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDialect(dialectPath)
			if err != nil {
				return err
			}
			kinds, err := parseKinds(enable)
			if err != nil {
				return err
			}
			server := lsp.NewServer(version,
				document.WithDialect(d),
				document.WithReparseKinds(kinds...),
				document.WithFullReparseFallback(),
			)
			return server.RunStdio()
		},
	}

	cmd.Flags().StringVar(&dialectPath, "dialect", "", "YAML file extending the default dialect")
	cmd.Flags().StringSliceVar(&enable, "enable", defaultReparseKinds, "node kinds that reparse themselves")

	return cmd
}
