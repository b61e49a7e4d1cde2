package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newDialectCmd() *cobra.Command {
	var dialectPath string

	cmd := &cobra.Command{
		Use:   "dialect",
		Short: "Print the effective dialect as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDialect(dialectPath)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(d); err != nil {
				return fmt.Errorf("encode dialect: %w", err)
			}
			return enc.Close()
		},
	}

	cmd.Flags().StringVar(&dialectPath, "dialect", "", "YAML file extending the default dialect")

	return cmd
}
