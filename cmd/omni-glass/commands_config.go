package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omni-glass/host/internal/config"
)

func buildConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the host configuration format",
	}
	cmd.AddCommand(buildConfigSchemaCmd())
	return cmd
}

func buildConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for the YAML configuration file",
		Long: `Reflects the config.Config struct into a JSON Schema document, keyed
on its "yaml" struct tags so it lines up with the actual YAML field
names. Useful for editor autocompletion or for validating a config file
against a schema before passing it to "serve".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := config.JSONSchema()
			if err != nil {
				return fmt.Errorf("generate schema: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(schema))
			return nil
		},
	}
}
