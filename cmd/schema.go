package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/samplesheet/internal/config"
)

// schemaCmd prints the schema that load and check would use, in the same
// YAML form as the schema section of the configuration file.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the effective sample sheet schema as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSchema(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().StringVar(&templateFile, "template", "", "XLSX schema template (overrides schema fields from the config)")
	schemaCmd.Flags().StringVar(&duplicates, "duplicates", "", "Duplicate sample policy: merge, keep_first or reject")
}

func runSchema(w io.Writer) error {
	schema, err := effectiveSchema()
	if err != nil {
		return err
	}

	doc := map[string]config.SchemaConfig{"schema": config.FromSchema(schema)}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	return enc.Close()
}
