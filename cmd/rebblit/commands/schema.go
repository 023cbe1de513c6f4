package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rebblit/rebblit-db/cmd/rebblit/output"
	"github.com/rebblit/rebblit-db/internal/models"
	"github.com/rebblit/rebblit-db/pkg/migration"
)

var migrationName string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect models and emit schema DDL",
	Long: `Inspect the registered models and generate schema DDL from them.

Subcommands:
  sql       - Print the CREATE statements for all models
  generate  - Write a timestamped migration with the full schema
  tables    - List registered tables and their columns`,
}

var schemaSQLCmd = &cobra.Command{
	Use:   "sql",
	Short: "Print the CREATE statements for all models",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSchemaSQL()
	},
}

var schemaGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a timestamped migration with the full schema",
	Long: `Write up and down migration files holding the complete schema.

Examples:
  rebblit-db schema generate --name init`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSchemaGenerate()
	},
}

var schemaTablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List registered tables and their columns",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSchemaTables()
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaSQLCmd, schemaGenerateCmd, schemaTablesCmd)

	schemaGenerateCmd.Flags().StringVarP(&migrationName, "name", "n", "", "Migration name (required)")
	_ = schemaGenerateCmd.MarkFlagRequired("name")
}

func runSchemaSQL() error {
	tables, err := models.Tables()
	if err != nil {
		return fmt.Errorf("failed to load models: %w", err)
	}

	planner := migration.NewPlanner()
	upSQL, _, err := planner.GenerateSchema(tables)
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	fmt.Println(upSQL)
	return nil
}

func runSchemaGenerate() error {
	tables, err := models.Tables()
	if err != nil {
		return fmt.Errorf("failed to load models: %w", err)
	}

	generator := migration.NewGenerator(migrationsDir)
	file, err := generator.Generate(migrationName, tables)
	if err != nil {
		return fmt.Errorf("failed to generate migration: %w", err)
	}

	output.Success("Created migration: %s", file.Version)
	output.Muted("  Up:   %s", file.UpPath)
	output.Muted("  Down: %s", file.DownPath)
	fmt.Println()
	output.Info("Review the generated SQL files before applying the migration.")
	return nil
}

func runSchemaTables() error {
	tables, err := models.Tables()
	if err != nil {
		return fmt.Errorf("failed to load models: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, table := range tables {
		output.Section(table.Name)
		_, _ = fmt.Fprintln(w, "COLUMN\tTYPE\tNULLABLE\tDEFAULT")
		for _, col := range table.Columns {
			nullable := "yes"
			if !col.Nullable {
				nullable = "no"
			}
			def := ""
			if col.Default != nil {
				def = *col.Default
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", col.Name, col.SQLType, nullable, def)
		}
		_ = w.Flush()

		if len(table.Indexes) > 0 {
			fmt.Println()
			for _, idx := range table.Indexes {
				kind := "index"
				if idx.Unique {
					kind = "unique index"
				}
				output.Muted("  %s %s", kind, idx.Name)
			}
		}
	}
	return nil
}
