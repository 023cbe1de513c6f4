// Package commands implements the rebblit-db command line interface.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	dbURL         string
	migrationsDir string
	jsonOutput    bool
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "rebblit-db",
	Short: "Rebblit database toolkit",
	Long: `rebblit-db manages the Rebblit PostgreSQL schema and data layer.

Commands:
  schema   - Inspect models and emit schema DDL
  migrate  - Apply, roll back and inspect migrations
  gc       - Purge expired sessions and verification tokens`,
	Version: "0.4.1",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", os.Getenv("DATABASE_URL"), "Database connection URL (defaults to DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "migrations-dir", "./migrations", "Directory for migration files")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print applied SQL statements")
}
