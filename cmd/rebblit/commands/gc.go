package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rebblit/rebblit-db/cmd/rebblit/output"
	"github.com/rebblit/rebblit-db/internal/store"
	"github.com/rebblit/rebblit-db/pkg/runtime"
)

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Purge expired sessions and verification tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGC()
	},
}

func init() {
	rootCmd.AddCommand(gcCmd)
}

func runGC() error {
	ctx := context.Background()

	if dbURL == "" {
		return fmt.Errorf("--db flag or DATABASE_URL is required")
	}
	db, err := runtime.ConnectWithURL(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	st, err := store.New(db)
	if err != nil {
		return fmt.Errorf("failed to build store: %w", err)
	}

	sessions, err := st.Sessions.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge sessions: %w", err)
	}
	verifications, err := st.Verifications.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge verifications: %w", err)
	}

	output.Success("Purged %d expired session(s), %d expired verification token(s)", sessions, verifications)
	return nil
}
