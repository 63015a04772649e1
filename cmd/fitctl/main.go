// fitctl is the operator CLI for the fitness tracker API: database migrations
// and account creation.
// Usage: go run ./cmd/fitctl <command> (from the module root)
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "fitctl",
	Short:         "Operator tools for the fitness tracker API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintln(os.Stderr, "No .env file found, using system env")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("db-url", "", "Postgres connection URL (defaults to $DB_URL)")
	rootCmd.AddCommand(migrateCmd, createUserCmd)
}

// connect opens a single connection using --db-url or $DB_URL.
func connect(ctx context.Context, cmd *cobra.Command) (*pgx.Conn, error) {
	url, _ := cmd.Flags().GetString("db-url")
	if url == "" {
		url = os.Getenv("DB_URL")
	}
	if url == "" {
		return nil, fmt.Errorf("no database configured: set DB_URL or pass --db-url")
	}
	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return conn, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
