package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// migrateCmd runs pending SQL migrations from the migrations directory.
// Checks the migrations table to skip already-applied files and wraps each
// migration + record insert in a single transaction.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		ctx := cmd.Context()

		files, err := migrationFiles(dir)
		if err != nil {
			return err
		}

		conn, err := connect(ctx, cmd)
		if err != nil {
			return err
		}
		defer conn.Close(ctx)

		// Get already-applied migrations (table may not exist yet)
		applied := make(map[string]bool)
		rows, err := conn.Query(ctx, "SELECT migration FROM migrations")
		if err == nil {
			for rows.Next() {
				var name string
				if err := rows.Scan(&name); err == nil {
					applied[name] = true
				}
			}
			rows.Close()
		}

		out := cmd.OutOrStdout()
		ran := 0
		for _, f := range files {
			filename := filepath.Base(f)
			if applied[filename] {
				fmt.Fprintf(out, "  skip: %s\n", filename)
				continue
			}

			content, err := os.ReadFile(f)
			if err != nil {
				return fmt.Errorf("read %s: %w", filename, err)
			}

			tx, err := conn.Begin(ctx)
			if err != nil {
				return fmt.Errorf("start transaction: %w", err)
			}
			if _, err := tx.Exec(ctx, string(content)); err != nil {
				tx.Rollback(ctx)
				return fmt.Errorf("run %s: %w", filename, err)
			}
			if _, err := tx.Exec(ctx, "INSERT INTO migrations (migration, description) VALUES ($1, $2)",
				filename, descriptionFromFilename(filename)); err != nil {
				tx.Rollback(ctx)
				return fmt.Errorf("record %s: %w", filename, err)
			}
			if err := tx.Commit(ctx); err != nil {
				return fmt.Errorf("commit %s: %w", filename, err)
			}

			fmt.Fprintf(out, "  applied: %s\n", filename)
			ran++
		}

		if ran == 0 {
			fmt.Fprintln(out, "No pending migrations.")
		} else {
			fmt.Fprintf(out, "\n%d migration(s) applied.\n", ran)
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().String("dir", "db", "directory containing *.sql migration files")
}

// migrationFiles returns the *.sql files in dir in apply order.
func migrationFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no migration files found in %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

var migrationPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-\d{3}-`)

// descriptionFromFilename strips the YYYY-MM-DD-NNN- prefix and .sql suffix.
func descriptionFromFilename(filename string) string {
	name := strings.TrimSuffix(filename, ".sql")
	name = migrationPrefix.ReplaceAllString(name, "")
	return strings.ReplaceAll(name, "-", " ")
}
