package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

// createUserCmd creates a password user with a bcrypt-hashed password.
// Prompts on stdin for anything not passed as a flag.
var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a username/password user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		reader := bufio.NewReader(cmd.InOrStdin())
		out := cmd.OutOrStdout()

		username, _ := cmd.Flags().GetString("username")
		if username == "" {
			username = prompt(reader, out, "Username: ")
		}
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = prompt(reader, out, "Password: ")
		}
		if username == "" || password == "" {
			return fmt.Errorf("username and password are required")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		conn, err := connect(ctx, cmd)
		if err != nil {
			return err
		}
		defer conn.Close(ctx)

		id := uuid.New()
		_, err = conn.Exec(ctx,
			`INSERT INTO users (id, username, password_hash, anonymous)
			 VALUES ($1, $2, $3, false)`,
			id.String(), username, string(hash))
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		fmt.Fprintf(out, "\nUser created successfully!\n")
		fmt.Fprintf(out, "  ID:       %s\n", id)
		fmt.Fprintf(out, "  Username: %s\n", username)
		return nil
	},
}

func init() {
	createUserCmd.Flags().String("username", "", "login name")
	createUserCmd.Flags().String("password", "", "password (prompted when omitted)")
}

func prompt(r *bufio.Reader, w io.Writer, label string) string {
	fmt.Fprint(w, label)
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}
