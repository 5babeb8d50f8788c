package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/folio/internal/db"
	"github.com/spf13/cobra"
)

var (
	adminUsername string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account",
	Long: `Create an admin account for the /admin area.

When --password is omitted a random password is generated and printed once.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		username := strings.TrimSpace(adminUsername)
		if username == "" {
			return errors.New("missing required flag: --username")
		}
		if _, err := bootstrap(); err != nil {
			return err
		}

		password := adminPassword
		generated := false
		if strings.TrimSpace(password) == "" {
			var err error
			if password, err = generatePassword(24); err != nil {
				return err
			}
			generated = true
		}

		created, err := db.EnsureUser(db.DB, username, password)
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		if !created {
			return fmt.Errorf("user %q already exists", username)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "created admin user %s\n", username)
		if generated {
			fmt.Fprintf(out, "password: %s\n", password)
			fmt.Fprintln(out, "the password is shown only once")
		}
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVarP(&adminUsername, "username", "u", "", "admin username")
	createAdminCmd.Flags().StringVarP(&adminPassword, "password", "p", "", "admin password (generated when empty)")
}

func generatePassword(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
