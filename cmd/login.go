package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tallysheet/tally/internal/backend"
	"github.com/tallysheet/tally/internal/config"
)

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the persistence service and store the session",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (prompted when omitted)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	email := loginEmail
	if email == "" {
		fmt.Print("Email: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading email: %w", err)
		}
		email = strings.TrimSpace(line)
	}

	fmt.Print("Password: ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")

	client := backend.New(cfg.BackendURL, cfg.BackendKey)
	tok, err := client.SignIn(cmd.Context(), email, password)
	if err != nil {
		return err
	}
	if err := backend.SaveToken(cfg.DataDir, tok); err != nil {
		return err
	}

	user, err := client.WithToken(tok.AccessToken).CurrentUser(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s\n", user.Email)
	return nil
}
