package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tallysheet/tally/internal/backend"
	"github.com/tallysheet/tally/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "tally",
	Short: "tally – a personal timesheet tracker",
	Long: `tally tracks work time entries (date, start/end time, break, hourly rate)
against an external persistence service and reports billable hours and
earnings. Run "tally serve" to expose the same operations as an HTTP API.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(templateCmd)
}

// session bundles everything an authenticated CLI command needs.
type session struct {
	cfg    *config.Config
	client *backend.Client
	user   backend.User
}

// newSession loads config and resolves the stored sign-in, refreshing the
// token when needed.
func newSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	client := backend.New(cfg.BackendURL, cfg.BackendKey)
	tok, err := client.CurrentToken(ctx, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("%w (run \"tally login\")", err)
	}
	client = client.WithToken(tok.AccessToken)

	user, err := client.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving account: %w", err)
	}
	return &session{cfg: cfg, client: client, user: user}, nil
}
