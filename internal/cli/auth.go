package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/tessro/cadence/internal/remote"
	"github.com/tessro/cadence/internal/remote/auth"
	"github.com/tessro/cadence/internal/wizard"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage API authentication",
	Long:  `Commands for managing the bearer token used with the music API.`,
}

var (
	authToken    string
	authTTL      time.Duration
	authNoVerify bool
	authCheck    bool
)

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an API token",
	Long: `Store a bearer token for the music API. Without --token the token is read
from CADENCE_TOKEN, or asked for when running in a terminal. The token is
checked against the API before it is saved unless --no-verify is given.`,
	RunE: runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored token",
	Long:  `Removes the stored API token from the local machine.`,
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long:  `Shows whether a token is stored and when it expires.`,
	RunE:  runAuthStatus,
}

func init() {
	authLoginCmd.Flags().StringVar(&authToken, "token", "", "API token")
	authLoginCmd.Flags().DurationVar(&authTTL, "ttl", 0, "Token lifetime, 0 for no expiry")
	authLoginCmd.Flags().BoolVar(&authNoVerify, "no-verify", false, "Save without checking the token")
	authStatusCmd.Flags().BoolVar(&authCheck, "check", false, "Verify the token against the API")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	value := strings.TrimSpace(authToken)
	if value == "" {
		value = strings.TrimSpace(os.Getenv("CADENCE_TOKEN"))
	}
	if value == "" && wizard.IsTerminal() {
		err := huh.NewInput().
			Title("API token").
			Description("Paste the bearer token for " + cfg.API.BaseURL).
			EchoMode(huh.EchoModePassword).
			Value(&value).
			Run()
		if err != nil {
			return fmt.Errorf("login cancelled: %w", err)
		}
		value = strings.TrimSpace(value)
	}
	if value == "" {
		return fmt.Errorf("no token given. Use --token or set CADENCE_TOKEN")
	}

	token := auth.NewToken(value, authTTL)

	if !authNoVerify && !cfg.API.Offline {
		if err := verifyToken(cmd.Context(), token); err != nil {
			return fmt.Errorf("token rejected: %w", err)
		}
	}

	storage, err := auth.NewTokenStorage("")
	if err != nil {
		return fmt.Errorf("failed to initialize token storage: %w", err)
	}
	if err := storage.Save(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	if JSONOutput() {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"status":     "authenticated",
			"token":      token.Masked(),
			"expires_at": token.ExpiresAt,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Token %s saved to %s\n", token.Masked(), storage.Path())
	return nil
}

// verifyToken makes one authenticated read with token.
func verifyToken(ctx context.Context, token *auth.Token) error {
	c := remote.New(cfg.API.BaseURL,
		remote.WithTimeout(cfg.API.TimeoutDuration()),
		remote.WithRetries(0),
		remote.WithToken(token),
		remote.WithLogger(logger),
	)
	_, err := c.FetchAll(ctx)
	return err
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	storage, err := auth.NewTokenStorage("")
	if err != nil {
		return fmt.Errorf("failed to initialize token storage: %w", err)
	}

	if !storage.Exists() {
		return outputStatus(cmd, "not_authenticated", "Not logged in.")
	}

	if err := storage.Delete(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return outputStatus(cmd, "logged_out", "Logged out.")
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	storage, err := auth.NewTokenStorage("")
	if err != nil {
		return fmt.Errorf("failed to initialize token storage: %w", err)
	}

	token, err := storage.Load()
	if err != nil {
		return fmt.Errorf("failed to load token: %w", err)
	}

	out := cmd.OutOrStdout()
	if token == nil {
		if JSONOutput() {
			return printJSON(out, map[string]any{"authenticated": false})
		}
		fmt.Fprintln(out, "Not logged in.")
		fmt.Fprintln(out, "Run 'cadence auth login' to store a token.")
		return nil
	}

	var checkErr error
	if authCheck && !token.IsExpired() {
		checkErr = verifyToken(cmd.Context(), token)
	}

	if JSONOutput() {
		result := map[string]any{
			"authenticated": token.Valid() && checkErr == nil,
			"expired":       token.IsExpired(),
			"token":         token.Masked(),
			"expires_at":    token.ExpiresAt,
		}
		if checkErr != nil {
			result["error"] = checkErr.Error()
		}
		return printJSON(out, result)
	}

	fmt.Fprintf(out, "Token: %s (saved %s)\n", token.Masked(), humanize.Time(token.CreatedAt))
	switch {
	case token.IsExpired():
		fmt.Fprintln(out, "Token expired. Run 'cadence auth login' to replace it.")
	case token.ExpiresAt.IsZero():
		fmt.Fprintln(out, "Token does not expire.")
	default:
		fmt.Fprintf(out, "Token expires %s\n", humanize.Time(token.ExpiresAt))
	}
	if authCheck {
		if checkErr != nil {
			fmt.Fprintf(out, "API check failed: %v\n", checkErr)
		} else if !token.IsExpired() {
			fmt.Fprintln(out, "API accepted the token.")
		}
	}
	return nil
}
