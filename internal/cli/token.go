package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vericlock-systems/vericlock/internal/auth"
)

var (
	tokenSecret  string
	tokenSubject string
	tokenRoles   []string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token",
	Long: `Mint a signed access token for the administrative API. The secret must
match the auth.jwt_secret the service was started with.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenSecret == "" {
			return fmt.Errorf("--secret is required")
		}

		tm := auth.NewTokenManager(tokenSecret, tokenTTL)
		signed, err := tm.Generate(tokenSubject, tokenRoles)
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}

		fmt.Println(signed)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "JWT signing secret")
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "admin", "token subject")
	tokenCmd.Flags().StringSliceVar(&tokenRoles, "roles", []string{"admin"}, "roles to grant")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 12*time.Hour, "token lifetime")
}
