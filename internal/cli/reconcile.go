package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vericlock-systems/vericlock/internal/cli/client"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Close today's abandoned sessions",
	Long: `Trigger the reconciliation sweep that closes sessions still open from
today. Safe to run repeatedly; a second run finds nothing left to close.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(serverURL, token)
		resp, err := c.Reconcile()
		if err != nil {
			return fmt.Errorf("reconciliation failed: %w", err)
		}

		fmt.Printf("Closed %d session(s) at %s\n", resp.Closed, resp.RanAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}
