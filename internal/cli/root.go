// Package cli implements the vclock administrative command-line tool.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	serverURL string
	token     string
)

var rootCmd = &cobra.Command{
	Use:   "vclock",
	Short: "VeriClock attendance administration",
	Long: `vclock is the command-line interface for the VeriClock attendance
service.

Enroll employees, inspect attendance statistics, trigger the daily
reconciliation sweep and mint access tokens from your terminal.`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "attendance service base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "admin access token")

	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(tokenCmd)
}
