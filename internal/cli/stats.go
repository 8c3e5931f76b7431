package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vericlock-systems/vericlock/internal/cli/client"
	"github.com/vericlock-systems/vericlock/internal/models"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats [employee-id]",
	Short: "Month-to-date attendance statistics",
	Long: `Show month-to-date attendance statistics. With an employee ID the
summary covers that employee; without one it covers the whole organization.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(serverURL, token)

		var resp *models.StatsResponse
		var err error
		if len(args) == 1 {
			resp, err = c.EmployeeStats(args[0])
		} else {
			resp, err = c.OrgStats()
		}
		if err != nil {
			return fmt.Errorf("failed to fetch stats: %w", err)
		}

		if statsJSON {
			return json.NewEncoder(os.Stdout).Encode(resp)
		}

		if resp.EmployeeID != "" {
			fmt.Printf("Employee:      %s\n", resp.EmployeeID)
		}
		fmt.Printf("Working days:  %d\n", resp.WorkingDays)
		fmt.Printf("Present days:  %d\n", resp.PresentDays)
		fmt.Printf("Absent days:   %d\n", resp.AbsentDays)
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
}
