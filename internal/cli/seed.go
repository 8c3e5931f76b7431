package cli

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"

	"github.com/vericlock-systems/vericlock/internal/cli/client"
	"github.com/vericlock-systems/vericlock/internal/models"
)

var seedCount int

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Enroll fake employees for development",
	Long: `Enroll a batch of generated employees through the API. They are created
without an enrollment photo, so they exist in the roster but cannot pass
biometric verification until enrolled with a real image.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(serverURL, token)

		created := 0
		for i := 0; i < seedCount; i++ {
			req := &models.EnrollRequest{
				EmployeeCode: fmt.Sprintf("EMP-%04d", gofakeit.Number(1000, 9999)),
				FirstName:    gofakeit.FirstName(),
				LastName:     gofakeit.LastName(),
				Email:        gofakeit.Email(),
			}

			employee, err := c.Enroll(req)
			if err != nil {
				// Generated codes can collide; keep going.
				fmt.Printf("skip %s: %v\n", req.EmployeeCode, err)
				continue
			}
			created++
			fmt.Printf("enrolled %s (%s %s) id=%s\n",
				employee.EmployeeCode, employee.FirstName, employee.LastName, employee.ID)
		}

		fmt.Printf("Created %d of %d employees\n", created, seedCount)
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 10, "number of employees to create")
}
