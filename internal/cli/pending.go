package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pendingOrg string

func init() {
	rootCmd.AddCommand(pendingCmd)
	pendingCmd.Flags().StringVar(&pendingOrg, "org", "", "Limit to one organization")
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List decisions awaiting human approval",
	Long:  "Shows pending and escalated governance decisions with their risk level and expiry.",
	RunE:  runPending,
}

func runPending(cmd *cobra.Command, args []string) error {
	v, err := newEnv()
	if err != nil {
		return err
	}
	defer v.close()

	list, err := v.store.AwaitingDecisions(pendingOrg)
	if err != nil {
		return fmt.Errorf("failed to list decisions: %w", err)
	}

	if len(list) == 0 {
		fmt.Println("No decisions awaiting approval.")
		return nil
	}

	fmt.Printf("%-38s %-12s %-10s %-9s %-20s %s\n", "DECISION", "ORG", "STATUS", "RISK", "EXPIRES", "PLAN")
	for _, d := range list {
		fmt.Printf("%-38s %-12s %-10s %-9s %-20s %s\n",
			d.ID,
			truncate(d.OrganizationID, 12),
			d.Status,
			d.RiskLevel,
			d.ExpiresAt.Format("2006-01-02 15:04:05"),
			truncate(d.ActionPlanID, 30),
		)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
