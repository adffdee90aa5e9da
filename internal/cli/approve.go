package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	decidedBy     string
	justification string
)

func init() {
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(rejectCmd)
	for _, c := range []*cobra.Command{approveCmd, rejectCmd} {
		c.Flags().StringVar(&decidedBy, "by", "", "Actor id of the approver")
		c.Flags().StringVar(&justification, "note", "", "Justification recorded with the decision")
	}
}

var approveCmd = &cobra.Command{
	Use:   "approve <decision-id>",
	Short: "Approve a pending governance decision",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHumanDecision(args[0], "approve")
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject <decision-id>",
	Short: "Reject a pending governance decision",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHumanDecision(args[0], "reject")
	},
}

func runHumanDecision(decisionID, verdict string) error {
	if decidedBy == "" {
		return fmt.Errorf("--by is required: the audit trail needs an actor")
	}

	v, err := newEnv()
	if err != nil {
		return err
	}
	defer v.close()

	d, err := v.engine.ProcessHumanDecision(decisionID, verdict, decidedBy, justification)
	if err != nil {
		return err
	}

	fmt.Printf("Decision %s is now %s (by %s)\n", d.ID, d.Status, d.DecidedBy)
	return nil
}
