package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var insightsGenerate bool

func init() {
	rootCmd.AddCommand(insightsCmd)
	insightsCmd.Flags().BoolVar(&insightsGenerate, "generate", false, "Generate fresh insights from the feedback window first")
}

var insightsCmd = &cobra.Command{
	Use:   "insights <organization-id>",
	Short: "Show learning insights for an organization",
	Args:  cobra.ExactArgs(1),
	RunE:  runInsights,
}

func runInsights(cmd *cobra.Command, args []string) error {
	org := args[0]

	v, err := newEnv()
	if err != nil {
		return err
	}
	defer v.close()

	if insightsGenerate {
		if _, err := v.loop().GenerateInsights(org); err != nil {
			return err
		}
	}

	list, err := v.store.Insights(org)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No insights recorded.")
		return nil
	}

	for _, in := range list {
		fmt.Printf("[%s] %s (confidence %.2f, evidence %d)\n", in.Type, in.Title, in.Confidence, in.EvidenceCount)
		fmt.Printf("    %s\n", in.Description)
		for _, r := range in.Recommended {
			fmt.Printf("    - %s\n", r)
		}
	}
	return nil
}
