package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/stewardhq/steward/internal/model"
)

func init() {
	rootCmd.AddCommand(evaluateCmd)
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <plan.json>",
	Short: "Evaluate an action plan and produce a governance decision",
	Long:  "Reads an action plan from a JSON file (or stdin with \"-\"), assesses its risk,\napplies the organization's governance policy, and prints the resulting decision.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEvaluate,
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read plan: %w", err)
	}

	var plan model.ActionPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return fmt.Errorf("failed to parse plan: %w", err)
	}
	if plan.ID == "" || plan.OrganizationID == "" {
		return fmt.Errorf("plan must carry id and organization_id")
	}

	v, err := newEnv()
	if err != nil {
		return err
	}
	defer v.close()

	d, err := v.engine.EvaluateActionPlan(&plan)
	if err != nil {
		return err
	}

	out, _ := json.MarshalIndent(d, "", "  ")
	fmt.Println(string(out))
	return nil
}
