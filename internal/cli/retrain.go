package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(retrainCmd)
}

var retrainCmd = &cobra.Command{
	Use:   "retrain <organization-id>",
	Short: "Evaluate whether downstream models need retraining",
	Long:  "Computes performance snapshots over the trailing feedback window and files\nretraining tasks for models whose accuracy or satisfaction dropped.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRetrain,
}

func runRetrain(cmd *cobra.Command, args []string) error {
	v, err := newEnv()
	if err != nil {
		return err
	}
	defer v.close()

	tasks, err := v.loop().EvaluateRetrainingNeed(args[0])
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("No retraining needed.")
		return nil
	}

	for _, task := range tasks {
		fmt.Printf("[%s] %s: %s\n", task.Priority, task.Model, task.Reason)
	}
	return nil
}
