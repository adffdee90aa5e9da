package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(scoreCmd)
}

var scoreCmd = &cobra.Command{
	Use:   "score <organization-id>",
	Short: "Show an organization's trust score",
	Long:  "Computes the trust score from the organization's trailing decision history\nand prints it, including per-category scores and confidence.",
	Args:  cobra.ExactArgs(1),
	RunE:  runScore,
}

func runScore(cmd *cobra.Command, args []string) error {
	v, err := newEnv()
	if err != nil {
		return err
	}
	defer v.close()

	score, err := v.engine.Trust().Score(args[0])
	if err != nil {
		return err
	}

	out, _ := json.MarshalIndent(score, "", "  ")
	fmt.Println(string(out))
	return nil
}
