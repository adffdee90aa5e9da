package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var expireOrg string

func init() {
	rootCmd.AddCommand(expireCmd)
	expireCmd.Flags().StringVar(&expireOrg, "org", "", "Limit to one organization")
}

var expireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Expire decisions whose approval window has passed",
	Long:  "Transitions every awaiting decision past its expiry time to expired.\nExpiry is otherwise applied lazily when a decision is touched.",
	RunE:  runExpire,
}

func runExpire(cmd *cobra.Command, args []string) error {
	v, err := newEnv()
	if err != nil {
		return err
	}
	defer v.close()

	n, err := v.engine.ExpireStale(expireOrg)
	if err != nil {
		return err
	}
	fmt.Printf("Expired %d stale decisions.\n", n)
	return nil
}
