package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stewardhq/steward/internal/model"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetModeCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change per-organization governance policy",
}

var configShowCmd = &cobra.Command{
	Use:   "show <organization-id>",
	Short: "Show the organization's effective governance config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := newEnv()
		if err != nil {
			return err
		}
		defer v.close()

		cfg, err := v.engine.Config(args[0])
		if err != nil {
			return err
		}
		out, _ := json.MarshalIndent(cfg, "", "  ")
		fmt.Println(string(out))
		return nil
	},
}

var configSetModeCmd = &cobra.Command{
	Use:   "set-mode <organization-id> <mode>",
	Short: "Change the organization's operating mode",
	Long:  "Modes: queue, semi_autonomous, autonomous, emergency_stop.\nemergency_stop rejects every plan until the mode is changed back.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := newEnv()
		if err != nil {
			return err
		}
		defer v.close()

		cfg, err := v.engine.Config(args[0])
		if err != nil {
			return err
		}
		cfg.Mode = model.OperatingMode(args[1])
		if err := v.engine.UpdateConfig(cfg); err != nil {
			return err
		}
		fmt.Printf("Organization %s now operates in %s mode.\n", cfg.OrganizationID, cfg.Mode)
		return nil
	},
}
