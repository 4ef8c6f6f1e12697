package cli

import (
	"encoding/json"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/spf13/cobra"

	"github.com/elys-network/amm-ledger/internal/config"
	"github.com/elys-network/amm-ledger/internal/utils"
)

var (
	victimIn     string
	victimMinOut string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print a built-in scenario plan as JSON",
	Long: `Print the plan of the selected --scenario as JSON so it can be edited and
replayed with --plan. Reference prices for t0 and t1 come from AMM_REFERENCE_PRICES.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var in, minOut *sdkmath.LegacyDec
		if cmd.Flags().Changed("victim-in") {
			v, err := utils.ParseDec(victimIn)
			if err != nil {
				return fmt.Errorf("invalid --victim-in: %w", err)
			}
			in = &v
		}
		if cmd.Flags().Changed("victim-min-out") {
			v, err := utils.ParseDec(victimMinOut)
			if err != nil {
				return fmt.Errorf("invalid --victim-min-out: %w", err)
			}
			minOut = &v
		}

		plan, err := builtinPlan(config.Scenario, in, minOut)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode plan: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	planCmd.Flags().StringVar(&victimIn, "victim-in", "", "t0 the victim swaps")
	planCmd.Flags().StringVar(&victimMinOut, "victim-min-out", "", "minimum t1 the victim accepts")
	rootCmd.AddCommand(planCmd)
}
