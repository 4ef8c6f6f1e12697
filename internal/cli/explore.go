package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/elys-network/amm-ledger/internal/analyzer"
	"github.com/elys-network/amm-ledger/internal/config"
	"github.com/elys-network/amm-ledger/internal/simulations"
	"github.com/elys-network/amm-ledger/internal/valuation"
)

// maxExploreSteps caps reordering experiments at 6! orderings.
const maxExploreSteps = 6

var exploreWorkers int

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Replay every ordering of the plan's steps and compare outcomes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("workers") {
			config.ExploreWorkers = exploreWorkers
		}

		plan, err := loadPlan()
		if err != nil {
			return err
		}
		initial, err := plan.InitialState()
		if err != nil {
			return fmt.Errorf("invalid genesis: %w", err)
		}
		steps, err := plan.Transitions()
		if err != nil {
			return err
		}
		if len(steps) > maxExploreSteps {
			return fmt.Errorf("plan has %d steps, reordering supports at most %d", len(steps), maxExploreSteps)
		}

		orderings := simulations.Permutations(steps)
		results, err := simulations.Explore(cmd.Context(), initial, orderings, config.ExploreWorkers,
			simulations.WithInvariantAudit(config.InvariantTolerance))
		if err != nil {
			return fmt.Errorf("reordering experiment aborted: %w", err)
		}

		oracle := valuation.NewReferenceOracle(config.ReferencePrices)
		users := plan.ObservedUsers()
		valid := 0
		for i, r := range results {
			if r.Err != nil {
				log.Debug().Int("ordering", i).Err(r.Err).Msg("Ordering rejected")
				continue
			}
			valid++
			event := log.Info().Int("ordering", i).Str("final", r.Trajectory.Final().String())
			for _, u := range users {
				delta, err := analyzer.ValueExtracted(r.Trajectory, u, oracle.Price)
				if err != nil {
					continue
				}
				event = event.Str(string(u)+"Delta", delta.String())
			}
			event.Msg("Ordering evaluated")
		}
		log.Info().Int("orderings", len(orderings)).Int("valid", valid).Msg("Reordering experiment complete")
		return nil
	},
}

func init() {
	exploreCmd.Flags().IntVar(&exploreWorkers, "workers", 0, "orderings evaluated concurrently (overrides AMM_EXPLORE_WORKERS)")
	rootCmd.AddCommand(exploreCmd)
}
