package cli

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/elys-network/amm-ledger/internal/analyzer"
	"github.com/elys-network/amm-ledger/internal/config"
	"github.com/elys-network/amm-ledger/internal/simulations"
	"github.com/elys-network/amm-ledger/internal/state"
	"github.com/elys-network/amm-ledger/internal/transition"
	"github.com/elys-network/amm-ledger/internal/types"
	"github.com/elys-network/amm-ledger/internal/valuation"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay the action plan and report net wealth after every step",
	RunE: func(cmd *cobra.Command, args []string) error {
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
		log.Info().Str("goal", plan.GoalDescription).Int("steps", len(steps)).Msg("Action plan ready")

		oracle := valuation.NewReferenceOracle(config.ReferencePrices)
		traj, err := simulations.Run(initial, steps, simulations.WithInvariantAudit(config.InvariantTolerance))
		reportTrajectory(traj, plan.ObservedUsers(), oracle)
		if err != nil {
			return fmt.Errorf("trajectory failed: %w", err)
		}
		reportExtraction(traj, plan.ObservedUsers(), oracle)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func reportTrajectory(traj *simulations.Trajectory, users []types.User, oracle *valuation.ReferenceOracle) {
	if traj == nil {
		return
	}
	log.Info().Str("trajectory", traj.ID.String()).Str("state", traj.States[0].String()).Msg("Initial")
	for i, s := range traj.States[1:] {
		reportState(i, traj.Steps[i], s, users, oracle)
	}
}

func reportState(i int, step transition.Transition, s *state.State, users []types.User, oracle *valuation.ReferenceOracle) {
	total, err := valuation.NetWealth(s, oracle.Price)
	if err != nil {
		log.Error().Int("step", i).Err(err).Msg("Failed to value state")
		return
	}
	event := log.Info().
		Int("step", i).
		Str("transition", step.String()).
		Str("state", s.String()).
		Str("totalNetWealth", total.String())
	for _, u := range users {
		w, err := valuation.NetWealthOf(s, u, oracle.Price)
		if err != nil {
			log.Error().Int("step", i).Str("user", string(u)).Err(err).Msg("Failed to value user")
			continue
		}
		event = event.Str(string(u)+"NetWealth", w.String())
	}
	event.Msg("Step applied")
}

func reportExtraction(traj *simulations.Trajectory, users []types.User, oracle *valuation.ReferenceOracle) {
	ranked, err := analyzer.RankExtractors(traj, oracle.Price)
	if err != nil {
		log.Error().Err(err).Msg("Failed to rank extractors")
		return
	}
	for _, e := range ranked {
		log.Info().
			Str("user", string(e.User)).
			Str("initial", e.Initial.String()).
			Str("final", e.Final.String()).
			Str("delta", e.Delta.String()).
			Msg("Value extracted")
	}

	for _, u := range users {
		series, err := analyzer.WealthSeries(traj, u, oracle.Price)
		if err != nil {
			log.Error().Str("user", string(u)).Err(err).Msg("Failed to build wealth series")
			continue
		}
		log.Info().Str("user", string(u)).Strs("netWealth", decStrings(series)).Msg("Wealth series")
	}

	for _, p := range traj.Final().Pools() {
		pool := p.Token0.String() + "/" + p.Token1.String()
		prices, err := analyzer.SpotPriceSeries(traj, p.Token0, p.Token1)
		if err != nil {
			log.Error().Str("pool", pool).Err(err).Msg("Failed to build spot price series")
			continue
		}
		event := log.Info().Str("pool", pool).Strs("spotPrice", decStrings(prices))
		if vol, err := analyzer.CalculateVolatility(prices); err == nil {
			event = event.Float64("volatility", vol)
		} else {
			event = event.Str("volatility", err.Error())
		}
		event.Msg("Pool price path")
	}
}

func decStrings(ds []sdkmath.LegacyDec) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.String()
	}
	return out
}
