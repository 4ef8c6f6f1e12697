package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sdkmath "cosmossdk.io/math"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/elys-network/amm-ledger/internal/config"
	"github.com/elys-network/amm-ledger/internal/logger"
	"github.com/elys-network/amm-ledger/internal/planner"
	"github.com/elys-network/amm-ledger/internal/types"
)

var (
	// Global flags
	planFile string
	logLevel string
	scenario string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ammsim",
	Short: "ammsim - constant-product AMM ledger simulator",
	Long: `ammsim replays action plans (deposits, swaps and redemptions) on a pure
AMM ledger, audits the ledger invariants after every step, and reports how the
net wealth of every participant moves. Without a plan file it runs a built-in
scenario: the classic sandwich or the reverse sandwich.`,
	Version:           "0.1.0-dev",
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCmd.RunE(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&planFile, "plan", "", "action plan JSON file (overrides AMM_PLAN_FILE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&scenario, "scenario", "", "built-in plan used without --plan: sandwich or reverse-sandwich (overrides AMM_SCENARIO)")
}

// initConfig loads .env and the environment, then applies flag overrides.
func initConfig(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}
	if err := config.LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cmd.Flags().Changed("plan") {
		config.PlanFile = planFile
	}
	if cmd.Flags().Changed("log-level") {
		config.LogLevel = logLevel
	}
	if cmd.Flags().Changed("scenario") {
		if err := config.ValidateScenario(scenario); err != nil {
			return err
		}
		config.Scenario = scenario
	}
	logger.Initialize(config.LogLevel)
	return nil
}

func loadPlan() (planner.ActionPlan, error) {
	if config.PlanFile != "" {
		log.Info().Str("path", config.PlanFile).Msg("Loading action plan from file")
		return planner.LoadPlan(config.PlanFile)
	}
	log.Info().Str("scenario", config.Scenario).Msg("No plan file configured, using a built-in plan")
	return builtinPlan(config.Scenario, nil, nil)
}

// builtinPlan builds the named scenario with reference prices from config.
// Non-nil victimIn and victimMinOut override the scenario defaults.
func builtinPlan(name string, victimIn, victimMinOut *sdkmath.LegacyDec) (planner.ActionPlan, error) {
	price := func(tok types.Token, def sdkmath.LegacyDec) sdkmath.LegacyDec {
		if p, ok := config.ReferencePrices[tok.Symbol()]; ok {
			return p
		}
		return def
	}

	switch name {
	case config.ScenarioReverseSandwich:
		p := planner.DefaultReverseSandwichParams()
		if victimIn != nil {
			p.VictimIn = *victimIn
		}
		if victimMinOut != nil {
			p.VictimMinOut = *victimMinOut
		}
		p.Price0, p.Price1 = price(p.Token0, p.Price0), price(p.Token1, p.Price1)
		return planner.ReverseSandwichPlan(p)
	default:
		p := planner.DefaultSandwichParams()
		if victimIn != nil {
			p.VictimIn = *victimIn
		}
		if victimMinOut != nil {
			p.VictimMinOut = *victimMinOut
		}
		p.Price0, p.Price1 = price(p.Token0, p.Price0), price(p.Token1, p.Price1)
		return planner.SandwichPlan(p)
	}
}
