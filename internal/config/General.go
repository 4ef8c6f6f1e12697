package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"

	"github.com/elys-network/amm-ledger/internal/utils"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function. Every variable is
// optional and falls back to the defaults in Parameters.go.
var (
	// LogLevel is the zerolog level name (debug, info, warn, error).
	LogLevel string

	// PlanFile is the path of a JSON action plan to run. Empty runs the
	// built-in sandwich plan.
	PlanFile string

	// Scenario selects the built-in plan run without a plan file.
	Scenario string

	// ReferencePrices maps atomic token symbols to their external price.
	ReferencePrices map[string]sdkmath.LegacyDec

	// InvariantTolerance is the relative tolerance for supply and
	// constant-product checks.
	InvariantTolerance sdkmath.LegacyDec

	// ExploreWorkers bounds the number of trajectories evaluated concurrently.
	ExploreWorkers int
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	LogLevel = getEnvOrDefault("LOG_LEVEL", DefaultLogLevel)
	PlanFile = getEnvOrDefault("AMM_PLAN_FILE", "")
	Scenario = getEnvOrDefault("AMM_SCENARIO", DefaultScenario)
	if err := ValidateScenario(Scenario); err != nil {
		return err
	}

	var err error
	ReferencePrices, err = getEnvAsPrices("AMM_REFERENCE_PRICES", DefaultReferencePrices)
	if err != nil {
		return err
	}

	InvariantTolerance, err = getEnvAsDec("AMM_INVARIANT_TOLERANCE", DefaultInvariantTolerance)
	if err != nil {
		return err
	}
	if InvariantTolerance.IsNegative() {
		return errors.New("environment variable AMM_INVARIANT_TOLERANCE must not be negative")
	}

	ExploreWorkers, err = getEnvAsInt("AMM_EXPLORE_WORKERS", DefaultExploreWorkers)
	if err != nil {
		return err
	}
	if ExploreWorkers <= 0 {
		return fmt.Errorf("environment variable AMM_EXPLORE_WORKERS must be positive, got: %d", ExploreWorkers)
	}

	log.Debug().
		Str("LogLevel", LogLevel).
		Str("PlanFile", PlanFile).
		Str("Scenario", Scenario).
		Strs("PricedSymbols", sortedSymbols(ReferencePrices)).
		Str("InvariantTolerance", InvariantTolerance.String()).
		Int("ExploreWorkers", ExploreWorkers).
		Msg("Configuration loaded successfully.")

	return nil
}

// ValidateScenario reports whether name is a built-in scenario.
func ValidateScenario(name string) error {
	switch name {
	case ScenarioSandwich, ScenarioReverseSandwich:
		return nil
	}
	return fmt.Errorf("unknown scenario %q, want %s or %s", name, ScenarioSandwich, ScenarioReverseSandwich)
}

// getEnvOrDefault retrieves a string environment variable, or def if unset.
func getEnvOrDefault(key, def string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return def
}

// getEnvAsInt retrieves an environment variable as an int. Returns error if invalid.
func getEnvAsInt(key string, def int) (int, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return def, nil
	}
	value, err := cast.ToIntE(strings.TrimSpace(valueStr))
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid int, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsDec retrieves an environment variable as a decimal. Returns error if invalid.
func getEnvAsDec(key string, def sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return def, nil
	}
	value, err := utils.ParseDec(strings.TrimSpace(valueStr))
	if err != nil {
		return sdkmath.LegacyDec{}, fmt.Errorf("environment variable %s must be a valid decimal, got: %s: %w", key, valueStr, err)
	}
	return value, nil
}

// getEnvAsPrices parses a "sym=price,sym=price" list.
func getEnvAsPrices(key string, def map[string]sdkmath.LegacyDec) (map[string]sdkmath.LegacyDec, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return copyPrices(def), nil
	}
	return ParsePrices(valueStr)
}

// ParsePrices parses a "sym=price,sym=price" list. Prices are parsed as exact
// decimals; exponent forms such as 1e3 are also accepted.
func ParsePrices(s string) (map[string]sdkmath.LegacyDec, error) {
	prices := make(map[string]sdkmath.LegacyDec)
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		sym, raw, ok := strings.Cut(entry, "=")
		sym = strings.TrimSpace(sym)
		if !ok || sym == "" {
			return nil, fmt.Errorf("malformed price entry %q, want symbol=price", entry)
		}
		price, err := utils.ParseDec(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid price for %s: %w", sym, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("price for %s must not be negative, got: %s", sym, raw)
		}
		prices[sym] = price
	}
	return prices, nil
}

func copyPrices(src map[string]sdkmath.LegacyDec) map[string]sdkmath.LegacyDec {
	out := make(map[string]sdkmath.LegacyDec, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func sortedSymbols(prices map[string]sdkmath.LegacyDec) []string {
	syms := make([]string, 0, len(prices))
	for sym := range prices {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	return syms
}
