/*

This file contains the default parameters for the ledger simulator.

*/

package config

import (
	sdkmath "cosmossdk.io/math"
)

const (
	// DefaultLogLevel is used when LOG_LEVEL is unset.
	DefaultLogLevel = "info"

	// DefaultExploreWorkers bounds concurrent trajectory evaluation.
	DefaultExploreWorkers = 4

	// ScenarioSandwich and ScenarioReverseSandwich name the built-in plans
	// used when no plan file is configured.
	ScenarioSandwich        = "sandwich"
	ScenarioReverseSandwich = "reverse-sandwich"

	// DefaultScenario is used when AMM_SCENARIO is unset.
	DefaultScenario = ScenarioSandwich
)

var (
	// DefaultReferencePrices prices both tokens of the sandwich scenarios at 1000.
	DefaultReferencePrices = map[string]sdkmath.LegacyDec{
		"t0": sdkmath.LegacyNewDec(1000),
		"t1": sdkmath.LegacyNewDec(1000),
	}

	// DefaultInvariantTolerance is the relative tolerance for invariant checks.
	// A swap rounds its output reserve up by at most 1e-18, so the constant
	// product drifts by reserveIn*1e-18 at most.
	DefaultInvariantTolerance = sdkmath.LegacyNewDecWithPrec(1, 12)
)
