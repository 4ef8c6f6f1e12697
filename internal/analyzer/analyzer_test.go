package analyzer_test

import (
	"math"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/amm-ledger/internal/analyzer"
	"github.com/elys-network/amm-ledger/internal/simulations"
	"github.com/elys-network/amm-ledger/internal/state"
	"github.com/elys-network/amm-ledger/internal/transition"
	"github.com/elys-network/amm-ledger/internal/types"
	"github.com/elys-network/amm-ledger/internal/utils"
	"github.com/elys-network/amm-ledger/internal/valuation"
)

var (
	t0 = types.Atomic("t0")
	t1 = types.Atomic("t1")

	owner    = types.User("O")
	victim   = types.User("A")
	attacker = types.User("M")

	closeEnough = sdkmath.LegacyNewDecWithPrec(1, 9)
)

func dec(s string) sdkmath.LegacyDec { return sdkmath.LegacyMustNewDecFromStr(s) }

func requireApprox(t *testing.T, expected string, actual sdkmath.LegacyDec) {
	t.Helper()
	require.Truef(t, utils.ApproxEqual(dec(expected), actual, closeEnough), "expected ~%s, got %s", expected, actual)
}

func oracle() *valuation.ReferenceOracle {
	return valuation.NewReferenceOracle(map[string]sdkmath.LegacyDec{"t0": dec("1000"), "t1": dec("1000")})
}

// pool returns a state with a 100/100 pool owned by O, and the given funds for A and M.
func pool(t *testing.T) *state.State {
	t.Helper()
	s := state.New()
	require.NoError(t, s.SetBalance(owner, t0, dec("100")))
	require.NoError(t, s.SetBalance(owner, t1, dec("100")))
	require.NoError(t, s.SetBalance(victim, t0, dec("20")))
	require.NoError(t, s.SetBalance(attacker, t0, dec("10")))
	require.NoError(t, s.SetBalance(attacker, t1, dec("25")))
	s, err := transition.NewDeposit(owner, dec("100"), t0, dec("100"), t1).Apply(s)
	require.NoError(t, err)
	return s
}

func TestFrontRunReserve(t *testing.T) {
	f, err := analyzer.FrontRunReserve(dec("20"), dec("15"), dec("100"), dec("100"))
	require.NoError(t, err)
	// (sqrt(12090000) - 300) / 30
	assert.True(t, f.GT(dec("105.902")) && f.LT(dec("105.903")), "got %s", f)

	counter, err := analyzer.CounterReserve(dec("100"), dec("100"), f)
	require.NoError(t, err)
	requireApprox(t, "10000", counter.Mul(f))
}

func TestFrontRunReserve_InvalidInput(t *testing.T) {
	_, err := analyzer.FrontRunReserve(dec("0"), dec("15"), dec("100"), dec("100"))
	require.ErrorIs(t, err, analyzer.ErrInvalidAnalyzerInput)

	_, err = analyzer.FrontRunReserve(dec("20"), dec("15"), dec("0"), dec("100"))
	require.ErrorIs(t, err, analyzer.ErrInvalidAnalyzerInput)

	_, err = analyzer.CounterReserve(dec("100"), dec("100"), dec("0"))
	require.ErrorIs(t, err, analyzer.ErrInvalidAnalyzerInput)
}

func TestSandwichFrontRun_VictimGetsExactlyItsMinimum(t *testing.T) {
	s := pool(t)
	front, err := analyzer.SandwichFrontRun(dec("20"), dec("15"), s.Reserve(t0, t1), s.Reserve(t1, t0))
	require.NoError(t, err)
	require.True(t, front.IsPositive())

	s, err = transition.NewSwap(attacker, t0, t1, front).Apply(s)
	require.NoError(t, err)
	s, err = transition.NewSwap(victim, t0, t1, dec("20")).Apply(s)
	require.NoError(t, err)

	requireApprox(t, "15", s.Balance(victim, t1))
	assert.True(t, s.Balance(victim, t1).LTE(dec("15.000000001")))
}

func TestSandwichFrontRun_NoOpportunity(t *testing.T) {
	// Undisturbed, 20 in yields 16.67 out; a minimum of 17 leaves no room.
	_, err := analyzer.SandwichFrontRun(dec("20"), dec("17"), dec("100"), dec("100"))
	require.ErrorIs(t, err, analyzer.ErrNoOpportunity)
}

func TestArbitrageToPrice(t *testing.T) {
	w, err := analyzer.ArbitrageToPrice(dec("1000"), dec("1000"), dec("80"), dec("125"))
	require.NoError(t, err)
	requireApprox(t, "20", w)

	w, err = analyzer.ArbitrageToPrice(dec("1000"), dec("1000"), dec("125"), dec("80"))
	require.NoError(t, err)
	requireApprox(t, "-25", w)

	_, err = analyzer.ArbitrageToPrice(dec("0"), dec("1000"), dec("80"), dec("125"))
	require.ErrorIs(t, err, analyzer.ErrInvalidAnalyzerInput)
}

func TestArbitrageToPrice_RestoresReferencePrice(t *testing.T) {
	s := pool(t)
	s, err := transition.NewSwap(victim, t0, t1, dec("20")).Apply(s)
	require.NoError(t, err)

	// The pool now holds too much t0; the arbitrage adds t1.
	w, err := analyzer.ArbitrageToPrice(dec("1000"), dec("1000"), s.Reserve(t1, t0), s.Reserve(t0, t1))
	require.NoError(t, err)
	require.True(t, w.IsPositive())

	s, err = transition.NewSwap(attacker, t1, t0, w).Apply(s)
	require.NoError(t, err)
	requireApprox(t, "1", s.Reserve(t0, t1).Quo(s.Reserve(t1, t0)))
}

func sandwichTrajectory(t *testing.T) *simulations.Trajectory {
	t.Helper()
	initial := pool(t)
	front, err := analyzer.SandwichFrontRun(dec("20"), dec("15"), initial.Reserve(t0, t1), initial.Reserve(t1, t0))
	require.NoError(t, err)

	afterFront, err := transition.NewSwap(attacker, t0, t1, front).Apply(initial)
	require.NoError(t, err)
	afterVictim, err := transition.NewSwap(victim, t0, t1, dec("20")).Apply(afterFront)
	require.NoError(t, err)
	back, err := analyzer.ArbitrageToPrice(dec("1000"), dec("1000"), afterVictim.Reserve(t1, t0), afterVictim.Reserve(t0, t1))
	require.NoError(t, err)

	traj, err := simulations.Run(initial, []transition.Transition{
		transition.NewSwap(attacker, t0, t1, front),
		transition.NewSwap(victim, t0, t1, dec("20")),
		transition.NewSwap(attacker, t1, t0, back),
	})
	require.NoError(t, err)
	return traj
}

func TestValueExtracted_Sandwich(t *testing.T) {
	traj := sandwichTrajectory(t)
	o := oracle()

	series, err := analyzer.WealthSeries(traj, attacker, o.Price)
	require.NoError(t, err)
	require.Len(t, series, 4)
	requireApprox(t, "35000", series[0])

	gained, err := analyzer.ValueExtracted(traj, attacker, o.Price)
	require.NoError(t, err)
	assert.True(t, gained.IsPositive(), "attacker gained %s", gained)

	lost, err := analyzer.ValueExtracted(traj, victim, o.Price)
	require.NoError(t, err)
	assert.True(t, lost.IsNegative(), "victim changed by %s", lost)

	ranked, err := analyzer.RankExtractors(traj, o.Price)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, attacker, ranked[0].User)
	assert.Equal(t, victim, ranked[2].User)
	for _, e := range ranked {
		assert.True(t, e.Final.Sub(e.Initial).Equal(e.Delta))
	}
}

func TestValueExtracted_EmptyTrajectory(t *testing.T) {
	_, err := analyzer.ValueExtracted(nil, attacker, oracle().Price)
	require.ErrorIs(t, err, analyzer.ErrEmptyTrajectory)

	_, err = analyzer.WealthSeries(&simulations.Trajectory{}, attacker, oracle().Price)
	require.ErrorIs(t, err, analyzer.ErrEmptyTrajectory)

	_, err = analyzer.RankExtractors(nil, oracle().Price)
	require.ErrorIs(t, err, analyzer.ErrEmptyTrajectory)
}

func TestSpotPriceSeriesAndVolatility(t *testing.T) {
	traj := sandwichTrajectory(t)
	prices, err := analyzer.SpotPriceSeries(traj, t0, t1)
	require.NoError(t, err)
	require.Len(t, prices, 4)
	requireApprox(t, "1", prices[0])
	requireApprox(t, "1", prices[3])
	assert.True(t, prices[2].LT(prices[1]) && prices[1].LT(prices[0]))

	vol, err := analyzer.CalculateVolatility(prices)
	require.NoError(t, err)
	assert.Greater(t, vol, 0.0)
}

func TestCalculateVolatility(t *testing.T) {
	vol, err := analyzer.CalculateVolatility([]sdkmath.LegacyDec{dec("1"), dec("1"), dec("1")})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, vol, 1e-12)

	vol, err = analyzer.CalculateVolatility([]sdkmath.LegacyDec{dec("1"), dec("2"), dec("1")})
	require.NoError(t, err)
	assert.InDelta(t, math.Ln2, vol, 1e-9)

	_, err = analyzer.CalculateVolatility([]sdkmath.LegacyDec{dec("1")})
	require.ErrorIs(t, err, analyzer.ErrInsufficientData)

	_, err = analyzer.CalculateVolatility([]sdkmath.LegacyDec{dec("0"), dec("0")})
	require.ErrorIs(t, err, analyzer.ErrInsufficientData)
}
