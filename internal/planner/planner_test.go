package planner_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/amm-ledger/internal/analyzer"
	"github.com/elys-network/amm-ledger/internal/planner"
	"github.com/elys-network/amm-ledger/internal/simulations"
	"github.com/elys-network/amm-ledger/internal/transition"
	"github.com/elys-network/amm-ledger/internal/types"
	"github.com/elys-network/amm-ledger/internal/utils"
	"github.com/elys-network/amm-ledger/internal/valuation"
)

var (
	t0 = types.Atomic("t0")
	t1 = types.Atomic("t1")
	lp = types.MustMint(t0, t1)

	tolerance = sdkmath.LegacyNewDecWithPrec(1, 12)
)

func dec(s string) sdkmath.LegacyDec { return sdkmath.LegacyMustNewDecFromStr(s) }

func TestLoadPlan(t *testing.T) {
	plan, err := planner.LoadPlan(filepath.Join("testdata", "round_trip.json"))
	require.NoError(t, err)
	require.Len(t, plan.Genesis, 4)
	require.Len(t, plan.SubActions, 6)

	steps, err := plan.Transitions()
	require.NoError(t, err)
	require.Len(t, steps, 5)
	assert.Equal(t, transition.KindDeposit, steps[0].Kind())
	assert.Equal(t, transition.KindRedeem, steps[4].Kind())

	initial, err := plan.InitialState()
	require.NoError(t, err)
	assert.True(t, dec("100").Equal(initial.Balance("B", t1)))

	traj, err := simulations.Run(initial, steps, simulations.WithInvariantAudit(tolerance))
	require.NoError(t, err)
	final := traj.Final()
	assert.True(t, dec("150").Equal(final.Balance("A", lp)))
	assert.True(t, dec("150").Equal(final.TokenSupply(lp)))

	assert.Equal(t, []types.User{"A", "B"}, plan.ObservedUsers())
}

func TestLoadPlan_MissingFile(t *testing.T) {
	_, err := planner.LoadPlan(filepath.Join("testdata", "missing.json"))
	require.Error(t, err)
}

func TestParsePlan_Invalid(t *testing.T) {
	cases := map[string]string{
		"not json":          `{`,
		"unknown type":      `{"sub_actions":[{"type":"BRIDGE","sender":"A"}]}`,
		"missing sender":    `{"sub_actions":[{"type":"SWAP","token_in":"t0","token_out":"t1","amount_in":"1"}]}`,
		"swap missing out":  `{"sub_actions":[{"type":"SWAP","sender":"A","token_in":"t0","amount_in":"1"}]}`,
		"deposit no token1": `{"sub_actions":[{"type":"DEPOSIT_LP","sender":"A","token0":"t0","amount0":"1","amount1":"1"}]}`,
		"withdraw no pair":  `{"sub_actions":[{"type":"WITHDRAW_LP","sender":"A","shares":"1"}]}`,
		"bad token":         `{"sub_actions":[{"type":"SWAP","sender":"A","token_in":"a+b+c","token_out":"t1","amount_in":"1"}]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := planner.ParsePlan([]byte(raw))
			require.ErrorIs(t, err, types.ErrInvalidPlan)
		})
	}
}

func TestInitialState_Invalid(t *testing.T) {
	plan := planner.ActionPlan{Genesis: []planner.GenesisBalance{{User: "A", Token: t0, Amount: dec("-1")}}}
	_, err := plan.InitialState()
	require.ErrorIs(t, err, types.ErrNegativeAmount)

	plan = planner.ActionPlan{Genesis: []planner.GenesisBalance{{Token: t0, Amount: dec("1")}}}
	_, err = plan.InitialState()
	require.ErrorIs(t, err, types.ErrInvalidPlan)

	plan = planner.ActionPlan{Pools: []planner.GenesisPool{{Token0: t0, Reserve0: dec("1"), Token1: t0, Reserve1: dec("1")}}}
	_, err = plan.InitialState()
	require.ErrorIs(t, err, types.ErrInvalidPair)
}

func TestInitialState_GenesisPools(t *testing.T) {
	plan := planner.ActionPlan{Pools: []planner.GenesisPool{{Token0: t1, Reserve0: dec("50"), Token1: t0, Reserve1: dec("70")}}}
	s, err := plan.InitialState()
	require.NoError(t, err)
	assert.True(t, dec("50").Equal(s.Reserve(t1, t0)))
	assert.True(t, dec("70").Equal(s.Reserve(t0, t1)))
}

func TestSandwichPlan_Default(t *testing.T) {
	params := planner.DefaultSandwichParams()
	plan, err := planner.SandwichPlan(params)
	require.NoError(t, err)
	require.Len(t, plan.SubActions, 4)
	assert.Equal(t, planner.SubActionDepositLP, plan.SubActions[0].Type)
	assert.Equal(t, planner.SubActionSwap, plan.SubActions[3].Type)
	assert.Equal(t, t1, plan.SubActions[3].TokenIn)

	initial, err := plan.InitialState()
	require.NoError(t, err)
	steps, err := plan.Transitions()
	require.NoError(t, err)
	traj, err := simulations.Run(initial, steps, simulations.WithInvariantAudit(tolerance))
	require.NoError(t, err)
	final := traj.Final()

	// The victim gets its minimum and the pool returns to the reference price.
	assert.True(t, utils.ApproxEqual(dec("15"), final.Balance("A", t1), sdkmath.LegacyNewDecWithPrec(1, 9)))
	assert.True(t, utils.ApproxEqual(final.Reserve(t0, t1), final.Reserve(t1, t0), sdkmath.LegacyNewDecWithPrec(1, 9)))

	// Quoted outputs match what the ledger delivered.
	assert.True(t, plan.SubActions[2].ExpectedTokenOut.Equal(final.Balance("A", t1)))

	oracle := valuation.NewReferenceOracle(map[string]sdkmath.LegacyDec{"t0": params.Price0, "t1": params.Price1})
	gained, err := analyzer.ValueExtracted(traj, "M", oracle.Price)
	require.NoError(t, err)
	assert.True(t, gained.IsPositive())
	assert.Equal(t, []types.User{"O", "A", "M"}, plan.ObservedUsers())
}

func TestSandwichPlan_NoOpportunity(t *testing.T) {
	params := planner.DefaultSandwichParams()
	params.VictimMinOut = dec("17")
	_, err := planner.SandwichPlan(params)
	require.ErrorIs(t, err, analyzer.ErrNoOpportunity)
}

func TestSandwichPlan_JSONRoundTrip(t *testing.T) {
	plan, err := planner.SandwichPlan(planner.DefaultSandwichParams())
	require.NoError(t, err)

	data, err := json.Marshal(plan)
	require.NoError(t, err)
	decoded, err := planner.ParsePlan(data)
	require.NoError(t, err)

	want, err := plan.Transitions()
	require.NoError(t, err)
	got, err := decoded.Transitions()
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].String(), got[i].String())
	}
}

func TestReverseSandwichPlan_Default(t *testing.T) {
	params := planner.DefaultReverseSandwichParams()
	plan, err := planner.ReverseSandwichPlan(params)
	require.NoError(t, err)
	require.Len(t, plan.SubActions, 7)
	assert.Equal(t, t1, plan.SubActions[1].TokenIn)
	assert.Equal(t, planner.SubActionWithdrawLP, plan.SubActions[6].Type)

	// 10000 / FrontRunReserve(40, 35, 100, 100) - 100
	opening := plan.SubActions[1].AmountIn
	assert.True(t, opening.GT(dec("12.66")) && opening.LT(dec("12.67")), "got %s", opening)

	initial, err := plan.InitialState()
	require.NoError(t, err)
	steps, err := plan.Transitions()
	require.NoError(t, err)
	require.Len(t, steps, 7)
	traj, err := simulations.Run(initial, steps, simulations.WithInvariantAudit(tolerance))
	require.NoError(t, err)

	// The victim's swap fills at its minimum.
	received := traj.States[3].Balance("A", t1).Sub(dec("100"))
	assert.True(t, utils.ApproxEqual(dec("35"), received, sdkmath.LegacyNewDecWithPrec(1, 9)), "got %s", received)
	assert.True(t, plan.SubActions[2].ExpectedTokenOut.Equal(received))

	final := traj.Final()
	assert.True(t, utils.ApproxEqual(final.Reserve(t0, t1), final.Reserve(t1, t0), sdkmath.LegacyNewDecWithPrec(1, 9)))
	assert.True(t, dec("60").Equal(final.Balance("A", lp)))
	assert.True(t, dec("260").Equal(final.TokenSupply(lp)))
	assert.Equal(t, []types.User{"O", "A", "M"}, plan.ObservedUsers())
}

func TestReverseSandwichPlan_NoOpportunity(t *testing.T) {
	params := planner.DefaultReverseSandwichParams()
	params.VictimMinOut = dec("25")
	_, err := planner.ReverseSandwichPlan(params)
	require.ErrorIs(t, err, analyzer.ErrNoOpportunity)
}
