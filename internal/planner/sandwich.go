package planner

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/amm-ledger/internal/analyzer"
	"github.com/elys-network/amm-ledger/internal/logger"
	"github.com/elys-network/amm-ledger/internal/transition"
	"github.com/elys-network/amm-ledger/internal/types"
)

// SandwichParams describes a sandwich attack on a single fresh pool.
// The provider seeds the pool, the attacker front-runs the victim's swap of
// Token0 for Token1 and then back-runs to restore the reference price.
type SandwichParams struct {
	Provider types.User
	Victim   types.User
	Attacker types.User

	Token0 types.Token
	Token1 types.Token

	Liquidity0 sdkmath.LegacyDec
	Liquidity1 sdkmath.LegacyDec

	VictimIn     sdkmath.LegacyDec // Token0 the victim swaps
	VictimMinOut sdkmath.LegacyDec // Token1 the victim accepts at worst

	// Reference prices used to size the back-run.
	Price0 sdkmath.LegacyDec
	Price1 sdkmath.LegacyDec

	Genesis []GenesisBalance
}

// DefaultSandwichParams is the classic scenario: O provides 100/100, A swaps
// 20 t0 accepting 15 t1, M sandwiches. Both tokens are priced at 1000.
func DefaultSandwichParams() SandwichParams {
	t0, t1 := types.Atomic("t0"), types.Atomic("t1")
	o, a, m := types.User("O"), types.User("A"), types.User("M")
	d := sdkmath.LegacyMustNewDecFromStr
	return SandwichParams{
		Provider:     o,
		Victim:       a,
		Attacker:     m,
		Token0:       t0,
		Token1:       t1,
		Liquidity0:   d("100"),
		Liquidity1:   d("100"),
		VictimIn:     d("20"),
		VictimMinOut: d("15"),
		Price0:       d("1000"),
		Price1:       d("1000"),
		Genesis: []GenesisBalance{
			{User: o, Token: t0, Amount: d("100")},
			{User: o, Token: t1, Amount: d("100")},
			{User: a, Token: t0, Amount: d("20")},
			{User: a, Token: t1, Amount: d("0")},
			{User: m, Token: t0, Amount: d("6")},
			{User: m, Token: t1, Amount: d("20.6")},
		},
	}
}

// SandwichPlan builds the four-step sandwich: provider deposit, attacker
// front-run sized so the victim gets exactly VictimMinOut, the victim swap,
// and the attacker back-run that restores the reference price. The back-run
// becomes a NO_OP when the pool already sits at the reference price.
func SandwichPlan(p SandwichParams) (ActionPlan, error) {
	sandwichLogger := logger.GetForComponent("sandwich_planner")

	front, err := analyzer.SandwichFrontRun(p.VictimIn, p.VictimMinOut, p.Liquidity0, p.Liquidity1)
	if err != nil {
		return ActionPlan{}, fmt.Errorf("sizing front-run: %w", err)
	}
	frontQuote, err := transition.QuoteSwap(p.Liquidity0, p.Liquidity1, front)
	if err != nil {
		return ActionPlan{}, fmt.Errorf("quoting front-run: %w", err)
	}
	victimQuote, err := transition.QuoteSwap(frontQuote.ReserveIn, frontQuote.ReserveOut, p.VictimIn)
	if err != nil {
		return ActionPlan{}, fmt.Errorf("quoting victim swap: %w", err)
	}

	// After the victim the pool is long Token0, so the back-run pays Token1 in.
	back, err := analyzer.ArbitrageToPrice(p.Price1, p.Price0, victimQuote.ReserveOut, victimQuote.ReserveIn)
	if err != nil {
		return ActionPlan{}, fmt.Errorf("sizing back-run: %w", err)
	}

	plan := ActionPlan{
		GoalDescription: fmt.Sprintf("%s sandwiches %s's swap of %s %s", p.Attacker, p.Victim, p.VictimIn, p.Token0),
		Genesis:         append([]GenesisBalance(nil), p.Genesis...),
		Observed:        []types.User{p.Provider, p.Victim, p.Attacker},
		SubActions: []SubAction{
			{
				Type: SubActionDepositLP, Sender: p.Provider,
				Token0: p.Token0, Amount0: p.Liquidity0,
				Token1: p.Token1, Amount1: p.Liquidity1,
				Note: "provide liquidity",
			},
			{
				Type: SubActionSwap, Sender: p.Attacker,
				TokenIn: p.Token0, TokenOut: p.Token1, AmountIn: front,
				ExpectedTokenOut: frontQuote.AmountOut,
				Note:             "front-run",
			},
			{
				Type: SubActionSwap, Sender: p.Victim,
				TokenIn: p.Token0, TokenOut: p.Token1, AmountIn: p.VictimIn,
				ExpectedTokenOut: victimQuote.AmountOut,
				Note:             "victim swap",
			},
		},
	}

	if back.IsPositive() {
		backQuote, err := transition.QuoteSwap(victimQuote.ReserveOut, victimQuote.ReserveIn, back)
		if err != nil {
			return ActionPlan{}, fmt.Errorf("quoting back-run: %w", err)
		}
		plan.SubActions = append(plan.SubActions, SubAction{
			Type: SubActionSwap, Sender: p.Attacker,
			TokenIn: p.Token1, TokenOut: p.Token0, AmountIn: back,
			ExpectedTokenOut: backQuote.AmountOut,
			Note:             "back-run",
		})
	} else {
		plan.SubActions = append(plan.SubActions, SubAction{Type: SubActionNoOp, Note: "back-run not needed"})
	}

	sandwichLogger.Info().
		Str("frontRun", front.String()).
		Str("victimOut", victimQuote.AmountOut.String()).
		Str("backRun", back.String()).
		Msg("Sandwich plan generated")
	return plan, nil
}
