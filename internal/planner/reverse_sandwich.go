package planner

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/amm-ledger/internal/analyzer"
	"github.com/elys-network/amm-ledger/internal/logger"
	"github.com/elys-network/amm-ledger/internal/transition"
	"github.com/elys-network/amm-ledger/internal/types"
)

// ReverseSandwichParams describes a victim whose minimum output sits above
// what the pool quotes. The attacker first pays Token1 into the pool so the
// victim's swap of Token0 fills at exactly its minimum, swaps Token1 in again
// after the victim, lets the victim add liquidity at the skewed price, then
// restores the reference price before the victim redeems part of its shares.
type ReverseSandwichParams struct {
	Provider types.User
	Victim   types.User
	Attacker types.User

	Token0 types.Token
	Token1 types.Token

	Liquidity0 sdkmath.LegacyDec
	Liquidity1 sdkmath.LegacyDec

	VictimIn     sdkmath.LegacyDec // Token0 the victim swaps
	VictimMinOut sdkmath.LegacyDec // Token1 the victim accepts at worst

	FollowUpIn sdkmath.LegacyDec // Token1 the attacker swaps after the victim

	VictimDeposit0 sdkmath.LegacyDec
	VictimDeposit1 sdkmath.LegacyDec
	VictimRedeem   sdkmath.LegacyDec

	Price0 sdkmath.LegacyDec
	Price1 sdkmath.LegacyDec

	Genesis []GenesisBalance
}

// DefaultReverseSandwichParams: O provides 100/100, A swaps 40 t0 asking
// for 35 t1 (the pool quotes about 28.6), M follows up with 38.3 t1, A
// deposits 30 t0 and 40 t1 and later redeems 10 shares. Everyone starts
// with 100 of each token.
func DefaultReverseSandwichParams() ReverseSandwichParams {
	t0, t1 := types.Atomic("t0"), types.Atomic("t1")
	o, a, m := types.User("O"), types.User("A"), types.User("M")
	d := sdkmath.LegacyMustNewDecFromStr

	var genesis []GenesisBalance
	for _, u := range []types.User{o, a, m} {
		genesis = append(genesis,
			GenesisBalance{User: u, Token: t0, Amount: d("100")},
			GenesisBalance{User: u, Token: t1, Amount: d("100")},
		)
	}
	return ReverseSandwichParams{
		Provider:       o,
		Victim:         a,
		Attacker:       m,
		Token0:         t0,
		Token1:         t1,
		Liquidity0:     d("100"),
		Liquidity1:     d("100"),
		VictimIn:       d("40"),
		VictimMinOut:   d("35"),
		FollowUpIn:     d("38.3"),
		VictimDeposit0: d("30"),
		VictimDeposit1: d("40"),
		VictimRedeem:   d("10"),
		Price0:         d("1000"),
		Price1:         d("1000"),
		Genesis:        genesis,
	}
}

// ReverseSandwichPlan builds the seven-step reverse sandwich. The opening
// swap moves the Token0 reserve to the front-run reserve of the victim's
// swap; it fails with analyzer.ErrNoOpportunity when the pool already pays
// the victim's minimum, which is the case SandwichPlan covers.
func ReverseSandwichPlan(p ReverseSandwichParams) (ActionPlan, error) {
	planLogger := logger.GetForComponent("sandwich_planner")

	target0, err := analyzer.FrontRunReserve(p.VictimIn, p.VictimMinOut, p.Liquidity0, p.Liquidity1)
	if err != nil {
		return ActionPlan{}, fmt.Errorf("sizing opening swap: %w", err)
	}
	if target0.GTE(p.Liquidity0) {
		return ActionPlan{}, fmt.Errorf("%w: pool already pays the victim minimum %s", analyzer.ErrNoOpportunity, p.VictimMinOut)
	}
	target1, err := analyzer.CounterReserve(p.Liquidity0, p.Liquidity1, target0)
	if err != nil {
		return ActionPlan{}, fmt.Errorf("sizing opening swap: %w", err)
	}
	opening := target1.Sub(p.Liquidity1)

	// r0 and r1 track the pool reserves of Token0 and Token1 through the plan.
	openQuote, err := transition.QuoteSwap(p.Liquidity1, p.Liquidity0, opening)
	if err != nil {
		return ActionPlan{}, fmt.Errorf("quoting opening swap: %w", err)
	}
	r0, r1 := openQuote.ReserveOut, openQuote.ReserveIn

	victimQuote, err := transition.QuoteSwap(r0, r1, p.VictimIn)
	if err != nil {
		return ActionPlan{}, fmt.Errorf("quoting victim swap: %w", err)
	}
	r0, r1 = victimQuote.ReserveIn, victimQuote.ReserveOut

	followQuote, err := transition.QuoteSwap(r1, r0, p.FollowUpIn)
	if err != nil {
		return ActionPlan{}, fmt.Errorf("quoting follow-up swap: %w", err)
	}
	r0, r1 = followQuote.ReserveOut, followQuote.ReserveIn

	r0, r1 = r0.Add(p.VictimDeposit0), r1.Add(p.VictimDeposit1)

	plan := ActionPlan{
		GoalDescription: fmt.Sprintf("%s lifts %s's swap of %s %s to its minimum and trades around %s's deposit",
			p.Attacker, p.Victim, p.VictimIn, p.Token0, p.Victim),
		Genesis:  append([]GenesisBalance(nil), p.Genesis...),
		Observed: []types.User{p.Provider, p.Victim, p.Attacker},
		SubActions: []SubAction{
			{
				Type: SubActionDepositLP, Sender: p.Provider,
				Token0: p.Token0, Amount0: p.Liquidity0,
				Token1: p.Token1, Amount1: p.Liquidity1,
				Note: "provide liquidity",
			},
			{
				Type: SubActionSwap, Sender: p.Attacker,
				TokenIn: p.Token1, TokenOut: p.Token0, AmountIn: opening,
				ExpectedTokenOut: openQuote.AmountOut,
				Note:             "lift victim to its minimum",
			},
			{
				Type: SubActionSwap, Sender: p.Victim,
				TokenIn: p.Token0, TokenOut: p.Token1, AmountIn: p.VictimIn,
				ExpectedTokenOut: victimQuote.AmountOut,
				Note:             "victim swap",
			},
			{
				Type: SubActionSwap, Sender: p.Attacker,
				TokenIn: p.Token1, TokenOut: p.Token0, AmountIn: p.FollowUpIn,
				ExpectedTokenOut: followQuote.AmountOut,
				Note:             "follow-up",
			},
			{
				Type: SubActionDepositLP, Sender: p.Victim,
				Token0: p.Token0, Amount0: p.VictimDeposit0,
				Token1: p.Token1, Amount1: p.VictimDeposit1,
				Note: "victim deposit",
			},
		},
	}

	restore, err := restoringSwap(p, r0, r1)
	if err != nil {
		return ActionPlan{}, err
	}
	plan.SubActions = append(plan.SubActions, restore, SubAction{
		Type: SubActionWithdrawLP, Sender: p.Victim,
		Token0: p.Token0, Token1: p.Token1, Shares: p.VictimRedeem,
		Note: "victim redeem",
	})

	planLogger.Info().
		Str("openingSwap", opening.String()).
		Str("victimOut", victimQuote.AmountOut.String()).
		Str("restoringSwap", restore.AmountIn.String()).
		Msg("Reverse sandwich plan generated")
	return plan, nil
}

// restoringSwap returns the attacker swap that brings reserves (r0, r1) back
// to the reference price, in whichever direction is needed.
func restoringSwap(p ReverseSandwichParams, r0, r1 sdkmath.LegacyDec) (SubAction, error) {
	in0, err := analyzer.ArbitrageToPrice(p.Price0, p.Price1, r0, r1)
	if err != nil {
		return SubAction{}, fmt.Errorf("sizing restoring swap: %w", err)
	}
	if in0.IsPositive() {
		q, err := transition.QuoteSwap(r0, r1, in0)
		if err != nil {
			return SubAction{}, fmt.Errorf("quoting restoring swap: %w", err)
		}
		return SubAction{
			Type: SubActionSwap, Sender: p.Attacker,
			TokenIn: p.Token0, TokenOut: p.Token1, AmountIn: in0,
			ExpectedTokenOut: q.AmountOut,
			Note:             "restore price",
		}, nil
	}

	in1, err := analyzer.ArbitrageToPrice(p.Price1, p.Price0, r1, r0)
	if err != nil {
		return SubAction{}, fmt.Errorf("sizing restoring swap: %w", err)
	}
	if !in1.IsPositive() {
		return SubAction{Type: SubActionNoOp, Note: "price already restored"}, nil
	}
	q, err := transition.QuoteSwap(r1, r0, in1)
	if err != nil {
		return SubAction{}, fmt.Errorf("quoting restoring swap: %w", err)
	}
	return SubAction{
		Type: SubActionSwap, Sender: p.Attacker,
		TokenIn: p.Token1, TokenOut: p.Token0, AmountIn: in1,
		ExpectedTokenOut: q.AmountOut,
		Note:             "restore price",
	}, nil
}
