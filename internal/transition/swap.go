package transition

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/amm-ledger/internal/state"
	"github.com/elys-network/amm-ledger/internal/types"
	"github.com/elys-network/amm-ledger/internal/utils"
)

// Swap exchanges AmountIn of TokenIn for TokenOut against the pool for
// {TokenIn, TokenOut} under the zero-fee constant-product rule.
type Swap struct {
	Sender   types.User
	TokenIn  types.Token
	TokenOut types.Token
	AmountIn sdkmath.LegacyDec
}

func NewSwap(sender types.User, tokenIn, tokenOut types.Token, amountIn sdkmath.LegacyDec) Swap {
	return Swap{Sender: sender, TokenIn: tokenIn, TokenOut: tokenOut, AmountIn: amountIn}
}

func (s Swap) Kind() Kind { return KindSwap }

func (s Swap) String() string {
	return fmt.Sprintf("swap(%s, %s:%s -> %s)", s.Sender, utils.FormatDec(s.AmountIn, 1), s.TokenIn, s.TokenOut)
}

// Quote is the outcome of a swap against given reserves.
type Quote struct {
	K          sdkmath.LegacyDec // reserveIn * reserveOut before the swap
	ReserveIn  sdkmath.LegacyDec // post-swap reserve of the input token
	ReserveOut sdkmath.LegacyDec // post-swap reserve of the output token
	AmountOut  sdkmath.LegacyDec // delivered to the sender
}

// QuoteSwap computes the constant-product outcome of adding amountIn to a
// pool with reserves (reserveIn, reserveOut). The new output reserve
// reserveIn * reserveOut / (reserveIn + amountIn) is computed on the exact
// product and rounded up to the next 1e-18, so AmountOut never exceeds the
// exact formula and the output reserve never reaches zero.
func QuoteSwap(reserveIn, reserveOut, amountIn sdkmath.LegacyDec) (Quote, error) {
	if !utils.IsPositive(amountIn) {
		return Quote{}, types.ErrInsufficientReserves.Wrapf("swap amount must be positive: %s", amountIn)
	}
	if !utils.IsPositive(reserveIn) || !utils.IsPositive(reserveOut) {
		return Quote{}, types.ErrInsufficientReserves.Wrapf("pool reserves must be positive: %s, %s", reserveIn, reserveOut)
	}

	k, err := arith(utils.SafeMul(reserveIn, reserveOut))
	if err != nil {
		return Quote{}, err
	}
	newIn, err := arith(utils.SafeAdd(reserveIn, amountIn))
	if err != nil {
		return Quote{}, err
	}
	newOut, err := arith(utils.SafeMulQuoRoundUp(reserveIn, reserveOut, newIn))
	if err != nil {
		return Quote{}, err
	}
	if !newOut.IsPositive() || newOut.GT(reserveOut) {
		return Quote{}, types.ErrInsufficientReserves.Wrapf("swap would move output reserve from %s to %s", reserveOut, newOut)
	}
	// Dust inputs may round to zero output.
	out, err := arith(utils.SafeSub(reserveOut, newOut))
	if err != nil {
		return Quote{}, err
	}
	return Quote{K: k, ReserveIn: newIn, ReserveOut: newOut, AmountOut: out}, nil
}

// Apply debits AmountIn from the sender, credits the constant-product
// output and updates the pool reserves.
func (s Swap) Apply(pre *state.State) (post *state.State, err error) {
	defer func() { logResult(s, err) }()

	if !utils.IsPositive(s.AmountIn) {
		return nil, types.ErrInsufficientReserves.Wrapf("swap amount must be positive: %s", s.AmountIn)
	}
	if s.TokenIn == s.TokenOut || !pre.HasPool(s.TokenIn, s.TokenOut) {
		return nil, types.ErrInsufficientReserves.Wrapf("no pool for %s/%s", s.TokenIn, s.TokenOut)
	}

	q, err := QuoteSwap(pre.Reserve(s.TokenIn, s.TokenOut), pre.Reserve(s.TokenOut, s.TokenIn), s.AmountIn)
	if err != nil {
		return nil, err
	}
	balIn, err := debit(pre, s.Sender, s.TokenIn, s.AmountIn)
	if err != nil {
		return nil, err
	}
	balOut, err := credit(pre, s.Sender, s.TokenOut, q.AmountOut)
	if err != nil {
		return nil, err
	}

	post = pre.Clone()
	if err := post.SetBalance(s.Sender, s.TokenIn, balIn); err != nil {
		return nil, err
	}
	if err := post.SetBalance(s.Sender, s.TokenOut, balOut); err != nil {
		return nil, err
	}
	if err := post.SetReserve(s.TokenIn, q.ReserveIn, s.TokenOut, q.ReserveOut); err != nil {
		return nil, err
	}
	return post, nil
}
