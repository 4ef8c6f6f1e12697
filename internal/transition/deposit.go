package transition

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/amm-ledger/internal/state"
	"github.com/elys-network/amm-ledger/internal/types"
	"github.com/elys-network/amm-ledger/internal/utils"
)

// Deposit adds liquidity to the pool for {Token0, Token1} and credits the
// sender with Amount0 + Amount1 of the pair's minted share.
type Deposit struct {
	Sender  types.User
	Amount0 sdkmath.LegacyDec
	Token0  types.Token
	Amount1 sdkmath.LegacyDec
	Token1  types.Token
}

func NewDeposit(sender types.User, amount0 sdkmath.LegacyDec, token0 types.Token, amount1 sdkmath.LegacyDec, token1 types.Token) Deposit {
	return Deposit{Sender: sender, Amount0: amount0, Token0: token0, Amount1: amount1, Token1: token1}
}

func (d Deposit) Kind() Kind { return KindDeposit }

func (d Deposit) String() string {
	return fmt.Sprintf("deposit(%s, %s:%s, %s:%s)",
		d.Sender, utils.FormatDec(d.Amount0, 1), d.Token0, utils.FormatDec(d.Amount1, 1), d.Token1)
}

// Apply debits both tokens from the sender, adds them to the pool reserves
// (creating the pool if needed) and mints the LP share. The share amount is
// the plain sum of the deposited amounts.
func (d Deposit) Apply(pre *state.State) (post *state.State, err error) {
	defer func() { logResult(d, err) }()

	if !utils.IsPositive(d.Amount0) || !utils.IsPositive(d.Amount1) {
		return nil, types.ErrInvalidDepositRatio.Wrapf("deposit amounts must be positive: %s, %s", d.Amount0, d.Amount1)
	}
	lp, err := types.Mint(d.Token0, d.Token1)
	if err != nil {
		return nil, err
	}

	bal0, err := debit(pre, d.Sender, d.Token0, d.Amount0)
	if err != nil {
		return nil, err
	}
	bal1, err := debit(pre, d.Sender, d.Token1, d.Amount1)
	if err != nil {
		return nil, err
	}
	res0, err := arith(utils.SafeAdd(pre.Reserve(d.Token0, d.Token1), d.Amount0))
	if err != nil {
		return nil, err
	}
	res1, err := arith(utils.SafeAdd(pre.Reserve(d.Token1, d.Token0), d.Amount1))
	if err != nil {
		return nil, err
	}
	shares, err := arith(utils.SafeAdd(d.Amount0, d.Amount1))
	if err != nil {
		return nil, err
	}
	lpBal, err := credit(pre, d.Sender, lp, shares)
	if err != nil {
		return nil, err
	}

	post = pre.Clone()
	if err := post.SetBalance(d.Sender, d.Token0, bal0); err != nil {
		return nil, err
	}
	if err := post.SetBalance(d.Sender, d.Token1, bal1); err != nil {
		return nil, err
	}
	if err := post.SetReserve(d.Token0, res0, d.Token1, res1); err != nil {
		return nil, err
	}
	if err := post.SetBalance(d.Sender, lp, lpBal); err != nil {
		return nil, err
	}
	return post, nil
}
