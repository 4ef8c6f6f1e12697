package transition

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/amm-ledger/internal/state"
	"github.com/elys-network/amm-ledger/internal/types"
	"github.com/elys-network/amm-ledger/internal/utils"
)

// Redeem burns Shares of the minted token for {Token0, Token1} and pays
// the sender the same fraction of each pool reserve.
type Redeem struct {
	Sender types.User
	Token0 types.Token
	Token1 types.Token
	Shares sdkmath.LegacyDec
}

func NewRedeem(sender types.User, token0, token1 types.Token, shares sdkmath.LegacyDec) Redeem {
	return Redeem{Sender: sender, Token0: token0, Token1: token1, Shares: shares}
}

func (r Redeem) Kind() Kind { return KindRedeem }

func (r Redeem) String() string {
	return fmt.Sprintf("redeem(%s, %s:%s+%s)", r.Sender, utils.FormatDec(r.Shares, 1), r.Token0, r.Token1)
}

// redeemPayout returns reserve * shares / supply, truncated. Redeeming the
// whole supply pays out the whole reserve.
func redeemPayout(reserve, shares, supply sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	if shares.Equal(supply) {
		return reserve, nil
	}
	scaled, err := arith(utils.SafeMulTruncate(reserve, shares))
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	return arith(utils.SafeQuoTruncate(scaled, supply))
}

// Apply pays out shares/L of both reserves, where L is the outstanding
// supply of the pair's minted token, and burns the shares.
func (r Redeem) Apply(pre *state.State) (post *state.State, err error) {
	defer func() { logResult(r, err) }()

	if !utils.IsPositive(r.Shares) {
		return nil, types.ErrInvalidRedeemAmount.Wrapf("redeem amount must be positive: %s", r.Shares)
	}
	lp, err := types.Mint(r.Token0, r.Token1)
	if err != nil {
		return nil, err
	}
	if !pre.HasPool(r.Token0, r.Token1) {
		return nil, types.ErrInsufficientReserves.Wrapf("no pool for %s/%s", r.Token0, r.Token1)
	}
	supply := pre.TokenSupply(lp)
	if !supply.IsPositive() {
		return nil, types.ErrDegenerateSupply.Wrapf("no %s shares outstanding", lp)
	}
	if r.Shares.GT(supply) {
		return nil, types.ErrInvalidRedeemAmount.Wrapf("redeem amount %s exceeds supply %s of %s", r.Shares, supply, lp)
	}
	lpBal, err := debit(pre, r.Sender, lp, r.Shares)
	if err != nil {
		return nil, err
	}

	res0, res1 := pre.Reserve(r.Token0, r.Token1), pre.Reserve(r.Token1, r.Token0)
	out0, err := redeemPayout(res0, r.Shares, supply)
	if err != nil {
		return nil, err
	}
	out1, err := redeemPayout(res1, r.Shares, supply)
	if err != nil {
		return nil, err
	}
	bal0, err := credit(pre, r.Sender, r.Token0, out0)
	if err != nil {
		return nil, err
	}
	bal1, err := credit(pre, r.Sender, r.Token1, out1)
	if err != nil {
		return nil, err
	}

	post = pre.Clone()
	if err := post.SetReserve(r.Token0, res0.Sub(out0), r.Token1, res1.Sub(out1)); err != nil {
		return nil, err
	}
	if err := post.SetBalance(r.Sender, r.Token0, bal0); err != nil {
		return nil, err
	}
	if err := post.SetBalance(r.Sender, r.Token1, bal1); err != nil {
		return nil, err
	}
	if err := post.SetBalance(r.Sender, lp, lpBal); err != nil {
		return nil, err
	}
	return post, nil
}
