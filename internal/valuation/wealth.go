package valuation

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/amm-ledger/internal/state"
	"github.com/elys-network/amm-ledger/internal/types"
	"github.com/elys-network/amm-ledger/internal/utils"
)

// NetWealth sums price(token) * amount over every balance of every wallet.
// Pool reserves are not counted; liquidity is valued through the LP shares
// held by wallets.
func NetWealth(s *state.State, price PriceFunc) (sdkmath.LegacyDec, error) {
	total := sdkmath.LegacyZeroDec()
	for _, w := range s.Wallets() {
		v, err := walletValue(s, w, price)
		if err != nil {
			return sdkmath.LegacyDec{}, err
		}
		total = total.Add(v)
	}
	return total, nil
}

// NetWealthOf is NetWealth restricted to one user. A user without a wallet
// is worth zero.
func NetWealthOf(s *state.State, user types.User, price PriceFunc) (sdkmath.LegacyDec, error) {
	w, ok := s.Wallet(user)
	if !ok {
		return sdkmath.LegacyZeroDec(), nil
	}
	return walletValue(s, w, price)
}

func walletValue(s *state.State, w state.Wallet, price PriceFunc) (sdkmath.LegacyDec, error) {
	total := sdkmath.LegacyZeroDec()
	for _, b := range w.Balances {
		if b.Amount.IsZero() {
			continue
		}
		p, err := price(s, b.Token)
		if err != nil {
			return sdkmath.LegacyDec{}, errorsmod.Wrapf(err, "pricing %s of %s", b.Token, w.User)
		}
		v, err := utils.SafeMul(p, b.Amount)
		if err != nil {
			return sdkmath.LegacyDec{}, errorsmod.Wrap(types.ErrOverflow, err.Error())
		}
		total = total.Add(v)
	}
	return total, nil
}
