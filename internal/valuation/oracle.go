/*

This package contains the read-only valuation observers: a reference price
oracle and net-wealth aggregation over a state.

*/

package valuation

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/amm-ledger/internal/logger"
	"github.com/elys-network/amm-ledger/internal/state"
	"github.com/elys-network/amm-ledger/internal/types"
	"github.com/elys-network/amm-ledger/internal/utils"
)

// PriceFunc returns the unit price of token in s.
type PriceFunc func(s *state.State, token types.Token) (sdkmath.LegacyDec, error)

// ReferenceOracle prices atomic tokens from a fixed table and minted tokens
// from their claim on the underlying pool reserves.
type ReferenceOracle struct {
	prices map[string]sdkmath.LegacyDec
}

// NewReferenceOracle copies prices, keyed by atomic symbol.
func NewReferenceOracle(prices map[string]sdkmath.LegacyDec) *ReferenceOracle {
	cp := make(map[string]sdkmath.LegacyDec, len(prices))
	for sym, p := range prices {
		cp[sym] = p
	}
	return &ReferenceOracle{prices: cp}
}

// AtomicPrice returns the reference price of an atomic symbol. Unknown
// symbols price at zero.
func (o *ReferenceOracle) AtomicPrice(symbol string) sdkmath.LegacyDec {
	p, ok := o.prices[symbol]
	if !ok || p.IsNil() {
		log := logger.GetForComponent("valuation")
		log.Debug().Str("symbol", symbol).Msg("No reference price, valuing at zero")
		return sdkmath.LegacyZeroDec()
	}
	return p
}

// Price implements PriceFunc. A minted token is worth
// (p0*r0 + p1*r1) / supply, and fails with ErrDegenerateSupply when no
// shares are outstanding.
func (o *ReferenceOracle) Price(s *state.State, token types.Token) (sdkmath.LegacyDec, error) {
	if token.IsAtomic() {
		return o.AtomicPrice(token.Symbol()), nil
	}
	a, b, ok := token.Constituents()
	if !ok {
		return sdkmath.LegacyDec{}, types.ErrInvalidToken.Wrapf("cannot price %q", token)
	}

	supply := s.TokenSupply(token)
	if !supply.IsPositive() {
		return sdkmath.LegacyDec{}, types.ErrDegenerateSupply.Wrapf("no %s shares outstanding", token)
	}

	v0, err := utils.SafeMul(o.AtomicPrice(a.Symbol()), s.Reserve(a, b))
	if err != nil {
		return sdkmath.LegacyDec{}, errorsmod.Wrap(types.ErrOverflow, err.Error())
	}
	v1, err := utils.SafeMul(o.AtomicPrice(b.Symbol()), s.Reserve(b, a))
	if err != nil {
		return sdkmath.LegacyDec{}, errorsmod.Wrap(types.ErrOverflow, err.Error())
	}
	price, err := utils.SafeQuo(v0.Add(v1), supply)
	if err != nil {
		return sdkmath.LegacyDec{}, errorsmod.Wrap(types.ErrOverflow, err.Error())
	}
	return price, nil
}
