package state

import (
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/amm-ledger/internal/types"
	"github.com/elys-network/amm-ledger/internal/utils"
)

// Validate checks the structural invariants of s: every balance and reserve
// is set and non-negative, and every pool holds two distinct tokens stored
// in canonical order.
func (s *State) Validate() error {
	for _, user := range s.walletOrder {
		w := s.wallets[user]
		for _, tok := range w.order {
			if amt := w.balances[tok]; !utils.IsNonNegative(amt) {
				return types.ErrInvariantViolation.Wrapf("negative balance %s of %s for %s", amt, tok, user)
			}
		}
	}

	for _, key := range s.poolOrder {
		if !key.t0.Less(key.t1) {
			return types.ErrInvariantViolation.Wrapf("pool %s/%s is not canonical", key.t0, key.t1)
		}
		p := s.pools[key]
		if !utils.IsNonNegative(p.r0) || !utils.IsNonNegative(p.r1) {
			return types.ErrInvariantViolation.Wrapf("negative reserve in pool %s/%s: %s, %s", key.t0, key.t1, p.r0, p.r1)
		}
	}

	if len(s.poolOrder) != len(s.pools) || len(s.walletOrder) != len(s.wallets) {
		return types.ErrInvariantViolation.Wrap("index out of sync with entries")
	}
	return nil
}

// CheckConservation verifies that every atomic token present in either
// state has the same supply in pre and post, within relTol.
func CheckConservation(pre, post *State, relTol sdkmath.LegacyDec) error {
	seen := make(map[types.Token]struct{})
	for _, st := range []*State{pre, post} {
		for _, tok := range st.Tokens() {
			if !tok.IsAtomic() {
				continue
			}
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}

			before, after := pre.TokenSupply(tok), post.TokenSupply(tok)
			if !utils.ApproxEqual(before, after, relTol) {
				return types.ErrInvariantViolation.Wrapf("supply of %s changed from %s to %s", tok, before, after)
			}
		}
	}
	return nil
}
