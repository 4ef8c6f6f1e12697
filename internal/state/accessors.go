package state

import (
	"sort"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/amm-ledger/internal/types"
	"github.com/elys-network/amm-ledger/internal/utils"
)

// MaxAmount bounds every balance and reserve. LegacyDec operations accept
// raw values of up to 315 bits, about 6.7e76 in decimal terms. The product of
// two bounded amounts is at most 1e60 (raw 1e78, about 2^259), leaving the
// constant product and every sum of amounts more than 2^50 below the limit.
var MaxAmount = sdkmath.LegacyNewDecFromInt(sdkmath.NewIntWithDecimal(1, 30))

func checkAmount(amount sdkmath.LegacyDec) error {
	if !utils.IsNonNegative(amount) {
		return types.ErrNegativeAmount.Wrapf("amount %s", amount)
	}
	if amount.GT(MaxAmount) {
		return types.ErrOverflow.Wrapf("amount %s exceeds maximum %s", amount, MaxAmount)
	}
	return nil
}

// TokenSupply returns the total amount of token held across every pool
// reserve and every wallet balance.
func (s *State) TokenSupply(token types.Token) sdkmath.LegacyDec {
	total := sdkmath.LegacyZeroDec()
	for _, key := range s.poolOrder {
		p := s.pools[key]
		switch token {
		case key.t0:
			total = total.Add(p.r0)
		case key.t1:
			total = total.Add(p.r1)
		}
	}
	for _, user := range s.walletOrder {
		if amt, ok := s.wallets[user].balances[token]; ok {
			total = total.Add(amt)
		}
	}
	return total
}

// Reserve returns the reserve of token in the pool for {token, other}.
// A missing pool has zero liquidity and is not an error.
func (s *State) Reserve(token, other types.Token) sdkmath.LegacyDec {
	key := keyOf(token, other)
	p, ok := s.pools[key]
	if !ok || token == other {
		return sdkmath.LegacyZeroDec()
	}
	if key.t0 == token {
		return p.r0
	}
	return p.r1
}

// SetReserve sets the reserves of the pool for {t0, t1}, creating it if
// absent. r0 is the reserve of t0 and r1 of t1 regardless of how the pool
// stores the pair.
func (s *State) SetReserve(t0 types.Token, r0 sdkmath.LegacyDec, t1 types.Token, r1 sdkmath.LegacyDec) error {
	if t0 == t1 || t0.IsZero() || t1.IsZero() {
		return types.ErrInvalidPair.Wrapf("pool tokens must be distinct and non-empty: %s/%s", t0, t1)
	}
	if err := checkAmount(r0); err != nil {
		return errorsmod.Wrapf(err, "reserve of %s", t0)
	}
	if err := checkAmount(r1); err != nil {
		return errorsmod.Wrapf(err, "reserve of %s", t1)
	}

	s.lazyInit()
	key := keyOf(t0, t1)
	if key.t0 != t0 {
		r0, r1 = r1, r0
	}

	p, ok := s.pools[key]
	if !ok {
		p = &pool{}
		s.pools[key] = p
		s.poolOrder = append(s.poolOrder, key)
	}
	p.r0, p.r1 = r0, r1
	return nil
}

// Balance returns user's balance of token, zero if the wallet or the entry
// does not exist.
func (s *State) Balance(user types.User, token types.Token) sdkmath.LegacyDec {
	w, ok := s.wallets[user]
	if !ok {
		return sdkmath.LegacyZeroDec()
	}
	amt, ok := w.balances[token]
	if !ok {
		return sdkmath.LegacyZeroDec()
	}
	return amt
}

// SetBalance sets user's balance of token to amount exactly, creating the
// wallet and the entry on first write.
func (s *State) SetBalance(user types.User, token types.Token, amount sdkmath.LegacyDec) error {
	if token.IsZero() {
		return types.ErrInvalidToken.Wrapf("balance of %s for zero token", user)
	}
	if err := checkAmount(amount); err != nil {
		return errorsmod.Wrapf(err, "balance of %s for %s", token, user)
	}

	s.lazyInit()
	w, ok := s.wallets[user]
	if !ok {
		w = &wallet{balances: make(map[types.Token]sdkmath.LegacyDec)}
		s.wallets[user] = w
		s.walletOrder = append(s.walletOrder, user)
	}
	if _, ok := w.balances[token]; !ok {
		w.order = append(w.order, token)
	}
	w.balances[token] = amount
	return nil
}

// Tokens returns every token that appears in a wallet or a pool, sorted by
// the token order.
func (s *State) Tokens() []types.Token {
	seen := make(map[types.Token]struct{})
	for _, key := range s.poolOrder {
		seen[key.t0] = struct{}{}
		seen[key.t1] = struct{}{}
	}
	for _, w := range s.wallets {
		for _, tok := range w.order {
			seen[tok] = struct{}{}
		}
	}

	out := make([]types.Token, 0, len(seen))
	for tok := range seen {
		out = append(out, tok)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
