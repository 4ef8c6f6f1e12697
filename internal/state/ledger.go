/*

This file contains the ledger state: every wallet balance and every pool
reserve at one point in time.

*/

package state

import (
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/amm-ledger/internal/types"
)

// pairKey is the canonical key of a pool, t0 < t1 under types.Token.Compare.
type pairKey struct {
	t0 types.Token
	t1 types.Token
}

func keyOf(a, b types.Token) pairKey {
	lo, hi := types.OrderPair(a, b)
	return pairKey{t0: lo, t1: hi}
}

type wallet struct {
	balances map[types.Token]sdkmath.LegacyDec
	order    []types.Token // first-write order
}

type pool struct {
	r0 sdkmath.LegacyDec
	r1 sdkmath.LegacyDec
}

// State is a snapshot of all wallets and pools. Wallets and pools are kept
// in first-write order for deterministic iteration and rendering.
//
// Setters mutate the receiver. Code that must keep a prior State intact,
// such as transitions, works on a Clone.
type State struct {
	wallets     map[types.User]*wallet
	walletOrder []types.User
	pools       map[pairKey]*pool
	poolOrder   []pairKey
}

// New returns an empty state.
func New() *State {
	return &State{
		wallets: make(map[types.User]*wallet),
		pools:   make(map[pairKey]*pool),
	}
}

// Clone returns a deep copy of s. LegacyDec values are immutable under the
// non-Mut arithmetic used throughout, so copying them by value is enough.
func (s *State) Clone() *State {
	out := New()
	if s == nil {
		return out
	}

	out.walletOrder = append(make([]types.User, 0, len(s.walletOrder)), s.walletOrder...)
	for user, w := range s.wallets {
		cw := &wallet{
			balances: make(map[types.Token]sdkmath.LegacyDec, len(w.balances)),
			order:    append(make([]types.Token, 0, len(w.order)), w.order...),
		}
		for tok, amt := range w.balances {
			cw.balances[tok] = amt
		}
		out.wallets[user] = cw
	}

	out.poolOrder = append(make([]pairKey, 0, len(s.poolOrder)), s.poolOrder...)
	for key, p := range s.pools {
		out.pools[key] = &pool{r0: p.r0, r1: p.r1}
	}
	return out
}

func (s *State) lazyInit() {
	if s.wallets == nil {
		s.wallets = make(map[types.User]*wallet)
	}
	if s.pools == nil {
		s.pools = make(map[pairKey]*pool)
	}
}

// Balance is one token holding of a wallet.
type Balance struct {
	Token  types.Token
	Amount sdkmath.LegacyDec
}

// Wallet is a read-only view of one user's balances in first-write order.
type Wallet struct {
	User     types.User
	Balances []Balance
}

// Pool is a read-only view of a pool. Token0 < Token1.
type Pool struct {
	Token0   types.Token
	Reserve0 sdkmath.LegacyDec
	Token1   types.Token
	Reserve1 sdkmath.LegacyDec
}

// ReserveOf returns the reserve of t, or zero if t is not in the pool.
func (p Pool) ReserveOf(t types.Token) sdkmath.LegacyDec {
	switch t {
	case p.Token0:
		return p.Reserve0
	case p.Token1:
		return p.Reserve1
	default:
		return sdkmath.LegacyZeroDec()
	}
}

// Users returns wallet owners in first-write order.
func (s *State) Users() []types.User {
	return append([]types.User(nil), s.walletOrder...)
}

// Wallet returns the wallet of user, if it exists.
func (s *State) Wallet(user types.User) (Wallet, bool) {
	w, ok := s.wallets[user]
	if !ok {
		return Wallet{}, false
	}
	view := Wallet{User: user, Balances: make([]Balance, 0, len(w.order))}
	for _, tok := range w.order {
		view.Balances = append(view.Balances, Balance{Token: tok, Amount: w.balances[tok]})
	}
	return view, true
}

// Wallets returns every wallet in first-write order.
func (s *State) Wallets() []Wallet {
	out := make([]Wallet, 0, len(s.walletOrder))
	for _, user := range s.walletOrder {
		w, _ := s.Wallet(user)
		out = append(out, w)
	}
	return out
}

// Pool returns the pool for the unordered pair {a, b}, if it exists.
func (s *State) Pool(a, b types.Token) (Pool, bool) {
	key := keyOf(a, b)
	p, ok := s.pools[key]
	if !ok {
		return Pool{}, false
	}
	return Pool{Token0: key.t0, Reserve0: p.r0, Token1: key.t1, Reserve1: p.r1}, true
}

// HasPool reports whether a pool exists for {a, b}.
func (s *State) HasPool(a, b types.Token) bool {
	_, ok := s.pools[keyOf(a, b)]
	return ok
}

// Pools returns every pool in first-write order.
func (s *State) Pools() []Pool {
	out := make([]Pool, 0, len(s.poolOrder))
	for _, key := range s.poolOrder {
		p := s.pools[key]
		out = append(out, Pool{Token0: key.t0, Reserve0: p.r0, Token1: key.t1, Reserve1: p.r1})
	}
	return out
}
