package state

import (
	"encoding/json"
	"strings"

	"github.com/elys-network/amm-ledger/internal/utils"
)

// BalanceSnapshot is the serializable form of a Balance.
type BalanceSnapshot struct {
	Token  string `json:"token"`
	Amount string `json:"amount"` // full 18-decimal precision
}

// WalletSnapshot is the serializable form of a Wallet.
type WalletSnapshot struct {
	User     string            `json:"user"`
	Balances []BalanceSnapshot `json:"balances"`
}

// PoolSnapshot is the serializable form of a Pool.
type PoolSnapshot struct {
	Token0   string `json:"token0"`
	Reserve0 string `json:"reserve0"`
	Token1   string `json:"token1"`
	Reserve1 string `json:"reserve1"`
}

// Snapshot is a deterministic, comparable rendering of a State.
type Snapshot struct {
	Wallets []WalletSnapshot `json:"wallets"`
	Pools   []PoolSnapshot   `json:"pools"`
}

// Snapshot returns the structured rendering of s. Two states with the same
// contents and the same write history produce equal snapshots.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Wallets: make([]WalletSnapshot, 0, len(s.walletOrder)),
		Pools:   make([]PoolSnapshot, 0, len(s.poolOrder)),
	}
	for _, w := range s.Wallets() {
		ws := WalletSnapshot{User: w.User.String(), Balances: make([]BalanceSnapshot, 0, len(w.Balances))}
		for _, b := range w.Balances {
			ws.Balances = append(ws.Balances, BalanceSnapshot{Token: b.Token.String(), Amount: b.Amount.String()})
		}
		snap.Wallets = append(snap.Wallets, ws)
	}
	for _, p := range s.Pools() {
		snap.Pools = append(snap.Pools, PoolSnapshot{
			Token0:   p.Token0.String(),
			Reserve0: p.Reserve0.String(),
			Token1:   p.Token1.String(),
			Reserve1: p.Reserve1.String(),
		})
	}
	return snap
}

// MarshalJSON renders the state as its Snapshot.
func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// String renders s on one line with one decimal, e.g.
//
//	A[80.0:t0,200.0:t0+t1] | B[20.0:t0] | {100.0:t0 100.0:t1}
func (s *State) String() string {
	elems := make([]string, 0, len(s.walletOrder)+len(s.poolOrder))
	for _, w := range s.Wallets() {
		elems = append(elems, w.String())
	}
	for _, p := range s.Pools() {
		elems = append(elems, p.String())
	}
	return strings.Join(elems, " | ")
}

func (b Balance) String() string {
	return utils.FormatDec(b.Amount, 1) + ":" + b.Token.String()
}

func (w Wallet) String() string {
	parts := make([]string, 0, len(w.Balances))
	for _, b := range w.Balances {
		parts = append(parts, b.String())
	}
	return w.User.String() + "[" + strings.Join(parts, ",") + "]"
}

func (p Pool) String() string {
	return "{" + utils.FormatDec(p.Reserve0, 1) + ":" + p.Token0.String() +
		" " + utils.FormatDec(p.Reserve1, 1) + ":" + p.Token1.String() + "}"
}
