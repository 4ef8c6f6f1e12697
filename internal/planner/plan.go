/*

This file contains the types for action plans: a genesis state plus an
ordered list of sub-actions that translate one-to-one into ledger
transitions.

*/

package planner

import (
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/amm-ledger/internal/types"
)

// SubActionType defines the specific low-level operations.
type SubActionType string

const (
	SubActionSwap       SubActionType = "SWAP"
	SubActionDepositLP  SubActionType = "DEPOSIT_LP"  // Deposit into a liquidity pool
	SubActionWithdrawLP SubActionType = "WITHDRAW_LP" // Redeem LP shares
	SubActionNoOp       SubActionType = "NO_OP"       // Placeholder if no action needed for a step
)

// SubAction represents a single, executable step in a plan.
type SubAction struct {
	Type   SubActionType `json:"type"`
	Sender types.User    `json:"sender,omitempty"`

	// Fields for SWAP
	TokenIn  types.Token       `json:"token_in,omitzero"`
	TokenOut types.Token       `json:"token_out,omitzero"`
	AmountIn sdkmath.LegacyDec `json:"amount_in,omitempty"`

	// Fields for DEPOSIT_LP and WITHDRAW_LP
	Token0  types.Token       `json:"token0,omitzero"`
	Amount0 sdkmath.LegacyDec `json:"amount0,omitempty"` // DEPOSIT_LP only
	Token1  types.Token       `json:"token1,omitzero"`
	Amount1 sdkmath.LegacyDec `json:"amount1,omitempty"` // DEPOSIT_LP only
	Shares  sdkmath.LegacyDec `json:"shares,omitempty"`  // WITHDRAW_LP only

	// Planning results, informational only
	ExpectedTokenOut sdkmath.LegacyDec `json:"expected_token_out,omitempty"` // For SWAP: quoted amount out
	Note             string            `json:"note,omitempty"`
}

// GenesisBalance seeds one wallet balance.
type GenesisBalance struct {
	User   types.User        `json:"user"`
	Token  types.Token       `json:"token"`
	Amount sdkmath.LegacyDec `json:"amount"`
}

// GenesisPool seeds a pool's reserves without minting shares.
type GenesisPool struct {
	Token0   types.Token       `json:"token0"`
	Reserve0 sdkmath.LegacyDec `json:"reserve0"`
	Token1   types.Token       `json:"token1"`
	Reserve1 sdkmath.LegacyDec `json:"reserve1"`
}

// ActionPlan holds a genesis and a sequence of SubActions to replay on it.
type ActionPlan struct {
	GoalDescription string           `json:"goal_description"` // e.g., "Sandwich A's swap"
	Genesis         []GenesisBalance `json:"genesis"`
	Pools           []GenesisPool    `json:"pools,omitempty"`
	SubActions      []SubAction      `json:"sub_actions"`
	// Users whose wealth the driver reports. Empty reports every wallet.
	Observed []types.User `json:"observed,omitempty"`
}
