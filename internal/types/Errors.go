package types

import (
	errorsmod "cosmossdk.io/errors"
)

// ModuleName is the codespace the ledger errors are registered under.
const ModuleName = "amm"

// Ledger sentinel errors. Transitions return exactly one of these, wrapped
// with context; match them with errors.Is.
var (
	ErrInsufficientBalance  = errorsmod.Register(ModuleName, 1, "insufficient balance")
	ErrInsufficientReserves = errorsmod.Register(ModuleName, 2, "insufficient reserves")
	ErrInvalidDepositRatio  = errorsmod.Register(ModuleName, 3, "invalid deposit ratio")
	ErrInvalidRedeemAmount  = errorsmod.Register(ModuleName, 4, "invalid redeem amount")
	ErrDegenerateSupply     = errorsmod.Register(ModuleName, 5, "degenerate supply")
	ErrInvalidMint          = errorsmod.Register(ModuleName, 6, "invalid mint")
	ErrInvalidPair          = errorsmod.Register(ModuleName, 7, "invalid token pair")
	ErrNegativeAmount       = errorsmod.Register(ModuleName, 8, "negative amount")
	ErrOverflow             = errorsmod.Register(ModuleName, 9, "arithmetic overflow")
	ErrInvariantViolation   = errorsmod.Register(ModuleName, 10, "invariant violation")
	ErrInvalidToken         = errorsmod.Register(ModuleName, 11, "invalid token")
	ErrInvalidPlan          = errorsmod.Register(ModuleName, 12, "invalid action plan")
)
