/*

This package contains the state transitions of the ledger. Every transition
reads the pre-state, validates all of its preconditions, and writes to a
clone, so a failed Apply leaves the caller's state untouched.

*/

package transition

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/elys-network/amm-ledger/internal/logger"
	"github.com/elys-network/amm-ledger/internal/state"
	"github.com/elys-network/amm-ledger/internal/types"
	"github.com/elys-network/amm-ledger/internal/utils"
)

// Kind names a transition type.
type Kind string

const (
	KindDeposit Kind = "DEPOSIT"
	KindSwap    Kind = "SWAP"
	KindRedeem  Kind = "REDEEM"
)

// Transition is a pure function from one state to the next.
type Transition interface {
	// Apply returns the successor of pre. pre is never modified.
	Apply(pre *state.State) (*state.State, error)
	Kind() Kind
	String() string
}

func transitionLogger() zerolog.Logger {
	return logger.GetForComponent("transition")
}

// arith wraps a checked decimal result as a ledger overflow error.
func arith(d sdkmath.LegacyDec, err error) (sdkmath.LegacyDec, error) {
	if err != nil {
		return sdkmath.LegacyDec{}, errorsmod.Wrap(types.ErrOverflow, err.Error())
	}
	return d, nil
}

// debit returns balance - amount, or ErrInsufficientBalance if that would be negative.
func debit(s *state.State, user types.User, token types.Token, amount sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	balance := s.Balance(user, token)
	if balance.LT(amount) {
		return sdkmath.LegacyDec{}, types.ErrInsufficientBalance.Wrapf(
			"%s holds %s %s, needs %s", user, balance, token, amount,
		)
	}
	return arith(utils.SafeSub(balance, amount))
}

// credit returns balance + amount.
func credit(s *state.State, user types.User, token types.Token, amount sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	return arith(utils.SafeAdd(s.Balance(user, token), amount))
}

func logResult(t Transition, err error) {
	l := transitionLogger()
	if err != nil {
		l.Debug().Str("kind", string(t.Kind())).Str("transition", t.String()).Err(err).Msg("Transition rejected")
		return
	}
	l.Debug().Str("kind", string(t.Kind())).Str("transition", t.String()).Msg("Transition applied")
}
