/*

This file contains the sizing functions for sandwich attacks on a
constant-product pool: the front-run that leaves a victim swap with exactly
its minimum output, and the back-run that restores the reference price.

*/

package analyzer

import (
	"errors"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/amm-ledger/internal/logger"
	"github.com/elys-network/amm-ledger/internal/types"
	"github.com/elys-network/amm-ledger/internal/utils"
)

var (
	ErrInvalidAnalyzerInput = errors.New("invalid analyzer input")
	ErrNoOpportunity        = errors.New("no sandwich opportunity")
)

// FrontRunReserve returns the input-side reserve F at which a victim swap of
// victimIn yields exactly victimOut. F is the positive root of
//
//	victimOut*F^2 + victimIn*victimOut*F - victimIn*reserveIn*reserveOut = 0
//
// which gives F = (sqrt(a^2 + 4*a*reserveIn*reserveOut) - a) / (2*victimOut)
// with a = victimIn*victimOut.
func FrontRunReserve(victimIn, victimOut, reserveIn, reserveOut sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	if !utils.IsPositive(victimIn) || !utils.IsPositive(victimOut) {
		return sdkmath.LegacyDec{}, fmt.Errorf("%w: victim amounts must be positive: %s, %s", ErrInvalidAnalyzerInput, victimIn, victimOut)
	}
	if !utils.IsPositive(reserveIn) || !utils.IsPositive(reserveOut) {
		return sdkmath.LegacyDec{}, fmt.Errorf("%w: reserves must be positive: %s, %s", ErrInvalidAnalyzerInput, reserveIn, reserveOut)
	}

	a, err := overflow(utils.SafeMul(victimIn, victimOut))
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	k, err := overflow(utils.SafeMul(reserveIn, reserveOut))
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	aSq, err := overflow(utils.SafeMul(a, a))
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	fourAK, err := overflow(utils.SafeMul(a.MulInt64(4), k))
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	disc, err := overflow(utils.SafeAdd(aSq, fourAK))
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	root, err := overflow(utils.SafeSqrt(disc))
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	return overflow(utils.SafeQuo(root.Sub(a), victimOut.MulInt64(2)))
}

// CounterReserve is the output-side reserve that matches an input-side
// reserve of frontIn under the constant product reserveIn*reserveOut.
func CounterReserve(reserveIn, reserveOut, frontIn sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	if !utils.IsPositive(frontIn) {
		return sdkmath.LegacyDec{}, fmt.Errorf("%w: reserve must be positive: %s", ErrInvalidAnalyzerInput, frontIn)
	}
	k, err := overflow(utils.SafeMul(reserveIn, reserveOut))
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	return overflow(utils.SafeQuo(k, frontIn))
}

// SandwichFrontRun returns how much of the input token an attacker swaps
// ahead of the victim so that the victim receives exactly victimOut.
// It fails with ErrNoOpportunity when the victim's minimum leaves no room.
func SandwichFrontRun(victimIn, victimOut, reserveIn, reserveOut sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	f, err := FrontRunReserve(victimIn, victimOut, reserveIn, reserveOut)
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	amount := f.Sub(reserveIn)

	log := logger.GetForComponent("sandwich_analyzer")
	if !amount.IsPositive() {
		log.Debug().
			Str("victimIn", victimIn.String()).
			Str("victimOut", victimOut.String()).
			Str("frontRunReserve", f.String()).
			Msg("Victim minimum leaves no room for a front-run")
		return sdkmath.LegacyDec{}, fmt.Errorf("%w: victim minimum %s is at or above the undisturbed output", ErrNoOpportunity, victimOut)
	}

	log.Debug().
		Str("victimIn", victimIn.String()).
		Str("victimOut", victimOut.String()).
		Str("frontRun", amount.String()).
		Msg("Sized sandwich front-run")
	return amount, nil
}

// ArbitrageToPrice returns the amount of the input token to swap into a pool
// with reserves (reserveIn, reserveOut) so that afterwards
// priceIn*reserveIn == priceOut*reserveOut, i.e. the pool quotes the
// reference price. The result is sqrt(priceOut/priceIn*reserveIn*reserveOut) - reserveIn.
// A negative result means the swap must go the other way.
func ArbitrageToPrice(priceIn, priceOut, reserveIn, reserveOut sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	if !utils.IsPositive(priceIn) || !utils.IsPositive(priceOut) {
		return sdkmath.LegacyDec{}, fmt.Errorf("%w: prices must be positive: %s, %s", ErrInvalidAnalyzerInput, priceIn, priceOut)
	}
	if !utils.IsPositive(reserveIn) || !utils.IsPositive(reserveOut) {
		return sdkmath.LegacyDec{}, fmt.Errorf("%w: reserves must be positive: %s, %s", ErrInvalidAnalyzerInput, reserveIn, reserveOut)
	}

	ratio, err := overflow(utils.SafeQuo(priceOut, priceIn))
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	k, err := overflow(utils.SafeMul(reserveIn, reserveOut))
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	target, err := overflow(utils.SafeMul(ratio, k))
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	root, err := overflow(utils.SafeSqrt(target))
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	return root.Sub(reserveIn), nil
}

func overflow(d sdkmath.LegacyDec, err error) (sdkmath.LegacyDec, error) {
	if err != nil {
		return sdkmath.LegacyDec{}, errorsmod.Wrap(types.ErrOverflow, err.Error())
	}
	return d, nil
}
