/*
This file contains common utility functions for converting between decimal
amounts and floats, and for comparing decimals within a tolerance.
*/

package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	sdkmath "cosmossdk.io/math"
)

// Error definitions for zero-tolerance error handling
var (
	ErrAmountNil        = errors.New("amount is nil")
	ErrNotFinite        = errors.New("value is not finite")
	ErrConversionFailed = errors.New("conversion failed")
)

// decimalPlaces is the precision of sdkmath.LegacyDec.
const decimalPlaces = 18

// DecToFloat64 converts a decimal to float64, rejecting nil and non-finite results.
func DecToFloat64(amount sdkmath.LegacyDec) (float64, error) {
	if amount.IsNil() {
		return 0, ErrAmountNil
	}
	f, err := amount.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: result is %f", ErrNotFinite, f)
	}
	return f, nil
}

// Float64ToDec converts a float64 to a decimal. The float is formatted with
// 18 fractional digits first to avoid binary representation noise.
func Float64ToDec(amount float64) (sdkmath.LegacyDec, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("%w: amount is %f", ErrNotFinite, amount)
	}
	if amount == 0 {
		return sdkmath.LegacyZeroDec(), nil
	}

	dec, err := sdkmath.LegacyNewDecFromStr(strconv.FormatFloat(amount, 'f', decimalPlaces, 64))
	if err != nil {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("%w: failed to create decimal from float: %w", ErrConversionFailed, err)
	}
	return dec, nil
}

// ParseDec parses a decimal from a plain or exponent-free string, e.g. "1000" or "0.5".
// Strings that only parse as floats (e.g. "1e-12") go through Float64ToDec.
func ParseDec(s string) (sdkmath.LegacyDec, error) {
	dec, err := sdkmath.LegacyNewDecFromStr(s)
	if err == nil {
		return dec, nil
	}
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("%w: %q is not a decimal: %w", ErrConversionFailed, s, err)
	}
	return Float64ToDec(f)
}

// FormatDec renders a decimal with a fixed number of fractional digits,
// rounding half away from zero. It is meant for human-readable output only.
func FormatDec(amount sdkmath.LegacyDec, places int) string {
	if amount.IsNil() {
		return "<nil>"
	}
	f, err := amount.Float64()
	if err != nil {
		return amount.String()
	}
	return strconv.FormatFloat(f, 'f', places, 64)
}

// ApproxEqual reports whether |a-b| <= relTol * max(|a|, |b|, 1).
func ApproxEqual(a, b, relTol sdkmath.LegacyDec) bool {
	if a.IsNil() || b.IsNil() {
		return false
	}
	scale := sdkmath.LegacyMaxDec(sdkmath.LegacyOneDec(), sdkmath.LegacyMaxDec(a.Abs(), b.Abs()))
	return a.Sub(b).Abs().LTE(relTol.Mul(scale))
}
