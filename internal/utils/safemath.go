package utils

import (
	"fmt"
	"math/big"

	sdkmath "cosmossdk.io/math"
)

// SafeMath provides overflow-checked decimal arithmetic. Every operation is
// carried out on the raw 1e-18 units as big.Int and the result is checked
// against the LegacyDec range before a decimal is built from it, so no
// LegacyDec constructor or operator can panic on caller-supplied amounts.

// ErrDecOverflow is returned when a decimal operation overflows or divides by zero.
var ErrDecOverflow = fmt.Errorf("decimal overflow")

// maxDecBitLen is the largest raw bit length LegacyDec operations accept:
// MaxBitLen plus the 59 bits a decimal truncation removes.
const maxDecBitLen = sdkmath.MaxBitLen + 59

var (
	oneUnit     = big.NewInt(1)
	precision   = new(big.Int).Exp(big.NewInt(10), big.NewInt(decimalPlaces), nil)
	precisionSq = new(big.Int).Mul(precision, precision)
)

// fromRaw builds a decimal from raw 1e-18 units after the range check.
func fromRaw(op string, x *big.Int) (sdkmath.LegacyDec, error) {
	if x.BitLen() > maxDecBitLen {
		return sdkmath.LegacyDec{}, fmt.Errorf("%w: %s result exceeds %d bits", ErrDecOverflow, op, maxDecBitLen)
	}
	return sdkmath.LegacyNewDecFromBigIntWithPrec(x, decimalPlaces), nil
}

// raw returns the raw 1e-18 units of d. nil decimals count as zero.
func raw(d sdkmath.LegacyDec) *big.Int {
	if d.IsNil() {
		return new(big.Int)
	}
	return d.BigInt()
}

// chopHalfEven divides x by 1e18, rounding half to even like LegacyDec.Mul.
func chopHalfEven(x *big.Int) *big.Int {
	neg := x.Sign() < 0
	abs := new(big.Int).Abs(x)
	quo, rem := new(big.Int).QuoRem(abs, precision, new(big.Int))
	switch new(big.Int).Lsh(rem, 1).Cmp(precision) {
	case 1:
		quo.Add(quo, oneUnit)
	case 0:
		if quo.Bit(0) == 1 {
			quo.Add(quo, oneUnit)
		}
	}
	if neg {
		quo.Neg(quo)
	}
	return quo
}

// quoCeil divides x by y rounding toward positive infinity.
func quoCeil(x, y *big.Int) *big.Int {
	quo, rem := new(big.Int).QuoRem(x, y, new(big.Int))
	if rem.Sign() != 0 && (x.Sign() < 0) == (y.Sign() < 0) {
		quo.Add(quo, oneUnit)
	}
	return quo
}

// SafeAdd adds two decimals with overflow checking
func SafeAdd(a, b sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	return fromRaw("add", new(big.Int).Add(raw(a), raw(b)))
}

// SafeSub subtracts b from a with overflow checking. Negative results are
// allowed; callers check the sign.
func SafeSub(a, b sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	return fromRaw("sub", new(big.Int).Sub(raw(a), raw(b)))
}

// SafeMul multiplies two decimals, rounding the 18th decimal half-even.
func SafeMul(a, b sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	product := new(big.Int).Mul(raw(a), raw(b))
	return fromRaw("mul", chopHalfEven(product))
}

// SafeMulTruncate multiplies two decimals, truncating toward zero.
func SafeMulTruncate(a, b sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	product := new(big.Int).Mul(raw(a), raw(b))
	return fromRaw("mul", product.Quo(product, precision))
}

// SafeQuo divides a by b, rounding the 18th decimal half-even.
func SafeQuo(a, b sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	if raw(b).Sign() == 0 {
		return sdkmath.LegacyDec{}, fmt.Errorf("%w: division by zero", ErrDecOverflow)
	}
	scaled := new(big.Int).Mul(raw(a), precisionSq)
	return fromRaw("quo", chopHalfEven(scaled.Quo(scaled, raw(b))))
}

// SafeQuoTruncate divides a by b, truncating toward zero.
func SafeQuoTruncate(a, b sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	if raw(b).Sign() == 0 {
		return sdkmath.LegacyDec{}, fmt.Errorf("%w: division by zero", ErrDecOverflow)
	}
	scaled := new(big.Int).Mul(raw(a), precision)
	return fromRaw("quo", scaled.Quo(scaled, raw(b)))
}

// SafeQuoRoundUp divides a by b, rounding toward positive infinity.
func SafeQuoRoundUp(a, b sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	if raw(b).Sign() == 0 {
		return sdkmath.LegacyDec{}, fmt.Errorf("%w: division by zero", ErrDecOverflow)
	}
	scaled := new(big.Int).Mul(raw(a), precision)
	return fromRaw("quo", quoCeil(scaled, raw(b)))
}

// SafeMulQuoRoundUp returns a*b/c rounded up to the next 1e-18, computed
// without rounding the intermediate product.
func SafeMulQuoRoundUp(a, b, c sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	if raw(c).Sign() == 0 {
		return sdkmath.LegacyDec{}, fmt.Errorf("%w: division by zero", ErrDecOverflow)
	}
	product := new(big.Int).Mul(raw(a), raw(b))
	return fromRaw("mulquo", quoCeil(product, raw(c)))
}

// SafeSqrt returns an approximation of the square root of a non-negative decimal.
func SafeSqrt(a sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	if a.IsNil() || a.IsNegative() {
		return sdkmath.LegacyDec{}, fmt.Errorf("square root of negative or nil decimal %s", a)
	}
	r, err := a.ApproxSqrt()
	if err != nil {
		return sdkmath.LegacyDec{}, fmt.Errorf("failed to calculate square root: %w", err)
	}
	return r, nil
}

// IsPositive is a nil-safe IsPositive.
func IsPositive(d sdkmath.LegacyDec) bool {
	return !d.IsNil() && d.IsPositive()
}

// IsNonNegative is a nil-safe check for d >= 0.
func IsNonNegative(d sdkmath.LegacyDec) bool {
	return !d.IsNil() && !d.IsNegative()
}
