package bonjson

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// twoPow63 / twoPow64 bound the exactly-representable-as-float64 integer
// range used by reduceFloat; 2^63 is exact in float64 even though it is
// one past int64's maximum.
const (
	twoPow63 = 9223372036854775808.0
	twoPow64 = 18446744073709551616.0
)

// reduceFloat implements spec.md §4.4's reduce_float: if f is finite and
// equal to some integer representable exactly in int64 or uint64, it
// reports that integer (preferring the signed form whenever the value
// fits in int64); otherwise isInt is false and f should be encoded as a
// float. Callers are responsible for rejecting NaN/Inf before calling
// this (AddFloat does so as InvalidFloat, per spec.md §4.3).
func reduceFloat(f float64) (isInt, unsigned bool, i int64, u uint64) {
	if f != math.Trunc(f) {
		return false, false, 0, 0
	}
	if f >= -twoPow63 && f < twoPow63 {
		return true, false, int64(f), 0
	}
	if f >= 0 && f < twoPow64 {
		return true, true, 0, uint64(f)
	}
	return false, false, 0, 0
}

// reduceBigNumber implements spec.md §4.4's reduce_big_number: it
// normalises bn by stripping trailing-zero significand digits into the
// exponent, then reports whichever simpler form the result is exactly
// equal to (a 64-bit integer, preferring signed; else an exact float64),
// falling back to the normalised BigNumber itself. Uses
// github.com/shopspring/decimal for the arbitrary-precision arithmetic
// (see DESIGN.md) rather than hand-rolled big.Int long division.
func reduceBigNumber(bn BigNumber) (kind Type, i int64, u uint64, f float64, normalized BigNumber) {
	sig := bn.Significand
	exp := bn.Exponent
	for sig != 0 && sig%10 == 0 {
		sig /= 10
		exp++
	}
	if sig == 0 {
		// Canonical zero is always SignedInt(0), regardless of exponent
		// or sign (spec.md §3).
		return TypeSignedInt, 0, 0, 0, BigNumber{}
	}
	normalized = BigNumber{Sign: bn.Sign, Significand: sig, Exponent: exp}

	magnitude := new(big.Int).SetUint64(sig)
	signed := new(big.Int).Set(magnitude)
	if bn.Sign == Negative {
		signed.Neg(signed)
	}

	if exp >= 0 {
		intVal := new(big.Int).Set(signed)
		if exp > 0 {
			scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
			intVal.Mul(intVal, scale)
		}
		if intVal.IsInt64() {
			return TypeSignedInt, intVal.Int64(), 0, 0, BigNumber{}
		}
		if bn.Sign == Positive && intVal.IsUint64() {
			return TypeUnsignedInt, 0, intVal.Uint64(), 0, BigNumber{}
		}
	}

	d := decimal.NewFromBigInt(signed, exp)
	if fv, exact := d.Float64(); exact {
		return TypeFloat, 0, 0, fv, BigNumber{}
	}

	return TypeBigNumber, 0, 0, 0, normalized
}
