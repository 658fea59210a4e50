package dex

import "math/bits"

// mulU64 computes the full 128-bit product of a*b as (hi, lo).
func mulU64(a, b uint64) (hi, lo uint64) {
	return bits.Mul64(a, b)
}

// divU128 divides the 128-bit value (hi, lo) by d, returning quotient
// and remainder. Panics if the quotient would overflow 64 bits (never
// happens for this subsystem's amount/price/ratio ranges, since hi is
// always < d in every call site here).
func divU128(hi, lo, d uint64) (q, r uint64) {
	return bits.Div64(hi, lo, d)
}

// addAmount adds two Amounts, returning a TxError-flavored overflow
// error on wraparound.
func addAmount(a, b Amount) (Amount, error) {
	sum := a + b
	if sum < a {
		return 0, txErr(TxErrStateConflict, "amount addition overflow")
	}
	return sum, nil
}

// mulDivCeil computes ceil(x * y / den) using a 128-bit intermediate
// product so large amount*price/ratio combinations never silently
// wrap.
func mulDivCeil(x, y, den uint64) uint64 {
	return ceilDiv(x, y, den)
}

// mulDivFloor computes floor(x * y / den) using a 128-bit intermediate
// product.
func mulDivFloor(x, y, den uint64) uint64 {
	if den == 0 {
		return 0
	}
	hi, lo := mulU64(x, y)
	q, _ := divU128(hi, lo, den)
	return q
}
