package fixed

import (
	"github.com/holiman/uint256"

	"github.com/certen/kernel-validator/internal/kernel/kernelerr"
)

// CheckedMulRaw multiplies two raw magnitudes with overflow checking.
// Used when a result must be computed before division without
// constructing Fixed values along the way (e.g. emission/decay math).
func CheckedMulRaw(a, b *uint256.Int) (*uint256.Int, error) {
	product, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, kernelerr.New(kernelerr.MathOverflow)
	}
	return product, nil
}

// CheckedDivRaw divides raw a by raw b, returning DivisionByZero if b is zero.
func CheckedDivRaw(a, b *uint256.Int) (*uint256.Int, error) {
	if b.IsZero() {
		return nil, kernelerr.New(kernelerr.DivisionByZero)
	}
	return new(uint256.Int).Div(a, b), nil
}

// CheckedAddRaw adds two raw magnitudes with overflow checking.
func CheckedAddRaw(a, b *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, kernelerr.New(kernelerr.MathOverflow)
	}
	return sum, nil
}

// CheckedSubRaw subtracts raw b from raw a with underflow checking.
func CheckedSubRaw(a, b *uint256.Int) (*uint256.Int, error) {
	if b.Gt(a) {
		return nil, kernelerr.New(kernelerr.MathOverflow)
	}
	return new(uint256.Int).Sub(a, b), nil
}
