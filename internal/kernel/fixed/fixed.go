// Package fixed implements the kernel's constitutional fixed-point
// scalar type: a non-negative rational with implicit scale 10^12,
// stored as a 128-bit magnitude. No floats, no wrapping arithmetic,
// no platform-dependent intrinsics — every fallible operation returns
// a kernelerr.Error instead of panicking or trapping.
package fixed

import (
	"github.com/holiman/uint256"

	"github.com/certen/kernel-validator/internal/kernel/kernelerr"
)

// Scale is the fixed-point scaling factor: 1.0 accountability unit is
// represented internally as Scale.
const Scale uint64 = 1_000_000_000_000

var scale256 = uint256.NewInt(Scale)

// u128Max is the maximum value representable in 128 bits, used only to
// derive MaxSafeBalanceRaw below.
var u128Max = func() *uint256.Int {
	one := uint256.NewInt(1)
	shifted := new(uint256.Int).Lsh(one, 128)
	return new(uint256.Int).Sub(shifted, one)
}()

// MaxSafeBalanceRaw is the largest raw value a Fixed may hold before a
// decay multiplication (balance * decay_factor) could overflow the
// 128-bit magnitude. Derived as u128::MAX / Scale.
var MaxSafeBalanceRaw = new(uint256.Int).Div(u128Max, scale256)

// Fixed is the constitutional fixed-point type. The inner value is
// unexported — nothing outside this package reads the raw magnitude
// except via Raw, which callers use only for logging/serialization.
type Fixed struct {
	raw uint256.Int
}

// Zero is the zero Fixed value.
func Zero() Fixed {
	return Fixed{}
}

// FromRaw constructs a Fixed from a pre-scaled raw magnitude. Returns
// MathOverflow if raw exceeds MaxSafeBalanceRaw or 128 bits.
func FromRaw(raw *uint256.Int) (Fixed, error) {
	if raw.Gt(MaxSafeBalanceRaw) {
		return Fixed{}, kernelerr.New(kernelerr.MathOverflow)
	}
	return Fixed{raw: *raw}, nil
}

// FromUnits constructs a Fixed from a whole-unit count, equivalent to
// FromRaw(wholeUnits * Scale).
func FromUnits(wholeUnits uint64) (Fixed, error) {
	w := uint256.NewInt(wholeUnits)
	product, overflow := new(uint256.Int).MulOverflow(w, scale256)
	if overflow {
		return Fixed{}, kernelerr.New(kernelerr.MathOverflow)
	}
	return FromRaw(product)
}

// FromRawUint64 constructs a Fixed from a raw magnitude that fits in a
// uint64, a convenience for constitutional constants such as the decay
// factor that are always small enough to fit without uint256 literals.
func FromRawUint64(raw uint64) (Fixed, error) {
	return FromRaw(uint256.NewInt(raw))
}

// FromCanonicalString parses a Fixed from a canonical numeric string
// matching ^(0|[1-9][0-9]*)$. The string encodes the already-scaled
// raw magnitude, not a decimal accountability value.
func FromCanonicalString(s string) (Fixed, error) {
	if !isCanonicalNumericString(s) {
		return Fixed{}, kernelerr.New(kernelerr.InvalidSerialization)
	}
	raw, err := uint256.FromDecimal(s)
	if err != nil {
		return Fixed{}, kernelerr.New(kernelerr.MathOverflow)
	}
	return FromRaw(raw)
}

func isCanonicalNumericString(s string) bool {
	if s == "0" {
		return true
	}
	if len(s) == 0 || s[0] == '0' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Raw returns the inner raw magnitude as a decimal string, for
// serialization and test fixtures only — never for further arithmetic
// outside this package.
func (f Fixed) Raw() string {
	return f.raw.Dec()
}

// IsZero reports whether f is the zero value.
func (f Fixed) IsZero() bool {
	return f.raw.IsZero()
}

// Cmp compares f and other the way uint256.Int.Cmp does.
func (f Fixed) Cmp(other Fixed) int {
	return f.raw.Cmp(&other.raw)
}

// MulScaled multiplies two Fixed values, dividing by Scale to keep the
// result in the same fixed-point representation:
// result = (f.raw * other.raw) / Scale.
func (f Fixed) MulScaled(other Fixed) (Fixed, error) {
	product, overflow := new(uint256.Int).MulOverflow(&f.raw, &other.raw)
	if overflow {
		return Fixed{}, kernelerr.New(kernelerr.MathOverflow)
	}
	result := new(uint256.Int).Div(product, scale256)
	return FromRaw(result)
}

// DivScaled divides f by other, scaling correctly:
// result = (f.raw * Scale) / other.raw.
func (f Fixed) DivScaled(other Fixed) (Fixed, error) {
	if other.raw.IsZero() {
		return Fixed{}, kernelerr.New(kernelerr.DivisionByZero)
	}
	numerator, overflow := new(uint256.Int).MulOverflow(&f.raw, scale256)
	if overflow {
		return Fixed{}, kernelerr.New(kernelerr.MathOverflow)
	}
	result := new(uint256.Int).Div(numerator, &other.raw)
	return FromRaw(result)
}

// CheckedAdd adds two Fixed values, rejecting results beyond MaxSafeBalanceRaw.
func (f Fixed) CheckedAdd(other Fixed) (Fixed, error) {
	sum, overflow := new(uint256.Int).AddOverflow(&f.raw, &other.raw)
	if overflow {
		return Fixed{}, kernelerr.New(kernelerr.MathOverflow)
	}
	return FromRaw(sum)
}

// CheckedSub subtracts other from f. Returns MathOverflow if other > f;
// for slashing, which must clamp to zero, use SaturatingSubForSlash.
func (f Fixed) CheckedSub(other Fixed) (Fixed, error) {
	if other.raw.Gt(&f.raw) {
		return Fixed{}, kernelerr.New(kernelerr.MathOverflow)
	}
	diff := new(uint256.Int).Sub(&f.raw, &other.raw)
	return Fixed{raw: *diff}, nil
}

// IsqrtOverDurationScaled computes isqrt[(f.raw * lockDurationEpochs) / Scale]
// as a Fixed, the first four steps of the sublinear bond emission formula:
// checked multiply by the duration, checked divide by Scale, integer
// square root, then reinterpret as a raw Fixed magnitude.
func (f Fixed) IsqrtOverDurationScaled(lockDurationEpochs uint64) (Fixed, error) {
	duration := uint256.NewInt(lockDurationEpochs)
	product, overflow := new(uint256.Int).MulOverflow(&f.raw, duration)
	if overflow {
		return Fixed{}, kernelerr.New(kernelerr.MathOverflow)
	}
	divided := new(uint256.Int).Div(product, scale256)
	return FromRaw(Isqrt(divided))
}

// SaturatingSubForSlash subtracts slashAmount from f, clamping to zero
// rather than failing. Constitutionally restricted to slashing penalty
// application — never used for ordinary balance arithmetic.
func (f Fixed) SaturatingSubForSlash(slashAmount Fixed) Fixed {
	if slashAmount.raw.Gt(&f.raw) {
		return Zero()
	}
	diff := new(uint256.Int).Sub(&f.raw, &slashAmount.raw)
	return Fixed{raw: *diff}
}
