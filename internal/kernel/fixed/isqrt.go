package fixed

import "github.com/holiman/uint256"

// Isqrt returns floor(sqrt(n)) using the Babylonian (Newton's method)
// integer convergence. Pinned verbatim: must not be replaced with a
// floating-point approximation. Integer division truncates, which is
// intentional and required for cross-platform determinism.
//
// Edge cases: Isqrt(0) = 0, Isqrt(1) = 1.
func Isqrt(n *uint256.Int) *uint256.Int {
	if n.IsZero() {
		return uint256.NewInt(0)
	}
	one := uint256.NewInt(1)
	if n.Cmp(one) == 0 {
		return uint256.NewInt(1)
	}

	bits := n.BitLen()
	x := new(uint256.Int).Lsh(one, uint((bits+1)/2))

	for {
		// next = (x + n/x) / 2
		q := new(uint256.Int).Div(n, x)
		sum, overflow := new(uint256.Int).AddOverflow(x, q)
		var next *uint256.Int
		if overflow {
			// sum overflowed 256 bits, which cannot happen for any
			// 128-bit-bounded n this kernel ever computes isqrt over,
			// but fall back to halving via right shift of the
			// non-overflowed operands to stay total.
			next = new(uint256.Int).Rsh(q, 1)
			next.Add(next, new(uint256.Int).Rsh(x, 1))
		} else {
			next = new(uint256.Int).Rsh(sum, 1)
		}
		if next.Cmp(x) >= 0 {
			return x
		}
		x = next
	}
}
