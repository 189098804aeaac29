package epoch

import "github.com/certen/kernel-validator/internal/kernel/fixed"

// DecayFactorScaled is the per-epoch thermodynamic decay factor scaled to
// fixed.Scale (10^12): 0.943932824245, roughly 5.6% decay at 30-day
// epochs. Precomputed offline and truncated at the 12th decimal. Decay
// applies to liquid unlocked balances only; dust lost to truncation is
// burned, never redistributed.
const DecayFactorScaled uint64 = 943932824245

// DecayFactor returns the decay factor as a typed Fixed value.
func DecayFactor() (fixed.Fixed, error) {
	return fixed.FromRawUint64(DecayFactorScaled)
}

// ApplyDecay applies one epoch of thermodynamic decay to balance using
// scaled multiplication, not raw multiplication.
func ApplyDecay(balance fixed.Fixed) (fixed.Fixed, error) {
	factor, err := DecayFactor()
	if err != nil {
		return fixed.Fixed{}, err
	}
	return balance.MulScaled(factor)
}
