package emission

import "github.com/certen/kernel-validator/internal/kernel/fixed"

// Zero is the default emission policy for the physics validation phase.
// Every mint calculation returns fixed.Zero — no tokens are ever created —
// so the kernel can prove deterministic replay without economic
// contamination.
type Zero struct{}

func (Zero) CalculateBondMint(_ fixed.Fixed, _ uint64, _ fixed.Fixed) (fixed.Fixed, error) {
	return fixed.Zero(), nil
}

func (Zero) CalculateValidatorFee(_ fixed.Fixed) (fixed.Fixed, error) {
	return fixed.Zero(), nil
}

var _ Policy = Zero{}
