// Package emission defines the interface between the physics kernel and
// economic policy. The kernel compiles and operates correctly with
// ZeroEmission plugged in: the physics engine passes determinism tests
// without any emission logic contaminating the replay. SublinearBondEmission
// is the economic policy injected once adversarial simulation proves it
// stable.
package emission

import "github.com/certen/kernel-validator/internal/kernel/fixed"

// Policy is the emission policy interface. The kernel never calls any
// method here during physics-layer validation: transition.ApplyEpoch
// computes no emission, and no other package in this repository invokes
// a Policy.
type Policy interface {
	// CalculateBondMint computes tokens minted for a single VouchBond.
	// bondMagnitude is the locked accountability magnitude, lockDurationEpochs
	// is how many epochs the bond is locked, and globalEntropy is this
	// epoch's computed entropy scalar in [0, 1].
	CalculateBondMint(bondMagnitude fixed.Fixed, lockDurationEpochs uint64, globalEntropy fixed.Fixed) (fixed.Fixed, error)

	// CalculateValidatorFee computes the validator fee from a completed
	// epoch's total minted amount — nominally a fraction redirected to the
	// active committee.
	CalculateValidatorFee(totalEpochMinted fixed.Fixed) (fixed.Fixed, error)
}
