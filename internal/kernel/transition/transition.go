// Package transition implements the kernel's epoch state-transition
// functions: ApplyEpochDryRun, the v0.0.1 baseline that advances the
// chain without touching any pool, and ApplyEpoch, the constitutional
// transition that authenticates a witness bundle, mutates all three
// pools under Model A, and recomputes global entropy.
//
// Both functions are pure: given the same prev state and inputs they
// produce the same output, and a failure anywhere aborts with no
// partial mutation — the caller never observes one pool root updated
// and another left stale.
package transition

import (
	"github.com/certen/kernel-validator/internal/kernel/entropy"
	"github.com/certen/kernel-validator/internal/kernel/epoch"
	"github.com/certen/kernel-validator/internal/kernel/fixed"
	"github.com/certen/kernel-validator/internal/kernel/hashing"
	"github.com/certen/kernel-validator/internal/kernel/kernelerr"
	"github.com/certen/kernel-validator/internal/kernel/witness"
)

// ApplyEpochDryRun advances one epoch without any payload processing: the
// epoch counter increments, previous_root chains to prev.state_root, and
// every pool root and the entropy metric pass through unchanged. It
// exists as the baseline transition — useful for bootstrapping a chain
// before any validator, impact, or bond activity exists, and as the
// reference for the pinned genesis-to-epoch-1 vector.
func ApplyEpochDryRun(prev epoch.State, payloadCount int, kernelHash hashing.Digest) (epoch.State, error) {
	if payloadCount > epoch.MaxPayloadsPerEpoch {
		return epoch.State{}, kernelerr.New(kernelerr.PayloadLimitExceeded)
	}

	newEpochNumber, err := checkedAddOne(prev.EpochNumber)
	if err != nil {
		return epoch.State{}, err
	}

	newState := epoch.State{
		BondPoolRoot:        prev.BondPoolRoot,
		EntropyMetricScaled: prev.EntropyMetricScaled,
		EpochNumber:         newEpochNumber,
		ImpactPoolRoot:      prev.ImpactPoolRoot,
		KernelHash:          kernelHash,
		PreviousRoot:        prev.StateRoot,
		ValidatorSetRoot:    prev.ValidatorSetRoot,
		VdfChallengeSeed:    hashing.Digest{},
	}

	return newState.Commit()
}

// ApplyEpoch advances one epoch using an authenticated witness.Bundle. It
// replaces every dry-run stub with its real counterpart:
//
//   - Each pool (validator set, impact, bond) is mutated independently
//     via witness.ApplyPoolMutations under Model A evolving-root
//     verification. Pool isolation is absolute: a key, path, or failure
//     in one pool never touches another.
//   - Global entropy is recomputed from the bundle's entropy statistics.
//   - No pool is touched until the bundle's size limits, entropy
//     consistency, and validator signature quorum all pass — the
//     signature gate is an authorization boundary, not a formality.
//
// Pubkeys in validator_signatures are host-trusted in this version: they
// are verified cryptographically but not checked against validator_set_root
// membership. Full Merkle-authenticated signer membership is a later
// protocol version.
func ApplyEpoch(prev epoch.State, bundle witness.Bundle, kernelHash hashing.Digest) (epoch.State, error) {
	if err := bundle.ValidateLimits(); err != nil {
		return epoch.State{}, err
	}
	if err := bundle.EntropyStats.Validate(); err != nil {
		return epoch.State{}, err
	}

	newEpochNumber, err := checkedAddOne(prev.EpochNumber)
	if err != nil {
		return epoch.State{}, err
	}
	newPreviousRoot := prev.StateRoot

	bundleHash := witness.ComputeBundleHash(bundle)
	signingRoot := witness.ComputeEpochSigningRoot(prev.StateRoot, bundleHash, newEpochNumber, kernelHash)
	if err := witness.VerifyQuorum(bundle.ValidatorSigs, signingRoot, bundle.EntropyStats.OptimalValidatorCount); err != nil {
		return epoch.State{}, err
	}

	newValidatorSetRoot, err := witness.ApplyPoolMutations(prev.ValidatorSetRoot, bundle.ValidatorWitnesses)
	if err != nil {
		return epoch.State{}, err
	}
	newImpactPoolRoot, err := witness.ApplyPoolMutations(prev.ImpactPoolRoot, bundle.ImpactWitnesses)
	if err != nil {
		return epoch.State{}, err
	}
	newBondPoolRoot, err := witness.ApplyPoolMutations(prev.BondPoolRoot, bundle.BondWitnesses)
	if err != nil {
		return epoch.State{}, err
	}

	activeBonded, err := fixed.FromCanonicalString(bundle.EntropyStats.ActiveBondedMagnitudeRaw)
	if err != nil {
		return epoch.State{}, err
	}
	totalSupply, err := fixed.FromCanonicalString(bundle.EntropyStats.TotalSupplyRaw)
	if err != nil {
		return epoch.State{}, err
	}
	newEntropy, err := entropy.Compute(
		activeBonded,
		totalSupply,
		bundle.EntropyStats.UniqueActiveValidators,
		bundle.EntropyStats.OptimalValidatorCount,
	)
	if err != nil {
		return epoch.State{}, err
	}

	newState := epoch.State{
		BondPoolRoot:        newBondPoolRoot,
		EntropyMetricScaled: newEntropy.Raw(),
		EpochNumber:         newEpochNumber,
		ImpactPoolRoot:      newImpactPoolRoot,
		KernelHash:          kernelHash,
		PreviousRoot:        newPreviousRoot,
		ValidatorSetRoot:    newValidatorSetRoot,
		VdfChallengeSeed:    hashing.Digest{},
	}

	return newState.Commit()
}

func checkedAddOne(n uint64) (uint64, error) {
	if n == ^uint64(0) {
		return 0, kernelerr.New(kernelerr.MathOverflow)
	}
	return n + 1, nil
}
