// Package fraud implements the kernel's fraud-response primitives:
// absolute rewind on proven fraud and idempotent slashing. Both are
// deterministic, purely subtractive operations — neither mints nor
// redistributes value.
package fraud

import (
	"bytes"
	"sort"

	"github.com/certen/kernel-validator/internal/kernel/canon"
	"github.com/certen/kernel-validator/internal/kernel/epoch"
	"github.com/certen/kernel-validator/internal/kernel/hashing"
	"github.com/certen/kernel-validator/internal/kernel/kernelerr"
)

// MaxFraudWindowEpochs mirrors epoch.MaxFraudWindowEpochs: only the
// immediately preceding epoch is rewindable.
const MaxFraudWindowEpochs = epoch.MaxFraudWindowEpochs

// RewindProof claims that the epoch at TargetEpoch was fraudulently
// produced and that the chain must revert to PreviousRoot. It carries no
// VDF challenge seed, and this package neither stores nor recomputes one
// for the rewound epoch.
type RewindProof struct {
	// TargetEpoch is the epoch number being reverted.
	TargetEpoch uint64
	// PreviousRoot is the state_root of TargetEpoch-1, the epoch rewound to.
	PreviousRoot hashing.Digest
	// CanonicalEvidence is the JCS-canonical bytes of the fraud evidence;
	// its SHA-256 orders proofs when several are processed in one batch.
	CanonicalEvidence []byte
}

// evidenceHash returns the SHA-256 of the proof's canonical evidence
// bytes, used to order a batch of proofs deterministically.
func (p RewindProof) evidenceHash() hashing.Digest {
	return hashing.SHA256(p.CanonicalEvidence)
}

// ValidateWindow checks TargetEpoch against the current chain height and
// the kernel_hash boundary: only the immediately preceding epoch is
// rewindable, and rewinding across a kernel_hash change is forbidden
// because it would replay a fraud proof against a binary it was never
// computed against.
func (p RewindProof) ValidateWindow(currentEpoch uint64, currentKernelHash, targetEpochKernelHash hashing.Digest) error {
	if p.TargetEpoch == 0 || currentEpoch < p.TargetEpoch {
		return kernelerr.New(kernelerr.InvalidSerialization)
	}
	if currentEpoch-p.TargetEpoch > MaxFraudWindowEpochs {
		return kernelerr.New(kernelerr.FraudWindowExpired)
	}
	if currentKernelHash != targetEpochKernelHash {
		return kernelerr.New(kernelerr.KernelHashMismatch)
	}
	return nil
}

// SortRewindProofs orders proofs by ascending lexicographic order of the
// SHA-256 of their canonical evidence bytes — the same tie-break rule
// used everywhere else a batch of kernel inputs needs a total order
// independent of submission sequence.
func SortRewindProofs(proofs []RewindProof) {
	sort.Slice(proofs, func(i, j int) bool {
		hi := proofs[i].evidenceHash()
		hj := proofs[j].evidenceHash()
		return bytes.Compare(hi[:], hj[:]) < 0
	})
}

// ValidateEvidence re-canonicalizes the proof's evidence bytes as a
// sanity check that the caller submitted JCS-canonical input before
// computing its hash for ordering.
func (p RewindProof) ValidateEvidence() error {
	canonical, err := canon.Canonicalize(p.CanonicalEvidence)
	if err != nil {
		return err
	}
	if !bytes.Equal(canonical, p.CanonicalEvidence) {
		return kernelerr.New(kernelerr.InvalidSerialization)
	}
	return nil
}
