// Package epoch defines EpochState, the kernel's self-committing canonical
// state root: a flat set of fixed-width fields whose state_root is
// SHA256(canonical_JSON(all other fields in alphabetical key order)).
// state_root is excluded from its own serialization to avoid a circular
// dependency — it is always the last field computed.
package epoch

import (
	"github.com/certen/kernel-validator/internal/kernel/canon"
	"github.com/certen/kernel-validator/internal/kernel/fixed"
	"github.com/certen/kernel-validator/internal/kernel/hashing"
	"github.com/certen/kernel-validator/internal/kernel/kernelerr"
)

// MaxPayloadsPerEpoch bounds the combined proof-of-impact + vouch-bond
// payload count accepted per epoch.
const MaxPayloadsPerEpoch = 10000

// MaxFraudWindowEpochs bounds how many epochs back a fraud proof may
// target before being permanently rejected.
const MaxFraudWindowEpochs uint64 = 1

// State is the canonical committed state at the end of one epoch. Only
// Merkle roots are stored, never the full materialized state, so the
// struct stays small regardless of how many identities exist.
type State struct {
	BondPoolRoot         hashing.Digest
	EntropyMetricScaled  string // decimal string, raw Fixed inner value (SCALE=10^12)
	EpochNumber          uint64
	ImpactPoolRoot       hashing.Digest
	KernelHash           hashing.Digest
	PreviousRoot         hashing.Digest
	StateRoot            hashing.Digest
	ValidatorSetRoot     hashing.Digest
	VdfChallengeSeed     hashing.Digest
}

func encodeDigest(d hashing.Digest) []byte {
	const hex = "0123456789abcdef"
	out := make([]byte, 64)
	for i, b := range d {
		out[i*2] = hex[b>>4]
		out[i*2+1] = hex[b&0xF]
	}
	return out
}

func encodeUint64(n uint64) []byte {
	if n == 0 {
		return []byte("0")
	}
	var digits []byte
	for n > 0 {
		digits = append(digits, byte('0'+n%10))
		n /= 10
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return digits
}

// buildCommitmentJSON emits the pre-sorted JSON object for the 8 fields
// that contribute to state_root, in the frozen alphabetical field order.
func buildCommitmentJSON(s State) []byte {
	out := make([]byte, 0, 512)
	out = append(out, `{"bond_pool_root":"`...)
	out = append(out, encodeDigest(s.BondPoolRoot)...)
	out = append(out, `","entropy_metric_scaled":"`...)
	out = append(out, s.EntropyMetricScaled...)
	out = append(out, `","epoch_number":"`...)
	out = append(out, encodeUint64(s.EpochNumber)...)
	out = append(out, `","impact_pool_root":"`...)
	out = append(out, encodeDigest(s.ImpactPoolRoot)...)
	out = append(out, `","kernel_hash":"`...)
	out = append(out, encodeDigest(s.KernelHash)...)
	out = append(out, `","previous_root":"`...)
	out = append(out, encodeDigest(s.PreviousRoot)...)
	out = append(out, `","validator_set_root":"`...)
	out = append(out, encodeDigest(s.ValidatorSetRoot)...)
	out = append(out, `","vdf_challenge_seed":"`...)
	out = append(out, encodeDigest(s.VdfChallengeSeed)...)
	out = append(out, `"}`...)
	return out
}

// Entropy returns EntropyMetricScaled as a typed Fixed.
func (s State) Entropy() (fixed.Fixed, error) {
	return fixed.FromCanonicalString(s.EntropyMetricScaled)
}

// CanonicalBytes produces the canonical JSON bytes that commit to this
// state. The hand-built bytes are run through canon.Canonicalize as a
// constitutional sanity check: if they diverge, the field ordering above
// has drifted from alphabetical and is a kernel bug, not a caller error.
func (s State) CanonicalBytes() ([]byte, error) {
	if s.EntropyMetricScaled == "" {
		s.EntropyMetricScaled = "0"
	}
	if err := canon.ValidateNumericString([]byte(s.EntropyMetricScaled)); err != nil {
		return nil, err
	}
	raw := buildCommitmentJSON(s)
	checked, err := canon.Canonicalize(raw)
	if err != nil {
		return nil, err
	}
	if string(checked) != string(raw) {
		return nil, kernelerr.New(kernelerr.InvalidSerialization)
	}
	return raw, nil
}

// ComputeStateRoot computes SHA256(CanonicalBytes(s)) without mutating s.
func (s State) ComputeStateRoot() (hashing.Digest, error) {
	bytes, err := s.CanonicalBytes()
	if err != nil {
		return hashing.Digest{}, err
	}
	return hashing.SHA256(bytes), nil
}

// Commit computes and assigns state_root, returning the committed state.
// Call this as the last step of state construction, after every other
// field has been set.
func (s State) Commit() (State, error) {
	root, err := s.ComputeStateRoot()
	if err != nil {
		return State{}, err
	}
	s.StateRoot = root
	return s, nil
}

// Genesis returns the placeholder genesis state: epoch 0, all-zero roots.
// In production this is replaced by a signed Genesis Manifest; an all-zero
// root is a valid placeholder for bootstrap and testing.
func Genesis() State {
	s := State{EntropyMetricScaled: "0"}
	root, err := s.ComputeStateRoot()
	if err != nil {
		return s
	}
	s.StateRoot = root
	return s
}
