// Package witness implements the host-kernel trust boundary types: the
// authenticated leaf mutations a host submits against an evolving Merkle
// pool, the validator signatures authorizing an epoch transition, and the
// entropy statistics the kernel partially trusts. All field orderings and
// size limits here are the wire contract between host and kernel — any
// divergence forks the protocol.
package witness

import (
	"github.com/certen/kernel-validator/internal/kernel/hashing"
	"github.com/certen/kernel-validator/internal/kernel/kernelerr"
	"github.com/certen/kernel-validator/internal/kernel/sig"
)

// MaxKeyBytes bounds a leaf mutation key.
const MaxKeyBytes = 64

// MaxValueBytes bounds a leaf mutation's old/new value.
const MaxValueBytes = 4096

// MaxValidatorSignatures bounds signatures per epoch; matches
// MaxPayloadsPerEpoch since no epoch can have more signers than payloads.
const MaxValidatorSignatures = 10000

// MaxPayloadsPerEpoch bounds the combined mutation count across all pools.
const MaxPayloadsPerEpoch = 10000

// NodePosition identifies which side of its parent the CURRENT node
// occupies, not where the sibling sits.
//
// Left: current is the left child, so parent = hash_node(current, sibling).
// Right: current is the right child, so parent = hash_node(sibling, current).
type NodePosition int

const (
	Left NodePosition = iota
	Right
)

// MerklePathNode is one level of a Merkle authentication path.
type MerklePathNode struct {
	Sibling  hashing.Digest
	Position NodePosition
}

// MaxMerkleDepth mirrors merkle.MaxDepth; duplicated here to avoid an
// import cycle concern while keeping the same bound.
const MaxMerkleDepth = 40

// MerklePath is an authentication path from a leaf to the Merkle root.
// Nodes[0] is closest to the leaf; the last entry is closest to the root.
type MerklePath struct {
	Nodes []MerklePathNode
}

// NewMerklePath constructs a path, enforcing the depth limit immediately.
func NewMerklePath(nodes []MerklePathNode) (MerklePath, error) {
	if len(nodes) > MaxMerkleDepth {
		return MerklePath{}, kernelerr.New(kernelerr.InvalidMerkleWitness)
	}
	return MerklePath{Nodes: nodes}, nil
}

func (p MerklePath) walk(start hashing.Digest) hashing.Digest {
	current := start
	for _, node := range p.Nodes {
		if node.Position == Left {
			current = hashing.HashNode(current, node.Sibling)
		} else {
			current = hashing.HashNode(node.Sibling, current)
		}
	}
	return current
}

// Verify checks that walking this path from leafHash reaches expectedRoot.
func (p MerklePath) Verify(leafHash, expectedRoot hashing.Digest) error {
	if p.walk(leafHash) != expectedRoot {
		return kernelerr.New(kernelerr.InvalidMerkleWitness)
	}
	return nil
}

// ReconstructRoot walks this path with a new leaf hash to derive the root
// after mutation. The caller must already have called Verify on the old
// leaf hash; this does not re-verify.
func (p MerklePath) ReconstructRoot(newLeafHash hashing.Digest) hashing.Digest {
	return p.walk(newLeafHash)
}

// LeafMutation is a single authenticated leaf update in a Merkle pool.
// OldValue empty means INSERT (hash_leaf(nil) equals the empty-tree root);
// NewValue empty means DELETE.
type LeafMutation struct {
	Key      []byte
	OldValue []byte
	NewValue []byte
	Path     MerklePath
}

// ValidateSizes checks size constraints only; it does not verify the
// Merkle path.
func (m LeafMutation) ValidateSizes() error {
	if len(m.Key) == 0 || len(m.Key) > MaxKeyBytes {
		return kernelerr.New(kernelerr.InvalidSerialization)
	}
	if len(m.OldValue) > MaxValueBytes || len(m.NewValue) > MaxValueBytes {
		return kernelerr.New(kernelerr.InvalidSerialization)
	}
	return nil
}

// EntropyStats are the aggregate statistics the host provides for entropy
// computation. This is the kernel's one acknowledged host-trust surface:
// total_supply and unique_active_validators cannot be independently
// verified without O(n) witnesses over the entire validator set.
type EntropyStats struct {
	ActiveBondedMagnitudeRaw string
	TotalSupplyRaw           string
	UniqueActiveValidators   uint64
	OptimalValidatorCount    uint64
}

// ValidatorSignature is a single Ed25519 signature authorizing an epoch
// transition. Within a bundle, entries must be in strictly ascending
// pubkey order with no duplicates.
type ValidatorSignature struct {
	ValidatorPubkey [32]byte
	Signature       [64]byte
}

// Bundle is everything the host provides for one epoch transition.
type Bundle struct {
	BondWitnesses      []LeafMutation
	EntropyStats       EntropyStats
	ImpactWitnesses    []LeafMutation
	ValidatorSigs      []ValidatorSignature
	ValidatorWitnesses []LeafMutation
}

// ValidateLimits checks the combined payload count and signature count
// against their respective caps. Called before any Merkle verification.
func (b Bundle) ValidateLimits() error {
	total := len(b.BondWitnesses) + len(b.ImpactWitnesses) + len(b.ValidatorWitnesses)
	if total > MaxPayloadsPerEpoch {
		return kernelerr.New(kernelerr.PayloadLimitExceeded)
	}
	if len(b.ValidatorSigs) > MaxValidatorSignatures {
		return kernelerr.New(kernelerr.PayloadLimitExceeded)
	}
	return nil
}

// ComputeBundleHash hashes all three mutation vectors in a frozen wire
// format. Path data is excluded: paths are structural, not content.
func ComputeBundleHash(b Bundle) hashing.Digest {
	var buf []byte
	buf = appendMutations(buf, b.BondWitnesses)
	buf = appendMutations(buf, b.ImpactWitnesses)
	buf = appendMutations(buf, b.ValidatorWitnesses)
	return hashing.SHA256(buf)
}

func appendMutations(buf []byte, muts []LeafMutation) []byte {
	buf = append(buf, be32(uint32(len(muts)))...)
	for _, m := range muts {
		buf = append(buf, be16(uint16(len(m.Key)))...)
		buf = append(buf, m.Key...)
		buf = append(buf, be16(uint16(len(m.OldValue)))...)
		buf = append(buf, m.OldValue...)
		buf = append(buf, be16(uint16(len(m.NewValue)))...)
		buf = append(buf, m.NewValue...)
	}
	return buf
}

func be16(v uint16) []byte { return []byte{byte(v >> 8), byte(v)} }
func be32(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}
func be64(v uint64) []byte {
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		out[i] = byte(v >> (8 * uint(7-i)))
	}
	return out
}

// ComputeEpochSigningRoot computes the digest validators sign:
// SHA256(0x02 || prev_state_root || bundle_hash || epoch_number_be8 || kernel_hash).
// Total input is 105 bytes.
func ComputeEpochSigningRoot(prevStateRoot, bundleHash hashing.Digest, epochNumber uint64, kernelHash hashing.Digest) hashing.Digest {
	buf := make([]byte, 0, 105)
	buf = append(buf, hashing.SigningPrefix)
	buf = append(buf, prevStateRoot[:]...)
	buf = append(buf, bundleHash[:]...)
	buf = append(buf, be64(epochNumber)...)
	buf = append(buf, kernelHash[:]...)
	return hashing.SHA256(buf)
}

// VerifyQuorum enforces strictly ascending pubkey order, verifies every
// signature against signingRoot with no early exit, then checks the
// count against the ceil(2/3 * optimalValidatorCount) threshold.
//
// Pubkeys are host-trusted in this version: they are not verified against
// the validator set Merkle root.
func VerifyQuorum(signatures []ValidatorSignature, signingRoot hashing.Digest, optimalValidatorCount uint64) error {
	for i := 1; i < len(signatures); i++ {
		if bytesCompare(signatures[i].ValidatorPubkey[:], signatures[i-1].ValidatorPubkey[:]) <= 0 {
			return kernelerr.New(kernelerr.InvalidSerialization)
		}
	}

	for _, s := range signatures {
		if err := sig.Verify(s.ValidatorPubkey, signingRoot[:], s.Signature); err != nil {
			return err
		}
	}

	threshold := (2*optimalValidatorCount + 2) / 3
	if uint64(len(signatures)) < threshold {
		return kernelerr.New(kernelerr.InvalidSignature)
	}
	return nil
}

func bytesCompare(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// ApplyPoolMutations applies a sequence of authenticated leaf mutations to
// a Merkle pool root under Model A (evolving-root verification): each
// mutation's path is verified against the root produced by the preceding
// mutation, not the original pool root. An empty mutation list returns
// currentRoot unchanged.
func ApplyPoolMutations(currentRoot hashing.Digest, mutations []LeafMutation) (hashing.Digest, error) {
	if len(mutations) == 0 {
		return currentRoot, nil
	}

	for i := 1; i < len(mutations); i++ {
		if bytesCompare(mutations[i-1].Key, mutations[i].Key) >= 0 {
			return hashing.Digest{}, kernelerr.New(kernelerr.InvalidSerialization)
		}
	}

	intermediate := currentRoot
	for _, m := range mutations {
		if err := m.ValidateSizes(); err != nil {
			return hashing.Digest{}, err
		}
		oldLeafHash := hashing.HashLeaf(m.OldValue)
		if err := m.Path.Verify(oldLeafHash, intermediate); err != nil {
			return hashing.Digest{}, err
		}
		newLeafHash := hashing.HashLeaf(m.NewValue)
		intermediate = m.Path.ReconstructRoot(newLeafHash)
	}

	return intermediate, nil
}
