// Package merkle computes roots over the kernel's perfect binary padded
// Merkle tree: leaves are hashed and domain-separated from internal
// nodes, the leaf set is padded to the next power of two by duplicating
// the final node, and the whole structure is bounded to MaxDepth levels.
// Callers are responsible for presorting leaves lexicographically before
// computing a root — this package never sorts. Mutation-time
// verification and root evolution (proving and checking a single leaf
// update against a prior root) live in internal/kernel/witness instead,
// which is the one actually exercised by apply_epoch.
package merkle

import (
	"github.com/certen/kernel-validator/internal/kernel/hashing"
	"github.com/certen/kernel-validator/internal/kernel/kernelerr"
)

// MaxDepth bounds tree depth to support up to 2^40 leaves.
const MaxDepth = 40

// EmptyRoot is the root of a zero-leaf tree: SHA256(0x00 || []).
func EmptyRoot() hashing.Digest {
	return hashing.SHA256([]byte{hashing.LeafPrefix})
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	result := 1
	for result < n {
		result <<= 1
	}
	return result
}

// ComputeRoot computes the Merkle root over already-serialized leaf byte
// slices, in the order given. It does not sort: the caller must presort
// leaves lexicographically. Returns kernelerr.PayloadLimitExceeded if the
// leaf count exceeds 2^MaxDepth.
func ComputeRoot(leaves [][]byte) (hashing.Digest, error) {
	if len(leaves) == 0 {
		return EmptyRoot(), nil
	}

	maxLeaves := uint64(1) << MaxDepth
	if uint64(len(leaves)) > maxLeaves {
		return hashing.Digest{}, kernelerr.New(kernelerr.PayloadLimitExceeded)
	}

	nodes := make([]hashing.Digest, len(leaves))
	for i, l := range leaves {
		nodes[i] = hashing.HashLeaf(l)
	}

	padded := nextPowerOfTwo(len(nodes))
	for len(nodes) < padded {
		nodes = append(nodes, nodes[len(nodes)-1])
	}

	for len(nodes) > 1 {
		next := make([]hashing.Digest, 0, len(nodes)/2)
		for i := 0; i+1 < len(nodes); i += 2 {
			next = append(next, hashing.HashNode(nodes[i], nodes[i+1]))
		}
		if len(next)%2 != 0 && len(next) > 1 {
			next = append(next, next[len(next)-1])
		}
		nodes = next
	}

	return nodes[0], nil
}
