package witness

import (
	"testing"

	"github.com/certen/kernel-validator/internal/kernel/hashing"
	"github.com/certen/kernel-validator/internal/kernel/kernelerr"
	"github.com/certen/kernel-validator/internal/kernel/merkle"
)

func wantKind(t *testing.T, err error, kind kernelerr.Kind) {
	t.Helper()
	kerr, ok := err.(*kernelerr.Error)
	if !ok || kerr.Kind != kind {
		t.Fatalf("got %v, want kind %v", err, kind)
	}
}

func TestLeftPositionMeansCurrentIsLeftChild(t *testing.T) {
	leaf := hashing.HashLeaf([]byte("a"))
	sibling := hashing.HashLeaf([]byte("b"))
	expectedRoot := hashing.HashNode(leaf, sibling)

	path, err := NewMerklePath([]MerklePathNode{{Sibling: sibling, Position: Left}})
	if err != nil {
		t.Fatal(err)
	}
	if err := path.Verify(leaf, expectedRoot); err != nil {
		t.Fatal(err)
	}
}

func TestRightPositionMeansCurrentIsRightChild(t *testing.T) {
	sibling := hashing.HashLeaf([]byte("a"))
	leaf := hashing.HashLeaf([]byte("b"))
	expectedRoot := hashing.HashNode(sibling, leaf)

	path, err := NewMerklePath([]MerklePathNode{{Sibling: sibling, Position: Right}})
	if err != nil {
		t.Fatal(err)
	}
	if err := path.Verify(leaf, expectedRoot); err != nil {
		t.Fatal(err)
	}
}

func TestEmptyPathVerifiesSingleLeafTree(t *testing.T) {
	leafHash := hashing.HashLeaf([]byte("single"))
	path, err := NewMerklePath(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := path.Verify(leafHash, leafHash); err != nil {
		t.Fatal(err)
	}
}

func TestReconstructRootProducesNewRootAfterMutation(t *testing.T) {
	oldLeaf := hashing.HashLeaf([]byte("old"))
	sibling := hashing.HashLeaf([]byte("sib"))
	root := hashing.HashNode(oldLeaf, sibling)

	path, err := NewMerklePath([]MerklePathNode{{Sibling: sibling, Position: Left}})
	if err != nil {
		t.Fatal(err)
	}
	if err := path.Verify(oldLeaf, root); err != nil {
		t.Fatal(err)
	}

	newLeaf := hashing.HashLeaf([]byte("new"))
	newRoot := path.ReconstructRoot(newLeaf)
	if newRoot != hashing.HashNode(newLeaf, sibling) {
		t.Fatal("reconstructed root mismatch")
	}
}

func TestApplyPoolMutationsEmptyIsPassthrough(t *testing.T) {
	root := merkle.EmptyRoot()
	got, err := ApplyPoolMutations(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != root {
		t.Fatal("empty mutation list must leave the root unchanged")
	}
}

func TestApplyPoolMutationsRejectsOutOfOrderKeys(t *testing.T) {
	m := []LeafMutation{
		{Key: []byte("b")},
		{Key: []byte("a")},
	}
	_, err := ApplyPoolMutations(merkle.EmptyRoot(), m)
	wantKind(t, err, kernelerr.InvalidSerialization)
}

func TestApplyPoolMutationsRejectsDuplicateKeys(t *testing.T) {
	m := []LeafMutation{
		{Key: []byte("a")},
		{Key: []byte("a")},
	}
	_, err := ApplyPoolMutations(merkle.EmptyRoot(), m)
	wantKind(t, err, kernelerr.InvalidSerialization)
}

// TestApplyPoolMutationsModelAEvolvingRoot builds a two-leaf tree, inserts
// a mutation to leaf 0 followed by one to leaf 1, and checks that the
// second mutation's path — verified against the intermediate root left by
// the first — produces the same final root as building the tree fresh
// with both new values.
func TestApplyPoolMutationsModelAEvolvingRoot(t *testing.T) {
	leafA := []byte("a")
	leafB := []byte("b")
	hashA := hashing.HashLeaf(leafA)
	hashB := hashing.HashLeaf(leafB)
	root0 := hashing.HashNode(hashA, hashB)

	newA := []byte("a2")
	newB := []byte("b2")
	hashNewA := hashing.HashLeaf(newA)

	pathA, _ := NewMerklePath([]MerklePathNode{{Sibling: hashB, Position: Left}})
	root1 := hashing.HashNode(hashNewA, hashB)

	pathB, _ := NewMerklePath([]MerklePathNode{{Sibling: hashNewA, Position: Right}})

	mutations := []LeafMutation{
		{Key: []byte("k0"), OldValue: leafA, NewValue: newA, Path: pathA},
		{Key: []byte("k1"), OldValue: leafB, NewValue: newB, Path: pathB},
	}

	finalRoot, err := ApplyPoolMutations(root0, mutations)
	if err != nil {
		t.Fatal(err)
	}
	want := hashing.HashNode(hashNewA, hashing.HashLeaf(newB))
	if finalRoot != want {
		t.Fatalf("got %x want %x (intermediate root was %x)", finalRoot, want, root1)
	}
}

func TestApplyPoolMutationsRejectsStalePath(t *testing.T) {
	leafA := []byte("a")
	leafB := []byte("b")
	hashA := hashing.HashLeaf(leafA)
	hashB := hashing.HashLeaf(leafB)
	root0 := hashing.HashNode(hashA, hashB)

	// Both mutations carry paths relative to the ORIGINAL root (Model B) —
	// the second must fail because the first mutation already moved the root.
	pathA, _ := NewMerklePath([]MerklePathNode{{Sibling: hashB, Position: Left}})
	pathBStale, _ := NewMerklePath([]MerklePathNode{{Sibling: hashA, Position: Right}})

	mutations := []LeafMutation{
		{Key: []byte("k0"), OldValue: leafA, NewValue: []byte("a2"), Path: pathA},
		{Key: []byte("k1"), OldValue: leafB, NewValue: []byte("b2"), Path: pathBStale},
	}

	_, err := ApplyPoolMutations(root0, mutations)
	wantKind(t, err, kernelerr.InvalidMerkleWitness)
}

func TestApplyPoolMutationsRejectsOversizedValue(t *testing.T) {
	path, _ := NewMerklePath(nil)
	oversized := make([]byte, MaxValueBytes+1)
	m := []LeafMutation{
		{Key: []byte("k0"), NewValue: oversized, Path: path},
	}
	_, err := ApplyPoolMutations(merkle.EmptyRoot(), m)
	wantKind(t, err, kernelerr.InvalidSerialization)
}

func TestApplyPoolMutationsRejectsEmptyKey(t *testing.T) {
	path, _ := NewMerklePath(nil)
	m := []LeafMutation{
		{Key: nil, Path: path},
	}
	_, err := ApplyPoolMutations(merkle.EmptyRoot(), m)
	wantKind(t, err, kernelerr.InvalidSerialization)
}

func TestComputeEpochSigningRootIsDeterministic(t *testing.T) {
	prev := hashing.HashLeaf([]byte("prev"))
	bundle := hashing.HashLeaf([]byte("bundle"))
	kh := hashing.HashLeaf([]byte("kernel"))
	a := ComputeEpochSigningRoot(prev, bundle, 42, kh)
	b := ComputeEpochSigningRoot(prev, bundle, 42, kh)
	if a != b {
		t.Fatal("signing root must be deterministic")
	}
	c := ComputeEpochSigningRoot(prev, bundle, 43, kh)
	if a == c {
		t.Fatal("signing root must bind epoch number")
	}
}

func TestVerifyQuorumRejectsUnsortedSignatures(t *testing.T) {
	sigs := []ValidatorSignature{
		{ValidatorPubkey: [32]byte{2}},
		{ValidatorPubkey: [32]byte{1}},
	}
	err := VerifyQuorum(sigs, hashing.Digest{}, 3)
	wantKind(t, err, kernelerr.InvalidSerialization)
}

func TestVerifyQuorumRejectsBelowThreshold(t *testing.T) {
	err := VerifyQuorum(nil, hashing.Digest{}, 3)
	wantKind(t, err, kernelerr.InvalidSignature)
}

func TestEntropyStatsValidateRejectsBondedOverSupply(t *testing.T) {
	stats := EntropyStats{
		ActiveBondedMagnitudeRaw: "100",
		TotalSupplyRaw:           "50",
		OptimalValidatorCount:    1,
	}
	wantKind(t, stats.Validate(), kernelerr.MathOverflow)
}

func TestEntropyStatsValidateRejectsZeroOptimalCount(t *testing.T) {
	stats := EntropyStats{
		ActiveBondedMagnitudeRaw: "1",
		TotalSupplyRaw:           "10",
		OptimalValidatorCount:    0,
	}
	wantKind(t, stats.Validate(), kernelerr.DivisionByZero)
}
