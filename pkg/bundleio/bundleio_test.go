package bundleio

import (
	"testing"

	"github.com/certen/kernel-validator/internal/kernel/witness"
)

func sampleBundle() witness.Bundle {
	path, _ := witness.NewMerklePath([]witness.MerklePathNode{
		{Sibling: [32]byte{0xAA}, Position: witness.Left},
		{Sibling: [32]byte{0xBB}, Position: witness.Right},
	})
	return witness.Bundle{
		BondWitnesses: []witness.LeafMutation{
			{Key: []byte("k1"), OldValue: []byte("old"), NewValue: []byte("new"), Path: path},
		},
		EntropyStats: witness.EntropyStats{
			ActiveBondedMagnitudeRaw: "500000000000",
			TotalSupplyRaw:           "1000000000000",
			UniqueActiveValidators:   5,
			OptimalValidatorCount:    10,
		},
		ValidatorSigs: []witness.ValidatorSignature{
			{ValidatorPubkey: [32]byte{1}, Signature: [64]byte{2}},
		},
	}
}

func TestMarshalUnmarshalRoundTrips(t *testing.T) {
	want := sampleBundle()
	data, err := Marshal(want)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}

	if len(got.BondWitnesses) != 1 {
		t.Fatalf("got %d bond witnesses, want 1", len(got.BondWitnesses))
	}
	m := got.BondWitnesses[0]
	if string(m.Key) != "k1" || string(m.OldValue) != "old" || string(m.NewValue) != "new" {
		t.Fatalf("mutation round-trip mismatch: %+v", m)
	}
	if len(m.Path.Nodes) != 2 || m.Path.Nodes[0].Sibling != ([32]byte{0xAA}) || m.Path.Nodes[1].Position != witness.Right {
		t.Fatalf("path round-trip mismatch: %+v", m.Path)
	}
	if got.EntropyStats != want.EntropyStats {
		t.Fatalf("entropy stats round-trip mismatch: got %+v, want %+v", got.EntropyStats, want.EntropyStats)
	}
	if len(got.ValidatorSigs) != 1 || got.ValidatorSigs[0].ValidatorPubkey != ([32]byte{1}) {
		t.Fatalf("validator sig round-trip mismatch: %+v", got.ValidatorSigs)
	}
}

func TestUnmarshalRejectsInvalidPosition(t *testing.T) {
	data := []byte(`{
		"bond_witnesses": [{"key":"6b31","old_value":"","new_value":"","path":{"nodes":[{"sibling":"` +
		"aa000000000000000000000000000000000000000000000000000000000000" + `","position":"sideways"}]}}],
		"entropy_stats": {"active_bonded_magnitude_raw":"0","total_supply_raw":"0","unique_active_validators":0,"optimal_validator_count":0},
		"impact_witnesses": [],
		"validator_sigs": [],
		"validator_witnesses": []
	}`)
	if _, err := Unmarshal(data); err == nil {
		t.Fatal("expected an error for an invalid merkle path position")
	}
}
