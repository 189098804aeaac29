// Package bundleio encodes and decodes witness.Bundle for the wire: the
// HTTP API, and the kernelctl CLI's verify-bundle/apply subcommands. The
// kernel package types use raw byte arrays and slices for hashing
// performance; bundleio's JSON shape hex-encodes every digest and byte
// string so bundles are legible in request bodies and CLI fixtures,
// mirroring the hex encoding internal/kernel/epoch uses for its own
// canonical commitment bytes.
package bundleio

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/certen/kernel-validator/internal/kernel/witness"
)

type merklePathNodeDTO struct {
	Sibling  string `json:"sibling"`
	Position string `json:"position"`
}

type merklePathDTO struct {
	Nodes []merklePathNodeDTO `json:"nodes"`
}

type leafMutationDTO struct {
	Key      string        `json:"key"`
	OldValue string        `json:"old_value"`
	NewValue string        `json:"new_value"`
	Path     merklePathDTO `json:"path"`
}

type entropyStatsDTO struct {
	ActiveBondedMagnitudeRaw string `json:"active_bonded_magnitude_raw"`
	TotalSupplyRaw           string `json:"total_supply_raw"`
	UniqueActiveValidators   uint64 `json:"unique_active_validators"`
	OptimalValidatorCount    uint64 `json:"optimal_validator_count"`
}

type validatorSignatureDTO struct {
	ValidatorPubkey string `json:"validator_pubkey"`
	Signature       string `json:"signature"`
}

// BundleDTO is the wire representation of witness.Bundle.
type BundleDTO struct {
	BondWitnesses      []leafMutationDTO       `json:"bond_witnesses"`
	EntropyStats       entropyStatsDTO         `json:"entropy_stats"`
	ImpactWitnesses    []leafMutationDTO       `json:"impact_witnesses"`
	ValidatorSigs      []validatorSignatureDTO `json:"validator_sigs"`
	ValidatorWitnesses []leafMutationDTO       `json:"validator_witnesses"`
}

func positionToString(p witness.NodePosition) string {
	if p == witness.Left {
		return "left"
	}
	return "right"
}

func positionFromString(s string) (witness.NodePosition, error) {
	switch s {
	case "left":
		return witness.Left, nil
	case "right":
		return witness.Right, nil
	default:
		return 0, fmt.Errorf("bundleio: invalid merkle path position %q", s)
	}
}

func pathToDTO(p witness.MerklePath) merklePathDTO {
	nodes := make([]merklePathNodeDTO, len(p.Nodes))
	for i, n := range p.Nodes {
		nodes[i] = merklePathNodeDTO{
			Sibling:  hex.EncodeToString(n.Sibling[:]),
			Position: positionToString(n.Position),
		}
	}
	return merklePathDTO{Nodes: nodes}
}

func pathFromDTO(dto merklePathDTO) (witness.MerklePath, error) {
	nodes := make([]witness.MerklePathNode, len(dto.Nodes))
	for i, n := range dto.Nodes {
		sibling, err := decodeDigest(n.Sibling)
		if err != nil {
			return witness.MerklePath{}, fmt.Errorf("bundleio: path node %d: %w", i, err)
		}
		position, err := positionFromString(n.Position)
		if err != nil {
			return witness.MerklePath{}, fmt.Errorf("bundleio: path node %d: %w", i, err)
		}
		nodes[i] = witness.MerklePathNode{Sibling: sibling, Position: position}
	}
	return witness.NewMerklePath(nodes)
}

func mutationToDTO(m witness.LeafMutation) leafMutationDTO {
	return leafMutationDTO{
		Key:      hex.EncodeToString(m.Key),
		OldValue: hex.EncodeToString(m.OldValue),
		NewValue: hex.EncodeToString(m.NewValue),
		Path:     pathToDTO(m.Path),
	}
}

func mutationFromDTO(dto leafMutationDTO) (witness.LeafMutation, error) {
	key, err := hex.DecodeString(dto.Key)
	if err != nil {
		return witness.LeafMutation{}, fmt.Errorf("bundleio: key: %w", err)
	}
	oldValue, err := hex.DecodeString(dto.OldValue)
	if err != nil {
		return witness.LeafMutation{}, fmt.Errorf("bundleio: old_value: %w", err)
	}
	newValue, err := hex.DecodeString(dto.NewValue)
	if err != nil {
		return witness.LeafMutation{}, fmt.Errorf("bundleio: new_value: %w", err)
	}
	path, err := pathFromDTO(dto.Path)
	if err != nil {
		return witness.LeafMutation{}, err
	}
	return witness.LeafMutation{Key: key, OldValue: oldValue, NewValue: newValue, Path: path}, nil
}

func mutationsToDTO(muts []witness.LeafMutation) []leafMutationDTO {
	out := make([]leafMutationDTO, len(muts))
	for i, m := range muts {
		out[i] = mutationToDTO(m)
	}
	return out
}

func mutationsFromDTO(dtos []leafMutationDTO) ([]witness.LeafMutation, error) {
	out := make([]witness.LeafMutation, len(dtos))
	for i, dto := range dtos {
		m, err := mutationFromDTO(dto)
		if err != nil {
			return nil, fmt.Errorf("bundleio: mutation %d: %w", i, err)
		}
		out[i] = m
	}
	return out, nil
}

func decodeDigest(s string) (digest [32]byte, err error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return digest, err
	}
	if len(b) != 32 {
		return digest, fmt.Errorf("bundleio: expected 32 bytes, got %d", len(b))
	}
	copy(digest[:], b)
	return digest, nil
}

func decodeSignature(s string) (sig [64]byte, err error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return sig, err
	}
	if len(b) != 64 {
		return sig, fmt.Errorf("bundleio: expected 64 bytes, got %d", len(b))
	}
	copy(sig[:], b)
	return sig, nil
}

// Encode converts a witness.Bundle into its hex-encoded wire form.
func Encode(b witness.Bundle) BundleDTO {
	sigs := make([]validatorSignatureDTO, len(b.ValidatorSigs))
	for i, s := range b.ValidatorSigs {
		sigs[i] = validatorSignatureDTO{
			ValidatorPubkey: hex.EncodeToString(s.ValidatorPubkey[:]),
			Signature:       hex.EncodeToString(s.Signature[:]),
		}
	}
	return BundleDTO{
		BondWitnesses:   mutationsToDTO(b.BondWitnesses),
		ImpactWitnesses: mutationsToDTO(b.ImpactWitnesses),
		ValidatorWitnesses: mutationsToDTO(b.ValidatorWitnesses),
		ValidatorSigs:   sigs,
		EntropyStats: entropyStatsDTO{
			ActiveBondedMagnitudeRaw: b.EntropyStats.ActiveBondedMagnitudeRaw,
			TotalSupplyRaw:           b.EntropyStats.TotalSupplyRaw,
			UniqueActiveValidators:   b.EntropyStats.UniqueActiveValidators,
			OptimalValidatorCount:    b.EntropyStats.OptimalValidatorCount,
		},
	}
}

// Decode converts a BundleDTO back into a witness.Bundle.
func Decode(dto BundleDTO) (witness.Bundle, error) {
	bondWitnesses, err := mutationsFromDTO(dto.BondWitnesses)
	if err != nil {
		return witness.Bundle{}, fmt.Errorf("bundleio: bond_witnesses: %w", err)
	}
	impactWitnesses, err := mutationsFromDTO(dto.ImpactWitnesses)
	if err != nil {
		return witness.Bundle{}, fmt.Errorf("bundleio: impact_witnesses: %w", err)
	}
	validatorWitnesses, err := mutationsFromDTO(dto.ValidatorWitnesses)
	if err != nil {
		return witness.Bundle{}, fmt.Errorf("bundleio: validator_witnesses: %w", err)
	}

	sigs := make([]witness.ValidatorSignature, len(dto.ValidatorSigs))
	for i, s := range dto.ValidatorSigs {
		pubkey, err := decodeDigest(s.ValidatorPubkey)
		if err != nil {
			return witness.Bundle{}, fmt.Errorf("bundleio: validator_sigs[%d].validator_pubkey: %w", i, err)
		}
		signature, err := decodeSignature(s.Signature)
		if err != nil {
			return witness.Bundle{}, fmt.Errorf("bundleio: validator_sigs[%d].signature: %w", i, err)
		}
		sigs[i] = witness.ValidatorSignature{ValidatorPubkey: pubkey, Signature: signature}
	}

	return witness.Bundle{
		BondWitnesses:      bondWitnesses,
		ImpactWitnesses:    impactWitnesses,
		ValidatorWitnesses: validatorWitnesses,
		ValidatorSigs:      sigs,
		EntropyStats: witness.EntropyStats{
			ActiveBondedMagnitudeRaw: dto.EntropyStats.ActiveBondedMagnitudeRaw,
			TotalSupplyRaw:           dto.EntropyStats.TotalSupplyRaw,
			UniqueActiveValidators:   dto.EntropyStats.UniqueActiveValidators,
			OptimalValidatorCount:    dto.EntropyStats.OptimalValidatorCount,
		},
	}, nil
}

// Marshal encodes a witness.Bundle directly to JSON bytes.
func Marshal(b witness.Bundle) ([]byte, error) {
	return json.Marshal(Encode(b))
}

// Unmarshal decodes JSON bytes directly into a witness.Bundle.
func Unmarshal(data []byte) (witness.Bundle, error) {
	var dto BundleDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return witness.Bundle{}, fmt.Errorf("bundleio: %w", err)
	}
	return Decode(dto)
}

// DigestToHex hex-encodes a 32-byte digest, used by the HTTP layer and
// CLI when rendering epoch.State fields back to the caller.
func DigestToHex(d [32]byte) string {
	return hex.EncodeToString(d[:])
}
