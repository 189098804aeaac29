package vdf

import (
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/certen/kernel-validator/internal/kernel/kernelerr"
)

// curve is the scalar field the VDF circuit is compiled over, matching
// the teacher's choice of BN254 for its Groth16 circuits.
var curve = ecc.BN254.ScalarField()

// Verifier holds the compiled constraint system and verification key for
// the repeated-squaring VDF circuit. A Verifier is safe for concurrent
// Verify calls once constructed.
type Verifier struct {
	cs constraint.ConstraintSystem
	vk groth16.VerifyingKey
}

// Setup compiles the circuit and runs the Groth16 trusted setup,
// returning both keys. The proving key is only needed by whichever
// service produces VDF proofs; the kernel itself only ever verifies.
func Setup() (pk groth16.ProvingKey, v *Verifier, err error) {
	var circuit Circuit
	cs, err := frontend.Compile(curve, r1cs.NewBuilder, &circuit)
	if err != nil {
		return nil, nil, err
	}
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, nil, err
	}
	return pk, &Verifier{cs: cs, vk: vk}, nil
}

// LoadVerifier reconstructs a Verifier from a previously-exported
// verification key, for the common case where the trusted setup ran
// once offline and only the verifying key ships with the kernel binary.
func LoadVerifier(vkReader io.Reader) (*Verifier, error) {
	var circuit Circuit
	cs, err := frontend.Compile(curve, r1cs.NewBuilder, &circuit)
	if err != nil {
		return nil, err
	}
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(vkReader); err != nil {
		return nil, err
	}
	return &Verifier{cs: cs, vk: vk}, nil
}

// WriteVerifyingKey serializes the verifying key, for the offline setup
// tool to persist alongside the proving key so the kernel binary can
// later reconstruct a Verifier via LoadVerifier without rerunning the
// trusted setup.
func (v *Verifier) WriteVerifyingKey(w io.Writer) (int64, error) {
	return v.vk.WriteTo(w)
}

// Verify checks a Groth16 proof that output = seed^(2^Rounds), returning
// kernelerr.InvalidVdfProof on any failure — malformed proof, malformed
// witness, or a proof that does not verify against seed/output.
func (v *Verifier) Verify(seed, output *big.Int, proof groth16.Proof) error {
	assignment := &Circuit{Seed: seed, Output: output}
	publicWitness, err := frontend.NewWitness(assignment, curve, frontend.PublicOnly())
	if err != nil {
		return kernelerr.New(kernelerr.InvalidVdfProof)
	}
	if err := groth16.Verify(proof, v.vk, publicWitness); err != nil {
		return kernelerr.New(kernelerr.InvalidVdfProof)
	}
	return nil
}
