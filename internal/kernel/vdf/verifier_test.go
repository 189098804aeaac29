package vdf

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
)

func computeOutput(t *testing.T, seed *big.Int) *big.Int {
	t.Helper()
	acc := new(big.Int).Set(seed)
	for i := 0; i < Rounds; i++ {
		acc.Mul(acc, acc)
		acc.Mod(acc, curve)
	}
	return acc
}

func TestVerifierAcceptsValidProof(t *testing.T) {
	pk, v, err := Setup()
	if err != nil {
		t.Fatal(err)
	}

	seed := big.NewInt(7)
	output := computeOutput(t, seed)

	assignment := &Circuit{Seed: seed, Output: output}
	fullWitness, err := frontend.NewWitness(assignment, curve)
	if err != nil {
		t.Fatal(err)
	}

	proof, err := groth16.Prove(v.cs, pk, fullWitness)
	if err != nil {
		t.Fatal(err)
	}

	if err := v.Verify(seed, output, proof); err != nil {
		t.Fatalf("valid VDF proof must verify: %v", err)
	}
}

func TestVerifierRejectsWrongOutput(t *testing.T) {
	pk, v, err := Setup()
	if err != nil {
		t.Fatal(err)
	}

	seed := big.NewInt(7)
	output := computeOutput(t, seed)

	assignment := &Circuit{Seed: seed, Output: output}
	fullWitness, err := frontend.NewWitness(assignment, curve)
	if err != nil {
		t.Fatal(err)
	}
	proof, err := groth16.Prove(v.cs, pk, fullWitness)
	if err != nil {
		t.Fatal(err)
	}

	wrongOutput := new(big.Int).Add(output, big.NewInt(1))
	if err := v.Verify(seed, wrongOutput, proof); err == nil {
		t.Fatal("proof must not verify against a tampered output")
	}
}
