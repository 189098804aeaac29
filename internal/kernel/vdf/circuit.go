// Package vdf defines the Groth16 circuit and verifier for the kernel's
// verifiable-delay-function challenge seed. The delay function is
// repeated squaring (Wesolowski/Pietrzak-style): Output = Seed^(2^T),
// a sequential computation that cannot be parallelized but whose
// result is cheap to verify once a SNARK attests to the T squarings.
//
// T (Rounds) is a small fixed constant here — a placeholder circuit
// depth standing in for the production delay parameter, which must be
// chosen so that T sequential squarings take a target wall-clock time
// on reference hardware. Sizing that parameter is deferred along with
// the rest of the VDF wiring (vdf_challenge_seed is stubbed to all-zero
// in the current transition protocol version).
package vdf

import "github.com/consensys/gnark/frontend"

// Rounds is the number of sequential squarings the circuit attests to.
const Rounds = 16

// Circuit proves knowledge of a squaring chain from Seed to Output
// without revealing the intermediate values, binding a verifier to
// the sequential work the prover performed.
type Circuit struct {
	// Seed is the epoch's VDF challenge input.
	Seed frontend.Variable `gnark:",public"`
	// Output is the claimed Seed^(2^Rounds).
	Output frontend.Variable `gnark:",public"`
}

// Define lays out the repeated-squaring constraint chain.
func (c *Circuit) Define(api frontend.API) error {
	acc := c.Seed
	for i := 0; i < Rounds; i++ {
		acc = api.Mul(acc, acc)
	}
	api.AssertIsEqual(acc, c.Output)
	return nil
}
