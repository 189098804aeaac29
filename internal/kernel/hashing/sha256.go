// Package hashing implements the kernel's two pinned hash primitives,
// SHA-256 and SHA-512, as self-contained FIPS 180-4 reference
// implementations with no platform intrinsics. Correctness and
// cross-platform bit-exact determinism take priority over
// performance; this is a direct translation of the specification, not
// a call into Go's crypto/sha256 or crypto/sha512, because a
// conforming implementation must reproduce identical bytes on every
// machine regardless of what assembly acceleration a given Go runtime
// happens to use for the standard library's hash packages.
package hashing

import "math/bits"

// Digest is a SHA-256 digest: 32 bytes.
type Digest [32]byte

// LeafPrefix is the domain-separation prefix for Merkle leaf hashes.
const LeafPrefix byte = 0x00

// NodePrefix is the domain-separation prefix for Merkle internal node hashes.
const NodePrefix byte = 0x01

// SigningPrefix is the domain-separation prefix for epoch signing roots.
const SigningPrefix byte = 0x02

// sha256H holds the FIPS 180-4 §4.2.2 initial hash values (first 32
// bits of the fractional parts of the square roots of the first 8
// primes).
var sha256H = [8]uint32{
	0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
	0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
}

// sha256K holds the FIPS 180-4 §4.2.2 round constants (first 32 bits
// of the fractional parts of the cube roots of the first 64 primes).
var sha256K = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5,
	0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3,
	0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc,
	0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7,
	0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13,
	0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3,
	0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5,
	0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208,
	0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

func sha256Ch(x, y, z uint32) uint32  { return (x & y) ^ (^x & z) }
func sha256Maj(x, y, z uint32) uint32 { return (x & y) ^ (x & z) ^ (y & z) }

func sha256Sigma0Upper(x uint32) uint32 {
	return bits.RotateLeft32(x, -2) ^ bits.RotateLeft32(x, -13) ^ bits.RotateLeft32(x, -22)
}

func sha256Sigma1Upper(x uint32) uint32 {
	return bits.RotateLeft32(x, -6) ^ bits.RotateLeft32(x, -11) ^ bits.RotateLeft32(x, -25)
}

func sha256Sigma0Lower(x uint32) uint32 {
	return bits.RotateLeft32(x, -7) ^ bits.RotateLeft32(x, -18) ^ (x >> 3)
}

func sha256Sigma1Lower(x uint32) uint32 {
	return bits.RotateLeft32(x, -17) ^ bits.RotateLeft32(x, -19) ^ (x >> 10)
}

// sha256Compress processes one 512-bit (64-byte) message block,
// mutating state in place per FIPS 180-4 §6.2.2 steps 1-4.
func sha256Compress(state *[8]uint32, block *[64]byte) {
	var w [64]uint32
	for t := 0; t < 16; t++ {
		w[t] = uint32(block[t*4])<<24 | uint32(block[t*4+1])<<16 | uint32(block[t*4+2])<<8 | uint32(block[t*4+3])
	}
	for t := 16; t < 64; t++ {
		w[t] = sha256Sigma1Lower(w[t-2]) + w[t-7] + sha256Sigma0Lower(w[t-15]) + w[t-16]
	}

	a, b, c, d, e, f, g, h := state[0], state[1], state[2], state[3], state[4], state[5], state[6], state[7]

	for t := 0; t < 64; t++ {
		t1 := h + sha256Sigma1Upper(e) + sha256Ch(e, f, g) + sha256K[t] + w[t]
		t2 := sha256Sigma0Upper(a) + sha256Maj(a, b, c)
		h = g
		g = f
		f = e
		e = d + t1
		d = c
		c = b
		b = a
		a = t1 + t2
	}

	state[0] += a
	state[1] += b
	state[2] += c
	state[3] += d
	state[4] += e
	state[5] += f
	state[6] += g
	state[7] += h
}

// SHA256 computes SHA-256 over an arbitrary byte slice, implementing
// FIPS 180-4 §5.1.1 (padding) and §6.2.2 (hash computation).
func SHA256(input []byte) Digest {
	state := sha256H
	bitLen := uint64(len(input)) * 8

	var block [64]byte
	blockLen := 0

	feed := func(b byte) {
		block[blockLen] = b
		blockLen++
		if blockLen == 64 {
			sha256Compress(&state, &block)
			blockLen = 0
		}
	}

	for _, b := range input {
		feed(b)
	}
	feed(0x80)
	for blockLen != 56 {
		feed(0x00)
	}
	for i := 7; i >= 0; i-- {
		feed(byte(bitLen >> (8 * uint(i))))
	}

	var digest Digest
	for i, word := range state {
		digest[i*4] = byte(word >> 24)
		digest[i*4+1] = byte(word >> 16)
		digest[i*4+2] = byte(word >> 8)
		digest[i*4+3] = byte(word)
	}
	return digest
}

// HashLeaf computes SHA256(0x00 || leafBytes), the domain-separated
// Merkle leaf hash.
func HashLeaf(leafBytes []byte) Digest {
	buf := make([]byte, 0, 1+len(leafBytes))
	buf = append(buf, LeafPrefix)
	buf = append(buf, leafBytes...)
	return SHA256(buf)
}

// HashNode computes SHA256(0x01 || left || right), the domain-separated
// Merkle internal node hash.
func HashNode(left, right Digest) Digest {
	buf := make([]byte, 0, 1+32+32)
	buf = append(buf, NodePrefix)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return SHA256(buf)
}
