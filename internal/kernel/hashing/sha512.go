package hashing

import "math/bits"

// Digest512 is a SHA-512 digest: 64 bytes. Needed internally because
// Ed25519 (RFC 8032 §5.1) hashes with SHA-512; kept self-contained for
// the same cross-platform-determinism reason as SHA256.
type Digest512 [64]byte

// sha512H holds the FIPS 180-4 §5.3.5 SHA-512 initial hash values.
var sha512H = [8]uint64{
	0x6a09e667f3bcc908, 0xbb67ae8584caa73b,
	0x3c6ef372fe94f82b, 0xa54ff53a5f1d36f1,
	0x510e527fade682d1, 0x9b05688c2b3e6c1f,
	0x1f83d9abfb41bd6b, 0x5be0cd19137e2179,
}

// sha512K holds the FIPS 180-4 §4.2.3 SHA-512 round constants (80 words).
var sha512K = [80]uint64{
	0x428a2f98d728ae22, 0x7137449123ef65cd, 0xb5c0fbcfec4d3b2f, 0xe9b5dba58189dbbc,
	0x3956c25bf348b538, 0x59f111f1b605d019, 0x923f82a4af194f9b, 0xab1c5ed5da6d8118,
	0xd807aa98a3030242, 0x12835b0145706fbe, 0x243185be4ee4b28c, 0x550c7dc3d5ffb4e2,
	0x72be5d74f27b896f, 0x80deb1fe3b1696b1, 0x9bdc06a725c71235, 0xc19bf174cf692694,
	0xe49b69c19ef14ad2, 0xefbe4786384f25e3, 0x0fc19dc68b8cd5b5, 0x240ca1cc77ac9c65,
	0x2de92c6f592b0275, 0x4a7484aa6ea6e483, 0x5cb0a9dcbd41fbd4, 0x76f988da831153b5,
	0x983e5152ee66dfab, 0xa831c66d2db43210, 0xb00327c898fb213f, 0xbf597fc7beef0ee4,
	0xc6e00bf33da88fc2, 0xd5a79147930aa725, 0x06ca6351e003826f, 0x142929670a0e6e70,
	0x27b70a8546d22ffc, 0x2e1b21385c26c926, 0x4d2c6dfc5ac42aed, 0x53380d139d95b3df,
	0x650a73548baf63de, 0x766a0abb3c77b2a8, 0x81c2c92e47edaee6, 0x92722c851482353b,
	0xa2bfe8a14cf10364, 0xa81a664bbc423001, 0xc24b8b70d0f89791, 0xc76c51a30654be30,
	0xd192e819d6ef5218, 0xd69906245565a910, 0xf40e35855771202a, 0x106aa07032bbd1b8,
	0x19a4c116b8d2d0c8, 0x1e376c085141ab53, 0x2748774cdf8eeb99, 0x34b0bcb5e19b48a8,
	0x391c0cb3c5c95a63, 0x4ed8aa4ae3418acb, 0x5b9cca4f7763e373, 0x682e6ff3d6b2b8a3,
	0x748f82ee5defb2fc, 0x78a5636f43172f60, 0x84c87814a1f0ab72, 0x8cc702081a6439ec,
	0x90befffa23631e28, 0xa4506cebde82bde9, 0xbef9a3f7b2c67915, 0xc67178f2e372532b,
	0xca273eceea26619c, 0xd186b8c721c0c207, 0xeada7dd6cde0eb1e, 0xf57d4f7fee6ed178,
	0x06f067aa72176fba, 0x0a637dc5a2c898a6, 0x113f9804bef90dae, 0x1b710b35131c471b,
	0x28db77f523047d84, 0x32caab7b40c72493, 0x3c9ebe0a15c9bebc, 0x431d67c49c100d4c,
	0x4cc5d4becb3e42b6, 0x597f299cfc657e2a, 0x5fcb6fab3ad6faec, 0x6c44198c4a475817,
}

func sha512Ch(x, y, z uint64) uint64  { return (x & y) ^ (^x & z) }
func sha512Maj(x, y, z uint64) uint64 { return (x & y) ^ (x & z) ^ (y & z) }

func sha512Sigma0Upper(x uint64) uint64 {
	return bits.RotateLeft64(x, -28) ^ bits.RotateLeft64(x, -34) ^ bits.RotateLeft64(x, -39)
}

func sha512Sigma1Upper(x uint64) uint64 {
	return bits.RotateLeft64(x, -14) ^ bits.RotateLeft64(x, -18) ^ bits.RotateLeft64(x, -41)
}

func sha512Sigma0Lower(x uint64) uint64 {
	return bits.RotateLeft64(x, -1) ^ bits.RotateLeft64(x, -8) ^ (x >> 7)
}

func sha512Sigma1Lower(x uint64) uint64 {
	return bits.RotateLeft64(x, -19) ^ bits.RotateLeft64(x, -61) ^ (x >> 6)
}

// sha512Compress processes one 1024-bit (128-byte) message block.
func sha512Compress(state *[8]uint64, block *[128]byte) {
	var w [80]uint64
	for t := 0; t < 16; t++ {
		var v uint64
		for i := 0; i < 8; i++ {
			v = v<<8 | uint64(block[t*8+i])
		}
		w[t] = v
	}
	for t := 16; t < 80; t++ {
		w[t] = sha512Sigma1Lower(w[t-2]) + w[t-7] + sha512Sigma0Lower(w[t-15]) + w[t-16]
	}

	a, b, c, d, e, f, g, h := state[0], state[1], state[2], state[3], state[4], state[5], state[6], state[7]

	for t := 0; t < 80; t++ {
		t1 := h + sha512Sigma1Upper(e) + sha512Ch(e, f, g) + sha512K[t] + w[t]
		t2 := sha512Sigma0Upper(a) + sha512Maj(a, b, c)
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

// SHA512 computes SHA-512 over an arbitrary byte slice, implementing
// FIPS 180-4 §5.1.2 (padding) and §6.4 (hash computation). Inputs
// never approach 2^64 bytes in this kernel, so the high 64 bits of the
// 128-bit length field are always zero.
func SHA512(input []byte) Digest512 {
	state := sha512H
	bitLenLo := uint64(len(input)) * 8

	var block [128]byte
	blockLen := 0

	feed := func(b byte) {
		block[blockLen] = b
		blockLen++
		if blockLen == 128 {
			sha512Compress(&state, &block)
			blockLen = 0
		}
	}

	for _, b := range input {
		feed(b)
	}
	feed(0x80)
	for blockLen != 112 {
		feed(0x00)
	}
	for i := 0; i < 8; i++ {
		feed(0x00)
	}
	for i := 7; i >= 0; i-- {
		feed(byte(bitLenLo >> (8 * uint(i))))
	}

	var digest Digest512
	for i, word := range state {
		for j := 0; j < 8; j++ {
			digest[i*8+j] = byte(word >> (8 * uint(7-j)))
		}
	}
	return digest
}
