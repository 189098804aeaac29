package hashing

import (
	"encoding/hex"
	"testing"
)

func fromHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex fixture: %v", err)
	}
	return b
}

func TestSHA256FIPSVectors(t *testing.T) {
	cases := []struct {
		name, input, want string
	}{
		{"empty", "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", "abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{
			"448bit",
			"abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq",
			"248d6a61d20638b8e5c026930c3e6039a33ce45964ff2167f6ecedd419db06c1",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := SHA256([]byte(c.input))
			want := fromHex(t, c.want)
			if hex.EncodeToString(got[:]) != hex.EncodeToString(want) {
				t.Errorf("SHA256(%q) = %x, want %x", c.input, got, want)
			}
		})
	}
}

func TestSHA512FIPSVectors(t *testing.T) {
	cases := []struct {
		name, input, want string
	}{
		{
			"empty", "",
			"cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce47d0d13c5d85f2b0ff8318d2877eec2f63b931bd47417a81a538327af927da3e",
		},
		{
			"abc", "abc",
			"ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f",
		},
		{
			"448bit", "abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq",
			"204a8fc6dda82f0a0ced7beb8e08a41657c16ef468b228a8279be331a703c33596fd15c13b1b07f9aa1d3bea57789ca031ad85c7a71dd70354ec631238ca3445",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := SHA512([]byte(c.input))
			want := fromHex(t, c.want)
			if hex.EncodeToString(got[:]) != hex.EncodeToString(want) {
				t.Errorf("SHA512(%q) = %x, want %x", c.input, got, want)
			}
		})
	}
}

func TestDomainSeparationDiffers(t *testing.T) {
	leafH := HashLeaf([]byte("test"))
	d := SHA256([]byte("test"))
	nodeH := HashNode(d, d)
	if leafH == nodeH {
		t.Error("leaf and node hashes must differ")
	}
}

func TestLeafAndNodeAreDeterministic(t *testing.T) {
	if HashLeaf([]byte("hello")) != HashLeaf([]byte("hello")) {
		t.Error("HashLeaf must be deterministic")
	}
	d := SHA256([]byte("x"))
	if HashNode(d, d) != HashNode(d, d) {
		t.Error("HashNode must be deterministic")
	}
}

func TestSHA512DiffersFromSHA256(t *testing.T) {
	input := []byte("test")
	h256 := SHA256(input)
	h512 := SHA512(input)
	if hex.EncodeToString(h256[:]) == hex.EncodeToString(h512[:32]) {
		t.Error("SHA-256 must differ from the first 32 bytes of SHA-512")
	}
}
