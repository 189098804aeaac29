package canon

import (
	"testing"

	"github.com/certen/kernel-validator/internal/kernel/hashing"
	"github.com/certen/kernel-validator/internal/kernel/kernelerr"
)

func wantKind(t *testing.T, err error, kind kernelerr.Kind) {
	t.Helper()
	kerr, ok := err.(*kernelerr.Error)
	if !ok || kerr.Kind != kind {
		t.Fatalf("got %v, want kind %v", err, kind)
	}
}

func TestEmptyObjectIsCanonical(t *testing.T) {
	out, err := Canonicalize([]byte("{}"))
	if err != nil || string(out) != "{}" {
		t.Fatalf("got %q, %v", out, err)
	}
}

func TestScrambledObjectSortsKeys(t *testing.T) {
	out, err := Canonicalize([]byte(`{"b":"2","a":"1"}`))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"a":"1","b":"2"}` {
		t.Fatalf("got %q", out)
	}
}

func TestThreeKeySortIsLexicographic(t *testing.T) {
	out, err := Canonicalize([]byte(`{"epoch":"3","bond":"2","amount":"1"}`))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"amount":"1","bond":"2","epoch":"3"}` {
		t.Fatalf("got %q", out)
	}
}

func TestWhitespaceIsStripped(t *testing.T) {
	out, err := Canonicalize([]byte("{ \"z\" : \"1\" , \"a\" : \"2\" }"))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"a":"2","z":"1"}` {
		t.Fatalf("got %q", out)
	}
}

// TestConstitutionalHashVector pins SHA-256 of the canonical form of a
// scrambled-key object. Any canonicalizer change that alters the output
// bytes breaks this assertion and signals a potential chain fork.
func TestConstitutionalHashVector(t *testing.T) {
	out, err := Canonicalize([]byte(`{"b":"2","a":"1"}`))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"a":"1","b":"2"}` {
		t.Fatalf("got %q", out)
	}
	got := hashing.SHA256(out)
	want := [32]byte{
		0x21, 0xf7, 0x6d, 0xfb, 0xfe, 0x6d, 0xfe, 0x21,
		0xf7, 0x62, 0x08, 0x0e, 0xf4, 0x84, 0x11, 0x2c,
		0xf2, 0x95, 0x29, 0x74, 0xce, 0xf3, 0x07, 0x41,
		0xfd, 0x19, 0x31, 0xe1, 0xc6, 0xd9, 0x21, 0x12,
	}
	if hashing.Digest(got) != hashing.Digest(want) {
		t.Fatalf("constitutional hash vector must be stable, got %x", got)
	}
}

func TestDuplicateKeyIsRejected(t *testing.T) {
	_, err := Canonicalize([]byte(`{"a":"1","a":"2"}`))
	wantKind(t, err, kernelerr.DuplicateKey)
}

func TestDuplicateKeyAtDepthIsRejected(t *testing.T) {
	_, err := Canonicalize([]byte(`{"outer":{"x":"1","x":"2"}}`))
	wantKind(t, err, kernelerr.DuplicateKey)
}

func TestJSONNumberLiteralIsRejected(t *testing.T) {
	_, err := Canonicalize([]byte(`{"amount":1000}`))
	wantKind(t, err, kernelerr.InvalidSerialization)
}

func TestNegativeNumberLiteralIsRejected(t *testing.T) {
	_, err := Canonicalize([]byte(`{"x":-1}`))
	wantKind(t, err, kernelerr.InvalidSerialization)
}

func TestFloatLiteralIsRejected(t *testing.T) {
	_, err := Canonicalize([]byte(`{"x":1.5}`))
	wantKind(t, err, kernelerr.InvalidSerialization)
}

func TestUnknownFieldRejectedBySchema(t *testing.T) {
	out, err := Canonicalize([]byte(`{"allowed":"1","rogue":"2"}`))
	if err != nil {
		t.Fatal(err)
	}
	wantKind(t, ValidateSchema(out, []string{"allowed"}), kernelerr.InvalidSerialization)
}

func TestMissingFieldRejectedBySchema(t *testing.T) {
	out, err := Canonicalize([]byte(`{"a":"1"}`))
	if err != nil {
		t.Fatal(err)
	}
	wantKind(t, ValidateSchema(out, []string{"a", "b"}), kernelerr.InvalidSerialization)
}

func TestExactSchemaMatchPasses(t *testing.T) {
	out, err := Canonicalize([]byte(`{"b":"2","a":"1"}`))
	if err != nil {
		t.Fatal(err)
	}
	if err := ValidateSchema(out, []string{"a", "b"}); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
}

func TestUppercaseKeyIsRejected(t *testing.T) {
	_, err := Canonicalize([]byte(`{"A":"1"}`))
	wantKind(t, err, kernelerr.InvalidSerialization)
}

func TestKeyWithLeadingDigitIsRejected(t *testing.T) {
	_, err := Canonicalize([]byte(`{"1key":"1"}`))
	wantKind(t, err, kernelerr.InvalidSerialization)
}

func TestKeyWithLeadingUnderscoreIsRejected(t *testing.T) {
	_, err := Canonicalize([]byte(`{"_key":"1"}`))
	wantKind(t, err, kernelerr.InvalidSerialization)
}

func TestKeyWithHyphenIsRejected(t *testing.T) {
	_, err := Canonicalize([]byte(`{"key-name":"1"}`))
	wantKind(t, err, kernelerr.InvalidSerialization)
}

func TestValidateNumericString(t *testing.T) {
	if err := ValidateNumericString([]byte("0")); err != nil {
		t.Fatal(err)
	}
	if err := ValidateNumericString([]byte("1000000000000")); err != nil {
		t.Fatal(err)
	}
	wantKind(t, ValidateNumericString([]byte("01")), kernelerr.InvalidSerialization)
	wantKind(t, ValidateNumericString([]byte("-1")), kernelerr.InvalidSerialization)
	wantKind(t, ValidateNumericString([]byte("1.5")), kernelerr.InvalidSerialization)
	wantKind(t, ValidateNumericString([]byte("")), kernelerr.InvalidSerialization)
}

func TestNestingBeyondMaxDepthRejected(t *testing.T) {
	var s []byte
	for i := 0; i < 33; i++ {
		s = append(s, []byte(`{"a":`)...)
	}
	s = append(s, []byte(`"v"`)...)
	for i := 0; i < 33; i++ {
		s = append(s, '}')
	}
	_, err := Canonicalize(s)
	wantKind(t, err, kernelerr.InvalidSerialization)
}

func TestObjectAtMaxDepthIsAccepted(t *testing.T) {
	var s []byte
	for i := 0; i < 31; i++ {
		s = append(s, []byte(`{"a":`)...)
	}
	s = append(s, []byte(`"v"`)...)
	for i := 0; i < 31; i++ {
		s = append(s, '}')
	}
	if _, err := Canonicalize(s); err != nil {
		t.Fatalf("depth 31 must be accepted, got %v", err)
	}
}

func TestRawControlCharInStringIsRejected(t *testing.T) {
	_, err := Canonicalize([]byte("\"hello\nworld\""))
	wantKind(t, err, kernelerr.InvalidSerialization)
}

func TestEscapedNewlineIsPreserved(t *testing.T) {
	out, err := Canonicalize([]byte(`"hello\nworld"`))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"hello\nworld"` {
		t.Fatalf("got %q", out)
	}
}

func TestTrailingContentIsRejected(t *testing.T) {
	_, err := Canonicalize([]byte("{}{}"))
	wantKind(t, err, kernelerr.InvalidSerialization)
	_, err = Canonicalize([]byte(`"x" garbage`))
	wantKind(t, err, kernelerr.InvalidSerialization)
}

func TestBOMIsRejected(t *testing.T) {
	_, err := Canonicalize([]byte("\xEF\xBB\xBF{}"))
	wantKind(t, err, kernelerr.InvalidSerialization)
}

func TestNestedObjectWithScrambledKeysAtEachLevel(t *testing.T) {
	out, err := Canonicalize([]byte(`{"outer_z":{"b":"2","a":"1"},"outer_a":{"y":"9","x":"8"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"outer_a":{"x":"8","y":"9"},"outer_z":{"a":"1","b":"2"}}` {
		t.Fatalf("got %q", out)
	}
}

func TestArrayPreservesInsertionOrder(t *testing.T) {
	out, err := Canonicalize([]byte(`{"items":["b","a","c"]}`))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"items":["b","a","c"]}` {
		t.Fatalf("got %q", out)
	}
}
