package canon

import (
	"bytes"

	"github.com/certen/kernel-validator/internal/kernel/kernelerr"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Canonicalize parses input as JSON under the kernel's restricted profile
// and re-emits it as canonical RFC 8785 bytes: sorted object keys,
// forbidden number literals, forbidden duplicate keys, bounded nesting and
// size. It is pure: no I/O, no randomness, no environment reads, no clock.
func Canonicalize(input []byte) ([]byte, error) {
	if len(input) > MaxInputBytes {
		return nil, kernelerr.New(kernelerr.InvalidSerialization)
	}
	if bytes.HasPrefix(input, utf8BOM) {
		return nil, kernelerr.New(kernelerr.InvalidSerialization)
	}

	p := newParser(input)
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	p.skipWhitespace()
	if p.pos != len(p.src) {
		return nil, kernelerr.New(kernelerr.InvalidSerialization)
	}

	out := make([]byte, 0, len(input))
	return emit(v, out), nil
}

// ValidateSchema checks that a canonical JSON object's top-level keys are
// exactly allowedKeys — no extras, none missing. Call it after
// Canonicalize; schema enforcement is a separate concern from
// canonicalization itself.
func ValidateSchema(canonical []byte, allowedKeys []string) error {
	p := newParser(canonical)
	v, err := p.parseValue()
	if err != nil {
		return kernelerr.New(kernelerr.InvalidSerialization)
	}
	if v.kind != kindObject {
		return kernelerr.New(kernelerr.InvalidSerialization)
	}

	allowed := make(map[string]bool, len(allowedKeys))
	for _, k := range allowedKeys {
		allowed[k] = true
	}
	for _, f := range v.fields {
		if !allowed[string(f.key)] {
			return kernelerr.New(kernelerr.InvalidSerialization)
		}
	}
	present := make(map[string]bool, len(v.fields))
	for _, f := range v.fields {
		present[string(f.key)] = true
	}
	for _, k := range allowedKeys {
		if !present[k] {
			return kernelerr.New(kernelerr.InvalidSerialization)
		}
	}
	return nil
}

// ValidateNumericString checks s against the numeric-string protocol
// `^(0|[1-9][0-9]*)$`: no leading zeros, no sign, no decimal, no exponent.
func ValidateNumericString(s []byte) error {
	if len(s) == 0 {
		return kernelerr.New(kernelerr.InvalidSerialization)
	}
	if len(s) == 1 && s[0] == '0' {
		return nil
	}
	if s[0] < '1' || s[0] > '9' {
		return kernelerr.New(kernelerr.InvalidSerialization)
	}
	for _, b := range s[1:] {
		if b < '0' || b > '9' {
			return kernelerr.New(kernelerr.InvalidSerialization)
		}
	}
	return nil
}
