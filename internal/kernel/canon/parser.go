package canon

import (
	"github.com/certen/kernel-validator/internal/kernel/kernelerr"
)

type parser struct {
	src   []byte
	pos   int
	depth int
}

func newParser(src []byte) *parser {
	return &parser{src: src}
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *parser) advance() (byte, bool) {
	b, ok := p.peek()
	p.pos++
	return b, ok
}

func (p *parser) skipWhitespace() {
	for {
		b, ok := p.peek()
		if !ok {
			return
		}
		switch b {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func errInvalidSerialization() error {
	return kernelerr.New(kernelerr.InvalidSerialization)
}

func (p *parser) expect(want byte) error {
	b, ok := p.advance()
	if !ok || b != want {
		return errInvalidSerialization()
	}
	return nil
}

func (p *parser) literal(lit string) bool {
	end := p.pos + len(lit)
	if end > len(p.src) {
		return false
	}
	if string(p.src[p.pos:end]) != lit {
		return false
	}
	p.pos = end
	return true
}

func (p *parser) parseValue() (value, error) {
	p.skipWhitespace()
	b, ok := p.peek()
	if !ok {
		return value{}, errInvalidSerialization()
	}
	switch {
	case b == '"':
		s, err := p.parseString()
		if err != nil {
			return value{}, err
		}
		return value{kind: kindStr, str: s}, nil
	case b == '{':
		return p.parseObject()
	case b == '[':
		return p.parseArray()
	case b == 't':
		if p.literal("true") {
			return value{kind: kindBool, b: true}, nil
		}
		return value{}, errInvalidSerialization()
	case b == 'f':
		if p.literal("false") {
			return value{kind: kindBool, b: false}, nil
		}
		return value{}, errInvalidSerialization()
	case b == 'n':
		if p.literal("null") {
			return value{kind: kindNull}, nil
		}
		return value{}, errInvalidSerialization()
	default:
		// JSON number literals are constitutionally forbidden: numeric
		// values must be encoded as strings.
		return value{}, errInvalidSerialization()
	}
}

func (p *parser) parseString() ([]byte, error) {
	if err := p.expect('"'); err != nil {
		return nil, err
	}
	var out []byte
	for {
		b, ok := p.advance()
		if !ok {
			return nil, errInvalidSerialization()
		}
		switch b {
		case '"':
			return out, nil
		case '\\':
			esc, ok := p.advance()
			if !ok {
				return nil, errInvalidSerialization()
			}
			switch esc {
			case '"':
				out = append(out, '"')
			case '\\':
				out = append(out, '\\')
			case '/':
				out = append(out, '/')
			case 'b':
				out = append(out, 0x08)
			case 'f':
				out = append(out, 0x0C)
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'u':
				r, err := p.parseUnicodeEscape()
				if err != nil {
					return nil, err
				}
				out = appendUTF8(out, r)
			default:
				return nil, errInvalidSerialization()
			}
		default:
			if b < 0x20 {
				return nil, errInvalidSerialization()
			}
			out = append(out, b)
		}
	}
}

func (p *parser) parseUnicodeEscape() (rune, error) {
	if p.pos+4 > len(p.src) {
		return 0, errInvalidSerialization()
	}
	hex := p.src[p.pos : p.pos+4]
	var codepoint rune
	for _, c := range hex {
		d, ok := hexDigit(c)
		if !ok {
			return 0, errInvalidSerialization()
		}
		codepoint = codepoint<<4 | rune(d)
	}
	p.pos += 4
	return codepoint, nil
}

func hexDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}

// appendUTF8 encodes a code point as UTF-8 by hand. Lone surrogate halves
// (0xD800-0xDFFF) are not rejected: they are written in the three-byte
// form like any other basic-multilingual-plane value, never replaced
// with U+FFFD.
func appendUTF8(out []byte, r rune) []byte {
	switch {
	case r < 0x80:
		return append(out, byte(r))
	case r < 0x800:
		return append(out, byte(0xC0|r>>6), byte(0x80|r&0x3F))
	case r >= 0xD800 && r <= 0xDFFF:
		// Lone surrogate halves have no scalar encoding; fall through to
		// the three-byte form as the encoder below would for any value
		// in the basic multilingual plane.
		return append(out, byte(0xE0|r>>12), byte(0x80|(r>>6)&0x3F), byte(0x80|r&0x3F))
	case r < 0x10000:
		return append(out, byte(0xE0|r>>12), byte(0x80|(r>>6)&0x3F), byte(0x80|r&0x3F))
	default:
		return append(out, byte(0xF0|r>>18), byte(0x80|(r>>12)&0x3F), byte(0x80|(r>>6)&0x3F), byte(0x80|r&0x3F))
	}
}

func isValidKeyByte(b byte, first bool) bool {
	if first {
		return b >= 'a' && b <= 'z'
	}
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') || b == '_'
}

func (p *parser) parseObject() (value, error) {
	if err := p.expect('{'); err != nil {
		return value{}, err
	}
	p.depth++
	if p.depth > MaxDepth {
		return value{}, errInvalidSerialization()
	}
	defer func() { p.depth-- }()

	var fields []field
	p.skipWhitespace()
	if b, ok := p.peek(); ok && b == '}' {
		p.pos++
		return value{kind: kindObject, fields: fields}, nil
	}

	for {
		if len(fields) >= MaxObjectFields {
			return value{}, errInvalidSerialization()
		}
		p.skipWhitespace()
		key, err := p.parseString()
		if err != nil {
			return value{}, err
		}
		if len(key) == 0 || !isValidKeyByte(key[0], true) {
			return value{}, errInvalidSerialization()
		}
		for _, b := range key[1:] {
			if !isValidKeyByte(b, false) {
				return value{}, errInvalidSerialization()
			}
		}
		for _, f := range fields {
			if string(f.key) == string(key) {
				return value{}, kernelerr.New(kernelerr.DuplicateKey)
			}
		}

		p.skipWhitespace()
		if err := p.expect(':'); err != nil {
			return value{}, err
		}
		p.skipWhitespace()
		v, err := p.parseValue()
		if err != nil {
			return value{}, err
		}
		fields = append(fields, field{key: key, val: v})
		p.skipWhitespace()

		b, ok := p.advance()
		if !ok {
			return value{}, errInvalidSerialization()
		}
		if b == ',' {
			continue
		}
		if b == '}' {
			break
		}
		return value{}, errInvalidSerialization()
	}
	return value{kind: kindObject, fields: fields}, nil
}

func (p *parser) parseArray() (value, error) {
	if err := p.expect('['); err != nil {
		return value{}, err
	}
	p.depth++
	if p.depth > MaxDepth {
		return value{}, errInvalidSerialization()
	}
	defer func() { p.depth-- }()

	var items []value
	p.skipWhitespace()
	if b, ok := p.peek(); ok && b == ']' {
		p.pos++
		return value{kind: kindArray, arr: items}, nil
	}

	for {
		if len(items) >= MaxArrayItems {
			return value{}, errInvalidSerialization()
		}
		p.skipWhitespace()
		v, err := p.parseValue()
		if err != nil {
			return value{}, err
		}
		items = append(items, v)
		p.skipWhitespace()

		b, ok := p.advance()
		if !ok {
			return value{}, errInvalidSerialization()
		}
		if b == ',' {
			continue
		}
		if b == ']' {
			break
		}
		return value{}, errInvalidSerialization()
	}
	return value{kind: kindArray, arr: items}, nil
}
