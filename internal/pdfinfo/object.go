package pdfinfo

import (
	"bytes"
	"fmt"
	"strconv"
)

// kind identifies the type of a PDF object.
type kind int

const (
	kindNull kind = iota
	kindBool
	kindInt
	kindFloat
	kindString
	kindName
	kindArray
	kindDict
	kindStream
	kindRef
)

// object holds any PDF object value. Stream payloads are kept raw; the
// inspector only needs their dictionaries.
type object struct {
	kind  kind
	b     bool
	i     int64
	f     float64
	str   []byte
	name  string
	array []*object
	dict  dict
	ref   int
}

func (o *object) number() (float64, bool) {
	if o == nil {
		return 0, false
	}
	switch o.kind {
	case kindInt:
		return float64(o.i), true
	case kindFloat:
		return o.f, true
	}
	return 0, false
}

type dict map[string]*object

func (d dict) name(key string) string {
	if o, ok := d[key]; ok && o.kind == kindName {
		return o.name
	}
	return ""
}

func (d dict) text(key string) string {
	if o, ok := d[key]; ok && o.kind == kindString {
		return decodeText(o.str)
	}
	return ""
}

// decodeText handles the UTF-16BE form of PDF text strings.
func decodeText(b []byte) string {
	if len(b) < 2 || b[0] != 0xFE || b[1] != 0xFF {
		return string(b)
	}
	var rs []rune
	for i := 2; i+1 < len(b); i += 2 {
		rs = append(rs, rune(b[i])<<8|rune(b[i+1]))
	}
	return string(rs)
}

const maxNesting = 100

// parser is a recursive-descent PDF object parser.
type parser struct {
	data  []byte
	pos   int
	depth int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c == '%' {
			for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
				p.pos++
			}
		} else if isSpace(c) {
			p.pos++
		} else {
			return
		}
	}
}

func (p *parser) match(s string) bool {
	end := p.pos + len(s)
	if end > len(p.data) || string(p.data[p.pos:end]) != s {
		return false
	}
	p.pos = end
	return true
}

func isDelim(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func (p *parser) parse() (*object, error) {
	if p.depth > maxNesting {
		return nil, fmt.Errorf("exceeded maximum nesting depth")
	}
	p.depth++
	defer func() { p.depth-- }()

	p.skipSpace()
	if p.pos >= len(p.data) {
		return &object{kind: kindNull}, nil
	}
	c := p.data[p.pos]
	switch {
	case c == 'n' && p.match("null"):
		return &object{kind: kindNull}, nil
	case c == 't' && p.match("true"):
		return &object{kind: kindBool, b: true}, nil
	case c == 'f' && p.match("false"):
		return &object{kind: kindBool}, nil
	case c == '(':
		return p.literal(), nil
	case c == '<' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '<':
		return p.dictOrStream()
	case c == '<':
		return p.hex(), nil
	case c == '/':
		return p.nameObj(), nil
	case c == '[':
		return p.arrayObj()
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return p.numberOrRef(), nil
	}
	// unknown keyword
	p.token()
	return &object{kind: kindNull}, nil
}

func (p *parser) literal() *object {
	p.pos++
	var buf bytes.Buffer
	depth := 1
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		p.pos++
		switch c {
		case '\\':
			if p.pos >= len(p.data) {
				continue
			}
			esc := p.data[p.pos]
			p.pos++
			switch esc {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b':
				buf.WriteByte('\b')
			case 'f':
				buf.WriteByte('\f')
			case '\r', '\n':
			default:
				if esc >= '0' && esc <= '7' {
					oct := int(esc - '0')
					for i := 0; i < 2 && p.pos < len(p.data); i++ {
						d := p.data[p.pos]
						if d < '0' || d > '7' {
							break
						}
						oct = oct*8 + int(d-'0')
						p.pos++
					}
					buf.WriteByte(byte(oct))
				} else {
					buf.WriteByte(esc)
				}
			}
		case '(':
			depth++
			buf.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				return &object{kind: kindString, str: buf.Bytes()}
			}
			buf.WriteByte(c)
		default:
			buf.WriteByte(c)
		}
	}
	return &object{kind: kindString, str: buf.Bytes()}
}

func (p *parser) hex() *object {
	p.pos++
	var buf bytes.Buffer
	var digits []byte
	for p.pos < len(p.data) && p.data[p.pos] != '>' {
		if c := p.data[p.pos]; !isSpace(c) {
			digits = append(digits, c)
		}
		p.pos++
	}
	p.pos++
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	for i := 0; i < len(digits); i += 2 {
		buf.WriteByte(hexVal(digits[i])<<4 | hexVal(digits[i+1]))
	}
	return &object{kind: kindString, str: buf.Bytes()}
}

func hexVal(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	}
	return 0
}

func (p *parser) nameObj() *object {
	p.pos++
	raw := p.token()
	if !bytes.ContainsRune([]byte(raw), '#') {
		return &object{kind: kindName, name: raw}
	}
	var buf bytes.Buffer
	for i := 0; i < len(raw); i++ {
		if raw[i] == '#' && i+2 < len(raw) {
			buf.WriteByte(hexVal(raw[i+1])<<4 | hexVal(raw[i+2]))
			i += 2
			continue
		}
		buf.WriteByte(raw[i])
	}
	return &object{kind: kindName, name: buf.String()}
}

func (p *parser) arrayObj() (*object, error) {
	p.pos++
	var arr []*object
	for {
		p.skipSpace()
		if p.pos >= len(p.data) {
			break
		}
		if p.data[p.pos] == ']' {
			p.pos++
			break
		}
		o, err := p.parse()
		if err != nil {
			return nil, err
		}
		arr = append(arr, o)
	}
	return &object{kind: kindArray, array: arr}, nil
}

func (p *parser) dictOrStream() (*object, error) {
	p.pos += 2
	d := make(dict)
	for {
		p.skipSpace()
		if p.pos >= len(p.data) {
			break
		}
		if p.match(">>") {
			break
		}
		if p.data[p.pos] != '/' {
			p.pos++
			continue
		}
		key := p.nameObj()
		val, err := p.parse()
		if err != nil {
			return nil, err
		}
		d[key.name] = val
	}

	p.skipSpace()
	if !p.match("stream") {
		return &object{kind: kindDict, dict: d}, nil
	}
	if p.pos < len(p.data) && p.data[p.pos] == '\r' {
		p.pos++
	}
	if p.pos < len(p.data) && p.data[p.pos] == '\n' {
		p.pos++
	}
	// Skip the payload. Indirect lengths are not resolved here, so fall back
	// to the endstream keyword.
	start := p.pos
	if l, ok := d["Length"]; ok && l.kind == kindInt && start+int(l.i) <= len(p.data) {
		p.pos = start + int(l.i)
	} else if end := bytes.Index(p.data[start:], []byte("endstream")); end >= 0 {
		p.pos = start + end
	} else {
		p.pos = len(p.data)
	}
	p.skipSpace()
	p.match("endstream")
	return &object{kind: kindStream, dict: d}, nil
}

func (p *parser) numberOrRef() *object {
	tok := p.token()
	n, errN := strconv.ParseInt(tok, 10, 64)
	if errN == nil {
		after := p.pos
		p.skipSpace()
		if g := p.token(); g != "" {
			if _, err := strconv.ParseInt(g, 10, 64); err == nil {
				p.skipSpace()
				if p.pos < len(p.data) && p.data[p.pos] == 'R' &&
					(p.pos+1 >= len(p.data) || isSpace(p.data[p.pos+1]) || isDelim(p.data[p.pos+1])) {
					p.pos++
					return &object{kind: kindRef, ref: int(n)}
				}
			}
		}
		p.pos = after
		return &object{kind: kindInt, i: n}
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return &object{kind: kindFloat, f: f}
	}
	return &object{kind: kindNull}
}

func (p *parser) token() string {
	start := p.pos
	for p.pos < len(p.data) && !isSpace(p.data[p.pos]) && !isDelim(p.data[p.pos]) {
		p.pos++
	}
	return string(p.data[start:p.pos])
}
