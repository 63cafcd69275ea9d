package save

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Section is one top-level block of a save: a name plus its still-unparsed
// body. Bounding a section is cheap; the tree is only built on Parse.
type Section struct {
	name string
	enc  Encoding
	body []byte
	res  *Resolver
}

// Name returns the section's top-level key.
func (s *Section) Name() string { return s.name }

// Encoding returns the encoding the body is stored in.
func (s *Section) Encoding() Encoding { return s.enc }

// Parse builds the section's value tree. A body error leaves the reader
// usable; later sections were bounded independently.
func (s *Section) Parse() (*ParseResult, error) {
	if s.enc == EncodingBinary {
		return ParseBinary(s.name, s.body, s.res)
	}
	return ParseText(s.name, s.body)
}

// Skip discards the section. The body was bounded without building a tree,
// so skipping costs nothing further.
func (s *Section) Skip() {}

// SectionReader walks a payload's top-level sections in order, exactly
// once each. Scalar noise between sections, such as checksum lines and
// version fields, is passed over.
type SectionReader struct {
	data []byte
	pos  int
	enc  Encoding
	res  *Resolver
	err  error
}

// NewSectionReader creates a reader over a raw payload. Binary field
// tokens resolve through res; pass nil for the process default.
func NewSectionReader(data []byte, enc Encoding, res *Resolver) *SectionReader {
	if res == nil {
		res = Default()
	}
	return &SectionReader{data: data, enc: enc, res: res}
}

// Next returns the next section, or io.EOF when the payload is exhausted.
// A malformed section header is fatal: the reader cannot find the next
// boundary and keeps returning the same error.
func (r *SectionReader) Next() (*Section, error) {
	if r.err != nil {
		return nil, r.err
	}
	var sec *Section
	var err error
	if r.enc == EncodingBinary {
		sec, err = r.nextBinary()
	} else {
		sec, err = r.nextText()
	}
	if err != nil {
		r.err = err
		return nil, err
	}
	return sec, nil
}

// ============================================================
// Text scanning
// ============================================================

func (r *SectionReader) nextText() (*Section, error) {
	for {
		r.skipTextSpace()
		if r.pos >= len(r.data) {
			return nil, io.EOF
		}
		start := r.pos
		c := r.data[r.pos]
		if c == '{' || c == '}' || c == '=' {
			return nil, structural(start, "unexpected %q between sections", string(c))
		}
		name, err := r.textToken()
		if err != nil {
			return nil, err
		}
		r.skipTextSpace()
		if r.pos >= len(r.data) || r.data[r.pos] != '=' {
			continue // stray scalar, e.g. a checksum line
		}
		r.pos++
		r.skipTextSpace()
		if r.pos >= len(r.data) {
			return nil, structural(r.pos, "dangling = after %q", name)
		}
		if r.data[r.pos] != '{' {
			// Top-level scalar field, not a section.
			if _, err := r.textToken(); err != nil {
				return nil, err
			}
			continue
		}
		open := r.pos
		end, err := r.matchBrace(open)
		if err != nil {
			return nil, err
		}
		r.pos = end + 1
		return &Section{name: name, enc: r.enc, body: r.data[open+1 : end], res: r.res}, nil
	}
}

func (r *SectionReader) skipTextSpace() {
	for r.pos < len(r.data) {
		switch r.data[r.pos] {
		case ' ', '\t', '\r', '\n':
			r.pos++
		case '#':
			for r.pos < len(r.data) && r.data[r.pos] != '\n' {
				r.pos++
			}
		default:
			return
		}
	}
}

func (r *SectionReader) textToken() (string, error) {
	if r.data[r.pos] == '"' {
		start := r.pos
		r.pos++
		for r.pos < len(r.data) && r.data[r.pos] != '"' {
			r.pos++
		}
		if r.pos >= len(r.data) {
			return "", structural(start, "unterminated string")
		}
		r.pos++
		return string(r.data[start+1 : r.pos-1]), nil
	}
	start := r.pos
	for r.pos < len(r.data) {
		switch r.data[r.pos] {
		case ' ', '\t', '\r', '\n', '{', '}', '=', '"', '#':
			return string(r.data[start:r.pos]), nil
		}
		r.pos++
	}
	return string(r.data[start:]), nil
}

// matchBrace finds the close brace matching the open brace at pos, honoring
// strings and comments, without building any values.
func (r *SectionReader) matchBrace(pos int) (int, error) {
	depth := 0
	i := pos
	for i < len(r.data) {
		switch r.data[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		case '"':
			i++
			for i < len(r.data) && r.data[i] != '"' {
				i++
			}
			if i >= len(r.data) {
				return 0, structural(pos, "unterminated string in section body")
			}
		case '#':
			for i < len(r.data) && r.data[i] != '\n' {
				i++
			}
		}
		i++
	}
	return 0, structural(pos, "unterminated section body")
}

// ============================================================
// Binary scanning
// ============================================================

func (r *SectionReader) nextBinary() (*Section, error) {
	for {
		if r.pos >= len(r.data) {
			return nil, io.EOF
		}
		start := r.pos
		name, ok, err := r.binToken()
		if err != nil {
			return nil, err
		}
		if !ok {
			continue // scalar noise between sections
		}
		tok, err := r.peekU16()
		if err != nil || tok != binEqual {
			continue // bare token, not a section header
		}
		r.pos += 2
		tok, err = r.peekU16()
		if err != nil {
			return nil, structural(start, "dangling = after %q", name)
		}
		if tok != binOpen {
			// Top-level scalar field: skip its payload record.
			if _, _, err := r.binToken(); err != nil {
				return nil, err
			}
			continue
		}
		r.pos += 2
		open := r.pos
		end, err := binarySkip(r.data, open)
		if err != nil {
			return nil, err
		}
		r.pos = end
		return &Section{name: name, enc: r.enc, body: r.data[open : end-2], res: r.res}, nil
	}
}

// binToken consumes one record. It returns (name, true) when the record can
// serve as a section name: a field token or a string. Payload records are
// consumed and return ok=false. Structural tokens at top level are errors.
func (r *SectionReader) binToken() (string, bool, error) {
	start := r.pos
	tok, err := r.readU16()
	if err != nil {
		return "", false, err
	}
	switch tok {
	case binEqual, binOpen, binEnd:
		return "", false, structural(start, "unexpected structural token 0x%04X between sections", tok)
	case binI32, binU32, binF32:
		r.pos += 4
	case binI64, binU64, binF64:
		r.pos += 8
	case binBool:
		r.pos++
	case binRGB:
	case binQuoted, binUnquoted:
		n, err := r.readU16()
		if err != nil {
			return "", false, err
		}
		if r.pos+int(n) > len(r.data) {
			return "", false, structural(start, "truncated string record")
		}
		s := string(r.data[r.pos : r.pos+int(n)])
		r.pos += int(n)
		return s, true, nil
	default:
		name, ok := r.res.Resolve(tok)
		if !ok {
			name = fmt.Sprintf("0x%04X", tok)
		}
		return name, true, nil
	}
	if r.pos > len(r.data) {
		return "", false, structural(start, "truncated record")
	}
	return "", false, nil
}

func (r *SectionReader) readU16() (uint16, error) {
	v, err := r.peekU16()
	if err != nil {
		return 0, err
	}
	r.pos += 2
	return v, nil
}

func (r *SectionReader) peekU16() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, structural(r.pos, "truncated record")
	}
	return binary.LittleEndian.Uint16(r.data[r.pos:]), nil
}
