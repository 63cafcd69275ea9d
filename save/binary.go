package save

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Binary record tokens. Everything outside this set is a field-name token
// looked up through the Resolver.
const (
	binEqual    = 0x0001
	binOpen     = 0x0003
	binEnd      = 0x0004
	binI32      = 0x000C
	binF32      = 0x000D
	binBool     = 0x000E
	binQuoted   = 0x000F
	binU32      = 0x0014
	binUnquoted = 0x0017
	binF64      = 0x0167
	binRGB      = 0x0243
	binU64      = 0x029C
	binI64      = 0x0317
)

// ParseBinary parses the binary encoding of one block body into an object
// named name. Field-name tokens are resolved through res; pass nil to use
// the process default. Unresolved tokens become hexadecimal placeholder
// keys and a warning, never an error.
func ParseBinary(name string, data []byte, res *Resolver) (*ParseResult, error) {
	if res == nil {
		res = Default()
	}
	p := &binaryParser{data: data, res: res, builder: newTreeBuilder(name)}
	if err := p.run(); err != nil {
		return nil, err
	}
	obj, err := p.builder.finish(p.pos)
	if err != nil {
		return nil, err
	}
	return &ParseResult{Object: obj, Warnings: p.warnings}, nil
}

type binaryParser struct {
	data     []byte
	pos      int
	res      *Resolver
	builder  *treeBuilder
	warnings []Warning
}

func (p *binaryParser) run() error {
	for p.pos < len(p.data) {
		start := p.pos
		tok, err := p.u16()
		if err != nil {
			return err
		}
		switch tok {
		case binEqual:
			if err := p.builder.equals(start); err != nil {
				return err
			}
		case binOpen:
			if err := p.builder.open(start); err != nil {
				return err
			}
		case binEnd:
			if err := p.builder.close(start); err != nil {
				return err
			}
		case binRGB:
			// Color header. The block that follows carries the channels.
		case binI32:
			v, err := p.u32()
			if err != nil {
				return err
			}
			p.scalar(NewInt(int64(int32(v))))
		case binU32:
			v, err := p.u32()
			if err != nil {
				return err
			}
			p.scalar(NewInt(int64(v)))
		case binI64:
			v, err := p.u64()
			if err != nil {
				return err
			}
			p.scalar(NewInt(int64(v)))
		case binU64:
			v, err := p.u64()
			if err != nil {
				return err
			}
			p.scalar(NewInt(int64(v)))
		case binF32:
			v, err := p.u32()
			if err != nil {
				return err
			}
			f := float64(math.Float32frombits(v))
			p.scalar(NewFloat(f))
		case binF64:
			v, err := p.u64()
			if err != nil {
				return err
			}
			p.scalar(NewFloat(math.Float64frombits(v)))
		case binBool:
			if p.pos >= len(p.data) {
				return structural(start, "truncated bool record")
			}
			b := p.data[p.pos] != 0
			p.pos++
			p.scalar(NewBool(b))
		case binQuoted, binUnquoted:
			s, err := p.str()
			if err != nil {
				return err
			}
			p.builder.scalar(classifyBinaryString(s, tok), s)
		default:
			name, ok := p.res.Resolve(tok)
			if !ok {
				name = fmt.Sprintf("0x%04X", tok)
				p.warnings = append(p.warnings, Warning{
					Message: fmt.Sprintf("unresolved token 0x%04X", tok),
					Offset:  start,
				})
			}
			p.builder.scalar(NewString(name), name)
		}
	}
	return nil
}

func (p *binaryParser) scalar(v *Value) {
	s, _ := v.AsString()
	p.builder.scalar(v, s)
}

func (p *binaryParser) u16() (uint16, error) {
	if p.pos+2 > len(p.data) {
		return 0, structural(p.pos, "truncated record")
	}
	v := binary.LittleEndian.Uint16(p.data[p.pos:])
	p.pos += 2
	return v, nil
}

func (p *binaryParser) u32() (uint32, error) {
	if p.pos+4 > len(p.data) {
		return 0, structural(p.pos, "truncated record")
	}
	v := binary.LittleEndian.Uint32(p.data[p.pos:])
	p.pos += 4
	return v, nil
}

func (p *binaryParser) u64() (uint64, error) {
	if p.pos+8 > len(p.data) {
		return 0, structural(p.pos, "truncated record")
	}
	v := binary.LittleEndian.Uint64(p.data[p.pos:])
	p.pos += 8
	return v, nil
}

func (p *binaryParser) str() (string, error) {
	n, err := p.u16()
	if err != nil {
		return "", err
	}
	if p.pos+int(n) > len(p.data) {
		return "", structural(p.pos, "truncated string record")
	}
	s := string(p.data[p.pos : p.pos+int(n)])
	p.pos += int(n)
	return s, nil
}

// classifyBinaryString types an unquoted binary string the same way the
// text front-end types an unquoted word, so both encodings of one document
// agree on scalar types. Quoted strings stay strings in both.
func classifyBinaryString(s string, tok uint16) *Value {
	if tok == binQuoted {
		return NewString(s)
	}
	return classifyScalar(s)
}

// binarySkip walks records from pos, which must point just past an OPEN
// token, to just past the matching END. No tree is built.
func binarySkip(data []byte, pos int) (int, error) {
	depth := 1
	for pos < len(data) {
		if pos+2 > len(data) {
			return 0, structural(pos, "truncated record")
		}
		tok := binary.LittleEndian.Uint16(data[pos:])
		pos += 2
		switch tok {
		case binOpen:
			depth++
		case binEnd:
			depth--
			if depth == 0 {
				return pos, nil
			}
		case binI32, binU32, binF32:
			pos += 4
		case binI64, binU64, binF64:
			pos += 8
		case binBool:
			pos++
		case binQuoted, binUnquoted:
			if pos+2 > len(data) {
				return 0, structural(pos, "truncated string record")
			}
			pos += 2 + int(binary.LittleEndian.Uint16(data[pos:]))
		}
		if pos > len(data) {
			return 0, structural(len(data), "truncated record")
		}
	}
	return 0, structural(pos, "unterminated block")
}
