package save

import "strconv"

// ParseText parses the text encoding of one brace-balanced block body into
// an object named name. Comments (# to end of line) are allowed; rgb and
// hsv color headers are dropped so the color block parses as a plain
// sequence.
func ParseText(name string, data []byte) (*ParseResult, error) {
	p := &textParser{data: data, builder: newTreeBuilder(name)}
	if err := p.run(); err != nil {
		return nil, err
	}
	obj, err := p.builder.finish(p.pos)
	if err != nil {
		return nil, err
	}
	return &ParseResult{Object: obj}, nil
}

type textParser struct {
	data    []byte
	pos     int
	builder *treeBuilder
}

func (p *textParser) run() error {
	for {
		p.skipSpace()
		if p.pos >= len(p.data) {
			return nil
		}
		c := p.data[p.pos]
		switch c {
		case '{':
			p.pos++
			if err := p.builder.open(p.pos - 1); err != nil {
				return err
			}
		case '}':
			p.pos++
			if err := p.builder.close(p.pos - 1); err != nil {
				return err
			}
		case '=':
			p.pos++
			if err := p.builder.equals(p.pos - 1); err != nil {
				return err
			}
		case '"':
			s, err := p.quoted()
			if err != nil {
				return err
			}
			p.builder.scalar(NewString(s), s)
		default:
			word := p.word()
			if (word == "rgb" || word == "hsv") && p.peekOpen() {
				continue // color header, the block that follows is the value
			}
			p.builder.scalar(classifyScalar(word), word)
		}
	}
}

func (p *textParser) skipSpace() {
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		case '#':
			for p.pos < len(p.data) && p.data[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

// quoted consumes a double-quoted string. Save files do not escape quotes,
// so the string runs to the next double quote.
func (p *textParser) quoted() (string, error) {
	start := p.pos
	p.pos++
	for p.pos < len(p.data) {
		if p.data[p.pos] == '"' {
			s := string(p.data[start+1 : p.pos])
			p.pos++
			return s, nil
		}
		p.pos++
	}
	return "", structural(start, "unterminated string")
}

// word consumes an unquoted token up to whitespace or a structural byte.
func (p *textParser) word() string {
	start := p.pos
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case ' ', '\t', '\r', '\n', '{', '}', '=', '"', '#':
			return string(p.data[start:p.pos])
		}
		p.pos++
	}
	return string(p.data[start:])
}

func (p *textParser) peekOpen() bool {
	i := p.pos
	for i < len(p.data) {
		switch p.data[i] {
		case ' ', '\t', '\r', '\n':
			i++
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}

// classifyScalar types an unquoted token. Only plain decimal forms become
// numbers; dates like 750.1.1 and everything else stay strings.
func classifyScalar(word string) *Value {
	switch word {
	case "yes":
		return NewBool(true)
	case "no":
		return NewBool(false)
	}
	if !numericShape(word) {
		return NewString(word)
	}
	if i, err := strconv.ParseInt(word, 10, 64); err == nil {
		return NewInt(i)
	}
	if f, err := strconv.ParseFloat(word, 64); err == nil {
		return NewFloat(f)
	}
	return NewString(word)
}

func numericShape(word string) bool {
	if word == "" {
		return false
	}
	dots := 0
	for i := 0; i < len(word); i++ {
		c := word[i]
		switch {
		case c >= '0' && c <= '9':
		case c == '-' && i == 0:
		case c == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}
	return word != "-" && word != "." && word != "-."
}
