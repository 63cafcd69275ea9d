package save

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"
)

// Resolver maps 16-bit binary field tokens to field names. A Resolver is
// immutable after construction and safe for concurrent use.
//
// Token tables are not distributed with the games, so an empty Resolver is
// a valid state: binary parsing still works, unresolved tokens just surface
// as placeholder keys and warnings.
type Resolver struct {
	names map[uint16]string
}

// NewResolver builds a resolver from an explicit token table.
func NewResolver(names map[uint16]string) *Resolver {
	m := make(map[uint16]string, len(names))
	for tok, name := range names {
		m[tok] = name
	}
	return &Resolver{names: m}
}

// LoadTokens reads a token listing with one "name token" pair per line,
// e.g. "meta_data 10243". Blank lines and lines starting with # are
// skipped.
func LoadTokens(r io.Reader) (*Resolver, error) {
	names := make(map[uint16]string)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		name, num, ok := strings.Cut(text, " ")
		if !ok {
			return nil, fmt.Errorf("save: token line %d: expected \"name token\", got %q", line, text)
		}
		tok, err := strconv.ParseUint(strings.TrimSpace(num), 10, 16)
		if err != nil {
			return nil, fmt.Errorf("save: token line %d: bad token %q", line, num)
		}
		names[uint16(tok)] = name
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("save: read tokens: %w", err)
	}
	return &Resolver{names: names}, nil
}

// Resolve returns the field name for a token.
func (r *Resolver) Resolve(tok uint16) (string, bool) {
	if r == nil {
		return "", false
	}
	name, ok := r.names[tok]
	return name, ok
}

// Empty reports whether the resolver knows no tokens at all.
func (r *Resolver) Empty() bool { return r == nil || len(r.names) == 0 }

// Len returns the number of known tokens.
func (r *Resolver) Len() int {
	if r == nil {
		return 0
	}
	return len(r.names)
}

var defaultResolver atomic.Pointer[Resolver]

// Default returns the process-wide resolver. Before SetDefault is called it
// is an empty resolver.
func Default() *Resolver {
	if r := defaultResolver.Load(); r != nil {
		return r
	}
	return &Resolver{}
}

// SetDefault installs the process-wide resolver used when parsing binary
// sections without an explicit one.
func SetDefault(r *Resolver) { defaultResolver.Store(r) }
