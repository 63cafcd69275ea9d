package state

import (
	"encoding/json"
	"strconv"
)

// RefEncoding selects how handles serialize.
type RefEncoding uint8

const (
	// RefDescriptor serializes a handle as {"id", "name", "subdir"},
	// resolving the target for its name.
	RefDescriptor RefEncoding = iota
	// RefPlainID serializes a handle as its bare numeric id.
	RefPlainID
)

var refEncoding = RefDescriptor

// SetRefEncoding selects the serialization form for all handles. Not safe
// to flip while marshalling runs concurrently.
func SetRefEncoding(e RefEncoding) { refEncoding = e }

// Ref is a cheap handle to an entity that may not have been built yet.
// The zero Ref is an absent reference.
type Ref[T any] struct {
	id   ID
	kind Kind
	get  func(ID) (*T, error)
	v    *T
}

func newRef[T any](id ID, kind Kind, get func(ID) (*T, error)) Ref[T] {
	return Ref[T]{id: id, kind: kind, get: get}
}

// ID returns the target's identifier without resolving it.
func (r Ref[T]) ID() ID { return r.id }

// Kind returns the target's table.
func (r Ref[T]) Kind() Kind { return r.kind }

// Valid reports whether the handle points anywhere at all.
func (r Ref[T]) Valid() bool { return r.get != nil }

// IsZero reports an absent handle; json's omitzero relies on it.
func (r Ref[T]) IsZero() bool { return !r.Valid() }

// Get resolves the handle, building the target on first access. The result
// is memoized on the handle.
func (r *Ref[T]) Get() (*T, error) {
	if r.v != nil {
		return r.v, nil
	}
	if r.get == nil {
		return nil, ErrUnknownID
	}
	v, err := r.get(r.id)
	if err != nil {
		return nil, err
	}
	r.v = v
	return v, nil
}

// refDescriptor is the serialized form of a resolvable handle. The kind
// doubles as the subdirectory rendered links point into.
type refDescriptor struct {
	ID   ID     `json:"id"`
	Name string `json:"name,omitempty"`
	Kind Kind   `json:"subdir"`
}

// MarshalJSON renders the handle per the encoding set with
// SetRefEncoding. An absent handle is null either way.
func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return []byte("null"), nil
	}
	if refEncoding == RefPlainID {
		return []byte(strconv.FormatUint(uint64(r.id), 10)), nil
	}
	d := refDescriptor{ID: r.id, Kind: r.kind}
	if v, err := r.Get(); err == nil {
		if named, ok := any(v).(interface{ refName() string }); ok {
			d.Name = named.refName()
		}
	}
	return json.Marshal(d)
}
