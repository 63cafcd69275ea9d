package save

import (
	"fmt"
	"sort"
	"strconv"
)

// Type represents save value types.
type Type uint8

const (
	TypeString Type = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeObject
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value represents a single save value: a scalar or a nested Object.
// Values are built by the front-ends and never mutated afterwards.
type Value struct {
	typ Type

	// Scalar values (only one valid based on typ)
	strVal   string
	intVal   int64
	floatVal float64
	boolVal  bool

	// Container value
	objVal *Object
}

// Field is a key-value pair inside an Object. Field order is the order of
// first appearance in the input.
type Field struct {
	Key   string
	Value *Value
}

// Object is a map-like, sequence-like, or hybrid container. Fields hold the
// keyed entries, Items the bare sequence entries; either may be empty.
type Object struct {
	name   string
	fields []Field
	index  map[string]int
	items  []*Value
}

// ============================================================
// Constructors
// ============================================================

// NewString creates a string value.
func NewString(s string) *Value { return &Value{typ: TypeString, strVal: s} }

// NewInt creates an integer value.
func NewInt(i int64) *Value { return &Value{typ: TypeInt, intVal: i} }

// NewFloat creates a float value.
func NewFloat(f float64) *Value { return &Value{typ: TypeFloat, floatVal: f} }

// NewBool creates a boolean value.
func NewBool(b bool) *Value { return &Value{typ: TypeBool, boolVal: b} }

// NewObjectValue wraps an Object as a value.
func NewObjectValue(o *Object) *Value { return &Value{typ: TypeObject, objVal: o} }

// NewObject creates an empty named object.
func NewObject(name string) *Object { return &Object{name: name} }

// ============================================================
// Value accessors
// ============================================================

// Type returns the value's type tag.
func (v *Value) Type() Type { return v.typ }

// AsString returns the value rendered as a string. Scalars of any type
// convert; objects do not.
func (v *Value) AsString() (string, error) {
	switch v.typ {
	case TypeString:
		return v.strVal, nil
	case TypeInt:
		return strconv.FormatInt(v.intVal, 10), nil
	case TypeFloat:
		return strconv.FormatFloat(v.floatVal, 'f', -1, 64), nil
	case TypeBool:
		if v.boolVal {
			return "yes", nil
		}
		return "no", nil
	default:
		return "", fmt.Errorf("save: expected string, got %s", v.typ)
	}
}

// AsInt returns the value as an integer. Strings that parse as integers and
// floats with no fractional part convert as well.
func (v *Value) AsInt() (int64, error) {
	switch v.typ {
	case TypeInt:
		return v.intVal, nil
	case TypeFloat:
		if v.floatVal == float64(int64(v.floatVal)) {
			return int64(v.floatVal), nil
		}
		return 0, fmt.Errorf("save: float %v has a fractional part", v.floatVal)
	case TypeString:
		i, err := strconv.ParseInt(v.strVal, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("save: expected int, got string %q", v.strVal)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("save: expected int, got %s", v.typ)
	}
}

// AsFloat returns the value as a float. Integers and numeric strings convert.
func (v *Value) AsFloat() (float64, error) {
	switch v.typ {
	case TypeFloat:
		return v.floatVal, nil
	case TypeInt:
		return float64(v.intVal), nil
	case TypeString:
		f, err := strconv.ParseFloat(v.strVal, 64)
		if err != nil {
			return 0, fmt.Errorf("save: expected float, got string %q", v.strVal)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("save: expected float, got %s", v.typ)
	}
}

// AsBool returns the value as a boolean. The strings "yes" and "no" convert.
func (v *Value) AsBool() (bool, error) {
	switch v.typ {
	case TypeBool:
		return v.boolVal, nil
	case TypeString:
		switch v.strVal {
		case "yes":
			return true, nil
		case "no":
			return false, nil
		}
	}
	return false, fmt.Errorf("save: expected bool, got %s", v.typ)
}

// AsID returns the value as an unsigned entity identifier.
func (v *Value) AsID() (uint64, error) {
	switch v.typ {
	case TypeInt:
		if v.intVal < 0 {
			return 0, fmt.Errorf("save: negative id %d", v.intVal)
		}
		return uint64(v.intVal), nil
	case TypeString:
		id, err := strconv.ParseUint(v.strVal, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("save: expected id, got string %q", v.strVal)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("save: expected id, got %s", v.typ)
	}
}

// AsObject returns the contained object.
func (v *Value) AsObject() (*Object, error) {
	if v.typ != TypeObject {
		return nil, fmt.Errorf("save: expected object, got %s", v.typ)
	}
	return v.objVal, nil
}

// Equal reports whether two values have the same shape and content.
// Object field order is significant; item order is significant.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TypeString:
		return v.strVal == o.strVal
	case TypeInt:
		return v.intVal == o.intVal
	case TypeFloat:
		return v.floatVal == o.floatVal
	case TypeBool:
		return v.boolVal == o.boolVal
	case TypeObject:
		return v.objVal.Equal(o.objVal)
	}
	return false
}

// ============================================================
// Object accessors
// ============================================================

// Name returns the key under which this object appeared, or "" for
// anonymous sequence entries.
func (o *Object) Name() string { return o.name }

// Get returns the value stored under key, or nil if absent.
func (o *Object) Get(key string) *Value {
	if o.index == nil {
		return nil
	}
	i, ok := o.index[key]
	if !ok {
		return nil
	}
	return o.fields[i].Value
}

// GetObject returns the object stored under key. Missing keys and
// non-object values are both errors.
func (o *Object) GetObject(key string) (*Object, error) {
	v := o.Get(key)
	if v == nil {
		return nil, fmt.Errorf("save: missing key %q in %q", key, o.name)
	}
	return v.AsObject()
}

// GetString returns the string stored under key.
func (o *Object) GetString(key string) (string, error) {
	v := o.Get(key)
	if v == nil {
		return "", fmt.Errorf("save: missing key %q in %q", key, o.name)
	}
	return v.AsString()
}

// GetInt returns the integer stored under key.
func (o *Object) GetInt(key string) (int64, error) {
	v := o.Get(key)
	if v == nil {
		return 0, fmt.Errorf("save: missing key %q in %q", key, o.name)
	}
	return v.AsInt()
}

// GetID returns the identifier stored under key.
func (o *Object) GetID(key string) (uint64, error) {
	v := o.Get(key)
	if v == nil {
		return 0, fmt.Errorf("save: missing key %q in %q", key, o.name)
	}
	return v.AsID()
}

// Fields returns the keyed entries in order of first appearance.
func (o *Object) Fields() []Field { return o.fields }

// Keys returns the field keys in order of first appearance.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.fields))
	for i, f := range o.fields {
		keys[i] = f.Key
	}
	return keys
}

// Items returns the bare sequence entries in input order.
func (o *Object) Items() []*Value { return o.items }

// Index returns the i-th sequence entry, or nil if out of range.
func (o *Object) Index(i int) *Value {
	if i < 0 || i >= len(o.items) {
		return nil
	}
	return o.items[i]
}

// Len returns the number of sequence entries.
func (o *Object) Len() int { return len(o.items) }

// FieldLen returns the number of keyed entries.
func (o *Object) FieldLen() int { return len(o.fields) }

// IsEmpty reports whether the object has neither fields nor items.
func (o *Object) IsEmpty() bool { return len(o.fields) == 0 && len(o.items) == 0 }

// Equal reports whether two objects have the same fields and items.
func (o *Object) Equal(other *Object) bool {
	if o == nil || other == nil {
		return o == other
	}
	if len(o.fields) != len(other.fields) || len(o.items) != len(other.items) {
		return false
	}
	for i, f := range o.fields {
		g := other.fields[i]
		if f.Key != g.Key || !f.Value.Equal(g.Value) {
			return false
		}
	}
	for i, it := range o.items {
		if !it.Equal(other.items[i]) {
			return false
		}
	}
	return true
}

// setField stores v under key. A repeated key replaces the earlier value in
// place, keeping the original field position.
func (o *Object) setField(key string, v *Value) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[key]; ok {
		o.fields[i].Value = v
		return
	}
	o.index[key] = len(o.fields)
	o.fields = append(o.fields, Field{Key: key, Value: v})
}

// push appends a bare sequence entry.
func (o *Object) push(v *Value) { o.items = append(o.items, v) }

// fold moves purely numeric field keys into the item sequence. Saves write
// hybrid blocks like { 2 0=7548 1=2096 } where the keyed entries are really
// positional; after folding such a block reads as a plain sequence. Pure
// maps with numeric keys (id tables) are left alone, so folding only fires
// when the object already carries bare items.
func (o *Object) fold() {
	if len(o.fields) == 0 || len(o.items) == 0 {
		return
	}
	type slot struct {
		idx int
		v   *Value
	}
	var folded []slot
	kept := o.fields[:0]
	for _, f := range o.fields {
		idx, err := strconv.Atoi(f.Key)
		if err != nil || idx < 0 {
			kept = append(kept, f)
			continue
		}
		folded = append(folded, slot{idx, f.Value})
		delete(o.index, f.Key)
	}
	if len(folded) == 0 {
		return
	}
	// Indexes fold in ascending order. An index inside the sequence slots
	// in before the bare items already there; an index at or past the end
	// appends, so gapped blocks like { 1 5=9 } never leave holes.
	sort.SliceStable(folded, func(i, j int) bool { return folded[i].idx < folded[j].idx })
	for _, s := range folded {
		if s.idx < len(o.items) {
			o.items = append(o.items, nil)
			copy(o.items[s.idx+1:], o.items[s.idx:])
			o.items[s.idx] = s.v
		} else {
			o.items = append(o.items, s.v)
		}
	}
	o.fields = kept
	o.index = make(map[string]int, len(kept))
	for i, f := range kept {
		o.index[f.Key] = i
	}
}
