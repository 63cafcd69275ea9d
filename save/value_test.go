package save

import "testing"

// ============================================================
// Value Tests
// ============================================================

func TestValue_Conversions(t *testing.T) {
	tests := []struct {
		name string
		v    *Value
		want func(t *testing.T, v *Value)
	}{
		{"int to string", NewInt(42), func(t *testing.T, v *Value) {
			s, err := v.AsString()
			if err != nil || s != "42" {
				t.Errorf("got %q (%v)", s, err)
			}
		}},
		{"string to int", NewString("1444"), func(t *testing.T, v *Value) {
			i, err := v.AsInt()
			if err != nil || i != 1444 {
				t.Errorf("got %d (%v)", i, err)
			}
		}},
		{"int to float", NewInt(3), func(t *testing.T, v *Value) {
			f, err := v.AsFloat()
			if err != nil || f != 3.0 {
				t.Errorf("got %v (%v)", f, err)
			}
		}},
		{"whole float to int", NewFloat(12.0), func(t *testing.T, v *Value) {
			i, err := v.AsInt()
			if err != nil || i != 12 {
				t.Errorf("got %d (%v)", i, err)
			}
		}},
		{"fractional float not int", NewFloat(12.5), func(t *testing.T, v *Value) {
			if _, err := v.AsInt(); err == nil {
				t.Error("expected an error")
			}
		}},
		{"yes string to bool", NewString("yes"), func(t *testing.T, v *Value) {
			b, err := v.AsBool()
			if err != nil || !b {
				t.Errorf("got %v (%v)", b, err)
			}
		}},
		{"bool renders yes", NewBool(true), func(t *testing.T, v *Value) {
			s, err := v.AsString()
			if err != nil || s != "yes" {
				t.Errorf("got %q (%v)", s, err)
			}
		}},
		{"int to id", NewInt(3623), func(t *testing.T, v *Value) {
			id, err := v.AsID()
			if err != nil || id != 3623 {
				t.Errorf("got %d (%v)", id, err)
			}
		}},
		{"negative int not id", NewInt(-1), func(t *testing.T, v *Value) {
			if _, err := v.AsID(); err == nil {
				t.Error("expected an error")
			}
		}},
		{"text not id", NewString("k_england"), func(t *testing.T, v *Value) {
			if _, err := v.AsID(); err == nil {
				t.Error("expected an error")
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) { tt.want(t, tt.v) })
	}
}

func TestObject_Accessors(t *testing.T) {
	o := NewObject("test")
	o.setField("a", NewInt(1))
	o.setField("b", NewString("x"))
	o.push(NewInt(7))
	o.push(NewInt(9))

	if o.Get("missing") != nil {
		t.Error("missing key should be nil")
	}
	if _, err := o.GetString("missing"); err == nil {
		t.Error("GetString on missing key should error")
	}
	if o.Index(5) != nil {
		t.Error("out-of-range index should be nil")
	}
	if o.Len() != 2 || o.FieldLen() != 2 {
		t.Errorf("expected 2 items and 2 fields, got %d/%d", o.Len(), o.FieldLen())
	}
	if o.IsEmpty() {
		t.Error("object should not be empty")
	}
}

func TestObject_Equal(t *testing.T) {
	a := NewObject("x")
	a.setField("k", NewInt(1))
	a.push(NewString("s"))

	b := NewObject("different-name-still-equal")
	b.setField("k", NewInt(1))
	b.push(NewString("s"))

	if !a.Equal(b) {
		t.Error("structurally equal objects reported unequal")
	}

	b.setField("k", NewInt(2))
	if a.Equal(b) {
		t.Error("differing field values reported equal")
	}
}
