package state

import (
	"fmt"

	"github.com/hearthwood/annalist/save"
)

// Memory is one entry of a character's memory database: what happened,
// when, and who was involved in which role.
type Memory struct {
	header

	Type         string                    `json:"type"`
	Date         Date                      `json:"creation_date"`
	Participants map[string]Ref[Character] `json:"participants,omitempty"`
	Variables    map[string]string         `json:"variables,omitempty"`
}

func (m *Memory) refName() string { return m.Type }

// Kind returns the entity table the memory lives in.
func (*Memory) Kind() Kind { return KindMemory }

func (m *Memory) populate(raw *save.Object, st *State) error {
	var err error

	if m.Type, err = raw.GetString("type"); err != nil {
		return err
	}
	if m.Date, err = dateField(raw, "creation_date"); err != nil {
		return fmt.Errorf("creation_date: %w", err)
	}
	if v := raw.Get("participants"); v != nil {
		obj, err := v.AsObject()
		if err != nil {
			return fmt.Errorf("participants: %w", err)
		}
		m.Participants = make(map[string]Ref[Character], obj.FieldLen())
		for _, f := range obj.Fields() {
			id, err := f.Value.AsID()
			if err != nil {
				return fmt.Errorf("participants: %s: %w", f.Key, err)
			}
			m.Participants[f.Key] = st.characterRef(ID(id))
		}
	}
	if v := raw.Get("variables"); v != nil {
		if err := m.readVariables(v); err != nil {
			return fmt.Errorf("variables: %w", err)
		}
	}
	return nil
}

// readVariables flattens the memory's variable list. Each entry is a flag
// name plus a typed payload; the payload is kept in string form.
func (m *Memory) readVariables(v *save.Value) error {
	obj, err := v.AsObject()
	if err != nil {
		return err
	}
	entries := obj.Items()
	if data := obj.Get("data"); data != nil {
		if inner, err := data.AsObject(); err == nil {
			entries = inner.Items()
		}
	}
	for _, entry := range entries {
		eo, err := entry.AsObject()
		if err != nil {
			continue
		}
		flag, err := eo.GetString("flag")
		if err != nil {
			return err
		}
		if m.Variables == nil {
			m.Variables = make(map[string]string)
		}
		m.Variables[flag] = variableValue(eo)
	}
	return nil
}

func variableValue(entry *save.Object) string {
	data := entry.Get("data")
	if data == nil {
		return ""
	}
	obj, err := data.AsObject()
	if err != nil {
		s, _ := data.AsString()
		return s
	}
	for _, key := range []string{"key", "identity", "value", "flag"} {
		if v := obj.Get(key); v != nil {
			s, _ := v.AsString()
			return s
		}
	}
	return ""
}
