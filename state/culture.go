package state

import (
	"fmt"

	"github.com/hearthwood/annalist/save"
)

// Culture is one culture: pillars, traditions, language and the cultures
// it descends from.
type Culture struct {
	header

	Name       string         `json:"name"`
	Ethos      string         `json:"ethos,omitempty"`
	Heritage   string         `json:"heritage"`
	Martial    string         `json:"martial_custom"`
	Language   string         `json:"language"`
	Created    Date           `json:"created,omitzero"`
	Traditions []string       `json:"traditions,omitempty"`
	Parents    []Ref[Culture] `json:"parents,omitempty"`
}

func (c *Culture) refName() string { return c.Name }

// Kind returns the entity table the culture lives in.
func (*Culture) Kind() Kind { return KindCulture }

func (c *Culture) populate(raw *save.Object, st *State) error {
	var err error

	if c.Name, err = raw.GetString("name"); err != nil {
		return err
	}
	// Hybrid and divergent cultures have no ethos of their own.
	if v := raw.Get("ethos"); v != nil {
		c.Ethos, _ = v.AsString()
	}
	if c.Heritage, err = raw.GetString("heritage"); err != nil {
		return err
	}
	if c.Martial, err = raw.GetString("martial_custom"); err != nil {
		return err
	}
	if c.Language, err = raw.GetString("language"); err != nil {
		return err
	}
	if c.Created, err = dateField(raw, "created"); err != nil {
		return fmt.Errorf("created: %w", err)
	}
	if traditions := raw.Get("traditions"); traditions != nil {
		obj, err := traditions.AsObject()
		if err != nil {
			return fmt.Errorf("traditions: %w", err)
		}
		for _, item := range obj.Items() {
			tr, err := item.AsString()
			if err != nil {
				return fmt.Errorf("traditions: %w", err)
			}
			c.Traditions = append(c.Traditions, tr)
		}
	}
	if c.Parents, err = refList(raw, "parents", st.cultureRef); err != nil {
		return fmt.Errorf("parents: %w", err)
	}
	return nil
}
