package state

import (
	"fmt"
	"strings"

	"github.com/hearthwood/annalist/save"
)

// Faith is one faith of a religion: its tenets and doctrines, fervor and
// religious head title.
type Faith struct {
	header

	Name      string     `json:"name"`
	Tenets    []string   `json:"tenets,omitempty"`
	Doctrines []string   `json:"doctrines,omitempty"`
	Fervor    float64    `json:"fervor"`
	Head      Ref[Title] `json:"religious_head,omitzero"`
}

func (f *Faith) refName() string { return f.Name }

// Kind returns the entity table the faith lives in.
func (*Faith) Kind() Kind { return KindFaith }

// HeadCharacter resolves the religious head title to the character
// currently holding it.
func (f *Faith) HeadCharacter() Ref[Character] {
	if !f.Head.Valid() {
		return Ref[Character]{}
	}
	title, err := f.Head.Get()
	if err != nil {
		return Ref[Character]{}
	}
	return title.Holder()
}

func (f *Faith) populate(raw *save.Object, st *State) error {
	var err error

	// Custom faiths carry a name, stock ones only their template key.
	if v := raw.Get("name"); v != nil {
		f.Name, _ = v.AsString()
	} else if f.Name, err = raw.GetString("template"); err != nil {
		return err
	}
	if doctrines := raw.Get("doctrine"); doctrines != nil {
		obj, err := doctrines.AsObject()
		if err != nil {
			return fmt.Errorf("doctrine: %w", err)
		}
		for _, item := range obj.Items() {
			doc, err := item.AsString()
			if err != nil {
				return fmt.Errorf("doctrine: %w", err)
			}
			// The save stores tenets in the same list as doctrines.
			if strings.Contains(doc, "tenet") {
				f.Tenets = append(f.Tenets, doc)
			} else {
				f.Doctrines = append(f.Doctrines, doc)
			}
		}
	}
	if v := raw.Get("fervor"); v != nil {
		if f.Fervor, err = currencyScalar(v); err != nil {
			return fmt.Errorf("fervor: %w", err)
		}
	}
	if f.Head, err = optionalRef(raw, "religious_head", st.titleRef); err != nil {
		return fmt.Errorf("religious_head: %w", err)
	}
	return nil
}
