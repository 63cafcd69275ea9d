package state

import (
	"fmt"

	"github.com/hearthwood/annalist/save"
)

// Dynasty is a dynasty house: name, legacy perks, prestige and notable
// leaders. Members counts every ingested character belonging to the house.
type Dynasty struct {
	header

	Name          string           `json:"name"`
	FoundDate     Date             `json:"found_date,omitzero"`
	Prestige      float64          `json:"prestige"`
	PrestigeTotal float64          `json:"prestige_total"`
	Perks         []string         `json:"perks,omitempty"`
	Parent        Ref[Dynasty]     `json:"parent,omitzero"`
	Leaders       []Ref[Character] `json:"leaders,omitempty"`
	Members       int              `json:"members"`
}

func (d *Dynasty) refName() string { return d.Name }

// Kind returns the entity table the dynasty lives in.
func (*Dynasty) Kind() Kind { return KindDynasty }

func (d *Dynasty) populate(raw *save.Object, st *State) error {
	var err error

	if v := raw.Get("name"); v != nil {
		d.Name, _ = v.AsString()
	} else if v := raw.Get("localized_name"); v != nil {
		d.Name, _ = v.AsString()
	}
	if d.FoundDate, err = dateField(raw, "found_date"); err != nil {
		return fmt.Errorf("found_date: %w", err)
	}
	if d.Parent, err = optionalRef(raw, "dynasty", st.dynastyRef); err != nil {
		return fmt.Errorf("dynasty: %w", err)
	}
	if d.Leaders, err = refList(raw, "historical", st.characterRef); err != nil {
		return fmt.Errorf("historical: %w", err)
	}
	if perks := raw.Get("perk"); perks != nil {
		if err := d.readPerks(perks); err != nil {
			return fmt.Errorf("perk: %w", err)
		}
	}
	if err := d.readPrestige(raw); err != nil {
		return fmt.Errorf("prestige: %w", err)
	}
	d.Members = st.dynastyMembers[d.id]

	// Cadet houses sometimes carry no name of their own.
	if d.Name == "" && d.Parent.Valid() {
		if parent, err := d.Parent.Get(); err == nil {
			d.Name = parent.Name
		}
	}
	return nil
}

func (d *Dynasty) readPerks(v *save.Value) error {
	if v.Type() != save.TypeObject {
		perk, err := v.AsString()
		if err != nil {
			return err
		}
		d.Perks = append(d.Perks, perk)
		return nil
	}
	obj, _ := v.AsObject()
	for _, item := range obj.Items() {
		perk, err := item.AsString()
		if err != nil {
			return err
		}
		d.Perks = append(d.Perks, perk)
	}
	return nil
}

// readPrestige splits the prestige block into lifetime total and current
// balance, which the game stores side by side.
func (d *Dynasty) readPrestige(raw *save.Object) error {
	v := raw.Get("prestige")
	if v == nil {
		return nil
	}
	obj, err := v.AsObject()
	if err != nil {
		return err
	}
	if acc := obj.Get("accumulated"); acc != nil {
		if d.PrestigeTotal, err = currencyScalar(acc); err != nil {
			return err
		}
	}
	if cur := obj.Get("currency"); cur != nil {
		if d.Prestige, err = currencyScalar(cur); err != nil {
			return err
		}
	}
	return nil
}

// currencyScalar reads a currency cell that is either a scalar or a
// {value=...} wrapper.
func currencyScalar(v *save.Value) (float64, error) {
	if v.Type() != save.TypeObject {
		return v.AsFloat()
	}
	obj, _ := v.AsObject()
	val := obj.Get("value")
	if val == nil {
		return 0, nil
	}
	return val.AsFloat()
}
