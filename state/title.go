package state

import (
	"fmt"
	"sort"

	"github.com/hearthwood/annalist/save"
)

// Title is a landed title: its key, name, liege links and holder history.
type Title struct {
	header

	Key  string `json:"key,omitempty"`
	Name string `json:"name"`

	DeJureLiege  Ref[Title]   `json:"de_jure_liege,omitzero"`
	DeFactoLiege Ref[Title]   `json:"de_facto_liege,omitzero"`
	Vassals      []Ref[Title] `json:"vassals,omitempty"`
	Capital      Ref[Title]   `json:"capital,omitzero"`

	// County titles carry the county population's faith and culture.
	Faith   Ref[Faith]   `json:"faith,omitzero"`
	Culture Ref[Culture] `json:"culture,omitzero"`

	// History is the holder succession in chronological order.
	History []HistoryEntry `json:"history,omitempty"`
}

// HistoryEntry is one holder change. A bare holder id in the save means
// plain inheritance; richer entries carry their own succession type.
type HistoryEntry struct {
	Date   Date           `json:"date"`
	Action string         `json:"type"`
	Holder Ref[Character] `json:"holder,omitzero"`
}

const actionInherited = "inherited"

func (t *Title) refName() string { return t.Name }

// Kind returns the entity table the title lives in.
func (*Title) Kind() Kind { return KindTitle }

func (t *Title) populate(raw *save.Object, st *State) error {
	var err error

	if t.Name, err = raw.GetString("name"); err != nil {
		return err
	}
	if v := raw.Get("key"); v != nil {
		t.Key, _ = v.AsString()
	}
	if t.DeJureLiege, err = optionalRef(raw, "de_jure_liege", st.titleRef); err != nil {
		return fmt.Errorf("de_jure_liege: %w", err)
	}
	if t.DeFactoLiege, err = optionalRef(raw, "de_facto_liege", st.titleRef); err != nil {
		return fmt.Errorf("de_facto_liege: %w", err)
	}
	if t.Vassals, err = refList(raw, "vassals", st.titleRef); err != nil {
		return fmt.Errorf("vassals: %w", err)
	}
	if t.Capital, err = optionalRef(raw, "capital", st.titleRef); err != nil {
		return fmt.Errorf("capital: %w", err)
	}

	if t.Key != "" {
		if faith, ok := st.countyFaith[t.Key]; ok {
			t.Faith = st.faithRef(faith)
		}
		if culture, ok := st.countyCulture[t.Key]; ok {
			t.Culture = st.cultureRef(culture)
		}
	}

	if hist := raw.Get("history"); hist != nil {
		if err := t.readHistory(hist, st); err != nil {
			return fmt.Errorf("history: %w", err)
		}
	}
	return nil
}

// readHistory flattens the date-keyed history table. A date may map to a
// single entry or to a sequence of entries sharing the date.
func (t *Title) readHistory(v *save.Value, st *State) error {
	hist, err := v.AsObject()
	if err != nil {
		return err
	}
	for _, f := range hist.Fields() {
		date, err := ParseDate(f.Key)
		if err != nil {
			return err
		}
		if f.Value.Type() != save.TypeObject {
			if err := t.pushHistory(date, f.Value, st); err != nil {
				return err
			}
			continue
		}
		obj, _ := f.Value.AsObject()
		if obj.Len() == 0 {
			if err := t.pushHistoryObject(date, obj, st); err != nil {
				return err
			}
			continue
		}
		for _, item := range obj.Items() {
			if err := t.pushHistory(date, item, st); err != nil {
				return err
			}
		}
	}
	sort.SliceStable(t.History, func(i, j int) bool {
		return t.History[i].Date.Before(t.History[j].Date)
	})
	return nil
}

func (t *Title) pushHistory(date Date, v *save.Value, st *State) error {
	if v.Type() != save.TypeObject {
		holder, err := v.AsID()
		if err != nil {
			return err
		}
		t.History = append(t.History, HistoryEntry{
			Date:   date,
			Action: actionInherited,
			Holder: st.characterRef(ID(holder)),
		})
		return nil
	}
	obj, _ := v.AsObject()
	return t.pushHistoryObject(date, obj, st)
}

func (t *Title) pushHistoryObject(date Date, obj *save.Object, st *State) error {
	action, err := obj.GetString("type")
	if err != nil {
		return err
	}
	entry := HistoryEntry{Date: date, Action: action}
	if entry.Holder, err = optionalRef(obj, "holder", st.characterRef); err != nil {
		return err
	}
	t.History = append(t.History, entry)
	return nil
}

// Holder returns the title's most recent holder, if any succession was
// recorded with one.
func (t *Title) Holder() Ref[Character] {
	for i := len(t.History) - 1; i >= 0; i-- {
		if t.History[i].Holder.Valid() {
			return t.History[i].Holder
		}
	}
	return Ref[Character]{}
}
