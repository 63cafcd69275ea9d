package state

import (
	"fmt"

	"github.com/hearthwood/annalist/save"
)

// Artifact is an inventory artifact: identity, worth and the hand-to-hand
// history of how it moved between characters.
type Artifact struct {
	header

	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Type        string          `json:"type"`
	Rarity      string          `json:"rarity"`
	Quality     int64           `json:"quality"`
	Wealth      int64           `json:"wealth"`
	Owner       Ref[Character]  `json:"owner,omitzero"`
	History     []ArtifactEvent `json:"history,omitempty"`
}

// ArtifactEvent is one entry of an artifact's history.
type ArtifactEvent struct {
	Type      string         `json:"type"`
	Date      Date           `json:"date"`
	Actor     Ref[Character] `json:"actor,omitzero"`
	Recipient Ref[Character] `json:"recipient,omitzero"`
}

func (a *Artifact) refName() string { return a.Name }

// Kind returns the entity table the artifact lives in.
func (*Artifact) Kind() Kind { return KindArtifact }

func (a *Artifact) populate(raw *save.Object, st *State) error {
	var err error

	if a.Name, err = raw.GetString("name"); err != nil {
		return err
	}
	if v := raw.Get("description"); v != nil {
		a.Description, _ = v.AsString()
	}
	if a.Type, err = raw.GetString("type"); err != nil {
		return err
	}
	if a.Rarity, err = raw.GetString("rarity"); err != nil {
		return err
	}
	if v := raw.Get("quality"); v != nil {
		if a.Quality, err = v.AsInt(); err != nil {
			return fmt.Errorf("quality: %w", err)
		}
	}
	if v := raw.Get("wealth"); v != nil {
		if a.Wealth, err = v.AsInt(); err != nil {
			return fmt.Errorf("wealth: %w", err)
		}
	}
	owner, err := raw.GetID("owner")
	if err != nil {
		return err
	}
	a.Owner = st.characterRef(ID(owner))

	if hist := raw.Get("history"); hist != nil {
		if err := a.readHistory(hist, st); err != nil {
			return fmt.Errorf("history: %w", err)
		}
	}
	return nil
}

func (a *Artifact) readHistory(v *save.Value, st *State) error {
	obj, err := v.AsObject()
	if err != nil {
		return err
	}
	entries := obj.Get("entries")
	if entries == nil {
		return nil
	}
	list, err := entries.AsObject()
	if err != nil {
		return err
	}
	for _, item := range list.Items() {
		eo, err := item.AsObject()
		if err != nil {
			return err
		}
		event := ArtifactEvent{}
		if event.Type, err = eo.GetString("type"); err != nil {
			return err
		}
		if event.Date, err = dateField(eo, "date"); err != nil {
			return err
		}
		if event.Actor, err = optionalRef(eo, "actor", st.characterRef); err != nil {
			return err
		}
		if event.Recipient, err = optionalRef(eo, "recipient", st.characterRef); err != nil {
			return err
		}
		a.History = append(a.History, event)
	}
	return nil
}
