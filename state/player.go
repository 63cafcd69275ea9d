package state

import (
	"fmt"

	"github.com/hearthwood/annalist/save"
)

// Player is one played character entry: who the player is, which character
// they control, and the legacy of characters played before.
type Player struct {
	Name      string         `json:"name"`
	PlayerID  ID             `json:"player"`
	Character Ref[Character] `json:"character,omitzero"`
	Lineage   []LineageNode  `json:"lineage,omitempty"`
}

// LineageNode is one ancestor in a player's legacy: the character, when
// the player took them over, and the score they earned.
type LineageNode struct {
	Character Ref[Character] `json:"character,omitzero"`
	Date      Date           `json:"date"`
	Score     int64          `json:"score"`
	Prestige  int64          `json:"prestige"`
	Piety     int64          `json:"piety"`
	Dread     float64        `json:"dread"`
	Lifestyle string         `json:"lifestyle,omitempty"`
	Perks     []string       `json:"perks,omitempty"`
}

func newPlayer(raw *save.Object, st *State) (*Player, error) {
	p := &Player{}
	var err error

	if p.Name, err = raw.GetString("name"); err != nil {
		return nil, err
	}
	player, err := raw.GetID("player")
	if err != nil {
		return nil, err
	}
	p.PlayerID = ID(player)
	if p.Character, err = optionalRef(raw, "character", st.characterRef); err != nil {
		return nil, fmt.Errorf("character: %w", err)
	}

	legacy := raw.Get("legacy")
	if legacy == nil {
		return p, nil
	}
	obj, err := legacy.AsObject()
	if err != nil {
		return nil, fmt.Errorf("legacy: %w", err)
	}
	for _, item := range obj.Items() {
		node, err := item.AsObject()
		if err != nil {
			continue
		}
		ln, err := newLineageNode(node, st)
		if err != nil {
			return nil, fmt.Errorf("legacy: %w", err)
		}
		p.Lineage = append(p.Lineage, ln)
	}
	return p, nil
}

func newLineageNode(raw *save.Object, st *State) (LineageNode, error) {
	ln := LineageNode{}
	var err error

	character, err := raw.GetID("character")
	if err != nil {
		return ln, err
	}
	ln.Character = st.characterRef(ID(character))
	if ln.Date, err = dateField(raw, "date"); err != nil {
		return ln, err
	}
	if v := raw.Get("score"); v != nil {
		if ln.Score, err = v.AsInt(); err != nil {
			return ln, err
		}
	}
	if v := raw.Get("prestige"); v != nil {
		if ln.Prestige, err = v.AsInt(); err != nil {
			return ln, err
		}
	}
	if v := raw.Get("piety"); v != nil {
		if ln.Piety, err = v.AsInt(); err != nil {
			return ln, err
		}
	}
	if v := raw.Get("dread"); v != nil {
		if ln.Dread, err = v.AsFloat(); err != nil {
			return ln, err
		}
	}
	if v := raw.Get("lifestyle"); v != nil {
		ln.Lifestyle, _ = v.AsString()
	}
	if perks := raw.Get("perk"); perks != nil {
		if perks.Type() != save.TypeObject {
			perk, err := perks.AsString()
			if err != nil {
				return ln, err
			}
			ln.Perks = append(ln.Perks, perk)
		} else {
			obj, _ := perks.AsObject()
			for _, it := range obj.Items() {
				perk, err := it.AsString()
				if err != nil {
					return ln, err
				}
				ln.Perks = append(ln.Perks, perk)
			}
		}
	}
	return ln, nil
}
