package state

import (
	"fmt"

	"github.com/hearthwood/annalist/save"
)

// Character is a living or dead person: identity, family, wealth, traits
// and holdings. Every link to another entity is a lazy handle.
type Character struct {
	header

	FirstName string `json:"first_name"`
	Nickname  string `json:"nickname,omitempty"`
	Birth     Date   `json:"birth"`
	Female    bool   `json:"female"`
	DNA       string `json:"dna,omitempty"`

	Dead        bool   `json:"dead"`
	DeathDate   Date   `json:"death_date,omitzero"`
	DeathReason string `json:"death_reason,omitempty"`

	Skills []int64  `json:"skills,omitempty"`
	Traits []string `json:"traits,omitempty"`

	Gold     float64 `json:"gold"`
	Piety    float64 `json:"piety"`
	Prestige float64 `json:"prestige"`
	Dread    float64 `json:"dread"`
	Strength float64 `json:"strength"`

	House   Ref[Dynasty] `json:"house,omitzero"`
	Faith   Ref[Faith]   `json:"faith,omitzero"`
	Culture Ref[Culture] `json:"culture,omitzero"`

	Spouses       []Ref[Character] `json:"spouses,omitempty"`
	FormerSpouses []Ref[Character] `json:"former_spouses,omitempty"`
	Children      []Ref[Character] `json:"children,omitempty"`
	Parents       []Ref[Character] `json:"parents,omitempty"`
	Kills         []Ref[Character] `json:"kills,omitempty"`
	Languages     []string         `json:"languages,omitempty"`

	Titles    []Ref[Title]     `json:"titles,omitempty"`
	Liege     Ref[Character]   `json:"liege,omitzero"`
	Vassals   []Ref[Character] `json:"vassals,omitempty"`
	Memories  []Ref[Memory]    `json:"memories,omitempty"`
	Artifacts []Ref[Artifact]  `json:"artifacts,omitempty"`
}

func (c *Character) refName() string { return c.FirstName }

// Kind returns the entity table the character lives in.
func (*Character) Kind() Kind { return KindCharacter }

// EffectiveFaith returns the character's own faith, falling back to the
// faith of a house leader when the save never wrote one.
func (c *Character) EffectiveFaith() Ref[Faith] {
	if c.Faith.Valid() {
		return c.Faith
	}
	if leader := c.houseLeader(); leader != nil {
		return leader.Faith
	}
	return Ref[Faith]{}
}

// EffectiveCulture is EffectiveFaith for culture.
func (c *Character) EffectiveCulture() Ref[Culture] {
	if c.Culture.Valid() {
		return c.Culture
	}
	if leader := c.houseLeader(); leader != nil {
		return leader.Culture
	}
	return Ref[Culture]{}
}

func (c *Character) houseLeader() *Character {
	if !c.House.Valid() {
		return nil
	}
	house, err := c.House.Get()
	if err != nil {
		return nil
	}
	for i := range house.Leaders {
		leader, err := house.Leaders[i].Get()
		if err != nil || leader == c {
			continue
		}
		return leader
	}
	return nil
}

func (c *Character) populate(raw *save.Object, st *State) error {
	var err error

	c.FirstName, err = raw.GetString("first_name")
	if err != nil {
		return err
	}
	if v := raw.Get("nickname_text"); v != nil {
		c.Nickname, _ = v.AsString()
	} else if v := raw.Get("nickname"); v != nil {
		c.Nickname, _ = v.AsString()
	}
	if c.Birth, err = dateField(raw, "birth"); err != nil {
		return fmt.Errorf("birth: %w", err)
	}
	if v := raw.Get("female"); v != nil {
		if c.Female, err = v.AsBool(); err != nil {
			return fmt.Errorf("female: %w", err)
		}
	}
	if v := raw.Get("dna"); v != nil {
		c.DNA, _ = v.AsString()
	}
	if v := raw.Get("skill"); v != nil {
		if err := c.readSkills(v); err != nil {
			return fmt.Errorf("skill: %w", err)
		}
	}
	if v := raw.Get("traits"); v != nil {
		if err := c.readTraits(v, st); err != nil {
			return fmt.Errorf("traits: %w", err)
		}
	}

	if c.House, err = optionalRef(raw, "dynasty_house", st.dynastyRef); err != nil {
		return fmt.Errorf("dynasty_house: %w", err)
	}
	if c.Faith, err = optionalRef(raw, "faith", st.faithRef); err != nil {
		return fmt.Errorf("faith: %w", err)
	}
	if c.Culture, err = optionalRef(raw, "culture", st.cultureRef); err != nil {
		return fmt.Errorf("culture: %w", err)
	}

	if v := raw.Get("dead_data"); v != nil {
		if err := c.readDeadData(v, st); err != nil {
			return fmt.Errorf("dead_data: %w", err)
		}
	}
	if v := raw.Get("family_data"); v != nil {
		if err := c.readFamilyData(v, st); err != nil {
			return fmt.Errorf("family_data: %w", err)
		}
	}
	if !c.Dead {
		if v := raw.Get("alive_data"); v != nil {
			if err := c.readAliveData(v, st); err != nil {
				return fmt.Errorf("alive_data: %w", err)
			}
		}
	}
	if v := raw.Get("landed_data"); v != nil {
		if err := c.readLandedData(v, st); err != nil {
			return fmt.Errorf("landed_data: %w", err)
		}
	}

	for _, parent := range st.parents[c.id] {
		c.Parents = append(c.Parents, st.characterRef(parent))
	}
	return nil
}

func (c *Character) readSkills(v *save.Value) error {
	obj, err := v.AsObject()
	if err != nil {
		return err
	}
	c.Skills = make([]int64, 0, obj.Len())
	for _, item := range obj.Items() {
		n, err := item.AsInt()
		if err != nil {
			return err
		}
		c.Skills = append(c.Skills, n)
	}
	return nil
}

// readTraits maps trait indexes through the save's traits_lookup table.
// Indexes outside the table keep their numeric form.
func (c *Character) readTraits(v *save.Value, st *State) error {
	obj, err := v.AsObject()
	if err != nil {
		return err
	}
	for _, item := range obj.Items() {
		idx, err := item.AsInt()
		if err != nil {
			return err
		}
		name, ok := st.TraitName(idx)
		if !ok {
			name = fmt.Sprintf("%d", idx)
		}
		c.Traits = append(c.Traits, name)
	}
	return nil
}

func (c *Character) readDeadData(v *save.Value, st *State) error {
	dead, err := v.AsObject()
	if err != nil {
		return err
	}
	c.Dead = true
	if r := dead.Get("reason"); r != nil {
		c.DeathReason, _ = r.AsString()
	}
	if c.DeathDate, err = dateField(dead, "date"); err != nil {
		return err
	}
	titles, err := refList(dead, "domain", st.titleRef)
	if err != nil {
		return err
	}
	c.Titles = append(c.Titles, titles...)
	if c.Liege, err = optionalRef(dead, "liege", st.characterRef); err != nil {
		return err
	}
	return nil
}

func (c *Character) readFamilyData(v *save.Value, st *State) error {
	fam, err := v.AsObject()
	if err != nil {
		return err
	}
	if c.FormerSpouses, err = refList(fam, "former_spouses", st.characterRef); err != nil {
		return err
	}
	if c.Spouses, err = refList(fam, "spouse", st.characterRef); err != nil {
		return err
	}
	primary, err := optionalRef(fam, "primary_spouse", st.characterRef)
	if err != nil {
		return err
	}
	if primary.Valid() && !containsRef(c.Spouses, primary.ID()) {
		c.Spouses = append(c.Spouses, primary)
	}
	if c.Children, err = refList(fam, "child", st.characterRef); err != nil {
		return err
	}
	return nil
}

func (c *Character) readAliveData(v *save.Value, st *State) error {
	alive, err := v.AsObject()
	if err != nil {
		return err
	}
	if c.Piety, err = currencyField(alive, "piety"); err != nil {
		return err
	}
	if c.Prestige, err = currencyField(alive, "prestige"); err != nil {
		return err
	}
	if c.Gold, err = currencyField(alive, "gold"); err != nil {
		return err
	}
	if c.Kills, err = refList(alive, "kills", st.characterRef); err != nil {
		return err
	}
	if langs := alive.Get("languages"); langs != nil {
		obj, err := langs.AsObject()
		if err != nil {
			return err
		}
		for _, item := range obj.Items() {
			lang, err := item.AsString()
			if err != nil {
				return err
			}
			c.Languages = append(c.Languages, lang)
		}
	}
	if perks := alive.Get("perks"); perks != nil {
		if err := c.readTraits(perks, st); err != nil {
			return err
		}
	}
	if c.Memories, err = refList(alive, "memories", st.memoryRef); err != nil {
		return err
	}
	if inv := alive.Get("inventory"); inv != nil {
		obj, err := inv.AsObject()
		if err != nil {
			return err
		}
		if c.Artifacts, err = refList(obj, "artifacts", st.artifactRef); err != nil {
			return err
		}
	}
	return nil
}

// readLandedData reads holdings. Vassals arrive as contract ids and map to
// the vassal characters recorded during ingestion.
func (c *Character) readLandedData(v *save.Value, st *State) error {
	landed, err := v.AsObject()
	if err != nil {
		return err
	}
	if d := landed.Get("dread"); d != nil {
		if c.Dread, err = d.AsFloat(); err != nil {
			return err
		}
	}
	if d := landed.Get("strength"); d != nil {
		if c.Strength, err = d.AsFloat(); err != nil {
			return err
		}
	}
	titles, err := refList(landed, "domain", st.titleRef)
	if err != nil {
		return err
	}
	c.Titles = append(c.Titles, titles...)

	contracts := landed.Get("vassal_contracts")
	if contracts == nil {
		return nil
	}
	ids, err := idList(contracts)
	if err != nil {
		return err
	}
	for _, contract := range ids {
		vassal, ok := st.contractVassal[contract]
		if !ok {
			continue
		}
		c.Vassals = append(c.Vassals, st.characterRef(vassal))
	}
	return nil
}

func containsRef[T any](refs []Ref[T], id ID) bool {
	for _, r := range refs {
		if r.ID() == id {
			return true
		}
	}
	return false
}

// currencyField reads an accumulated-currency block. The game writes these
// as nested objects, older saves as plain scalars; missing means zero.
func currencyField(o *save.Object, key string) (float64, error) {
	v := o.Get(key)
	if v == nil {
		return 0, nil
	}
	if v.Type() != save.TypeObject {
		return v.AsFloat()
	}
	obj, _ := v.AsObject()
	acc := obj.Get("accumulated")
	if acc == nil {
		return 0, nil
	}
	if acc.Type() == save.TypeObject {
		inner, _ := acc.AsObject()
		val := inner.Get("value")
		if val == nil {
			return 0, nil
		}
		return val.AsFloat()
	}
	return acc.AsFloat()
}
