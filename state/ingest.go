package state

import (
	"fmt"
	"strconv"

	"github.com/hearthwood/annalist/save"
)

// Section names dispatched by IngestSection. Anything else is skipped.
const (
	secMetaData   = "meta_data"
	secTraits     = "traits_lookup"
	secTitles     = "landed_titles"
	secCounties   = "county_manager"
	secDynasties  = "dynasties"
	secLiving     = "living"
	secDead       = "dead_unprunable"
	secCharacters = "characters"
	secContracts  = "vassal_contracts"
	secReligion   = "religion"
	secCultures   = "culture_manager"
	secMemories   = "character_memory_manager"
	secPlayed     = "played_character"
	secArtifacts  = "artifacts"
)

// IngestSection consumes one save section. Known sections are parsed and
// their entity trees stored raw; unknown sections are skipped without
// building anything. Parse warnings are logged, not returned.
func (s *State) IngestSection(sec *save.Section) error {
	switch sec.Name() {
	case secMetaData, secTraits, secTitles, secCounties, secDynasties,
		secLiving, secDead, secCharacters, secContracts, secReligion,
		secCultures, secMemories, secPlayed, secArtifacts:
	default:
		s.log.Debug("skipping section", "name", sec.Name())
		sec.Skip()
		return nil
	}

	res, err := sec.Parse()
	if err != nil {
		return fmt.Errorf("state: section %s: %w", sec.Name(), err)
	}
	for _, w := range res.Warnings {
		s.log.Warn("parse warning", "section", sec.Name(), "warning", w.String())
	}
	root := res.Object

	switch sec.Name() {
	case secMetaData:
		return s.ingestMeta(root)
	case secTraits:
		return s.ingestTraits(root)
	case secTitles:
		return s.ingestTitles(root)
	case secCounties:
		return s.ingestCounties(root)
	case secDynasties:
		return s.ingestDynasties(root)
	case secLiving, secDead:
		return s.ingestCharacters(root)
	case secCharacters:
		if prunable, err := root.GetObject("dead_prunable"); err == nil {
			return s.ingestCharacters(prunable)
		}
		return nil
	case secContracts:
		return s.ingestContracts(root)
	case secReligion:
		return s.ingestInner(root, "faiths", &s.faiths)
	case secCultures:
		return s.ingestInner(root, "cultures", &s.cultures)
	case secMemories:
		return s.ingestInner(root, "database", &s.memories)
	case secPlayed:
		return s.ingestPlayer(root)
	case secArtifacts:
		return s.ingestInner(root, "artifacts", &s.artifacts)
	}
	return nil
}

func (s *State) ingestMeta(root *save.Object) error {
	current, err := dateField(root, "meta_date")
	if err != nil {
		return fmt.Errorf("state: meta_date: %w", err)
	}
	real, err := dateField(root, "meta_real_date")
	if err != nil {
		return fmt.Errorf("state: meta_real_date: %w", err)
	}
	s.currentDate = current
	s.realDate = real
	return nil
}

func (s *State) ingestTraits(root *save.Object) error {
	s.traits = make([]string, 0, root.Len())
	for _, item := range root.Items() {
		name, err := item.AsString()
		if err != nil {
			return fmt.Errorf("state: traits_lookup: %w", err)
		}
		s.traits = append(s.traits, name)
	}
	return nil
}

// ingestTitles stores each landed title's raw tree. The section nests the
// actual table under a key repeating the section name, and dead titles
// appear as the scalar none, which is how the game writes them.
func (s *State) ingestTitles(root *save.Object) error {
	inner, err := root.GetObject("landed_titles")
	if err != nil {
		return fmt.Errorf("state: landed_titles: %w", err)
	}
	return eachEntity(inner, func(id ID, raw *save.Object) error {
		s.titles.insertRaw(id, raw)
		return nil
	})
}

// ingestCounties records each county's faith and culture keyed by county
// key. Titles read the association lazily, instead of every title being
// rebuilt when the county table arrives.
func (s *State) ingestCounties(root *save.Object) error {
	counties, err := root.GetObject("counties")
	if err != nil {
		return fmt.Errorf("state: county_manager: %w", err)
	}
	for _, f := range counties.Fields() {
		county, err := f.Value.AsObject()
		if err != nil {
			continue
		}
		if faith, err := county.GetID("faith"); err == nil {
			s.countyFaith[f.Key] = ID(faith)
		}
		if culture, err := county.GetID("culture"); err == nil {
			s.countyCulture[f.Key] = ID(culture)
		}
	}
	return nil
}

// ingestDynasties walks the section's dynasty_house and dynasties
// sub-tables. Both hold houses keyed by id.
func (s *State) ingestDynasties(root *save.Object) error {
	for _, f := range root.Fields() {
		if f.Key != "dynasty_house" && f.Key != "dynasties" {
			continue
		}
		sub, err := f.Value.AsObject()
		if err != nil {
			continue
		}
		if err := eachEntity(sub, func(id ID, raw *save.Object) error {
			s.dynasties.insertRaw(id, raw)
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *State) ingestCharacters(root *save.Object) error {
	return eachEntity(root, func(id ID, raw *save.Object) error {
		s.characters.insertRaw(id, raw)
		s.indexCharacter(id, raw)
		return nil
	})
}

// indexCharacter extracts the cross-entity edges population needs but the
// character's own tree does not carry: child -> parent and house
// membership counts.
func (s *State) indexCharacter(id ID, raw *save.Object) {
	if family := raw.Get("family_data"); family != nil {
		if fam, err := family.AsObject(); err == nil {
			if children := fam.Get("child"); children != nil {
				ids, err := idList(children)
				if err == nil {
					for _, child := range ids {
						s.parents[child] = append(s.parents[child], id)
					}
				}
			}
		}
	}
	if house, err := raw.GetID("dynasty_house"); err == nil {
		s.dynastyMembers[ID(house)]++
	}
}

// ingestContracts maps each vassal contract to its vassal character. The
// table key changed from active to database across game versions.
func (s *State) ingestContracts(root *save.Object) error {
	table, err := root.GetObject("database")
	if err != nil {
		if table, err = root.GetObject("active"); err != nil {
			return fmt.Errorf("state: vassal_contracts: %w", err)
		}
	}
	return eachEntity(table, func(id ID, raw *save.Object) error {
		if vassal, err := raw.GetID("vassal"); err == nil {
			s.contractVassal[id] = ID(vassal)
		}
		return nil
	})
}

func (s *State) ingestInner(root *save.Object, key string, insert rawInserter) error {
	inner, err := root.GetObject(key)
	if err != nil {
		return fmt.Errorf("state: %s: %w", root.Name(), err)
	}
	return eachEntity(inner, insert.insertEntity)
}

// rawInserter lets ingestInner target any table without generics at the
// call site.
type rawInserter interface {
	insertEntity(id ID, raw *save.Object) error
}

func (t *table[T]) insertEntity(id ID, raw *save.Object) error {
	t.insertRaw(id, raw)
	return nil
}

func (s *State) ingestPlayer(root *save.Object) error {
	p, err := newPlayer(root, s)
	if err != nil {
		return fmt.Errorf("state: played_character: %w", err)
	}
	s.players = append(s.players, p)
	return nil
}

// eachEntity visits an id-keyed table. Non-numeric keys and scalar values
// (dead entries written as none) are passed over.
func eachEntity(table *save.Object, fn func(id ID, raw *save.Object) error) error {
	for _, f := range table.Fields() {
		id, err := strconv.ParseUint(f.Key, 10, 64)
		if err != nil {
			continue
		}
		raw, err := f.Value.AsObject()
		if err != nil {
			continue
		}
		if err := fn(ID(id), raw); err != nil {
			return err
		}
	}
	return nil
}
