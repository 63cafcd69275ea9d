package state

import (
	"log/slog"

	"github.com/hearthwood/annalist/save"
)

// State is the registry of everything a save declares. Fill it with
// IngestSection, then pull entities out through the typed accessors; each
// entity is built once, on first access.
//
// A State is not safe for concurrent use.
type State struct {
	log *slog.Logger

	characters table[Character]
	titles     table[Title]
	dynasties  table[Dynasty]
	faiths     table[Faith]
	cultures   table[Culture]
	memories   table[Memory]
	artifacts  table[Artifact]

	players []*Player
	traits  []string

	currentDate Date
	realDate    Date

	// Raw-level indexes built during ingestion so population never needs
	// to walk unrelated entities.
	parents        map[ID][]ID // child -> parents
	dynastyMembers map[ID]int
	contractVassal map[ID]ID     // vassal contract -> vassal character
	countyFaith    map[string]ID // county key, e.g. c_derby
	countyCulture  map[string]ID
}

// New creates an empty State. A nil logger falls back to slog.Default.
func New(log *slog.Logger) *State {
	if log == nil {
		log = slog.Default()
	}
	return &State{
		log:            log,
		parents:        make(map[ID][]ID),
		dynastyMembers: make(map[ID]int),
		contractVassal: make(map[ID]ID),
		countyFaith:    make(map[string]ID),
		countyCulture:  make(map[string]ID),
	}
}

// ============================================================
// Typed accessors and handle constructors
// ============================================================

// Character returns the character with the given id, building it on first
// access.
func (s *State) Character(id ID) (*Character, error) {
	return getOrBuild[Character](s, &s.characters, KindCharacter, id)
}

// Title returns the title with the given id.
func (s *State) Title(id ID) (*Title, error) {
	return getOrBuild[Title](s, &s.titles, KindTitle, id)
}

// Dynasty returns the dynasty house with the given id.
func (s *State) Dynasty(id ID) (*Dynasty, error) {
	return getOrBuild[Dynasty](s, &s.dynasties, KindDynasty, id)
}

// Faith returns the faith with the given id.
func (s *State) Faith(id ID) (*Faith, error) {
	return getOrBuild[Faith](s, &s.faiths, KindFaith, id)
}

// Culture returns the culture with the given id.
func (s *State) Culture(id ID) (*Culture, error) {
	return getOrBuild[Culture](s, &s.cultures, KindCulture, id)
}

// Memory returns the character memory with the given id.
func (s *State) Memory(id ID) (*Memory, error) {
	return getOrBuild[Memory](s, &s.memories, KindMemory, id)
}

// Artifact returns the artifact with the given id.
func (s *State) Artifact(id ID) (*Artifact, error) {
	return getOrBuild[Artifact](s, &s.artifacts, KindArtifact, id)
}

func (s *State) characterRef(id ID) Ref[Character] {
	return newRef(id, KindCharacter, s.Character)
}

func (s *State) titleRef(id ID) Ref[Title] { return newRef(id, KindTitle, s.Title) }

func (s *State) dynastyRef(id ID) Ref[Dynasty] { return newRef(id, KindDynasty, s.Dynasty) }

func (s *State) faithRef(id ID) Ref[Faith] { return newRef(id, KindFaith, s.Faith) }

func (s *State) cultureRef(id ID) Ref[Culture] { return newRef(id, KindCulture, s.Culture) }

func (s *State) memoryRef(id ID) Ref[Memory] { return newRef(id, KindMemory, s.Memory) }

func (s *State) artifactRef(id ID) Ref[Artifact] { return newRef(id, KindArtifact, s.Artifact) }

// ============================================================
// Save-wide data
// ============================================================

// Players returns the played characters, in save order.
func (s *State) Players() []*Player { return s.players }

// CurrentDate returns the in-game date the save was made at.
func (s *State) CurrentDate() Date { return s.currentDate }

// RealDate returns the campaign start date the save counts years from.
func (s *State) RealDate() Date { return s.realDate }

// TraitName maps a trait index from character data to its identifier.
func (s *State) TraitName(idx int64) (string, bool) {
	if idx < 0 || idx >= int64(len(s.traits)) {
		return "", false
	}
	return s.traits[idx], true
}

// CharacterIDs returns the ids of every ingested character, in no
// particular order. Nothing is built.
func (s *State) CharacterIDs() []ID {
	ids := make([]ID, 0, len(s.characters.raw))
	for id := range s.characters.raw {
		ids = append(ids, id)
	}
	return ids
}

// TitleIDs returns the ids of every ingested title.
func (s *State) TitleIDs() []ID {
	ids := make([]ID, 0, len(s.titles.raw))
	for id := range s.titles.raw {
		ids = append(ids, id)
	}
	return ids
}

// Counts reports how many raw entities each table holds.
func (s *State) Counts() map[Kind]int {
	return map[Kind]int{
		KindCharacter: s.characters.rawLen(),
		KindTitle:     s.titles.rawLen(),
		KindDynasty:   s.dynasties.rawLen(),
		KindFaith:     s.faiths.rawLen(),
		KindCulture:   s.cultures.rawLen(),
		KindMemory:    s.memories.rawLen(),
		KindArtifact:  s.artifacts.rawLen(),
	}
}

// optionalRef builds a handle from an optional id field. Missing fields
// yield the zero handle.
func optionalRef[T any](o *save.Object, key string, mk func(ID) Ref[T]) (Ref[T], error) {
	v := o.Get(key)
	if v == nil {
		return Ref[T]{}, nil
	}
	id, err := v.AsID()
	if err != nil {
		return Ref[T]{}, err
	}
	return mk(ID(id)), nil
}

// refList builds handles from a field holding either a single id or a
// sequence of ids.
func refList[T any](o *save.Object, key string, mk func(ID) Ref[T]) ([]Ref[T], error) {
	v := o.Get(key)
	if v == nil {
		return nil, nil
	}
	ids, err := idList(v)
	if err != nil {
		return nil, err
	}
	refs := make([]Ref[T], len(ids))
	for i, id := range ids {
		refs[i] = mk(id)
	}
	return refs, nil
}

func idList(v *save.Value) ([]ID, error) {
	if v.Type() != save.TypeObject {
		id, err := v.AsID()
		if err != nil {
			return nil, err
		}
		return []ID{ID(id)}, nil
	}
	obj, _ := v.AsObject()
	ids := make([]ID, 0, obj.Len())
	for _, item := range obj.Items() {
		id, err := item.AsID()
		if err != nil {
			return nil, err
		}
		ids = append(ids, ID(id))
	}
	return ids, nil
}
