package state

import (
	"errors"
	"fmt"

	"github.com/hearthwood/annalist/save"
)

// ID is a stable save-wide entity identifier.
type ID uint64

// Kind names an entity table. The string doubles as the subdirectory used
// when handles serialize as link descriptors.
type Kind string

const (
	KindCharacter Kind = "characters"
	KindTitle     Kind = "titles"
	KindDynasty   Kind = "dynasties"
	KindFaith     Kind = "faiths"
	KindCulture   Kind = "cultures"
	KindMemory    Kind = "memories"
	KindArtifact  Kind = "artifacts"
)

// ErrUnknownID reports a reference to an id the save never declared.
var ErrUnknownID = errors.New("unknown id")

// header carries the identity every entity shares.
type header struct {
	id ID
}

func (h *header) setID(id ID) { h.id = id }

// ID returns the entity's save-wide identifier.
func (h *header) ID() ID { return h.id }

// table holds one kind's raw section trees, the entities built from them
// so far, and the populate failures pinned to their ids.
type table[T any] struct {
	raw   map[ID]*save.Object
	built map[ID]*T
	errs  map[ID]error
}

func (t *table[T]) insertRaw(id ID, o *save.Object) {
	if t.raw == nil {
		t.raw = make(map[ID]*save.Object)
	}
	t.raw[id] = o
}

func (t *table[T]) rawLen() int { return len(t.raw) }

// builder is the construction side of an entity: identity plus population
// from its raw tree.
type builder[T any] interface {
	*T
	setID(ID)
	populate(raw *save.Object, st *State) error
}

// getOrBuild returns the entity for id, constructing it on first access.
// The fresh entity is registered before populate runs, so populate may
// take handles to entities that cyclically refer back to this one. A
// populate failure is pinned to the id: the half-populated entity stays
// reserved and every later lookup returns the same error.
func getOrBuild[T any, PT builder[T]](st *State, t *table[T], kind Kind, id ID) (*T, error) {
	if v, ok := t.built[id]; ok {
		if err := t.errs[id]; err != nil {
			return nil, err
		}
		return v, nil
	}
	raw, ok := t.raw[id]
	if !ok {
		return nil, fmt.Errorf("%s %d: %w", kind, id, ErrUnknownID)
	}
	if t.built == nil {
		t.built = make(map[ID]*T)
	}
	v := new(T)
	PT(v).setID(id)
	t.built[id] = v
	if err := PT(v).populate(raw, st); err != nil {
		if t.errs == nil {
			t.errs = make(map[ID]error)
		}
		t.errs[id] = fmt.Errorf("%s %d: %w", kind, id, err)
		return nil, t.errs[id]
	}
	return v, nil
}
