package save

// treeBuilder assembles an Object tree from a flat stream of structural
// events. Both front-ends drive the same builder, so the text and binary
// encodings of one logical document produce identical trees.
//
// A scalar is ambiguous when it arrives: it may be a field key or a bare
// sequence item. It is held as pending until the next event decides, the
// way the game's own writer is read back: scalar followed by = is a key,
// anything else demotes it to an item.
type treeBuilder struct {
	stack []*frame
}

type frame struct {
	obj    *Object
	named  bool
	key    string // attachment key in the parent, valid when named
	pend   *Value // scalar awaiting key-or-item decision
	pendK  string // string form of pend, used when it turns out to be a key
	hasPnd bool
	pastEq bool
}

func newTreeBuilder(rootName string) *treeBuilder {
	return &treeBuilder{stack: []*frame{{obj: NewObject(rootName)}}}
}

func (b *treeBuilder) top() *frame { return b.stack[len(b.stack)-1] }

// scalar feeds one scalar value. key is its string rendering.
func (b *treeBuilder) scalar(v *Value, key string) {
	f := b.top()
	if f.pastEq {
		f.obj.setField(f.pendK, v)
		f.hasPnd = false
		f.pastEq = false
		return
	}
	if f.hasPnd {
		f.obj.push(f.pend)
	}
	f.pend, f.pendK, f.hasPnd = v, key, true
}

// equals marks the pending scalar as a field key.
func (b *treeBuilder) equals(offset int) error {
	f := b.top()
	if !f.hasPnd || f.pastEq {
		return structural(offset, "unexpected =")
	}
	f.pastEq = true
	return nil
}

// open starts a nested object. With a pending key and = it is a named
// field; otherwise it is a bare sequence entry.
func (b *treeBuilder) open(offset int) error {
	f := b.top()
	child := &frame{}
	if f.pastEq {
		child.named = true
		child.key = f.pendK
		child.obj = NewObject(f.pendK)
		f.hasPnd = false
		f.pastEq = false
	} else {
		if f.hasPnd {
			f.obj.push(f.pend)
			f.hasPnd = false
		}
		child.obj = NewObject("")
	}
	b.stack = append(b.stack, child)
	return nil
}

// close finishes the current nested object and attaches it to its parent.
func (b *treeBuilder) close(offset int) error {
	if len(b.stack) == 1 {
		return structural(offset, "unexpected }")
	}
	f := b.top()
	if f.pastEq {
		return structural(offset, "dangling = before }")
	}
	if f.hasPnd {
		f.obj.push(f.pend)
		f.hasPnd = false
	}
	f.obj.fold()
	b.stack = b.stack[:len(b.stack)-1]
	parent := b.top()
	v := NewObjectValue(f.obj)
	if f.named {
		parent.obj.setField(f.key, v)
	} else {
		parent.obj.push(v)
	}
	return nil
}

// finish flushes any pending scalar and returns the root object.
func (b *treeBuilder) finish(offset int) (*Object, error) {
	if len(b.stack) != 1 {
		return nil, structural(offset, "unterminated block, depth %d", len(b.stack)-1)
	}
	f := b.stack[0]
	if f.pastEq {
		return nil, structural(offset, "dangling = at end of input")
	}
	if f.hasPnd {
		f.obj.push(f.pend)
		f.hasPnd = false
	}
	f.obj.fold()
	return f.obj, nil
}
