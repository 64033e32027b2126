package layerfs

import (
	"github.com/mwantia/layerfs/vpath"
	"github.com/tidwall/btree"
)

// dirent is one name to node link. Entries are immutable once stored since
// copies of a table share them.
type dirent struct {
	name string
	node *node
	seq  uint64
}

// tableOptions fixes how a table compares and orders its names.
type tableOptions struct {
	ignoreCase     bool
	insertionOrder bool
}

// table is the name index of a directory.
//
// The B-trees may be shared with the table of a shadow root. A shared table
// is cloned by writePreamble before its first mutation; btree copies are
// lazy, so only the touched tree nodes are duplicated.
type table struct {
	opts   tableOptions
	shared bool
	seq    uint64

	names *btree.BTreeG[*dirent]
	order *btree.BTreeG[*dirent]
}

func newTable(opts tableOptions) *table {
	t := &table{opts: opts}
	t.names = btree.NewBTreeG(func(a, b *dirent) bool {
		return vpath.CompareStrings(a.name, b.name, opts.ignoreCase) < 0
	})
	if opts.insertionOrder {
		t.order = btree.NewBTreeG(func(a, b *dirent) bool {
			return a.seq < b.seq
		})
	}
	return t
}

// share returns a table reading the same trees as t. The result is marked
// shared and clones itself before the first write. When opts differ from
// the options of t the entries are copied into a new table instead.
func (t *table) share(opts tableOptions) *table {
	if t.opts != opts {
		c := newTable(opts)
		t.scan(func(name string, n *node) bool {
			c.set(name, n)
			return true
		})
		return c
	}

	return &table{
		opts:   t.opts,
		shared: true,
		seq:    t.seq,
		names:  t.names,
		order:  t.order,
	}
}

// sameTrees reports whether t and o read the identical backing trees.
func (t *table) sameTrees(o *table) bool {
	return t != nil && o != nil && t.names == o.names
}

func (t *table) writePreamble() {
	if !t.shared {
		return
	}

	t.names = t.names.Copy()
	if t.order != nil {
		t.order = t.order.Copy()
	}
	t.shared = false
}

func (t *table) len() int {
	return t.names.Len()
}

// get returns the stored name, which may differ in case from name, and its node.
func (t *table) get(name string) (string, *node, bool) {
	e, ok := t.names.Get(&dirent{name: name})
	if !ok {
		return "", nil, false
	}
	return e.name, e.node, true
}

func (t *table) has(name string) bool {
	_, _, ok := t.get(name)
	return ok
}

// set links name to n. An existing entry under the same name keeps its
// insertion position.
func (t *table) set(name string, n *node) {
	t.writePreamble()

	seq := t.seq + 1
	if prev, ok := t.names.Get(&dirent{name: name}); ok {
		seq = prev.seq
		t.names.Delete(prev)
		if t.order != nil {
			t.order.Delete(prev)
		}
	} else {
		t.seq = seq
	}

	e := &dirent{name: name, node: n, seq: seq}
	t.names.Set(e)
	if t.order != nil {
		t.order.Set(e)
	}
}

func (t *table) delete(name string) bool {
	prev, ok := t.names.Get(&dirent{name: name})
	if !ok {
		return false
	}

	t.writePreamble()
	t.names.Delete(prev)
	if t.order != nil {
		t.order.Delete(prev)
	}
	return true
}

// scan calls fn for every entry in table order until fn returns false.
func (t *table) scan(fn func(name string, n *node) bool) {
	tree := t.names
	if t.order != nil {
		tree = t.order
	}
	tree.Scan(func(e *dirent) bool {
		return fn(e.name, e.node)
	})
}

func (t *table) keys() []string {
	keys := make([]string, 0, t.len())
	t.scan(func(name string, _ *node) bool {
		keys = append(keys, name)
		return true
	})
	return keys
}
