package layerfs

import (
	"iter"
	"slices"

	"github.com/mwantia/layerfs/data"
	"github.com/mwantia/layerfs/vpath"
)

// Axis selects the entries visited by Scan relative to its starting path.
type Axis int

const (
	Ancestors Axis = iota
	AncestorsOrSelf
	Self
	DescendantsOrSelf
	Descendants
)

func (a Axis) String() string {
	switch a {
	case Ancestors:
		return "ancestors"
	case AncestorsOrSelf:
		return "ancestors-or-self"
	case Self:
		return "self"
	case DescendantsOrSelf:
		return "descendants-or-self"
	case Descendants:
		return "descendants"
	}
	return "unknown"
}

func (a Axis) includesSelf() bool {
	return a == AncestorsOrSelf || a == Self || a == DescendantsOrSelf
}

// Traversal filters a scan. A nil function accepts everything.
type Traversal struct {
	// Accept reports whether the entry is yielded.
	Accept func(path string, st *data.Stats) bool
	// Traverse reports whether the scan continues through the entry.
	Traverse func(path string, st *data.Stats) bool
}

func (t Traversal) accept(path string, st *data.Stats) bool {
	return t.Accept == nil || t.Accept(path, st)
}

func (t Traversal) traverse(path string, st *data.Stats) bool {
	return t.Traverse == nil || t.Traverse(path, st)
}

// Scan visits the entries on axis from path, following symlinks. Entries
// that cannot be resolved are skipped; only a missing starting path fails.
func (fs *FileSystem) Scan(path string, axis Axis, traversal Traversal) (iter.Seq2[string, *data.Stats], error) {
	return fs.scan("scan", path, axis, traversal, false)
}

// Lscan is Scan without following symlinks.
func (fs *FileSystem) Lscan(path string, axis Axis, traversal Traversal) (iter.Seq2[string, *data.Stats], error) {
	return fs.scan("lscan", path, axis, traversal, true)
}

func (fs *FileSystem) scan(op, path string, axis Axis, traversal Traversal, noFollow bool) (iter.Seq2[string, *data.Stats], error) {
	resolved, err := fs.resolve(path)
	if err != nil {
		return nil, wrap(op, path, err)
	}
	res, err := fs.lookup(op, resolved, noFollow)
	if err != nil {
		return nil, err
	}
	start := fs.stat(res.node)

	return func(yield func(string, *data.Stats) bool) {
		if axis.includesSelf() && traversal.accept(resolved, start) {
			if !yield(resolved, start) {
				return
			}
		}

		switch axis {
		case Ancestors, AncestorsOrSelf:
			fs.scanAncestors(resolved, traversal, noFollow, yield)
		case Descendants, DescendantsOrSelf:
			fs.scanDescendants(resolved, start, traversal, noFollow, yield)
		}
	}, nil
}

func (fs *FileSystem) statNoFail(path string, noFollow bool) *data.Stats {
	res, err := fs.walk(path, walkMode{noFollow: noFollow})
	if err != nil || res == nil || res.node == nil {
		return nil
	}
	return fs.stat(res.node)
}

func (fs *FileSystem) scanAncestors(path string, traversal Traversal, noFollow bool, yield func(string, *data.Stats) bool) {
	for {
		dirname := vpath.Dirname(path)
		if dirname == path {
			return
		}
		path = dirname

		st := fs.statNoFail(path, noFollow)
		if st == nil || !traversal.traverse(path, st) {
			return
		}
		if traversal.accept(path, st) && !yield(path, st) {
			return
		}
	}
}

func (fs *FileSystem) scanDescendants(path string, start *data.Stats, traversal Traversal, noFollow bool, yield func(string, *data.Stats) bool) {
	type entry struct {
		path string
		st   *data.Stats
		// visit marks entries still to be yielded before descending.
		visit bool
	}

	// Directories reached twice through symlinks are expanded once.
	expanded := make(map[nodeKey]struct{})
	stack := []entry{{path: path, st: start}}

	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if e.visit && traversal.accept(e.path, e.st) && !yield(e.path, e.st) {
			return
		}
		if !e.st.IsDirectory() || !traversal.traverse(e.path, e.st) {
			continue
		}

		key := nodeKey{dev: e.st.Dev, ino: e.st.Ino}
		if _, ok := expanded[key]; ok {
			continue
		}
		expanded[key] = struct{}{}

		names, err := fs.Readdir(e.path)
		if err != nil {
			continue
		}
		for _, name := range slices.Backward(names) {
			child := vpath.Combine(e.path, name)
			if st := fs.statNoFail(child, noFollow); st != nil {
				stack = append(stack, entry{path: child, st: st, visit: true})
			}
		}
	}
}
