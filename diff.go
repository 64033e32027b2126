package layerfs

import (
	"bytes"
	"reflect"
	"slices"

	"github.com/mwantia/layerfs/data"
	"github.com/mwantia/layerfs/resolver"
)

// DiffOptions controls Diff.
type DiffOptions struct {
	// IncludeChangedFileWithSameContent reports files that were rewritten
	// without a change of content, as SameFileContentFile or, when only the
	// modification time differs, SameFileWithModifiedTime.
	IncludeChangedFileWithSameContent bool
	// BaseIsNotShadowRoot keeps a nil base from defaulting to the shadow
	// root, so every entry is reported as created.
	BaseIsNotShadowRoot bool
	// Path restricts the comparison to one subtree. The result is keyed by
	// the resolved path instead of the roots.
	Path string
}

// Diff returns the changes that turn base into fs. A nil base means the
// shadow root of fs. The result is nil if there is no difference.
func (fs *FileSystem) Diff(base *FileSystem, opts DiffOptions) (FileSet, error) {
	if base == nil && !opts.BaseIsNotShadowRoot {
		base = fs.shadowRoot
	}
	return Diff(fs, base, opts)
}

// Diff returns the changes that turn base into changed, keyed from the roots
// ("/": &Directory{...}). A nil base reports everything in changed as
// created. The result is nil if there is no difference.
func Diff(changed, base *FileSystem, opts DiffOptions) (FileSet, error) {
	if changed == nil {
		return nil, data.NewPathError(data.EINVAL, "diff", opts.Path)
	}

	d := &differ{
		changed: changed,
		base:    base,
		opts:    opts,
		root:    &diffFrame{files: FileSet{}},
	}

	var err error
	if opts.Path != "" {
		err = d.diffPath(opts.Path)
	} else {
		err = d.diffRoots()
	}
	if err != nil {
		return nil, err
	}

	if !d.root.active {
		return nil, nil
	}
	return d.root.files, nil
}

// diffFrame is the output container of one directory pair. It is linked
// into its parent only once a change below it is recorded.
type diffFrame struct {
	parent *diffFrame
	name   string
	files  FileSet
	active bool
}

func (f *diffFrame) record(name string, entry any) {
	for a := f; a != nil && !a.active; a = a.parent {
		a.active = true
		if a.parent != nil {
			a.parent.files[a.name] = &Directory{Files: a.files}
		}
	}
	f.files[name] = entry
}

type diffTask struct {
	frame   *diffFrame
	name    string
	changed *node
	base    *node
}

type differ struct {
	changed *FileSystem
	base    *FileSystem
	opts    DiffOptions

	root  *diffFrame
	tasks []diffTask
}

func (d *differ) diffRoots() error {
	links, err := d.changed.rootLinks()
	if err != nil {
		return err
	}

	if d.base == nil {
		names, nodes := d.changed.children(links)
		for i, name := range names {
			if err := d.created(d.root, name, nodes[i]); err != nil {
				return err
			}
		}
		return nil
	}

	baseLinks, err := d.base.rootLinks()
	if err != nil {
		return err
	}
	if links.sameTrees(baseLinks) {
		return nil
	}

	if err := d.diffTables(d.root, links, baseLinks); err != nil {
		return err
	}
	return d.run()
}

func (d *differ) diffPath(path string) error {
	var key string
	var changedNode, baseNode *node

	if resolved, err := d.changed.resolve(path); err == nil {
		if res, err := d.changed.walk(resolved, walkMode{}); err == nil && res != nil && res.node != nil {
			key, changedNode = res.realpath, res.node
		}
	}
	if d.base != nil {
		if resolved, err := d.base.resolve(path); err == nil {
			if res, err := d.base.walk(resolved, walkMode{}); err == nil && res != nil && res.node != nil {
				baseNode = res.node
				if key == "" {
					key = res.realpath
				}
			}
		}
	}

	switch {
	case changedNode == nil && baseNode == nil:
		return nil
	case changedNode == nil:
		return d.deleted(d.root, key, baseNode)
	}

	d.tasks = append(d.tasks, diffTask{frame: d.root, name: key, changed: changedNode, base: baseNode})
	return d.run()
}

func (d *differ) run() error {
	for len(d.tasks) > 0 {
		task := d.tasks[len(d.tasks)-1]
		d.tasks = d.tasks[:len(d.tasks)-1]

		if err := d.diffNode(task); err != nil {
			return err
		}
	}
	return nil
}

// diffTables records deleted entries and queues every entry of the changed table.
func (d *differ) diffTables(frame *diffFrame, links, baseLinks *table) error {
	baseNames, baseNodes := d.base.children(baseLinks)
	for i, name := range baseNames {
		if !links.has(name) {
			if err := d.deleted(frame, name, baseNodes[i]); err != nil {
				return err
			}
		}
	}

	names, nodes := d.changed.children(links)
	for i, name := range names {
		var baseNode *node
		if _, n, ok := baseLinks.get(name); ok {
			baseNode = d.base.view(n)
		}
		d.tasks = append(d.tasks, diffTask{frame: frame, name: name, changed: nodes[i], base: baseNode})
	}
	return nil
}

func (d *differ) diffNode(task diffTask) error {
	c, b := task.changed, task.base
	switch {
	case b == nil, c.mode.Type() != b.mode.Type():
		return d.created(task.frame, task.name, c)
	case c == b:
		return nil
	}

	rc, rb := representative(c), representative(b)
	same := rc == rb || samePending(rc, rb)

	switch {
	case c.isFile():
		return d.diffFile(task.frame, task.name, c, b, same)

	case same:
		return nil

	case c.isDir():
		links, err := getLinks(rc)
		if err != nil {
			return err
		}
		baseLinks, err := getLinks(rb)
		if err != nil {
			return err
		}
		if links.sameTrees(baseLinks) || (links.len() == 0 && baseLinks.len() == 0) {
			return nil
		}
		frame := &diffFrame{parent: task.frame, name: task.name, files: FileSet{}}
		return d.diffTables(frame, links, baseLinks)
	}

	if c.symlink != b.symlink {
		task.frame.record(task.name, &Symlink{Target: c.symlink})
	}
	return nil
}

// diffFile compares two regular files. same is set when both read the same
// content without loading it; only the timestamps can differ then.
func (d *differ) diffFile(frame *diffFrame, name string, c, b *node, same bool) error {
	if same && (!d.opts.IncludeChangedFileWithSameContent || c.mtime.Equal(b.mtime)) {
		return nil
	}

	buf, err := getBuffer(c)
	if err != nil {
		return err
	}
	baseBuf := buf
	if !same {
		if baseBuf, err = getBuffer(b); err != nil {
			return err
		}
	}

	switch {
	case buf == baseBuf:
		if d.opts.IncludeChangedFileWithSameContent && !c.mtime.Equal(b.mtime) {
			frame.record(name, &SameFileWithModifiedTime{Data: slices.Clone(buf.data)})
		}
	case bytes.Equal(buf.data, baseBuf.data):
		if d.opts.IncludeChangedFileWithSameContent {
			frame.record(name, &SameFileContentFile{Data: slices.Clone(buf.data)})
		}
	default:
		frame.record(name, &File{Data: slices.Clone(buf.data)})
	}
	return nil
}

func (d *differ) created(frame *diffFrame, name string, n *node) error {
	entry, err := enumerate(d.changed, n)
	if err != nil {
		return err
	}
	frame.record(name, entry)
	return nil
}

func (d *differ) deleted(frame *diffFrame, name string, n *node) error {
	if !n.isDir() {
		frame.record(name, &Unlink{})
		return nil
	}

	entry, err := enumerate(d.base, n)
	if err != nil {
		return err
	}
	rmdir := &Rmdir{}
	if dir, ok := entry.(*Directory); ok {
		rmdir.Files = dir.Files
	}
	frame.record(name, rmdir)
	return nil
}

// representative follows n down the shadow chain to the node that holds its
// content: the first one that is loaded or still pending.
func representative(n *node) *node {
	for !loaded(n) {
		if _, _, ok := pending(n); ok {
			return n
		}
		s := n.shadowed()
		if s == nil {
			return n
		}
		n = s
	}
	return n
}

// samePending reports whether a and b are both unread mounts of one source.
func samePending(a, b *node) bool {
	ar, as, aok := pending(a)
	br, bs, bok := pending(b)
	return aok && bok && as == bs && sameResolver(ar, br)
}

// sameResolver compares resolvers by identity. Values that hold maps, slices
// or funcs, directly or behind interface fields, never compare equal.
func sameResolver(a, b resolver.Resolver) bool {
	if a == nil || b == nil {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Kind() == reflect.Pointer {
		return va.Pointer() == vb.Pointer()
	}
	return va.Comparable() && vb.Comparable() && va.Equal(vb)
}

// enumerate returns n and everything below it as FileSet entries. Unread
// mounts are reported as *Mount and not descended into.
func enumerate(fs *FileSystem, n *node) (any, error) {
	type item struct {
		files FileSet
		name  string
		node  *node
	}

	var result any
	stack := []item{{node: n}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entry, err := entryOf(it.node)
		if err != nil {
			return nil, err
		}
		if it.files == nil {
			result = entry
		} else {
			it.files[it.name] = entry
		}

		dir, ok := entry.(*Directory)
		if !ok {
			continue
		}
		links, err := getLinks(it.node)
		if err != nil {
			return nil, err
		}
		names, nodes := fs.children(links)
		for i, name := range names {
			stack = append(stack, item{files: dir.Files, name: name, node: nodes[i]})
		}
	}
	return result, nil
}

func entryOf(n *node) (any, error) {
	if r, source, ok := pending(n); ok {
		return &Mount{Source: source, Resolver: r}, nil
	}

	switch {
	case n.isDir():
		return &Directory{Files: FileSet{}}, nil
	case n.isSymlink():
		return &Symlink{Target: n.symlink}, nil
	}

	buf, err := getBuffer(n)
	if err != nil {
		return nil, err
	}
	return &File{Data: slices.Clone(buf.data)}, nil
}
