package layerfs

import (
	"slices"

	"github.com/mwantia/layerfs/data"
	"github.com/mwantia/layerfs/vpath"
)

// WalkAction tells walk how to continue after a resolution error.
type WalkAction int

const (
	// WalkThrow returns the error to the caller.
	WalkThrow WalkAction = iota
	// WalkRetry resolves the failed step again, once.
	WalkRetry
	// WalkStop ends the walk without a result and without an error.
	WalkStop
)

// walkResult is the outcome of resolving a path.
type walkResult struct {
	realpath string
	basename string
	// parent is nil when the path names a root.
	parent *node
	links  *table
	// node is nil when the final component does not exist.
	node *node
}

type walkHook func(err data.Errno, res *walkResult) WalkAction

type walkMode struct {
	noFollow bool
	// write owns every node on the way into the layer of the file system,
	// copying directory tables as needed, so the result can be mutated.
	write bool
	hook  walkHook
}

// walk resolves the absolute, normalized path. Component names are replaced
// by their stored spelling, so realpath reflects the canonical casing.
// A write walk without a hook first resolves read-only, so a path that does
// not resolve leaves the layer untouched.
func (fs *FileSystem) walk(path string, mode walkMode) (*walkResult, error) {
	if mode.write && mode.hook == nil {
		res, err := fs.walk(path, walkMode{noFollow: mode.noFollow})
		if err != nil || res == nil {
			return res, err
		}
	}

	links, err := fs.rootLinks()
	if err != nil {
		return nil, err
	}

	var parent *node
	components := vpath.Parse(path)
	step, depth := 0, 0
	retry := false

	trap := func(code data.Errno, n *node) (bool, error) {
		result := WalkThrow
		if !retry && mode.hook != nil {
			result = mode.hook(code, &walkResult{
				realpath: vpath.Format(components[:step+1]),
				basename: components[step],
				parent:   parent,
				links:    links,
				node:     n,
			})
		}

		switch result {
		case WalkStop:
			return false, nil
		case WalkRetry:
			retry = true
			return true, nil
		}
		return false, code
	}

	for {
		lastStep := step == len(components)-1
		basename := components[step]

		name, n, ok := links.get(basename)
		if ok {
			basename = name
			components[step] = name
			n = fs.view(n)
			if mode.write {
				n = fs.ownEntry(links, name, n)
			}
		}

		if lastStep && (mode.noFollow || !n.isSymlink()) {
			return &walkResult{
				realpath: vpath.Format(components),
				basename: basename,
				parent:   parent,
				links:    links,
				node:     n,
			}, nil
		}

		if n == nil {
			if again, err := trap(data.ENOENT, nil); again || err != nil {
				if err != nil {
					return nil, err
				}
				continue
			}
			return nil, nil
		}

		if n.isSymlink() {
			if depth >= fs.opts.MaxSymlinkDepth {
				return nil, data.ELOOP
			}
			dirname := vpath.Format(components[:step])
			target := vpath.Resolve(dirname, n.symlink)

			if links, err = fs.rootLinks(); err != nil {
				return nil, err
			}
			parent = nil
			components = append(vpath.Parse(target), components[step+1:]...)
			step = 0
			depth++
			retry = false
			continue
		}

		if n.isDir() {
			if links, err = fs.linksOf(n, mode.write); err != nil {
				return nil, err
			}
			parent = n
			step++
			retry = false
			continue
		}

		if again, err := trap(data.ENOTDIR, n); again || err != nil {
			if err != nil {
				return nil, err
			}
			continue
		}
		return nil, nil
	}
}

// linksOf returns the table of the directory n. In write mode n must be owned
// by fs and the returned table is private to it.
func (fs *FileSystem) linksOf(n *node, write bool) (*table, error) {
	links, err := getLinks(n)
	if err != nil {
		return nil, err
	}
	if write {
		links.writePreamble()
		return links, nil
	}

	// A shadow may compare names differently than the instance that owns n.
	if links.opts != fs.layer.tableOpts {
		return links.share(fs.layer.tableOpts), nil
	}
	return links, nil
}

// ownEntry owns n and points the entry name of links at the owned version.
func (fs *FileSystem) ownEntry(links *table, name string, n *node) *node {
	owned := fs.own(n)
	if _, current, _ := links.get(name); current != owned {
		links.set(name, owned)
	}
	return owned
}

// lookup is a read-only walk that follows symlinks and fails on missing nodes.
func (fs *FileSystem) lookup(op, path string, noFollow bool) (*walkResult, error) {
	res, err := fs.walk(path, walkMode{noFollow: noFollow})
	if err != nil {
		return nil, wrap(op, path, err)
	}
	if res == nil || res.node == nil {
		return nil, data.NewPathError(data.ENOENT, op, path)
	}
	return res, nil
}

// children returns the entry names and viewed nodes of a directory table.
func (fs *FileSystem) children(links *table) ([]string, []*node) {
	names := make([]string, 0, links.len())
	nodes := make([]*node, 0, links.len())
	links.scan(func(name string, n *node) bool {
		names = append(names, name)
		nodes = append(nodes, fs.view(n))
		return true
	})
	return slices.Clip(names), slices.Clip(nodes)
}
