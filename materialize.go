package layerfs

import (
	"context"

	"github.com/mwantia/layerfs/data"
	"github.com/mwantia/layerfs/resolver"
	"github.com/mwantia/layerfs/vpath"
)

// getLinks returns the directory table of n, materializing a pending mount
// or reading through the shadowed node on first access.
func getLinks(n *node) (*table, error) {
	l := n.layer
	l.mu.Lock()
	defer l.mu.Unlock()

	if n.links != nil {
		return n.links, nil
	}

	s := n.shadowed()
	switch {
	case n.resolver != nil:
		links, err := l.materializeLinks(n)
		if err != nil {
			return nil, err
		}
		n.links = links
		n.resolver, n.source = nil, ""

	case s != nil:
		base, err := getLinks(s)
		if err != nil {
			return nil, err
		}
		n.links = base.share(l.tableOpts)

	default:
		n.links = newTable(l.tableOpts)
	}

	return n.links, nil
}

// getBuffer returns the content of the regular file n.
func getBuffer(n *node) (*buffer, error) {
	l := n.layer
	l.mu.Lock()
	defer l.mu.Unlock()

	if n.buf != nil {
		return n.buf, nil
	}

	s := n.shadowed()
	switch {
	case n.resolver != nil:
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()

		content, err := n.resolver.ReadAll(ctx, n.source)
		if err != nil {
			l.logger.Warn("failed to read mounted file '%s': %v", n.source, err)
			return nil, &data.PathError{Op: "read", Path: n.source, Code: data.EIO, Err: err}
		}
		l.logger.Debug("materialized '%s' (%d bytes)", n.source, len(content))

		n.buf = &buffer{data: content}
		n.resolver, n.source = nil, ""

	case s != nil:
		base, err := getBuffer(s)
		if err != nil {
			return nil, err
		}
		n.buf = base

	default:
		n.buf = emptyBuffer
	}

	return n.buf, nil
}

// getSize returns the size of the regular file n without materializing it.
func getSize(n *node) int64 {
	l := n.layer
	l.mu.Lock()
	defer l.mu.Unlock()

	if n.buf != nil {
		return int64(len(n.buf.data))
	}
	if n.resolver != nil {
		return n.size
	}
	if s := n.shadowed(); s != nil {
		return getSize(s)
	}
	return 0
}

// getMeta returns the metadata record of n, chained to the record of the
// shadowed node.
func getMeta(n *node) *data.Metadata {
	l := n.layer
	l.mu.Lock()
	defer l.mu.Unlock()

	if n.meta == nil {
		var parent *data.Metadata
		if s := n.shadowed(); s != nil {
			parent = getMeta(s)
		}
		n.meta = data.NewMetadata(parent)
	}
	return n.meta
}

// pending returns the mount descriptor of n while it is not materialized.
func pending(n *node) (resolver.Resolver, string, bool) {
	l := n.layer
	l.mu.Lock()
	defer l.mu.Unlock()

	return n.resolver, n.source, n.resolver != nil
}

// loaded reports whether the links or buffer of n are present locally.
func loaded(n *node) bool {
	l := n.layer
	l.mu.Lock()
	defer l.mu.Unlock()

	return n.links != nil || n.buf != nil
}

// materializeLinks builds the table of a mounted directory. Child entries
// stay pending until they are accessed themselves. Must hold l.mu.
func (l *layer) materializeLinks(n *node) (*table, error) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	names, err := n.resolver.List(ctx, n.source)
	if err != nil {
		l.logger.Warn("failed to list mounted directory '%s': %v", n.source, err)
		return nil, &data.PathError{Op: "readdir", Path: n.source, Code: data.EIO, Err: err}
	}

	t := l.clock.tick()
	links := newTable(l.tableOpts)
	for _, name := range names {
		source := vpath.Combine(n.source, name)
		stat, err := n.resolver.Stat(ctx, source)
		if err != nil {
			l.logger.Warn("failed to stat mounted entry '%s': %v", source, err)
			return nil, &data.PathError{Op: "stat", Path: source, Code: data.EIO, Err: err}
		}

		var child *node
		switch stat.Mode.Type() {
		case data.ModeDir:
			child = l.mknod(n.dev, data.ModeDir|data.DefaultDirMode, t)
		case data.ModeFile:
			child = l.mknod(n.dev, data.ModeFile|data.DefaultFileMode, t)
			child.size = stat.Size
		default:
			continue
		}
		child.resolver = n.resolver
		child.source = source

		addLink(nil, links, name, child, t)
	}

	l.logger.Debug("materialized '%s' (%d entries)", n.source, links.len())
	return links, nil
}
