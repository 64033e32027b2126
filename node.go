package layerfs

import (
	"sync"
	"sync/atomic"
	"time"
	"weak"

	"github.com/mwantia/layerfs/data"
	"github.com/mwantia/layerfs/log"
	"github.com/mwantia/layerfs/resolver"
)

var (
	devCount atomic.Uint64
	inoCount atomic.Uint64
)

// nodeKey identifies an inode across all layers.
type nodeKey struct {
	dev, ino uint64
}

// buffer is the immutable content of a regular file. Identity matters:
// two files sharing one *buffer are known to be equal without comparing bytes.
type buffer struct {
	data []byte
}

var emptyBuffer = &buffer{data: []byte{}}

// node is an inode: a regular file, a directory or a symbolic link.
//
// A node belongs to exactly one layer. Nodes of lower layers are never
// modified by a writer above them; instead the writer creates a proxy in its
// own layer under the same (dev, ino), with a weak reference to the node it
// shadows. Links and buffers of a proxy are pulled through that reference on
// first use.
type node struct {
	layer *layer

	dev   uint64
	ino   uint64
	mode  data.FileMode
	nlink int

	atime     time.Time
	mtime     time.Time
	ctime     time.Time
	birthtime time.Time

	meta   *data.Metadata
	shadow weak.Pointer[node]

	// directory
	links *table

	// regular file
	buf  *buffer
	size int64

	// pending mount, cleared once materialized
	resolver resolver.Resolver
	source   string

	// symbolic link
	symlink string
}

func (n *node) key() nodeKey {
	return nodeKey{dev: n.dev, ino: n.ino}
}

func (n *node) isFile() bool {
	return n != nil && n.mode.IsRegular()
}

func (n *node) isDir() bool {
	return n != nil && n.mode.IsDir()
}

func (n *node) isSymlink() bool {
	return n != nil && n.mode.IsSymlink()
}

// shadowed returns the node n reads through to, or nil.
func (n *node) shadowed() *node {
	return n.shadow.Value()
}

// layer holds the nodes created or proxied by one file system generation.
// Snapshot hands the layer over to the frozen instance.
type layer struct {
	// mu serializes lazy materialization of links, buffers and metadata
	// of nodes in this layer.
	mu sync.Mutex

	roots   *table
	proxies map[nodeKey]*node
	meta    *data.Metadata

	tableOpts tableOptions
	clock     *clock
	logger    *log.Logger
	timeout   time.Duration
}

func newLayer(opts *Options, c *clock, logger *log.Logger) *layer {
	return &layer{
		proxies: make(map[nodeKey]*node),
		tableOpts: tableOptions{
			ignoreCase:     opts.IgnoreCase,
			insertionOrder: opts.InsertionOrder,
		},
		clock:   c,
		logger:  logger,
		timeout: opts.ResolverTimeout,
	}
}

func (l *layer) mknod(dev uint64, mode data.FileMode, t time.Time) *node {
	return &node{
		layer:     l,
		dev:       dev,
		ino:       inoCount.Add(1),
		mode:      mode,
		atime:     t,
		mtime:     t,
		ctime:     t,
		birthtime: t,
	}
}

func addLink(parent *node, links *table, name string, n *node, t time.Time) {
	links.set(name, n)
	n.nlink++
	n.ctime = t
	if parent != nil {
		parent.mtime = t
	}
}

func removeLink(parent *node, links *table, name string, n *node, t time.Time) {
	links.delete(name)
	n.nlink--
	n.ctime = t
	if parent != nil {
		parent.mtime = t
	}
}
