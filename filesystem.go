// Package layerfs implements an in-memory, layered, POSIX-like file system.
//
// A FileSystem holds a tree of files, directories and symbolic links with
// inode semantics and hard links. Instances can be frozen and shadowed:
// a shadow reads through to its frozen shadow root and copies only the
// directories and nodes on the path of a write. Mounts pull content from
// a resolver lazily, and Diff reports the structural changes between two
// instances.
package layerfs

import (
	"time"
	"weak"

	"github.com/google/uuid"
	"github.com/mwantia/layerfs/data"
	"github.com/mwantia/layerfs/log"
)

// FileSystem is a mutable or frozen view of a layered tree.
//
// A mutable FileSystem must not be used from multiple goroutines at once.
// Frozen instances and their shadows may be read and written concurrently,
// as long as each shadow stays on one goroutine.
type FileSystem struct {
	id   uuid.UUID
	opts Options

	layer      *layer
	shadowRoot *FileSystem
	frozen     bool

	clock    *clock
	cwd      string
	dirStack []string

	baseLogger *log.Logger
	logger     *log.Logger
}

// New creates an empty file system configured by opts. The working
// directory is created, then Meta and Files options are applied.
func New(opts ...Option) (*FileSystem, error) {
	options := newDefaultOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	logger := options.Logger
	if logger == nil {
		logger = log.NewLogger("layerfs", options.LogLevel, options.LogFile, options.NoTerminalLog)
	}

	fs := newFileSystem(options, newClock(options), logger)

	if options.Cwd != "" {
		if err := fs.Mkdirp(options.Cwd); err != nil {
			return nil, err
		}
		fs.cwd = options.Cwd
	}

	if len(options.Meta) > 0 {
		meta := fs.Meta()
		for key, value := range options.Meta {
			meta.Set(key, value)
		}
	}

	if options.Files != nil {
		if err := fs.Apply("", options.Files); err != nil {
			return nil, err
		}
	}

	return fs, nil
}

func newFileSystem(opts *Options, c *clock, baseLogger *log.Logger) *FileSystem {
	id := uuid.Must(uuid.NewV7())
	logger := baseLogger.Named(id.String()[:8])

	return &FileSystem{
		id:         id,
		opts:       *opts,
		layer:      newLayer(opts, c, logger),
		clock:      c,
		baseLogger: baseLogger,
		logger:     logger,
	}
}

// ID returns the unique identifier of this instance.
func (fs *FileSystem) ID() uuid.UUID {
	return fs.id
}

// IgnoreCase reports whether name lookups are case-insensitive.
func (fs *FileSystem) IgnoreCase() bool {
	return fs.opts.IgnoreCase
}

// Time returns the current reading of the file system clock.
func (fs *FileSystem) Time() time.Time {
	return fs.clock.tick()
}

// SetTime fixes the clock at t. The clock is shared with snapshots and shadows.
func (fs *FileSystem) SetTime(t time.Time) error {
	if fs.frozen {
		return data.NewPathError(data.EPERM, "settime", "")
	}
	fs.clock.set(t)
	return nil
}

// Meta returns the metadata record of the file system. Unset keys are
// inherited from the shadow root.
func (fs *FileSystem) Meta() *data.Metadata {
	l := fs.layer
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.meta == nil {
		var parent *data.Metadata
		if fs.shadowRoot != nil {
			parent = fs.shadowRoot.Meta()
		}
		l.meta = data.NewMetadata(parent)
	}
	return l.meta
}

// view maps n to the version visible from fs: the proxy of the topmost
// layer that owns one, or n itself.
func (fs *FileSystem) view(n *node) *node {
	if n == nil {
		return nil
	}

	key := n.key()
	for f := fs; f != nil; f = f.shadowRoot {
		if n.layer == f.layer {
			return n
		}
		if p, ok := f.layer.proxies[key]; ok {
			return p
		}
	}
	return n
}

// own returns a version of n that belongs to the layer of fs, creating a
// proxy that shadows n if needed. n must already be viewed through fs.
func (fs *FileSystem) own(n *node) *node {
	if n.layer == fs.layer {
		return n
	}
	if p, ok := fs.layer.proxies[n.key()]; ok {
		return p
	}

	p := &node{
		layer:     fs.layer,
		dev:       n.dev,
		ino:       n.ino,
		mode:      n.mode,
		nlink:     n.nlink,
		atime:     n.atime,
		mtime:     n.mtime,
		ctime:     n.ctime,
		birthtime: n.birthtime,
		symlink:   n.symlink,
		shadow:    weak.Make(n),
	}
	fs.layer.proxies[n.key()] = p
	return p
}

// rootLinks returns the table of roots ("/", "c:/", ...) of fs.
func (fs *FileSystem) rootLinks() (*table, error) {
	l := fs.layer
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.roots == nil {
		if fs.shadowRoot != nil {
			base, err := fs.shadowRoot.rootLinks()
			if err != nil {
				return nil, err
			}
			l.roots = base.share(l.tableOpts)
		} else {
			l.roots = newTable(l.tableOpts)
		}
	}
	return l.roots, nil
}

func (fs *FileSystem) checkWritable(op, path string) error {
	if fs.frozen {
		return data.NewPathError(data.EROFS, op, path)
	}
	return nil
}
