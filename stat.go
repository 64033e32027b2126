package layerfs

import (
	"time"

	"github.com/mwantia/layerfs/data"
)

func (fs *FileSystem) stat(n *node) *data.Stats {
	var size int64
	switch {
	case n.isFile():
		size = getSize(n)
	case n.isSymlink():
		size = int64(len(n.symlink))
	}

	return &data.Stats{
		Dev:     n.dev,
		Ino:     n.ino,
		Mode:    n.mode,
		Nlink:   n.nlink,
		Size:    size,
		Blksize: data.DefaultBlockSize,

		AccessTime: n.atime,
		ModifyTime: n.mtime,
		ChangeTime: n.ctime,
		BirthTime:  n.birthtime,
	}
}

func (fs *FileSystem) statPath(op, path string, noFollow bool) (*data.Stats, error) {
	resolved, err := fs.resolve(path)
	if err != nil {
		return nil, wrap(op, path, err)
	}

	res, err := fs.lookup(op, resolved, noFollow)
	if err != nil {
		return nil, err
	}
	return fs.stat(res.node), nil
}

// Stat returns information about path, following symlinks.
func (fs *FileSystem) Stat(path string) (*data.Stats, error) {
	return fs.statPath("stat", path, false)
}

// Lstat returns information about path without following a final symlink.
func (fs *FileSystem) Lstat(path string) (*data.Stats, error) {
	return fs.statPath("lstat", path, true)
}

// Readdir returns the entry names of the directory at path in table order.
func (fs *FileSystem) Readdir(path string) ([]string, error) {
	resolved, err := fs.resolve(path)
	if err != nil {
		return nil, wrap("readdir", path, err)
	}

	res, err := fs.lookup("readdir", resolved, false)
	if err != nil {
		return nil, err
	}
	if !res.node.isDir() {
		return nil, data.NewPathError(data.ENOTDIR, "readdir", path)
	}

	links, err := fs.linksOf(res.node, false)
	if err != nil {
		return nil, wrap("readdir", path, err)
	}
	return links.keys(), nil
}

// Readlink returns the unresolved target of the symlink at path.
func (fs *FileSystem) Readlink(path string) (string, error) {
	resolved, err := fs.resolve(path)
	if err != nil {
		return "", wrap("readlink", path, err)
	}

	res, err := fs.lookup("readlink", resolved, true)
	if err != nil {
		return "", err
	}
	if !res.node.isSymlink() {
		return "", data.NewPathError(data.EINVAL, "readlink", path)
	}
	return res.node.symlink, nil
}

// Filemeta returns the metadata record of the node at path.
func (fs *FileSystem) Filemeta(path string) (*data.Metadata, error) {
	return fs.filemeta(path, false)
}

func (fs *FileSystem) filemeta(path string, noFollow bool) (*data.Metadata, error) {
	resolved, err := fs.resolve(path)
	if err != nil {
		return nil, wrap("filemeta", path, err)
	}

	// A mutable instance keeps its records on its own nodes so that
	// changes never reach the shadow root.
	res, err := fs.walk(resolved, walkMode{noFollow: noFollow, write: !fs.frozen})
	if err != nil {
		return nil, wrap("filemeta", path, err)
	}
	if res == nil || res.node == nil {
		return nil, data.NewPathError(data.ENOENT, "filemeta", path)
	}
	return getMeta(res.node), nil
}

// Utimes sets the access and modification times of path.
func (fs *FileSystem) Utimes(path string, atime, mtime time.Time) error {
	if err := fs.checkWritable("utimes", path); err != nil {
		return err
	}
	if atime.IsZero() || mtime.IsZero() {
		return data.NewPathError(data.EINVAL, "utimes", path)
	}

	resolved, err := fs.resolve(path)
	if err != nil {
		return wrap("utimes", path, err)
	}

	res, err := fs.walk(resolved, walkMode{write: true})
	if err != nil {
		return wrap("utimes", path, err)
	}
	if res == nil || res.node == nil {
		return data.NewPathError(data.ENOENT, "utimes", path)
	}

	res.node.atime = atime
	res.node.mtime = mtime
	res.node.ctime = fs.clock.tick()
	return nil
}
