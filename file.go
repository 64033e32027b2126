package layerfs

import (
	"slices"

	"github.com/mwantia/layerfs/data"
)

// ReadFile returns a copy of the content of the file at path.
func (fs *FileSystem) ReadFile(path string) ([]byte, error) {
	resolved, err := fs.resolve(path)
	if err != nil {
		return nil, wrap("open", path, err)
	}

	res, err := fs.lookup("open", resolved, false)
	if err != nil {
		return nil, err
	}

	switch {
	case res.node.isDir():
		return nil, data.NewPathError(data.EISDIR, "read", path)
	case !res.node.isFile():
		return nil, data.NewPathError(data.EBADF, "read", path)
	}

	buf, err := getBuffer(res.node)
	if err != nil {
		return nil, wrap("read", path, err)
	}
	return slices.Clone(buf.data), nil
}

// ReadFileString returns the content of the file at path as a string.
func (fs *FileSystem) ReadFileString(path string) (string, error) {
	content, err := fs.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// WriteFile replaces the content of the file at path, creating it if needed.
// The parent directory must exist.
func (fs *FileSystem) WriteFile(path string, content []byte) error {
	if err := fs.checkWritable("write", path); err != nil {
		return err
	}

	resolved, err := fs.resolve(path)
	if err != nil {
		return wrap("open", path, err)
	}

	res, err := fs.walk(resolved, walkMode{write: true})
	if err != nil {
		return wrap("open", path, err)
	}
	if res == nil {
		return data.NewPathError(data.ENOENT, "open", path)
	}
	if res.parent == nil {
		return data.NewPathError(data.EPERM, "open", path)
	}

	t := fs.clock.tick()
	n := res.node
	if n == nil {
		n = fs.layer.mknod(res.parent.dev, data.ModeFile|data.DefaultFileMode, t)
		addLink(res.parent, res.links, res.basename, n, t)
	}

	switch {
	case n.isDir():
		return data.NewPathError(data.EISDIR, "write", path)
	case !n.isFile():
		return data.NewPathError(data.EBADF, "write", path)
	}

	n.buf = &buffer{data: slices.Clone(content)}
	n.size = int64(len(content))
	n.resolver, n.source = nil, ""
	n.mtime = t
	n.ctime = t
	return nil
}

// WriteFileString writes text to the file at path.
func (fs *FileSystem) WriteFileString(path, text string) error {
	return fs.WriteFile(path, []byte(text))
}
