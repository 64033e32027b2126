package layerfs

import (
	"github.com/mwantia/layerfs/data"
	"github.com/mwantia/layerfs/vpath"
)

// Link creates newpath as a hard link to the file at oldpath. A final symlink
// in oldpath is followed, so linking a symlink links its target.
func (fs *FileSystem) Link(oldpath, newpath string) error {
	if err := fs.checkWritable("link", newpath); err != nil {
		return err
	}

	oldResolved, err := fs.resolve(oldpath)
	if err != nil {
		return wrap("link", oldpath, err)
	}
	newResolved, err := fs.resolve(newpath)
	if err != nil {
		return wrap("link", newpath, err)
	}

	src, err := fs.walk(oldResolved, walkMode{write: true})
	if err != nil {
		return wrap("link", oldpath, err)
	}
	switch {
	case src.node == nil:
		return data.NewPathError(data.ENOENT, "link", oldpath)
	case src.node.isDir():
		return data.NewPathError(data.EPERM, "link", oldpath)
	}

	dst, err := fs.walk(newResolved, walkMode{noFollow: true, write: true})
	if err != nil {
		return wrap("link", newpath, err)
	}
	switch {
	case dst.parent == nil:
		return data.NewPathError(data.EPERM, "link", newpath)
	case dst.node != nil:
		return data.NewPathError(data.EEXIST, "link", newpath)
	}

	addLink(dst.parent, dst.links, dst.basename, src.node, fs.clock.tick())
	return nil
}

// Unlink removes the name path. The node is dropped with its last link.
func (fs *FileSystem) Unlink(path string) error {
	if err := fs.checkWritable("unlink", path); err != nil {
		return err
	}

	resolved, err := fs.resolve(path)
	if err != nil {
		return wrap("unlink", path, err)
	}

	res, err := fs.walk(resolved, walkMode{noFollow: true, write: true})
	if err != nil {
		return wrap("unlink", path, err)
	}
	switch {
	case res.parent == nil:
		return data.NewPathError(data.EPERM, "unlink", path)
	case res.node == nil:
		return data.NewPathError(data.ENOENT, "unlink", path)
	case res.node.isDir():
		return data.NewPathError(data.EISDIR, "unlink", path)
	}

	removeLink(res.parent, res.links, res.basename, res.node, fs.clock.tick())
	return nil
}

// Symlink creates path as a symbolic link to target. The target is stored
// as given and does not need to exist.
func (fs *FileSystem) Symlink(target, path string) error {
	if err := fs.checkWritable("symlink", path); err != nil {
		return err
	}

	resolved, err := fs.resolve(path)
	if err != nil {
		return wrap("symlink", path, err)
	}
	target, err = vpath.Validate(target, vpath.RelativeOrAbsolute)
	if err != nil {
		return wrap("symlink", target, err)
	}

	res, err := fs.walk(resolved, walkMode{noFollow: true, write: true})
	if err != nil {
		return wrap("symlink", path, err)
	}
	switch {
	case res.parent == nil:
		return data.NewPathError(data.EPERM, "symlink", path)
	case res.node != nil:
		return data.NewPathError(data.EEXIST, "symlink", path)
	}

	t := fs.clock.tick()
	n := fs.layer.mknod(res.parent.dev, data.ModeSymlink|data.DefaultSymlinkMode, t)
	n.symlink = target
	addLink(res.parent, res.links, res.basename, n, t)
	return nil
}

// Rename moves the entry oldpath to newpath, keeping the node and its link
// count. An existing newpath is replaced if the types are compatible.
func (fs *FileSystem) Rename(oldpath, newpath string) error {
	if err := fs.checkWritable("rename", oldpath); err != nil {
		return err
	}

	oldResolved, err := fs.resolve(oldpath)
	if err != nil {
		return wrap("rename", oldpath, err)
	}
	newResolved, err := fs.resolve(newpath)
	if err != nil {
		return wrap("rename", newpath, err)
	}

	src, err := fs.walk(oldResolved, walkMode{noFollow: true, write: true})
	if err != nil {
		return wrap("rename", oldpath, err)
	}
	switch {
	case src.parent == nil:
		return data.NewPathError(data.EPERM, "rename", oldpath)
	case src.node == nil:
		return data.NewPathError(data.ENOENT, "rename", oldpath)
	}

	dst, err := fs.walk(newResolved, walkMode{noFollow: true, write: true})
	if err != nil {
		return wrap("rename", newpath, err)
	}
	if dst.parent == nil {
		return data.NewPathError(data.EPERM, "rename", newpath)
	}

	t := fs.clock.tick()
	n := src.node

	if dst.node == n {
		// Relabel only when both names are the same entry, e.g. a change of
		// case on a case-insensitive instance. Two hard links stay as they are.
		if dst.parent == src.parent && vpath.CompareStrings(src.basename, dst.basename, fs.opts.IgnoreCase) == 0 {
			src.links.delete(src.basename)
			src.links.set(vpath.Basename(newResolved), n)
			src.parent.mtime = t
			src.parent.ctime = t
		}
		return nil
	}

	if n.isDir() && vpath.BeneathOrEqual(src.realpath, dst.realpath, fs.opts.IgnoreCase) {
		return data.NewPathError(data.EINVAL, "rename", newpath)
	}

	if dst.node != nil {
		if n.isDir() {
			if !dst.node.isDir() {
				return data.NewPathError(data.ENOTDIR, "rename", newpath)
			}
			links, err := getLinks(dst.node)
			if err != nil {
				return wrap("rename", newpath, err)
			}
			if links.len() > 0 {
				return data.NewPathError(data.ENOTEMPTY, "rename", newpath)
			}
		} else if dst.node.isDir() {
			return data.NewPathError(data.EISDIR, "rename", newpath)
		}
		removeLink(dst.parent, dst.links, dst.basename, dst.node, t)
	}

	if src.parent == dst.parent {
		src.links.delete(src.basename)
		src.links.set(dst.basename, n)
		src.parent.mtime = t
		src.parent.ctime = t
	} else {
		removeLink(src.parent, src.links, src.basename, n, t)
		addLink(dst.parent, dst.links, dst.basename, n, t)
	}
	n.ctime = t
	return nil
}
