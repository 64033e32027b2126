package layerfs

import (
	"github.com/mwantia/layerfs/data"
	"github.com/mwantia/layerfs/vpath"
)

// mkdir links a new directory under res.basename. A directory without a
// parent is a new root and gets its own device.
func (fs *FileSystem) mkdir(res *walkResult) {
	var dev uint64
	if res.parent != nil {
		dev = res.parent.dev
	} else {
		dev = devCount.Add(1)
	}

	t := fs.clock.tick()
	n := fs.layer.mknod(dev, data.ModeDir|data.DefaultDirMode, t)
	addLink(res.parent, res.links, res.basename, n, t)
}

// Mkdir creates the directory path. Its parent must exist.
func (fs *FileSystem) Mkdir(path string) error {
	if err := fs.checkWritable("mkdir", path); err != nil {
		return err
	}

	resolved, err := fs.resolve(path)
	if err != nil {
		return wrap("mkdir", path, err)
	}

	res, err := fs.walk(resolved, walkMode{noFollow: true, write: true})
	if err != nil {
		return wrap("mkdir", path, err)
	}
	if res.node != nil {
		return data.NewPathError(data.EEXIST, "mkdir", path)
	}

	fs.mkdir(res)
	return nil
}

// Mkdirp creates the directory path together with every missing ancestor.
// It does nothing when path already is a directory.
func (fs *FileSystem) Mkdirp(path string) error {
	if err := fs.checkWritable("mkdirp", path); err != nil {
		return err
	}

	resolved, err := fs.resolve(path)
	if err != nil {
		return wrap("mkdirp", path, err)
	}

	if res, err := fs.walk(resolved, walkMode{}); err == nil && res.node.isDir() {
		return nil
	}

	res, err := fs.walk(resolved, walkMode{
		noFollow: true,
		write:    true,
		hook: func(code data.Errno, res *walkResult) WalkAction {
			if code == data.ENOENT {
				fs.mkdir(res)
				return WalkRetry
			}
			return WalkThrow
		},
	})
	if err != nil {
		return wrap("mkdirp", path, err)
	}

	switch {
	case res.node == nil:
		fs.mkdir(res)
	case !res.node.isDir():
		return data.NewPathError(data.EEXIST, "mkdirp", path)
	}
	return nil
}

// Rmdir removes the empty directory path.
func (fs *FileSystem) Rmdir(path string) error {
	if err := fs.checkWritable("rmdir", path); err != nil {
		return err
	}

	resolved, err := fs.resolve(path)
	if err != nil {
		return wrap("rmdir", path, err)
	}

	res, err := fs.walk(resolved, walkMode{noFollow: true, write: true})
	if err != nil {
		return wrap("rmdir", path, err)
	}
	switch {
	case res.parent == nil:
		return data.NewPathError(data.EPERM, "rmdir", path)
	case res.node == nil:
		return data.NewPathError(data.ENOENT, "rmdir", path)
	case !res.node.isDir():
		return data.NewPathError(data.ENOTDIR, "rmdir", path)
	}

	links, err := getLinks(res.node)
	if err != nil {
		return wrap("rmdir", path, err)
	}
	if links.len() > 0 {
		return data.NewPathError(data.ENOTEMPTY, "rmdir", path)
	}

	removeLink(res.parent, res.links, res.basename, res.node, fs.clock.tick())
	return nil
}

// Rimraf removes path and, for a directory, everything beneath it.
// A missing path is not an error; every other failure is collected and
// the removal continues with the remaining entries.
func (fs *FileSystem) Rimraf(path string) error {
	if err := fs.checkWritable("rimraf", path); err != nil {
		return err
	}

	resolved, err := fs.resolve(path)
	if err != nil {
		return wrap("rimraf", path, err)
	}

	type frame struct {
		path    string
		visited bool
	}

	var errs data.Errors
	stack := []frame{{path: resolved}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		st, err := fs.Lstat(f.path)
		if err != nil {
			if code, _ := data.Code(err); code != data.ENOENT {
				errs.Add(err)
			}
			continue
		}

		if !st.IsDirectory() {
			errs.Add(fs.Unlink(f.path))
			continue
		}

		if f.visited {
			errs.Add(fs.Rmdir(f.path))
			continue
		}

		names, err := fs.Readdir(f.path)
		if err != nil {
			errs.Add(err)
			continue
		}
		stack = append(stack, frame{path: f.path, visited: true})
		for _, name := range names {
			stack = append(stack, frame{path: vpath.Combine(f.path, name)})
		}
	}

	return errs.Errors()
}
