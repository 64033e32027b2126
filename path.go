package layerfs

import (
	"github.com/mwantia/layerfs/data"
	"github.com/mwantia/layerfs/vpath"
)

// resolve validates p and makes it absolute against the working directory.
func (fs *FileSystem) resolve(p string) (string, error) {
	if fs.cwd != "" {
		valid, err := vpath.Validate(p, vpath.RelativeOrAbsolute)
		if err != nil {
			return "", err
		}
		return vpath.Resolve(fs.cwd, valid), nil
	}

	valid, err := vpath.Validate(p, vpath.Absolute)
	if err != nil {
		return "", err
	}
	return vpath.Normalize(valid), nil
}

// Cwd returns the working directory.
func (fs *FileSystem) Cwd() string {
	return fs.cwd
}

// Chdir changes the working directory to the existing directory path.
func (fs *FileSystem) Chdir(path string) error {
	if fs.frozen {
		return data.NewPathError(data.EPERM, "chdir", path)
	}

	resolved, err := fs.resolve(path)
	if err != nil {
		return wrap("chdir", path, err)
	}

	res, err := fs.lookup("chdir", resolved, false)
	if err != nil {
		return err
	}
	if !res.node.isDir() {
		return data.NewPathError(data.ENOTDIR, "chdir", path)
	}

	fs.cwd = resolved
	return nil
}

// Pushd saves the working directory on the directory stack and changes to
// path. An empty path only saves the working directory.
func (fs *FileSystem) Pushd(path string) error {
	if fs.frozen {
		return data.NewPathError(data.EPERM, "pushd", path)
	}

	fs.dirStack = append(fs.dirStack, fs.cwd)
	if path == "" {
		return nil
	}

	if err := fs.Chdir(path); err != nil {
		fs.dirStack = fs.dirStack[:len(fs.dirStack)-1]
		return err
	}
	return nil
}

// Popd restores the working directory saved by the last Pushd.
func (fs *FileSystem) Popd() error {
	if fs.frozen {
		return data.NewPathError(data.EPERM, "popd", "")
	}
	if len(fs.dirStack) == 0 {
		return nil
	}

	path := fs.dirStack[len(fs.dirStack)-1]
	fs.dirStack = fs.dirStack[:len(fs.dirStack)-1]
	if path == "" {
		fs.cwd = ""
		return nil
	}
	return fs.Chdir(path)
}

// Exists reports whether path names an entry. A dangling symlink exists.
func (fs *FileSystem) Exists(path string) bool {
	resolved, err := fs.resolve(path)
	if err != nil {
		return false
	}

	res, err := fs.walk(resolved, walkMode{
		noFollow: true,
		hook: func(data.Errno, *walkResult) WalkAction {
			return WalkStop
		},
	})
	return err == nil && res != nil && res.node != nil
}

// Realpath returns the absolute path of path with every symlink resolved
// and every name in its stored spelling.
func (fs *FileSystem) Realpath(path string) (string, error) {
	resolved, err := fs.resolve(path)
	if err != nil {
		return "", wrap("realpath", path, err)
	}

	res, err := fs.lookup("realpath", resolved, false)
	if err != nil {
		return "", err
	}
	return res.realpath, nil
}
