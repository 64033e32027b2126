package local

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/mwantia/layerfs/data"
	"github.com/mwantia/layerfs/resolver"
)

// LocalResolver serves mounted content from a directory of the host.
// Resolver paths are interpreted relative to that directory.
type LocalResolver struct {
	path string
}

func NewLocalResolver(path string) (*LocalResolver, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, toPathError(err, "open", path)
	}
	if !info.IsDir() {
		return nil, data.NewPathError(data.ENOTDIR, "open", path)
	}

	return &LocalResolver{
		path: filepath.Clean(path),
	}, nil
}

func (lr *LocalResolver) hostPath(path string) string {
	return filepath.Join(lr.path, filepath.FromSlash(filepath.Clean("/"+path)))
}

func (lr *LocalResolver) List(ctx context.Context, path string) ([]string, error) {
	entries, err := os.ReadDir(lr.hostPath(path))
	if err != nil {
		return nil, toPathError(err, "list", path)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	slices.Sort(names)
	return names, nil
}

func (lr *LocalResolver) Stat(ctx context.Context, path string) (*resolver.Stat, error) {
	info, err := os.Stat(lr.hostPath(path))
	if err != nil {
		return nil, toPathError(err, "stat", path)
	}

	if info.IsDir() {
		return &resolver.Stat{Mode: data.ModeDir | data.FileMode(info.Mode().Perm())}, nil
	}
	return &resolver.Stat{Mode: data.ModeFile | data.FileMode(info.Mode().Perm()), Size: info.Size()}, nil
}

func (lr *LocalResolver) ReadAll(ctx context.Context, path string) ([]byte, error) {
	content, err := os.ReadFile(lr.hostPath(path))
	if err != nil {
		return nil, toPathError(err, "read", path)
	}
	return content, nil
}

func toPathError(err error, op, path string) error {
	code := data.EIO
	switch {
	case errors.Is(err, fs.ErrNotExist):
		code = data.ENOENT
	case errors.Is(err, fs.ErrPermission):
		code = data.EACCES
	case errors.Is(err, fs.ErrInvalid):
		code = data.EINVAL
	}
	return &data.PathError{Op: op, Path: path, Code: code, Err: err}
}
