package layerfs

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/mwantia/layerfs/data"
	"github.com/mwantia/layerfs/resolver"
	"github.com/mwantia/layerfs/vpath"
)

// FileSet describes a tree by path. Keys are resolved against the directory
// the set is applied to. Values are one of *File, *Directory, *Symlink,
// *Link, *Mount, *Rmdir, *Unlink, *SameFileContentFile,
// *SameFileWithModifiedTime, string or []byte (file content), or nil, which
// removes whatever exists at the key.
type FileSet map[string]any

// File is a regular file with the given content.
type File struct {
	Data []byte
	Meta map[string]any
}

// NewFile returns a File holding text.
func NewFile(text string) *File {
	return &File{Data: []byte(text)}
}

// Directory is a directory holding Files.
type Directory struct {
	Files FileSet
	Meta  map[string]any
}

// Symlink is a symbolic link to Target.
type Symlink struct {
	Target string
	Meta   map[string]any
}

// Link is a hard link to the existing entry Path.
type Link struct {
	Path string
}

// Mount attaches Source of Resolver.
type Mount struct {
	Source   string
	Resolver resolver.Resolver
	Meta     map[string]any
}

// Rmdir removes a directory. In a diff Files lists what the directory held.
type Rmdir struct {
	Files FileSet
}

// Unlink removes a file or symlink.
type Unlink struct{}

// SameFileContentFile marks a file rewritten with unchanged content.
type SameFileContentFile struct {
	Data []byte
}

// SameFileWithModifiedTime marks a file whose content is unchanged but whose
// modification time differs.
type SameFileWithModifiedTime struct {
	Data []byte
}

type deferredEntry struct {
	path  string
	entry any
}

type pendingSet struct {
	dirname string
	files   FileSet
}

// Apply writes files below dir, or below the working directory when dir is
// empty. Keys are applied in sorted order. Hard links, symlinks and mounts are
// created after every file and directory exists. Failing entries are
// skipped and reported together.
func (fs *FileSystem) Apply(dir string, files FileSet) error {
	if err := fs.checkWritable("apply", dir); err != nil {
		return err
	}
	if dir == "" {
		dir = fs.cwd
	} else {
		resolved, err := fs.resolve(dir)
		if err != nil {
			return wrap("apply", dir, err)
		}
		dir = resolved
	}

	var errs data.Errors
	var deferred []deferredEntry

	queue := []pendingSet{{dirname: dir, files: files}}
	for len(queue) > 0 {
		set := queue[0]
		queue = queue[1:]

		for _, key := range slices.Sorted(maps.Keys(set.files)) {
			path := key
			if set.dirname != "" {
				path = vpath.Resolve(set.dirname, key)
			}
			if _, err := vpath.Validate(path, vpath.Absolute); err != nil {
				errs.Add(wrap("apply", path, err))
				continue
			}
			root := vpath.IsRoot(path)

			switch entry := set.files[key].(type) {
			case nil, *Rmdir, *Unlink:
				if root {
					errs.Add(data.NewPathError(data.EPERM, "apply", path))
					continue
				}
				errs.Add(fs.Rimraf(path))

			case *Directory:
				if err := fs.clearUnless(path, (*data.Stats).IsDirectory); err != nil {
					errs.Add(err)
					continue
				}
				if err := fs.Mkdirp(path); err != nil {
					errs.Add(err)
					continue
				}
				errs.Add(fs.applyMeta(path, entry.Meta))
				if len(entry.Files) > 0 {
					queue = append(queue, pendingSet{dirname: path, files: entry.Files})
				}

			case *File, *SameFileContentFile, *SameFileWithModifiedTime, string, []byte:
				if root {
					errs.Add(data.NewPathError(data.EISDIR, "apply", path))
					continue
				}
				content, meta := fileContent(entry)
				if err := fs.Mkdirp(vpath.Dirname(path)); err != nil {
					errs.Add(err)
					continue
				}
				if err := fs.clearUnless(path, (*data.Stats).IsFile); err != nil {
					errs.Add(err)
					continue
				}
				if err := fs.WriteFile(path, content); err != nil {
					errs.Add(err)
					continue
				}
				errs.Add(fs.applyMeta(path, meta))

			case *Symlink, *Link, *Mount:
				if root {
					errs.Add(data.NewPathError(data.EPERM, "apply", path))
					continue
				}
				deferred = append(deferred, deferredEntry{path: path, entry: entry})

			default:
				errs.Add(&data.PathError{
					Op:   "apply",
					Path: path,
					Code: data.EINVAL,
					Err:  fmt.Errorf("unsupported entry %T", entry),
				})
			}
		}
	}

	for _, d := range deferred {
		errs.Add(fs.applyDeferred(d))
	}

	return errs.Errors()
}

func fileContent(entry any) ([]byte, map[string]any) {
	switch e := entry.(type) {
	case *File:
		return e.Data, e.Meta
	case *SameFileContentFile:
		return e.Data, nil
	case *SameFileWithModifiedTime:
		return e.Data, nil
	case string:
		return []byte(e), nil
	case []byte:
		return e, nil
	}
	return nil, nil
}

// applyDeferred creates a link, symlink or mount with the working directory
// set to its parent, so a relative link path resolves next to the entry.
// Symlink targets are stored as given.
func (fs *FileSystem) applyDeferred(d deferredEntry) error {
	dirname := vpath.Dirname(d.path)
	if err := fs.Mkdirp(dirname); err != nil {
		return err
	}
	if err := fs.clearUnless(d.path, nil); err != nil {
		return err
	}
	if err := fs.Pushd(dirname); err != nil {
		return err
	}
	defer fs.Popd()

	switch entry := d.entry.(type) {
	case *Symlink:
		if err := fs.Symlink(entry.Target, d.path); err != nil {
			return err
		}
		return fs.applyMeta(d.path, entry.Meta)

	case *Link:
		return fs.Link(entry.Path, d.path)

	case *Mount:
		if err := fs.Mount(entry.Source, d.path, entry.Resolver); err != nil {
			return err
		}
		return fs.applyMeta(d.path, entry.Meta)
	}
	return nil
}

// clearUnless removes the entry at path unless keep accepts it. Symlinks are
// not followed. A nil keep removes any entry.
func (fs *FileSystem) clearUnless(path string, keep func(*data.Stats) bool) error {
	st, err := fs.Lstat(path)
	if err != nil {
		if errors.Is(err, data.ENOENT) {
			return nil
		}
		return err
	}
	if keep != nil && keep(st) {
		return nil
	}
	return fs.Rimraf(path)
}

func (fs *FileSystem) applyMeta(path string, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}

	meta, err := fs.filemeta(path, true)
	if err != nil {
		return err
	}
	for key, value := range values {
		meta.Set(key, value)
	}
	return nil
}
