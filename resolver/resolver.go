// Package resolver defines the source of content for mounted nodes.
//
// A mounted directory or file is materialized lazily: the file system asks
// its resolver for a listing, a stat, or the full content of a path exactly
// once and caches the result in the tree.
package resolver

import (
	"context"

	"github.com/mwantia/layerfs/data"
)

// Resolver provides content for mounted paths.
type Resolver interface {
	// List returns the names of the entries of the directory at path.
	List(ctx context.Context, path string) ([]string, error)

	// Stat returns the mode and size of path.
	Stat(ctx context.Context, path string) (*Stat, error)

	// ReadAll returns the complete content of the file at path.
	ReadAll(ctx context.Context, path string) ([]byte, error)
}

// Stat is the subset of node information a resolver reports.
type Stat struct {
	Mode data.FileMode
	Size int64
}

func (s *Stat) IsDir() bool {
	return s.Mode.IsDir()
}

// FileStat returns a Stat for a regular file of the given size.
func FileStat(size int64) *Stat {
	return &Stat{Mode: data.ModeFile | data.DefaultFileMode, Size: size}
}

// DirStat returns a Stat for a directory.
func DirStat() *Stat {
	return &Stat{Mode: data.ModeDir | data.DefaultDirMode}
}
