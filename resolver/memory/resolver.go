package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/mwantia/layerfs/data"
	"github.com/mwantia/layerfs/resolver"
	"github.com/mwantia/layerfs/vpath"
	"github.com/tidwall/btree"
)

type entry struct {
	dir     bool
	content []byte
}

// MemoryResolver serves mounted content from an in-memory B-tree keyed by
// normalized absolute path. Directories exist either explicitly or as the
// prefix of a stored key.
type MemoryResolver struct {
	mu      sync.RWMutex
	entries *btree.Map[string, *entry]
}

func NewMemoryResolver() *MemoryResolver {
	return &MemoryResolver{
		entries: btree.NewMap[string, *entry](0),
	}
}

func normalize(path string) string {
	return vpath.RemoveTrailingSeparator(vpath.Resolve("/", path))
}

// Put stores content at path, replacing any previous content.
func (mr *MemoryResolver) Put(path string, content []byte) {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	mr.entries.Set(normalize(path), &entry{content: slices.Clone(content)})
}

// PutDir records an explicit, possibly empty, directory.
func (mr *MemoryResolver) PutDir(path string) {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	mr.entries.Set(normalize(path), &entry{dir: true})
}

// Delete removes path and everything below it.
func (mr *MemoryResolver) Delete(path string) {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	key := normalize(path)
	var keys []string
	mr.entries.Ascend(key, func(k string, _ *entry) bool {
		if k != key && !strings.HasPrefix(k, vpath.AddTrailingSeparator(key)) {
			return false
		}
		keys = append(keys, k)
		return true
	})
	for _, k := range keys {
		mr.entries.Delete(k)
	}
}

func (mr *MemoryResolver) List(ctx context.Context, path string) ([]string, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	key := normalize(path)
	if e, ok := mr.entries.Get(key); ok && !e.dir {
		return nil, data.NewPathError(data.ENOTDIR, "list", path)
	}

	prefix := vpath.AddTrailingSeparator(key)
	var names []string
	seen := make(map[string]struct{})
	found := false
	mr.entries.Ascend(prefix, func(k string, _ *entry) bool {
		if !strings.HasPrefix(k, prefix) {
			return false
		}
		found = true
		name, _, _ := strings.Cut(k[len(prefix):], "/")
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			names = append(names, name)
		}
		return true
	})

	if !found {
		if e, ok := mr.entries.Get(key); !ok || !e.dir {
			if key != "/" {
				return nil, data.NewPathError(data.ENOENT, "list", path)
			}
		}
	}

	return names, nil
}

func (mr *MemoryResolver) Stat(ctx context.Context, path string) (*resolver.Stat, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	key := normalize(path)
	if e, ok := mr.entries.Get(key); ok {
		if e.dir {
			return resolver.DirStat(), nil
		}
		return resolver.FileStat(int64(len(e.content))), nil
	}

	if key == "/" || mr.hasChildren(key) {
		return resolver.DirStat(), nil
	}

	return nil, data.NewPathError(data.ENOENT, "stat", path)
}

func (mr *MemoryResolver) ReadAll(ctx context.Context, path string) ([]byte, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	key := normalize(path)
	e, ok := mr.entries.Get(key)
	if !ok {
		if mr.hasChildren(key) {
			return nil, data.NewPathError(data.EISDIR, "read", path)
		}
		return nil, data.NewPathError(data.ENOENT, "read", path)
	}
	if e.dir {
		return nil, data.NewPathError(data.EISDIR, "read", path)
	}

	return slices.Clone(e.content), nil
}

func (mr *MemoryResolver) hasChildren(key string) bool {
	prefix := vpath.AddTrailingSeparator(key)
	found := false
	mr.entries.Ascend(prefix, func(k string, _ *entry) bool {
		found = strings.HasPrefix(k, prefix)
		return false
	})
	return found
}
