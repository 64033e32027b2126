package layerfs

import (
	"context"

	"github.com/mwantia/layerfs/data"
	"github.com/mwantia/layerfs/resolver"
	"github.com/mwantia/layerfs/vpath"
)

// Mount attaches the file or directory source of r at target. Nothing but
// the type of source is read until the mounted entries are accessed.
func (fs *FileSystem) Mount(source, target string, r resolver.Resolver) error {
	if err := fs.checkWritable("mount", target); err != nil {
		return err
	}

	valid, err := vpath.Validate(source, vpath.Absolute)
	if err != nil {
		return wrap("mount", source, err)
	}
	source = valid
	resolved, err := fs.resolve(target)
	if err != nil {
		return wrap("mount", target, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), fs.opts.ResolverTimeout)
	defer cancel()

	stat, err := r.Stat(ctx, source)
	if err != nil {
		fs.logger.Warn("failed to stat mount source '%s': %v", source, err)
		return &data.PathError{Op: "mount", Path: source, Code: data.EIO, Err: err}
	}

	res, err := fs.walk(resolved, walkMode{noFollow: true, write: true})
	if err != nil {
		return wrap("mount", target, err)
	}
	switch {
	case res.parent == nil:
		return data.NewPathError(data.EPERM, "mount", target)
	case res.node != nil:
		return data.NewPathError(data.EEXIST, "mount", target)
	}

	t := fs.clock.tick()
	var n *node
	if stat.IsDir() {
		n = fs.layer.mknod(res.parent.dev, data.ModeDir|data.DefaultDirMode, t)
	} else {
		n = fs.layer.mknod(res.parent.dev, data.ModeFile|data.DefaultFileMode, t)
		n.size = stat.Size
	}
	n.resolver = r
	n.source = source
	addLink(res.parent, res.links, res.basename, n, t)

	fs.logger.Debug("mounted '%s' at '%s'", source, res.realpath)
	return nil
}
