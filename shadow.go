package layerfs

import (
	"github.com/google/uuid"
	"github.com/mwantia/layerfs/data"
)

// Snapshot freezes the current content of fs into a new read-only instance
// and continues fs as an empty overlay on top of it. Reads fall through to
// the snapshot until a path is written.
func (fs *FileSystem) Snapshot() error {
	if fs.frozen {
		return data.NewPathError(data.EROFS, "snapshot", "")
	}

	id := uuid.Must(uuid.NewV7())
	logger := fs.baseLogger.Named(id.String()[:8])

	snap := &FileSystem{
		id:         id,
		opts:       fs.opts,
		layer:      fs.layer,
		shadowRoot: fs.shadowRoot,
		frozen:     true,
		clock:      fs.clock,
		cwd:        fs.cwd,
		baseLogger: fs.baseLogger,
		logger:     logger,
	}

	fs.layer = newLayer(&fs.opts, fs.clock, fs.logger)
	fs.shadowRoot = snap

	fs.logger.Debug("snapshot %s created", id)
	return nil
}

// Shadow returns a new mutable instance reading through to the frozen fs.
// An optional ignoreCase selects the comparer of the shadow; a
// case-insensitive shadow cannot be made of a case-sensitive instance.
func (fs *FileSystem) Shadow(ignoreCase ...bool) (*FileSystem, error) {
	if !fs.frozen {
		return nil, data.NewPathError(data.EINVAL, "shadow", "")
	}

	opts := fs.opts
	if len(ignoreCase) > 0 {
		if ignoreCase[0] && !fs.opts.IgnoreCase {
			return nil, data.NewPathError(data.EINVAL, "shadow", "")
		}
		opts.IgnoreCase = ignoreCase[0]
	}

	s := newFileSystem(&opts, fs.clock, fs.baseLogger)
	s.shadowRoot = fs
	s.cwd = fs.cwd

	fs.logger.Debug("shadow %s created", s.id)
	return s, nil
}

// MakeReadonly freezes fs. A frozen instance rejects every change.
func (fs *FileSystem) MakeReadonly() *FileSystem {
	fs.frozen = true
	return fs
}

// IsReadonly reports whether fs is frozen.
func (fs *FileSystem) IsReadonly() bool {
	return fs.frozen
}

// ShadowRoot returns the frozen instance fs reads through to, or nil.
func (fs *FileSystem) ShadowRoot() *FileSystem {
	return fs.shadowRoot
}
