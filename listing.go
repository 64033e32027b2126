package layerfs

import (
	"strings"

	"github.com/mwantia/layerfs/vpath"
)

// Listing renders path and everything below it as an indented tree.
// Directories end in "/", symlinks show their target and are not followed.
func (fs *FileSystem) Listing(path string) (string, error) {
	entries, err := fs.Lscan(path, DescendantsOrSelf, Traversal{})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	base := -1
	for p, st := range entries {
		depth := len(vpath.Parse(p))
		if base < 0 {
			base = depth
		}

		name := vpath.Basename(p)
		if depth == base {
			name = p
		}

		sb.WriteString(strings.Repeat("  ", depth-base))
		sb.WriteString(name)
		switch {
		case st.IsDirectory():
			if !vpath.HasTrailingSeparator(name) {
				sb.WriteString(vpath.Sep)
			}
		case st.IsSymlink():
			if target, err := fs.Readlink(p); err == nil {
				sb.WriteString(" -> ")
				sb.WriteString(target)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
