package builtin

import (
	"context"
	"io"

	"github.com/mwantia/layerfs"
	"github.com/mwantia/layerfs/cmd"
	"github.com/mwantia/layerfs/data"
)

type RmCommand struct{}

func (r *RmCommand) Name() string        { return "rm" }
func (r *RmCommand) Description() string { return "Remove files or directories" }
func (r *RmCommand) Usage() string       { return "rm [-r] path..." }

// Execute unlinks files and symlinks. Directories need -r, which removes
// the whole subtree.
func (r *RmCommand) Execute(ctx context.Context, fs *layerfs.FileSystem, args *cmd.CommandArgs, w io.Writer) (int, error) {
	if len(args.Args) == 0 {
		return usageError(r)
	}

	recursive := args.Bool("recursive")
	for _, path := range args.Args {
		if recursive {
			if err := fs.Rimraf(path); err != nil {
				return 1, err
			}
			continue
		}

		st, err := fs.Lstat(path)
		if err != nil {
			return 1, err
		}
		if st.IsDirectory() {
			return 1, data.NewPathError(data.EISDIR, "rm", path)
		}
		if err := fs.Unlink(path); err != nil {
			return 1, err
		}
	}
	return 0, nil
}

func (r *RmCommand) GetFlags() *cmd.CommandFlagSet {
	return cmd.NewFlagSet(
		cmd.BoolFlag("recursive", "r", "remove directories and their contents"),
	)
}
