package builtin

import (
	"context"
	"io"

	"github.com/mwantia/layerfs"
	"github.com/mwantia/layerfs/cmd"
)

// TreeCommand prints the listing of a subtree. Symlinks are shown, not followed.
type TreeCommand struct{}

func (t *TreeCommand) Name() string        { return "tree" }
func (t *TreeCommand) Description() string { return "Print a directory tree" }
func (t *TreeCommand) Usage() string       { return "tree [path]" }

func (t *TreeCommand) Execute(ctx context.Context, fs *layerfs.FileSystem, args *cmd.CommandArgs, w io.Writer) (int, error) {
	listing, err := fs.Listing(args.Arg(0, fs.Cwd()))
	if err != nil {
		return 1, err
	}
	if _, err := io.WriteString(w, listing); err != nil {
		return 1, err
	}
	return 0, nil
}

func (t *TreeCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}
