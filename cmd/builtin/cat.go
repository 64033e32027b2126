package builtin

import (
	"context"
	"io"

	"github.com/mwantia/layerfs"
	"github.com/mwantia/layerfs/cmd"
)

type CatCommand struct{}

func (c *CatCommand) Name() string        { return "cat" }
func (c *CatCommand) Description() string { return "Print file contents" }
func (c *CatCommand) Usage() string       { return "cat path..." }

func (c *CatCommand) Execute(ctx context.Context, fs *layerfs.FileSystem, args *cmd.CommandArgs, w io.Writer) (int, error) {
	if len(args.Args) == 0 {
		return usageError(c)
	}

	for _, path := range args.Args {
		if err := ctx.Err(); err != nil {
			return 1, err
		}

		content, err := fs.ReadFile(path)
		if err != nil {
			return 1, err
		}
		if _, err := w.Write(content); err != nil {
			return 1, err
		}
	}
	return 0, nil
}

func (c *CatCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}
