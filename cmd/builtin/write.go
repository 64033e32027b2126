package builtin

import (
	"context"
	"io"
	"strings"

	"github.com/mwantia/layerfs"
	"github.com/mwantia/layerfs/cmd"
)

// WriteCommand replaces the content of a file with the remaining arguments
// joined by single spaces.
type WriteCommand struct{}

func (c *WriteCommand) Name() string        { return "write" }
func (c *WriteCommand) Description() string { return "Write text to a file" }
func (c *WriteCommand) Usage() string       { return "write [-n] path text..." }

func (c *WriteCommand) Execute(ctx context.Context, fs *layerfs.FileSystem, args *cmd.CommandArgs, w io.Writer) (int, error) {
	if len(args.Args) == 0 {
		return usageError(c)
	}

	text := strings.Join(args.Args[1:], " ")
	if args.Bool("newline") {
		text += "\n"
	}
	if err := fs.WriteFileString(args.Args[0], text); err != nil {
		return 1, err
	}
	return 0, nil
}

func (c *WriteCommand) GetFlags() *cmd.CommandFlagSet {
	return cmd.NewFlagSet(
		cmd.BoolFlag("newline", "n", "append a trailing newline"),
	)
}
