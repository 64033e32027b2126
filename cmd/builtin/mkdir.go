package builtin

import (
	"context"
	"io"

	"github.com/mwantia/layerfs"
	"github.com/mwantia/layerfs/cmd"
)

type MkdirCommand struct{}

func (m *MkdirCommand) Name() string        { return "mkdir" }
func (m *MkdirCommand) Description() string { return "Create directories" }
func (m *MkdirCommand) Usage() string       { return "mkdir [-p] path..." }

func (m *MkdirCommand) Execute(ctx context.Context, fs *layerfs.FileSystem, args *cmd.CommandArgs, w io.Writer) (int, error) {
	if len(args.Args) == 0 {
		return usageError(m)
	}

	mkdir := fs.Mkdir
	if args.Bool("parents") {
		mkdir = fs.Mkdirp
	}
	for _, path := range args.Args {
		if err := mkdir(path); err != nil {
			return 1, err
		}
	}
	return 0, nil
}

func (m *MkdirCommand) GetFlags() *cmd.CommandFlagSet {
	return cmd.NewFlagSet(
		cmd.BoolFlag("parents", "p", "create missing parents, no error if existing"),
	)
}
