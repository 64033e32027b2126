package builtin

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mwantia/layerfs"
	"github.com/mwantia/layerfs/cmd"
	"github.com/mwantia/layerfs/data"
)

const statTimeFormat = time.RFC3339Nano

type StatCommand struct{}

// Name returns the command identifier
func (s *StatCommand) Name() string {
	return "stat"
}

// Description returns human-readable help text
func (s *StatCommand) Description() string {
	return "Display file status"
}

// Usage returns a usage string for help
func (s *StatCommand) Usage() string {
	return "stat [-L] path"
}

// Execute prints the stats of the first argument. Symlinks are reported
// themselves unless -L is given.
func (s *StatCommand) Execute(ctx context.Context, fs *layerfs.FileSystem, args *cmd.CommandArgs, w io.Writer) (int, error) {
	if len(args.Args) != 1 {
		return usageError(s)
	}
	path := args.Args[0]

	var st *data.Stats
	var err error
	if args.Bool("dereference") {
		st, err = fs.Stat(path)
	} else {
		st, err = fs.Lstat(path)
	}
	if err != nil {
		return 1, err
	}

	name := path
	if st.IsSymlink() {
		if target, err := fs.Readlink(path); err == nil {
			name = fmt.Sprintf("%s -> %s", path, target)
		}
	}

	fmt.Fprintf(w, "  File: %s\n", name)
	fmt.Fprintf(w, "  Size: %d\tBlocks: %d\tIO Block: %d\t%s\n", st.Size, st.Blocks, st.Blksize, kindOf(st))
	fmt.Fprintf(w, "Device: %d\tInode: %d\tLinks: %d\n", st.Dev, st.Ino, st.Nlink)
	fmt.Fprintf(w, "  Mode: %s (%04o)\tType: %s\n", st.Mode, uint32(st.Mode.Perm()), data.ContentTypeOf(path, st.Mode))
	fmt.Fprintf(w, "Access: %s\n", st.AccessTime.Format(statTimeFormat))
	fmt.Fprintf(w, "Modify: %s\n", st.ModifyTime.Format(statTimeFormat))
	fmt.Fprintf(w, "Change: %s\n", st.ChangeTime.Format(statTimeFormat))
	fmt.Fprintf(w, " Birth: %s\n", st.BirthTime.Format(statTimeFormat))
	return 0, nil
}

// GetFlags returns the flag set for this command
func (s *StatCommand) GetFlags() *cmd.CommandFlagSet {
	return cmd.NewFlagSet(
		cmd.BoolFlag("dereference", "L", "follow symlinks"),
	)
}

func kindOf(st *data.Stats) string {
	switch {
	case st.IsDirectory():
		return "directory"
	case st.IsSymlink():
		return "symbolic link"
	case st.IsFile() && st.Size == 0:
		return "regular empty file"
	case st.IsFile():
		return "regular file"
	}
	return "unknown"
}
