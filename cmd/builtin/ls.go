package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/mwantia/layerfs"
	"github.com/mwantia/layerfs/cmd"
	"github.com/mwantia/layerfs/vpath"
)

const lsTimeFormat = "2006-01-02 15:04:05"

type LsCommand struct {
}

// Name returns the command identifier
func (ls *LsCommand) Name() string {
	return "ls"
}

// Description returns human-readable help text
func (ls *LsCommand) Description() string {
	return "List directory contents"
}

// Usage returns a usage string for help (e.g. "ls -l [path]")
func (ls *LsCommand) Usage() string {
	return "ls [-l] [path]"
}

// Execute runs the command with parsed arguments
// Returns exit code (0 = success) and error message
func (ls *LsCommand) Execute(ctx context.Context, fs *layerfs.FileSystem, args *cmd.CommandArgs, w io.Writer) (int, error) {
	path := args.Arg(0, fs.Cwd())
	long := args.Bool("long")

	st, err := fs.Stat(path)
	if err != nil {
		return 1, err
	}

	if !st.IsDirectory() {
		ls.print(w, fs, path, vpath.Basename(path), long)
		return 0, nil
	}

	names, err := fs.Readdir(path)
	if err != nil {
		return 1, err
	}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return 1, err
		}
		ls.print(w, fs, vpath.Combine(path, name), name, long)
	}

	return 0, nil
}

func (ls *LsCommand) print(w io.Writer, fs *layerfs.FileSystem, path, name string, long bool) {
	if !long {
		fmt.Fprintln(w, name)
		return
	}

	st, err := fs.Lstat(path)
	if err != nil {
		fmt.Fprintf(w, "?????????? %s\n", name)
		return
	}

	fmt.Fprintf(w, "%s %3d %8d %s %s", st.Mode, st.Nlink, st.Size, st.ModifyTime.Format(lsTimeFormat), name)
	if st.Mode.IsSymlink() {
		if target, err := fs.Readlink(path); err == nil {
			fmt.Fprintf(w, " -> %s", target)
		}
	}
	fmt.Fprintln(w)
}

// GetFlags returns the flag set for this command (this is optional)
func (ls *LsCommand) GetFlags() *cmd.CommandFlagSet {
	return cmd.NewFlagSet(
		cmd.BoolFlag("long", "l", "use a long listing format"),
	)
}

var _ cmd.Command = (*LsCommand)(nil)
