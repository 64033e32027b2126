package builtin

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/mwantia/layerfs"
	"github.com/mwantia/layerfs/cmd"
	"github.com/mwantia/layerfs/vpath"
)

// DiffCommand prints the changes of the filesystem against its shadow root,
// one line per changed entry.
type DiffCommand struct{}

// Name returns the command identifier
func (d *DiffCommand) Name() string {
	return "diff"
}

// Description returns human-readable help text
func (d *DiffCommand) Description() string {
	return "Show changes against the shadow root"
}

// Usage returns a usage string for help
func (d *DiffCommand) Usage() string {
	return "diff [-s] [path]"
}

func (d *DiffCommand) Execute(ctx context.Context, fs *layerfs.FileSystem, args *cmd.CommandArgs, w io.Writer) (int, error) {
	diff, err := fs.Diff(nil, layerfs.DiffOptions{
		IncludeChangedFileWithSameContent: args.Bool("same"),
		Path:                              args.Arg(0, ""),
	})
	if err != nil {
		return 1, err
	}

	for _, line := range diffLines(diff) {
		if err := ctx.Err(); err != nil {
			return 1, err
		}
		fmt.Fprintln(w, line)
	}
	return 0, nil
}

// GetFlags returns the flag set for this command
func (d *DiffCommand) GetFlags() *cmd.CommandFlagSet {
	return cmd.NewFlagSet(
		cmd.BoolFlag("same", "s", "report rewritten files with unchanged content"),
	)
}

// diffLines flattens a diff into "<kind> <path>" lines in path order.
// Directories holding changes are descended into and only reported when
// they were created empty.
func diffLines(diff layerfs.FileSet) []string {
	type item struct {
		path  string
		entry any
	}

	var stack []item
	push := func(parent string, files layerfs.FileSet) {
		for _, name := range slices.Backward(slices.Sorted(maps.Keys(files))) {
			path := name
			if parent != "" {
				path = vpath.Combine(parent, name)
			}
			stack = append(stack, item{path: path, entry: files[name]})
		}
	}
	push("", diff)

	var lines []string
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch e := it.entry.(type) {
		case *layerfs.Directory:
			if len(e.Files) == 0 {
				lines = append(lines, describe("dir", it.path))
				continue
			}
			push(it.path, e.Files)
		case *layerfs.File, string, []byte:
			lines = append(lines, describe("file", it.path))
		case *layerfs.Symlink:
			lines = append(lines, describe("symlink", it.path+" -> "+e.Target))
		case *layerfs.Link:
			lines = append(lines, describe("link", it.path+" => "+e.Path))
		case *layerfs.Mount:
			lines = append(lines, describe("mount", it.path+" <- "+e.Source))
		case *layerfs.Rmdir:
			lines = append(lines, describe("rmdir", it.path))
		case *layerfs.Unlink, nil:
			lines = append(lines, describe("unlink", it.path))
		case *layerfs.SameFileContentFile:
			lines = append(lines, describe("same", it.path))
		case *layerfs.SameFileWithModifiedTime:
			lines = append(lines, describe("touched", it.path))
		default:
			lines = append(lines, describe("unknown", it.path))
		}
	}
	return lines
}

func describe(kind, path string) string {
	return fmt.Sprintf("%-8s%s", kind, path)
}
