package cmd

import (
	"context"
	"io"

	"github.com/mwantia/layerfs"
)

// Command represents an executable command within the layered filesystem.
type Command interface {
	// Name returns the command identifier
	Name() string

	// Description returns human-readable help text
	Description() string

	// Usage returns a usage string for help (e.g. "ls -l [path]")
	Usage() string

	// Execute runs the command with parsed arguments against fs.
	// The writer parameter is where command output should be written.
	// Returns exit code (0 = success) and error message
	Execute(ctx context.Context, fs *layerfs.FileSystem, args *CommandArgs, w io.Writer) (int, error)

	// GetFlags returns the flag set for this command (this is optional)
	GetFlags() *CommandFlagSet
}
