// Package builtin provides the shell commands shipped with layerfs.
package builtin

import (
	"fmt"

	"github.com/mwantia/layerfs/cmd"
)

// Commands returns a fresh instance of every builtin command.
func Commands() []cmd.Command {
	return []cmd.Command{
		&LsCommand{},
		&CatCommand{},
		&TreeCommand{},
		&StatCommand{},
		&MkdirCommand{},
		&WriteCommand{},
		&RmCommand{},
		&DiffCommand{},
	}
}

// Register adds all builtin commands to m.
func Register(m *cmd.Manager) error {
	for _, c := range Commands() {
		if err := m.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func usageError(c cmd.Command) (int, error) {
	return 2, fmt.Errorf("usage: %s", c.Usage())
}
