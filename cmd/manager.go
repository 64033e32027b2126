package cmd

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/mwantia/layerfs"
	"github.com/mwantia/layerfs/log"
)

// Manager handles command registration, parsing, and execution
type Manager struct {
	mu     sync.RWMutex
	fs     *layerfs.FileSystem
	cmds   map[string]Command
	logger *log.Logger
}

// NewManager returns a manager executing commands against fs.
func NewManager(fs *layerfs.FileSystem, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Discard()
	}
	return &Manager{
		fs:     fs,
		cmds:   make(map[string]Command),
		logger: logger.Named("cmd"),
	}
}

// FileSystem returns the filesystem commands run against.
func (m *Manager) FileSystem() *layerfs.FileSystem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.fs
}

// SetFileSystem replaces the filesystem commands run against.
func (m *Manager) SetFileSystem(fs *layerfs.FileSystem) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fs = fs
}

// Register registers a custom command
func (m *Manager) Register(cmd Command) error {
	if cmd == nil {
		return fmt.Errorf("command cannot be nil")
	}

	name := cmd.Name()
	if name == "" {
		return fmt.Errorf("command name cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.cmds[name]; exists {
		return fmt.Errorf("command already registered: %s", name)
	}

	m.cmds[name] = cmd
	return nil
}

// Unregister removes a registered command
func (m *Manager) Unregister(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.cmds[name]; !exists {
		return fmt.Errorf("command not found: %s", name)
	}

	delete(m.cmds, name)
	return nil
}

// Get returns a command by name
func (m *Manager) Get(name string) (Command, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cmd, exists := m.cmds[name]
	if !exists {
		return nil, fmt.Errorf("command not found: %s", name)
	}

	return cmd, nil
}

// List returns all registered commands sorted by name
func (m *Manager) List() []Command {
	m.mu.RLock()
	defer m.mu.RUnlock()

	commands := make([]Command, 0, len(m.cmds))
	for _, cmd := range m.cmds {
		commands = append(commands, cmd)
	}
	slices.SortFunc(commands, func(a, b Command) int {
		return strings.Compare(a.Name(), b.Name())
	})

	return commands
}

// Execute splits line into fields, parses the flags of the named command
// and runs it. Output is written to w.
func (m *Manager) Execute(ctx context.Context, line string, w io.Writer) (int, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 1, fmt.Errorf("no command specified")
	}

	cmd, err := m.Get(fields[0])
	if err != nil {
		return 1, err
	}

	args, err := NewParser(cmd.GetFlags()).Parse(fields[1:])
	if err != nil {
		return 1, fmt.Errorf("parse error: %w", err)
	}

	m.logger.Debug("executing %s %v", cmd.Name(), args.Raw)

	code, err := cmd.Execute(ctx, m.FileSystem(), args, w)
	if err != nil {
		m.logger.Debug("%s exited with %d: %v", cmd.Name(), code, err)
	}
	return code, err
}
