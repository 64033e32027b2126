package cmd

// CommandArgs contains parsed command arguments
type CommandArgs struct {
	// Positional arguments (command-specific)
	Args []string

	// Parsed flags, keyed by the name the flag is registered under
	Flags map[string]any

	// Raw unparsed arguments (for custom parsing)
	Raw []string
}

// Bool returns the flag value as bool, false when unset.
func (a *CommandArgs) Bool(name string) bool {
	v, ok := a.Flags[name].(bool)
	return ok && v
}

// String returns the flag value as string, fallback when unset.
func (a *CommandArgs) String(name, fallback string) string {
	if v, ok := a.Flags[name].(string); ok {
		return v
	}
	return fallback
}

// Int returns the flag value as int64, fallback when unset.
func (a *CommandArgs) Int(name string, fallback int64) int64 {
	if v, ok := a.Flags[name].(int64); ok {
		return v
	}
	return fallback
}

// Arg returns the positional argument at i, fallback when missing.
func (a *CommandArgs) Arg(i int, fallback string) string {
	if i < len(a.Args) {
		return a.Args[i]
	}
	return fallback
}

// CommandFlagSet defines the expected flags for a command
type CommandFlagSet struct {
	Flags map[string]*CommandFlag
}

// NewFlagSet returns a flag set holding flags, keyed by their long name.
func NewFlagSet(flags ...*CommandFlag) *CommandFlagSet {
	set := &CommandFlagSet{Flags: make(map[string]*CommandFlag, len(flags))}
	for _, flag := range flags {
		set.Flags[flag.Name] = flag
	}
	return set
}

// CommandFlag represents a single command-line flag
type CommandFlag struct {
	Name        string `json:"name"`              // e.g., "recursive"
	Short       string `json:"short"`             // Single-char shorthand (e.g., "r")
	Type        string `json:"type"`              // "string", "bool", "int"
	Default     any    `json:"default,omitempty"` // Default value
	Required    bool   `json:"required"`          // Must be provided
	Description string `json:"description"`       // Help text
}

// BoolFlag returns an optional bool flag.
func BoolFlag(name, short, description string) *CommandFlag {
	return &CommandFlag{
		Name:        name,
		Short:       short,
		Type:        "bool",
		Description: description,
	}
}
