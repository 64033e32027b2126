package cmd

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Parser parses user-defined arguments into flags
type Parser struct {
	flagSet *CommandFlagSet

	long  map[string]string
	short map[string]string
}

func NewParser(flagSet *CommandFlagSet) *Parser {
	if flagSet == nil {
		flagSet = &CommandFlagSet{}
	}

	p := &Parser{
		flagSet: flagSet,
		long:    make(map[string]string),
		short:   make(map[string]string),
	}
	for key, flag := range flagSet.Flags {
		p.long[flag.Name] = key
		if flag.Short != "" {
			p.short[flag.Short] = key
		}
	}
	return p
}

func (p *Parser) Parse(raw []string) (*CommandArgs, error) {
	args := &CommandArgs{
		Args:  []string{},
		Flags: make(map[string]any),
		Raw:   raw,
	}

	for key, flag := range p.flagSet.Flags {
		if flag.Default != nil {
			args.Flags[key] = flag.Default
		}
	}

loop:
	for i := 0; i < len(raw); i++ {
		arg := raw[i]

		switch {
		case arg == "--":
			args.Args = append(args.Args, raw[i+1:]...)
			break loop

		case strings.HasPrefix(arg, "--"):
			consumed, err := p.parseLong(args, arg, raw[i+1:])
			if err != nil {
				return nil, err
			}
			i += consumed

		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			consumed, err := p.parseShort(args, arg[1:], raw[i+1:])
			if err != nil {
				return nil, err
			}
			i += consumed

		default:
			args.Args = append(args.Args, arg)
		}
	}

	if err := p.checkRequired(args); err != nil {
		return nil, err
	}
	return args, nil
}

// parseLong handles --name, --name=value and --name value.
// It returns the number of following arguments consumed.
func (p *Parser) parseLong(args *CommandArgs, arg string, rest []string) (int, error) {
	name, value, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")

	key, exists := p.long[name]
	if !exists {
		return 0, fmt.Errorf("unknown flag: --%s", name)
	}

	flag := p.flagSet.Flags[key]
	switch {
	case flag.Type == "bool" && hasValue:
		args.Flags[key] = coerce(value, flag.Type)
	case flag.Type == "bool":
		args.Flags[key] = true
	case hasValue:
		args.Flags[key] = coerce(value, flag.Type)
	case len(rest) > 0 && !strings.HasPrefix(rest[0], "-"):
		args.Flags[key] = coerce(rest[0], flag.Type)
		return 1, nil
	default:
		return 0, fmt.Errorf("flag --%s requires a value", name)
	}
	return 0, nil
}

// parseShort handles grouped shorthands like -lr and attached values like -n5.
func (p *Parser) parseShort(args *CommandArgs, group string, rest []string) (int, error) {
	for j, c := range group {
		name := string(c)

		key, exists := p.short[name]
		if !exists {
			return 0, fmt.Errorf("unknown flag: -%s", name)
		}

		flag := p.flagSet.Flags[key]
		if flag.Type == "bool" {
			args.Flags[key] = true
			continue
		}

		if j+1 < len(group) {
			args.Flags[key] = coerce(group[j+1:], flag.Type)
			return 0, nil
		}
		if len(rest) > 0 && !strings.HasPrefix(rest[0], "-") {
			args.Flags[key] = coerce(rest[0], flag.Type)
			return 1, nil
		}
		return 0, fmt.Errorf("flag -%s requires a value", name)
	}
	return 0, nil
}

func (p *Parser) checkRequired(args *CommandArgs) error {
	keys := make([]string, 0, len(p.flagSet.Flags))
	for key := range p.flagSet.Flags {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		flag := p.flagSet.Flags[key]
		if !flag.Required {
			continue
		}
		if _, ok := args.Flags[key]; ok {
			continue
		}
		if flag.Short != "" {
			return fmt.Errorf("required flag: -%s / --%s", flag.Short, flag.Name)
		}
		return fmt.Errorf("required flag: --%s", flag.Name)
	}
	return nil
}

func coerce(value string, typeStr string) any {
	switch typeStr {
	case "int":
		v, _ := strconv.ParseInt(value, 10, 64)
		return v
	case "bool":
		return value == "true" || value == "1" || value == "yes"
	default:
		return value
	}
}
