package vpath

import (
	"regexp"

	"github.com/mwantia/layerfs/data"
)

// ValidationFlags selects the rules Validate enforces.
type ValidationFlags uint32

const (
	None ValidationFlags = 0

	RequireRoot              ValidationFlags = 1 << 0
	RequireDirname           ValidationFlags = 1 << 1
	RequireBasename          ValidationFlags = 1 << 2
	RequireExtname           ValidationFlags = 1 << 3
	RequireTrailingSeparator ValidationFlags = 1 << 4

	AllowRoot              ValidationFlags = 1 << 5
	AllowDirname           ValidationFlags = 1 << 6
	AllowBasename          ValidationFlags = 1 << 7
	AllowExtname           ValidationFlags = 1 << 8
	AllowTrailingSeparator ValidationFlags = 1 << 9
	AllowNavigation        ValidationFlags = 1 << 10
	AllowWildcard          ValidationFlags = 1 << 11

	// Root accepts a bare root such as "/" or "c:/".
	Root = RequireRoot | AllowRoot | AllowTrailingSeparator
	// Absolute accepts any rooted path.
	Absolute = RequireRoot | AllowRoot | AllowDirname | AllowBasename | AllowExtname | AllowTrailingSeparator | AllowNavigation
	// RelativeOrAbsolute accepts any rooted or relative path.
	RelativeOrAbsolute = AllowRoot | AllowDirname | AllowBasename | AllowExtname | AllowTrailingSeparator | AllowNavigation
	// Filename accepts a single file name without directories.
	Filename = RequireBasename | AllowExtname
)

var (
	validRootComponent                = regexp.MustCompile(`^(/|//\w+/|[a-zA-Z]:/?|)$`)
	invalidNavigableComponent         = regexp.MustCompile(`[:*?"<>|]`)
	invalidNavigableWildcardComponent = regexp.MustCompile(`[:"<>|]`)
	invalidComponent                  = regexp.MustCompile(`^\.{1,2}$|[:*?"<>|]`)
	invalidWildcardComponent          = regexp.MustCompile(`^\.{1,2}$|[:"<>|]`)
	extname                           = regexp.MustCompile(`\.\w+$`)
)

func validComponents(components []string, flags ValidationFlags, trailing bool) bool {
	hasRoot := components[0] != ""
	hasDirname := len(components) > 2
	hasBasename := len(components) > 1
	hasExtname := hasBasename && extname.MatchString(components[len(components)-1])

	invalid := invalidComponent
	switch {
	case flags&AllowNavigation != 0 && flags&AllowWildcard != 0:
		invalid = invalidNavigableWildcardComponent
	case flags&AllowNavigation != 0:
		invalid = invalidNavigableComponent
	case flags&AllowWildcard != 0:
		invalid = invalidWildcardComponent
	}

	if flags&RequireRoot != 0 && !hasRoot ||
		flags&RequireDirname != 0 && !hasDirname ||
		flags&RequireBasename != 0 && !hasBasename ||
		flags&RequireExtname != 0 && !hasExtname ||
		flags&RequireTrailingSeparator != 0 && !trailing {
		return false
	}

	// Required parts are implicitly allowed.
	flags |= (flags & (RequireRoot | RequireDirname | RequireBasename | RequireExtname | RequireTrailingSeparator)) << 5

	if flags&AllowRoot == 0 && hasRoot ||
		flags&AllowDirname == 0 && hasDirname ||
		flags&AllowBasename == 0 && hasBasename ||
		flags&AllowExtname == 0 && hasExtname ||
		flags&AllowTrailingSeparator == 0 && trailing {
		return false
	}

	if !validRootComponent.MatchString(components[0]) {
		return false
	}
	for _, c := range components[1:] {
		if invalid.MatchString(c) {
			return false
		}
	}
	return true
}

// Validate checks p against flags and returns its reduced form. A trailing
// separator on a non-root path is preserved. Failure yields ENOENT.
func Validate(p string, flags ValidationFlags) (string, error) {
	components := Parse(p)
	trailing := HasTrailingSeparator(p)
	if !validComponents(components, flags, trailing) {
		return "", data.NewPathError(data.ENOENT, "validate", p)
	}

	formatted := Format(Reduce(components))
	if len(components) > 1 && trailing {
		formatted += Sep
	}
	return formatted, nil
}
