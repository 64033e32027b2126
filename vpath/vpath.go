// Package vpath implements the path model of the layered file system.
//
// Paths use '/' as separator; '\' is accepted on input and normalized.
// A parsed path is a slice whose first element is the root ("/", "c:/",
// "//server/", or "" for a relative path) followed by the path components.
package vpath

import (
	"slices"
	"strings"
)

const (
	Sep    = "/"
	altSep = "\\"
)

func isSep(c byte) bool {
	return c == '/' || c == '\\'
}

func isVolumeChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// NormalizeSeparators replaces every '\' in p with '/'.
func NormalizeSeparators(p string) string {
	return strings.ReplaceAll(p, altSep, Sep)
}

// rootLength returns the length of the root portion of p.
func rootLength(p string) int {
	if p == "" {
		return 0
	}

	c0 := p[0]
	if isSep(c0) {
		if len(p) < 2 || p[1] != c0 {
			return 1 // "/"
		}
		idx := strings.IndexByte(p[2:], c0)
		if idx < 0 {
			return len(p) // "//server"
		}
		return idx + 3 // "//server/"
	}

	if len(p) >= 2 && isVolumeChar(c0) && p[1] == ':' {
		if len(p) >= 3 && isSep(p[2]) {
			return 3 // "c:/"
		}
		if len(p) == 2 {
			return 2 // "c:"
		}
	}

	return 0
}

// IsAbsolute reports whether p starts with a root.
func IsAbsolute(p string) bool {
	return rootLength(p) > 0
}

// IsRoot reports whether p consists of nothing but a root.
func IsRoot(p string) bool {
	return p != "" && rootLength(p) == len(p)
}

// HasTrailingSeparator reports whether p ends with a separator.
func HasTrailingSeparator(p string) bool {
	return p != "" && isSep(p[len(p)-1])
}

// AddTrailingSeparator appends a separator to p unless it already ends with one.
func AddTrailingSeparator(p string) string {
	if HasTrailingSeparator(p) {
		return p
	}
	return p + Sep
}

// RemoveTrailingSeparator strips one trailing separator, keeping roots intact.
func RemoveTrailingSeparator(p string) string {
	if HasTrailingSeparator(p) && len(p) > 1 && !IsRoot(p) {
		return p[:len(p)-1]
	}
	return p
}

// Parse splits p into its root and components.
func Parse(p string) []string {
	p = NormalizeSeparators(p)
	n := rootLength(p)
	root := p[:n]
	rest := strings.Split(p[n:], Sep)
	if len(rest) > 0 && rest[len(rest)-1] == "" {
		rest = rest[:len(rest)-1]
	}
	return append([]string{root}, rest...)
}

// Reduce removes empty and "." components and resolves ".." lexically.
// ".." never climbs above a root; on relative paths leading ".." are kept.
func Reduce(components []string) []string {
	if len(components) == 0 {
		return nil
	}

	reduced := []string{components[0]}
	for _, c := range components[1:] {
		if c == "" || c == "." {
			continue
		}
		if c == ".." {
			if len(reduced) > 1 {
				if reduced[len(reduced)-1] != ".." {
					reduced = reduced[:len(reduced)-1]
					continue
				}
			} else if reduced[0] != "" {
				continue
			}
		}
		reduced = append(reduced, c)
	}
	return reduced
}

// Format joins a parsed path back into a string.
func Format(components []string) string {
	if len(components) == 0 {
		return ""
	}
	return components[0] + strings.Join(components[1:], Sep)
}

// Normalize reduces p, preserving a trailing separator.
func Normalize(p string) string {
	p = NormalizeSeparators(p)
	normalized := Format(Reduce(Parse(p)))
	if normalized != "" && HasTrailingSeparator(p) {
		return AddTrailingSeparator(normalized)
	}
	return normalized
}

// Combine appends paths to p. An absolute element replaces everything before it.
func Combine(p string, paths ...string) string {
	if p != "" {
		p = NormalizeSeparators(p)
	}
	for _, next := range paths {
		if next == "" {
			continue
		}
		next = NormalizeSeparators(next)
		if p == "" || rootLength(next) != 0 {
			p = next
		} else {
			p = AddTrailingSeparator(p) + next
		}
	}
	return p
}

// Resolve combines and normalizes the given paths.
func Resolve(p string, paths ...string) string {
	return Normalize(Combine(p, paths...))
}

// Relative returns the path from "from" to "to". If the two paths do not
// share a root, "to" is returned unchanged.
func Relative(from, to string, ignoreCase bool) string {
	fc := Reduce(Parse(from))
	tc := Reduce(Parse(to))

	start := 0
	for start < len(fc) && start < len(tc) {
		cmp := CompareStrings(fc[start], tc[start], ignoreCase)
		if start == 0 {
			cmp = CompareStrings(fc[start], tc[start], true)
		}
		if cmp != 0 {
			break
		}
		start++
	}
	if start == 0 {
		return to
	}

	components := []string{""}
	for range fc[start:] {
		components = append(components, "..")
	}
	components = append(components, tc[start:]...)
	return Format(components)
}

// BeneathOrEqual reports whether p is ancestor or a path below it.
func BeneathOrEqual(ancestor, p string, ignoreCase bool) bool {
	ac := Reduce(Parse(ancestor))
	pc := Reduce(Parse(p))
	if len(pc) < len(ac) {
		return false
	}
	for i := range ac {
		if CompareStrings(ac[i], pc[i], ignoreCase || i == 0) != 0 {
			return false
		}
	}
	return true
}

// Dirname returns the directory portion of p.
func Dirname(p string) string {
	p = NormalizeSeparators(p)
	n := rootLength(p)
	if n == len(p) {
		return p
	}
	p = RemoveTrailingSeparator(p)
	return p[:max(n, strings.LastIndex(p, Sep))]
}

// Basename returns the last component of p. When extensions are given and
// the name ends with one of them, that extension is stripped.
func Basename(p string, extensions ...string) string {
	p = NormalizeSeparators(p)
	n := rootLength(p)
	if n == len(p) {
		return ""
	}
	p = RemoveTrailingSeparator(p)
	name := p[max(n, strings.LastIndex(p, Sep)+1):]
	for _, ext := range extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if len(name) > len(ext) && strings.HasSuffix(name, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// Extname returns the extension of the last component, including the dot.
func Extname(p string) string {
	name := Basename(p)
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		return name[idx:]
	}
	return ""
}

// CompareStrings orders two strings ordinally, optionally ignoring case.
func CompareStrings(a, b string, ignoreCase bool) int {
	if ignoreCase {
		return strings.Compare(strings.ToUpper(a), strings.ToUpper(b))
	}
	return strings.Compare(a, b)
}

// Compare orders two paths component by component. Roots always
// compare case-insensitively.
func Compare(a, b string, ignoreCase bool) int {
	if a == b {
		return 0
	}

	ac := Reduce(Parse(a))
	bc := Reduce(Parse(b))
	for i := 0; i < min(len(ac), len(bc)); i++ {
		if cmp := CompareStrings(ac[i], bc[i], ignoreCase || i == 0); cmp != 0 {
			return cmp
		}
	}

	switch {
	case len(ac) < len(bc):
		return -1
	case len(ac) > len(bc):
		return 1
	}
	return 0
}

func CompareCaseSensitive(a, b string) int {
	return Compare(a, b, false)
}

func CompareCaseInsensitive(a, b string) int {
	return Compare(a, b, true)
}

// Equal reports whether a and b name the same path.
func Equal(a, b string, ignoreCase bool) bool {
	return Compare(a, b, ignoreCase) == 0
}

// Components returns the reduced components of p without the root.
func Components(p string) []string {
	return slices.Clone(Reduce(Parse(p))[1:])
}
