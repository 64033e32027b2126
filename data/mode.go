package data

// FileMode represents file type and permission bits.
// It follows the POSIX st_mode layout: the upper bits select the node type,
// the lower 12 bits hold permissions.
type FileMode uint32

const (
	// Type bits
	ModeType    FileMode = 0o170000 // mask for the type bits
	ModeSymlink FileMode = 0o120000 // l: symbolic link
	ModeFile    FileMode = 0o100000 // -: regular file
	ModeDir     FileMode = 0o040000 // d: directory

	// Permission bits
	ModePerm FileMode = 0o777
)

// Default permission bits for new nodes.
const (
	DefaultFileMode    FileMode = 0o666
	DefaultDirMode     FileMode = 0o777
	DefaultSymlinkMode FileMode = 0o666
)

// Type returns the type bits in m.
func (m FileMode) Type() FileMode {
	return m & ModeType
}

// IsDir reports whether m describes a directory.
func (m FileMode) IsDir() bool {
	return m.Type() == ModeDir
}

// IsSymlink reports whether m describes a symbolic link.
func (m FileMode) IsSymlink() bool {
	return m.Type() == ModeSymlink
}

// IsRegular reports whether m describes a regular file.
func (m FileMode) IsRegular() bool {
	return m.Type() == ModeFile
}

// Perm returns the Unix permission bits in m.
func (m FileMode) Perm() FileMode {
	return m & ModePerm
}

// String returns a textual representation of the mode in Unix ls -l format.
// Example: "drwxr-xr-x" for a directory with 755 permissions.
func (m FileMode) String() string {
	var buf [10]byte

	switch m.Type() {
	case ModeDir:
		buf[0] = 'd'
	case ModeSymlink:
		buf[0] = 'l'
	case ModeFile:
		buf[0] = '-'
	default:
		buf[0] = '?'
	}

	const rwx = "rwxrwxrwx"
	for i, c := range rwx {
		if m&(1<<uint(9-1-i)) != 0 {
			buf[i+1] = byte(c)
		} else {
			buf[i+1] = '-'
		}
	}

	return string(buf[:])
}
