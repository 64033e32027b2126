package data

import "time"

// DefaultBlockSize is reported as Blksize for every node.
const DefaultBlockSize = 4096

// Stats is the projection of a node returned by stat and lstat.
type Stats struct {
	Dev     uint64   `json:"dev"`
	Ino     uint64   `json:"ino"`
	Mode    FileMode `json:"mode"`
	Nlink   int      `json:"nlink"`
	Size    int64    `json:"size"`
	Blksize int64    `json:"blksize"`
	Blocks  int64    `json:"blocks"`

	AccessTime time.Time `json:"atime"`
	ModifyTime time.Time `json:"mtime"`
	ChangeTime time.Time `json:"ctime"`
	BirthTime  time.Time `json:"birthtime"`
}

func (s *Stats) IsFile() bool {
	return s.Mode.IsRegular()
}

func (s *Stats) IsDirectory() bool {
	return s.Mode.IsDir()
}

func (s *Stats) IsSymlink() bool {
	return s.Mode.IsSymlink()
}
