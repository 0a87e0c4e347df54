package filesystem

import (
	"io"
	"io/fs"
)

// File is a writable file handle. Sync is the durability barrier: it must
// not return until previously written bytes are on stable storage.
type File interface {
	io.Writer
	Sync() error
	Close() error
}

// FS is the set of filesystem operations used by the document store.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	Readlink(name string) (string, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Create opens name for exclusive writing, truncating any existing
	// content, and returns a handle capable of a durability barrier.
	Create(name string) (File, error)

	Rename(oldpath, newpath string) error
	Remove(name string) error
}
