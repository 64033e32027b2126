package data

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
)

// Errno is a POSIX style error code.
type Errno string

const (
	EACCES    Errno = "EACCES"
	EIO       Errno = "EIO"
	ENOENT    Errno = "ENOENT"
	EEXIST    Errno = "EEXIST"
	ELOOP     Errno = "ELOOP"
	ENOTDIR   Errno = "ENOTDIR"
	EISDIR    Errno = "EISDIR"
	EBADF     Errno = "EBADF"
	EINVAL    Errno = "EINVAL"
	ENOTEMPTY Errno = "ENOTEMPTY"
	EPERM     Errno = "EPERM"
	EROFS     Errno = "EROFS"
)

var errnoMessages = map[Errno]string{
	EACCES:    "access denied",
	EIO:       "an I/O error occurred",
	ENOENT:    "no such file or directory",
	EEXIST:    "file already exists",
	ELOOP:     "too many symbolic links encountered",
	ENOTDIR:   "no such directory",
	EISDIR:    "path is a directory",
	EBADF:     "invalid file descriptor",
	EINVAL:    "invalid value",
	ENOTEMPTY: "directory not empty",
	EPERM:     "operation not permitted",
	EROFS:     "file system is read-only",
}

func (e Errno) Error() string {
	return string(e) + ": " + e.Message()
}

// Message returns the human readable text of the code.
func (e Errno) Message() string {
	if msg, ok := errnoMessages[e]; ok {
		return msg
	}
	return "unknown error"
}

// Is lets an Errno match the io/fs sentinel errors.
func (e Errno) Is(target error) bool {
	switch target {
	case fs.ErrNotExist:
		return e == ENOENT
	case fs.ErrExist:
		return e == EEXIST || e == ENOTEMPTY
	case fs.ErrPermission:
		return e == EACCES || e == EPERM || e == EROFS
	case fs.ErrInvalid:
		return e == EINVAL || e == EBADF
	}
	return false
}

// PathError records an Errno together with the operation and path that caused it.
type PathError struct {
	Op   string
	Path string
	Code Errno
	// Underlying cause, e.g. a resolver failure.
	Err error
}

// NewPathError returns a PathError for the given code, operation and path.
func NewPathError(code Errno, op, path string) *PathError {
	return &PathError{Op: op, Path: path, Code: code}
}

func (e *PathError) Error() string {
	msg := e.Code.Error()
	if e.Op != "" {
		msg += ", " + e.Op
		if e.Path != "" {
			msg += fmt.Sprintf(" '%s'", e.Path)
		}
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PathError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Code}
	}
	return []error{e.Code, e.Err}
}

// Code extracts the Errno carried by err, if any.
func Code(err error) (Errno, bool) {
	var pe *PathError
	if errors.As(err, &pe) {
		return pe.Code, true
	}
	var code Errno
	if errors.As(err, &code) {
		return code, true
	}
	return "", false
}

// Errors collects multiple errors into one.
type Errors struct {
	mu     sync.RWMutex
	errors []error
}

func (e *Errors) Add(err error) {
	if err == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.errors = append(e.errors, err)
}

func (e *Errors) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.errors)
}

func (e *Errors) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.errors = make([]error, 0)
}

func (e *Errors) Errors() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.errors) == 0 {
		return nil
	}

	return errors.Join(e.errors...)
}
