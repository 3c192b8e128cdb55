// Package fuse binds the passthrough filesystem contract to the kernel FUSE
// dispatcher via bazil.org/fuse.
package fuse

import (
	"errors"
	"syscall"

	"bazil.org/fuse"

	"github.com/example/passfs/pkg/fs"
)

// ToErrno encodes a filesystem error into the numeric errno form the kernel
// protocol expects. This is the only place error kinds become numbers;
// everything below this boundary works with the fs sentinel errors.
func ToErrno(err error) fuse.Errno {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fuse.Errno(syscall.ENOENT)
	case errors.Is(err, fs.ErrPermission):
		return fuse.Errno(syscall.EACCES)
	case errors.Is(err, fs.ErrExist):
		return fuse.Errno(syscall.EEXIST)
	case errors.Is(err, fs.ErrIsDir):
		return fuse.Errno(syscall.EISDIR)
	case errors.Is(err, fs.ErrNotDir):
		return fuse.Errno(syscall.ENOTDIR)
	case errors.Is(err, fs.ErrNotEmpty):
		return fuse.Errno(syscall.ENOTEMPTY)
	case errors.Is(err, fs.ErrInvalid):
		return fuse.Errno(syscall.EINVAL)
	case errors.Is(err, fs.ErrNoSpace):
		return fuse.Errno(syscall.ENOSPC)
	case errors.Is(err, fs.ErrReadOnly):
		return fuse.Errno(syscall.EROFS)
	case errors.Is(err, fs.ErrNotSupported):
		return fuse.Errno(syscall.ENOSYS)
	}

	// Raw errnos pass through unchanged.
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return fuse.Errno(errno)
	}

	return fuse.Errno(syscall.EIO)
}
