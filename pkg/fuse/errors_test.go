package fuse

import (
	"errors"
	"syscall"
	"testing"

	"bazil.org/fuse"
	"github.com/stretchr/testify/assert"

	"github.com/example/passfs/pkg/fs"
)

func TestToErrno(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want syscall.Errno
	}{
		{"not exist", fs.ErrNotExist, syscall.ENOENT},
		{"permission", fs.ErrPermission, syscall.EACCES},
		{"exist", fs.ErrExist, syscall.EEXIST},
		{"is dir", fs.ErrIsDir, syscall.EISDIR},
		{"not dir", fs.ErrNotDir, syscall.ENOTDIR},
		{"not empty", fs.ErrNotEmpty, syscall.ENOTEMPTY},
		{"invalid", fs.ErrInvalid, syscall.EINVAL},
		{"no space", fs.ErrNoSpace, syscall.ENOSPC},
		{"read only", fs.ErrReadOnly, syscall.EROFS},
		{"unsupported", fs.ErrNotSupported, syscall.ENOSYS},
		{"io", fs.ErrIO, syscall.EIO},
		{"unknown", errors.New("mystery"), syscall.EIO},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, fuse.Errno(tc.want), ToErrno(tc.in))
		})
	}
}

func TestToErrno_WrappedFSError(t *testing.T) {
	err := fs.NewError("getattr", "/x", fs.ErrNotExist)
	assert.Equal(t, fuse.Errno(syscall.ENOENT), ToErrno(err))
}

func TestToErrno_RawErrnoPassthrough(t *testing.T) {
	assert.Equal(t, fuse.Errno(syscall.ENAMETOOLONG), ToErrno(syscall.ENAMETOOLONG))
}
