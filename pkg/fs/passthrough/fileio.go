package passthrough

import (
	"context"
	"io"
	"os"

	"golang.org/x/sys/unix"

	"github.com/example/passfs/pkg/fs"
)

// Open opens the backing path with the caller's flags passed through
// untranslated. The returned handle is the raw host descriptor.
func (p *Passthrough) Open(ctx context.Context, path string, flags int) (fs.Handle, error) {
	fd, err := unix.Open(p.realPath(path), flags, 0)
	if err != nil {
		return fs.InvalidHandle, fs.NewError("open", path, mapOSError(err))
	}

	p.log.Debugw("open", "path", path, "flags", flags, "fd", fd)
	return fs.Handle(fd), nil
}

// Create opens the backing path write-only with creation semantics, then
// hands ownership of the new file to the requesting caller so it is owned by
// the caller rather than by the driver process.
func (p *Passthrough) Create(ctx context.Context, path string, mode fs.FileMode, creds fs.Credentials) (fs.Handle, error) {
	real := p.realPath(path)

	fd, err := unix.Open(real, unix.O_WRONLY|unix.O_CREAT, uint32(mode&07777))
	if err != nil {
		return fs.InvalidHandle, fs.NewError("create", path, mapOSError(err))
	}

	if err := os.Chown(real, int(creds.UID), int(creds.GID)); err != nil {
		unix.Close(fd)
		return fs.InvalidHandle, fs.NewError("create", path, mapOSError(err))
	}

	p.log.Debugw("create", "path", path, "uid", creds.UID, "gid", creds.GID, "fd", fd)
	return fs.Handle(fd), nil
}

// Read repositions the handle to the absolute offset and issues a single
// read. A short read near end-of-file is returned as-is; resubmitting is
// the caller's responsibility.
func (p *Passthrough) Read(ctx context.Context, path string, h fs.Handle, offset int64, length int) ([]byte, error) {
	if _, err := unix.Seek(h.Fd(), offset, io.SeekStart); err != nil {
		return nil, fs.NewError("read", path, mapOSError(err))
	}

	buf := make([]byte, length)
	n, err := unix.Read(h.Fd(), buf)
	if err != nil {
		return nil, fs.NewError("read", path, mapOSError(err))
	}
	return buf[:n], nil
}

// Write repositions the handle to the absolute offset and writes data,
// returning the number of bytes the host actually accepted.
func (p *Passthrough) Write(ctx context.Context, path string, h fs.Handle, offset int64, data []byte) (int, error) {
	if _, err := unix.Seek(h.Fd(), offset, io.SeekStart); err != nil {
		return 0, fs.NewError("write", path, mapOSError(err))
	}

	n, err := unix.Write(h.Fd(), data)
	if err != nil {
		return 0, fs.NewError("write", path, mapOSError(err))
	}
	return n, nil
}

// Truncate resizes the backing file through a transient read-write handle,
// independent of any handle the caller already holds open.
func (p *Passthrough) Truncate(ctx context.Context, path string, size int64) error {
	f, err := os.OpenFile(p.realPath(path), os.O_RDWR, 0)
	if err != nil {
		return fs.NewError("truncate", path, mapOSError(err))
	}
	defer f.Close()

	if err := f.Truncate(size); err != nil {
		return fs.NewError("truncate", path, mapOSError(err))
	}
	return nil
}

// Flush forces pending writes on the handle to stable storage.
func (p *Passthrough) Flush(ctx context.Context, path string, h fs.Handle) error {
	if err := unix.Fsync(h.Fd()); err != nil {
		return fs.NewError("flush", path, mapOSError(err))
	}
	return nil
}

// Release closes the handle. It is invalid for any use afterwards.
func (p *Passthrough) Release(ctx context.Context, path string, h fs.Handle) error {
	p.log.Debugw("release", "path", path, "fd", h.Fd())
	if err := unix.Close(h.Fd()); err != nil {
		return fs.NewError("release", path, mapOSError(err))
	}
	return nil
}

// Fsync behaves exactly like Flush; the data-sync hint is ignored.
func (p *Passthrough) Fsync(ctx context.Context, path string, h fs.Handle, dataSync bool) error {
	return p.Flush(ctx, path, h)
}
