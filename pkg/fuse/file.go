package fuse

import (
	"context"
	"sync"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/example/passfs/pkg/fs"
)

// File is a non-directory node: regular files, symlinks and special files.
// It tracks the handles it has handed out so node-level fsync can reach an
// open descriptor; the handles themselves belong to the host OS.
type File struct {
	node

	mu   sync.Mutex
	open map[fs.Handle]struct{}
}

var (
	_ fusefs.Node           = (*File)(nil)
	_ fusefs.NodeAccesser   = (*File)(nil)
	_ fusefs.NodeSetattrer  = (*File)(nil)
	_ fusefs.NodeOpener     = (*File)(nil)
	_ fusefs.NodeReadlinker = (*File)(nil)
	_ fusefs.NodeFsyncer    = (*File)(nil)
)

func newFile(f *FS, path string) *File {
	return &File{
		node: node{fs: f, path: path},
		open: make(map[fs.Handle]struct{}),
	}
}

func (f *File) track(h fs.Handle) {
	f.mu.Lock()
	f.open[h] = struct{}{}
	f.mu.Unlock()
}

func (f *File) untrack(h fs.Handle) {
	f.mu.Lock()
	delete(f.open, h)
	f.mu.Unlock()
}

// liveHandles snapshots the currently open handles of this node.
func (f *File) liveHandles() []fs.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()

	handles := make([]fs.Handle, 0, len(f.open))
	for h := range f.open {
		handles = append(handles, h)
	}
	return handles
}

// Open opens the backing file with the caller's flags passed through
// untranslated. Direct I/O keeps the kernel page cache out of the way, so
// reads and writes always reach the backing file.
func (f *File) Open(ctx context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fusefs.Handle, error) {
	h, err := f.fs.backend.Open(ctx, f.path, int(req.Flags))
	if err != nil {
		return nil, ToErrno(err)
	}

	f.track(h)
	resp.Flags |= fuse.OpenDirectIO
	return &FileHandle{file: f, handle: h}, nil
}

// Readlink returns the stored target of a symbolic link.
func (f *File) Readlink(ctx context.Context, req *fuse.ReadlinkRequest) (string, error) {
	target, err := f.fs.backend.Readlink(ctx, f.path)
	if err != nil {
		return "", ToErrno(err)
	}
	return target, nil
}

// Fsync synchronizes every live handle of this node to stable storage. The
// dispatcher resolves the request's handle id internally, so the node syncs
// all descriptors it has handed out.
func (f *File) Fsync(ctx context.Context, req *fuse.FsyncRequest) error {
	dataSync := req.Flags&1 != 0

	for _, h := range f.liveHandles() {
		if err := f.fs.backend.Fsync(ctx, f.path, h, dataSync); err != nil {
			return ToErrno(err)
		}
	}
	return nil
}

// FileHandle wraps one open descriptor between Open/Create and Release.
type FileHandle struct {
	file   *File
	handle fs.Handle
}

var (
	_ fusefs.HandleReader   = (*FileHandle)(nil)
	_ fusefs.HandleWriter   = (*FileHandle)(nil)
	_ fusefs.HandleFlusher  = (*FileHandle)(nil)
	_ fusefs.HandleReleaser = (*FileHandle)(nil)
)

// Read reads up to req.Size bytes at the absolute req.Offset. A short read
// at end-of-file is passed back as-is.
func (fh *FileHandle) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	data, err := fh.file.fs.backend.Read(ctx, fh.file.path, fh.handle, req.Offset, req.Size)
	if err != nil {
		return ToErrno(err)
	}

	resp.Data = data
	return nil
}

// Write writes req.Data at the absolute req.Offset and reports how many
// bytes the host accepted.
func (fh *FileHandle) Write(ctx context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	n, err := fh.file.fs.backend.Write(ctx, fh.file.path, fh.handle, req.Offset, req.Data)
	if err != nil {
		return ToErrno(err)
	}

	resp.Size = n
	return nil
}

// Flush forces pending writes to stable storage. The kernel sends this on
// every close of the descriptor.
func (fh *FileHandle) Flush(ctx context.Context, req *fuse.FlushRequest) error {
	if err := fh.file.fs.backend.Flush(ctx, fh.file.path, fh.handle); err != nil {
		return ToErrno(err)
	}
	return nil
}

// Release closes the descriptor and invalidates the handle.
func (fh *FileHandle) Release(ctx context.Context, req *fuse.ReleaseRequest) error {
	fh.file.untrack(fh.handle)

	if err := fh.file.fs.backend.Release(ctx, fh.file.path, fh.handle); err != nil {
		return ToErrno(err)
	}
	return nil
}
