package fuse

import (
	"context"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"go.uber.org/zap"

	"github.com/example/passfs/pkg/fs"
)

// FS is the FUSE-facing filesystem. It owns nothing itself; every request is
// delegated to the backend through the fs.FileSystem contract.
type FS struct {
	backend fs.FileSystem
	log     *zap.SugaredLogger
}

// NewFS wraps a backend filesystem for serving over FUSE.
func NewFS(backend fs.FileSystem, log *zap.SugaredLogger) *FS {
	return &FS{
		backend: backend,
		log:     log,
	}
}

// Root returns the root directory node of the filesystem.
func (f *FS) Root() (fusefs.Node, error) {
	return &Dir{node: node{fs: f, path: "/"}}, nil
}

// Statfs reports statistics of the filesystem backing the mount root.
func (f *FS) Statfs(ctx context.Context, req *fuse.StatfsRequest, resp *fuse.StatfsResponse) error {
	st, err := f.backend.StatFS(ctx, "/")
	if err != nil {
		return ToErrno(err)
	}

	resp.Blocks = st.Blocks
	resp.Bfree = st.BlocksFree
	resp.Bavail = st.BlocksAvail
	resp.Files = st.Files
	resp.Ffree = st.FilesFree
	resp.Bsize = st.BlockSize
	resp.Namelen = st.NameMaxLength
	resp.Frsize = st.FragmentSize
	return nil
}
