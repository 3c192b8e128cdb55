package fuse

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"bazil.org/fuse"
	"github.com/stretchr/testify/require"
)

func lookupFile(t *testing.T, root *Dir, name string) *File {
	t.Helper()

	n, err := root.Lookup(context.Background(), name)
	require.NoError(t, err)
	f, ok := n.(*File)
	require.True(t, ok, "%s must resolve to a file node", name)
	return f
}

func TestFile_OpenReadRelease(t *testing.T) {
	f, dir := newTestFS(t)
	root := rootDir(t, f)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "file"), []byte("payload"), 0644))
	file := lookupFile(t, root, "file")

	resp := &fuse.OpenResponse{}
	h, err := file.Open(ctx, &fuse.OpenRequest{Flags: fuse.OpenFlags(os.O_RDONLY)}, resp)
	require.NoError(t, err)
	require.NotZero(t, resp.Flags&fuse.OpenDirectIO, "direct I/O keeps the page cache out")

	fh, ok := h.(*FileHandle)
	require.True(t, ok)
	require.Len(t, file.liveHandles(), 1)

	rresp := &fuse.ReadResponse{}
	require.NoError(t, fh.Read(ctx, &fuse.ReadRequest{Offset: 3, Size: 4}, rresp))
	require.Equal(t, "load", string(rresp.Data))

	require.NoError(t, fh.Flush(ctx, &fuse.FlushRequest{}))
	require.NoError(t, fh.Release(ctx, &fuse.ReleaseRequest{}))
	require.Empty(t, file.liveHandles())
}

func TestFile_WriteFsync(t *testing.T) {
	f, dir := newTestFS(t)
	root := rootDir(t, f)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "file"), []byte("xxxxxx"), 0644))
	file := lookupFile(t, root, "file")

	resp := &fuse.OpenResponse{}
	h, err := file.Open(ctx, &fuse.OpenRequest{Flags: fuse.OpenFlags(os.O_RDWR)}, resp)
	require.NoError(t, err)
	fh := h.(*FileHandle)

	wresp := &fuse.WriteResponse{}
	require.NoError(t, fh.Write(ctx, &fuse.WriteRequest{Offset: 2, Data: []byte("YY")}, wresp))
	require.Equal(t, 2, wresp.Size)

	// Node-level fsync reaches the open descriptor.
	require.NoError(t, file.Fsync(ctx, &fuse.FsyncRequest{Flags: 1}))

	require.NoError(t, fh.Release(ctx, &fuse.ReleaseRequest{}))

	data, err := os.ReadFile(filepath.Join(dir, "file"))
	require.NoError(t, err)
	require.Equal(t, "xxYYxx", string(data))
}

func TestFile_SetattrSize(t *testing.T) {
	f, dir := newTestFS(t)
	root := rootDir(t, f)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "file"), []byte("0123456789"), 0644))
	file := lookupFile(t, root, "file")

	req := &fuse.SetattrRequest{Valid: fuse.SetattrSize, Size: 4}
	resp := &fuse.SetattrResponse{}
	require.NoError(t, file.Setattr(ctx, req, resp))
	require.Equal(t, uint64(4), resp.Attr.Size)

	info, err := os.Stat(filepath.Join(dir, "file"))
	require.NoError(t, err)
	require.Equal(t, int64(4), info.Size())
}

func TestFile_SetattrMode(t *testing.T) {
	f, dir := newTestFS(t)
	root := rootDir(t, f)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "file"), []byte("x"), 0644))
	file := lookupFile(t, root, "file")

	req := &fuse.SetattrRequest{Valid: fuse.SetattrMode, Mode: 0600}
	resp := &fuse.SetattrResponse{}
	require.NoError(t, file.Setattr(ctx, req, resp))

	info, err := os.Stat(filepath.Join(dir, "file"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFile_SetattrMtimeOnly(t *testing.T) {
	f, dir := newTestFS(t)
	root := rootDir(t, f)
	ctx := context.Background()

	path := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	atime := time.Unix(1600000000, 0)
	require.NoError(t, os.Chtimes(path, atime, time.Unix(1600000100, 0)))

	file := lookupFile(t, root, "file")

	newMtime := time.Unix(1700000000, 0)
	req := &fuse.SetattrRequest{Valid: fuse.SetattrMtime, Mtime: newMtime}
	require.NoError(t, file.Setattr(ctx, req, &fuse.SetattrResponse{}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	st := info.Sys().(*syscall.Stat_t)
	require.Equal(t, newMtime.Unix(), st.Mtim.Sec)
	// The untouched access time is carried forward, not reset to "now".
	require.Equal(t, atime.Unix(), st.Atim.Sec)
}

func TestFile_SetattrAtimeNowWithMtime(t *testing.T) {
	f, dir := newTestFS(t)
	root := rootDir(t, f)
	ctx := context.Background()

	path := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	require.NoError(t, os.Chtimes(path, time.Unix(1600000000, 0), time.Unix(1600000100, 0)))

	file := lookupFile(t, root, "file")

	before := time.Now().Add(-time.Second)
	newMtime := time.Unix(1700000000, 0)
	req := &fuse.SetattrRequest{Valid: fuse.SetattrAtimeNow | fuse.SetattrMtime, Mtime: newMtime}
	require.NoError(t, file.Setattr(ctx, req, &fuse.SetattrResponse{}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	st := info.Sys().(*syscall.Stat_t)
	require.Equal(t, newMtime.Unix(), st.Mtim.Sec)
	require.GreaterOrEqual(t, st.Atim.Sec, before.Unix(), "atime must advance to the current time")
}

func TestFile_SetattrGidOnly(t *testing.T) {
	f, dir := newTestFS(t)
	root := rootDir(t, f)
	ctx := context.Background()

	path := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	file := lookupFile(t, root, "file")

	req := &fuse.SetattrRequest{Valid: fuse.SetattrGid, Gid: uint32(os.Getgid())}
	require.NoError(t, file.Setattr(ctx, req, &fuse.SetattrResponse{}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	st := info.Sys().(*syscall.Stat_t)
	// The untouched owner id is resolved from the current snapshot.
	require.Equal(t, uint32(os.Getuid()), st.Uid)
	require.Equal(t, uint32(os.Getgid()), st.Gid)
}

func TestFile_AttrNotFound(t *testing.T) {
	f, _ := newTestFS(t)
	root := rootDir(t, f)

	ghost := &File{node: node{fs: root.fs, path: "/ghost"}}
	var attr fuse.Attr
	err := ghost.Attr(context.Background(), &attr)
	require.Equal(t, fuse.Errno(syscall.ENOENT), err)
}
