package fuse

import (
	"context"
	gopath "path"
	"syscall"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/example/passfs/pkg/fs"
)

// Dir is a directory node. Its path is re-translated on every request; there
// is no per-node caching of backing state.
type Dir struct {
	node
}

var (
	_ fusefs.Node               = (*Dir)(nil)
	_ fusefs.NodeAccesser       = (*Dir)(nil)
	_ fusefs.NodeSetattrer      = (*Dir)(nil)
	_ fusefs.NodeStringLookuper = (*Dir)(nil)
	_ fusefs.HandleReadDirAller = (*Dir)(nil)
	_ fusefs.NodeMkdirer        = (*Dir)(nil)
	_ fusefs.NodeRemover        = (*Dir)(nil)
	_ fusefs.NodeRenamer        = (*Dir)(nil)
	_ fusefs.NodeSymlinker      = (*Dir)(nil)
	_ fusefs.NodeLinker         = (*Dir)(nil)
	_ fusefs.NodeMknoder        = (*Dir)(nil)
	_ fusefs.NodeCreater        = (*Dir)(nil)
)

// child builds the virtual path of a named entry in this directory.
func (d *Dir) child(name string) string {
	return gopath.Join(d.path, name)
}

// Lookup resolves a name in this directory to a node of the matching kind.
func (d *Dir) Lookup(ctx context.Context, name string) (fusefs.Node, error) {
	childPath := d.child(name)

	info, err := d.fs.backend.GetAttr(ctx, childPath)
	if err != nil {
		return nil, ToErrno(err)
	}

	if info.Type == fs.FileTypeDirectory {
		return &Dir{node: node{fs: d.fs, path: childPath}}, nil
	}
	return newFile(d.fs, childPath), nil
}

// ReadDirAll lists the directory. The backend already prefixes the listing
// with the conventional "." and ".." entries.
func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	entries, err := d.fs.backend.ReadDir(ctx, d.path)
	if err != nil {
		return nil, ToErrno(err)
	}

	dirents := make([]fuse.Dirent, 0, len(entries))
	for _, entry := range entries {
		dirents = append(dirents, fuse.Dirent{
			Name: entry.Name,
			Type: direntType(entry.Type),
		})
	}
	return dirents, nil
}

// Mkdir creates a subdirectory.
func (d *Dir) Mkdir(ctx context.Context, req *fuse.MkdirRequest) (fusefs.Node, error) {
	childPath := d.child(req.Name)

	if err := d.fs.backend.Mkdir(ctx, childPath, fs.ModeOf(req.Mode)); err != nil {
		return nil, ToErrno(err)
	}
	return &Dir{node: node{fs: d.fs, path: childPath}}, nil
}

// Remove unlinks a file or removes an empty subdirectory, depending on what
// the kernel asked for.
func (d *Dir) Remove(ctx context.Context, req *fuse.RemoveRequest) error {
	childPath := d.child(req.Name)

	var err error
	if req.Dir {
		err = d.fs.backend.Rmdir(ctx, childPath)
	} else {
		err = d.fs.backend.Unlink(ctx, childPath)
	}
	if err != nil {
		return ToErrno(err)
	}
	return nil
}

// Rename atomically moves an entry of this directory into newDir.
func (d *Dir) Rename(ctx context.Context, req *fuse.RenameRequest, newDir fusefs.Node) error {
	target, ok := newDir.(*Dir)
	if !ok {
		return fuse.Errno(syscall.ENOTDIR)
	}

	if err := d.fs.backend.Rename(ctx, d.child(req.OldName), target.child(req.NewName)); err != nil {
		return ToErrno(err)
	}
	return nil
}

// Symlink creates a symbolic link storing the literal target string.
func (d *Dir) Symlink(ctx context.Context, req *fuse.SymlinkRequest) (fusefs.Node, error) {
	childPath := d.child(req.NewName)

	if err := d.fs.backend.Symlink(ctx, req.Target, childPath); err != nil {
		return nil, ToErrno(err)
	}
	return newFile(d.fs, childPath), nil
}

// Link creates a hard link to an existing file node.
func (d *Dir) Link(ctx context.Context, req *fuse.LinkRequest, old fusefs.Node) (fusefs.Node, error) {
	oldFile, ok := old.(*File)
	if !ok {
		return nil, fuse.Errno(syscall.EPERM)
	}

	childPath := d.child(req.NewName)
	if err := d.fs.backend.Link(ctx, oldFile.path, childPath); err != nil {
		return nil, ToErrno(err)
	}
	return newFile(d.fs, childPath), nil
}

// Mknod creates a special file. The node type is taken from the request's
// mode bits.
func (d *Dir) Mknod(ctx context.Context, req *fuse.MknodRequest) (fusefs.Node, error) {
	childPath := d.child(req.Name)

	err := d.fs.backend.Mknod(ctx, childPath, fs.ModeOf(req.Mode), fs.TypeOf(req.Mode), uint64(req.Rdev))
	if err != nil {
		return nil, ToErrno(err)
	}
	return newFile(d.fs, childPath), nil
}

// Create creates and opens a file, owned by the requesting caller.
func (d *Dir) Create(ctx context.Context, req *fuse.CreateRequest, resp *fuse.CreateResponse) (fusefs.Node, fusefs.Handle, error) {
	childPath := d.child(req.Name)

	creds := fs.Credentials{UID: req.Uid, GID: req.Gid}
	h, err := d.fs.backend.Create(ctx, childPath, fs.ModeOf(req.Mode), creds)
	if err != nil {
		return nil, nil, ToErrno(err)
	}

	file := newFile(d.fs, childPath)
	file.track(h)
	resp.OpenResponse.Flags |= fuse.OpenDirectIO
	return file, &FileHandle{file: file, handle: h}, nil
}

// direntType maps a filesystem entry type onto the FUSE wire enum.
func direntType(t fs.FileType) fuse.DirentType {
	switch t {
	case fs.FileTypeDirectory:
		return fuse.DT_Dir
	case fs.FileTypeSymlink:
		return fuse.DT_Link
	case fs.FileTypeBlock:
		return fuse.DT_Block
	case fs.FileTypeChar:
		return fuse.DT_Char
	case fs.FileTypeFIFO:
		return fuse.DT_FIFO
	case fs.FileTypeSocket:
		return fuse.DT_Socket
	default:
		return fuse.DT_File
	}
}
