// Package passthrough implements fs.FileSystem by forwarding every operation
// to the equivalent host syscall on a real backing directory.
package passthrough

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/example/passfs/pkg/fs"
)

// Passthrough exposes a backing directory as an fs.FileSystem. It is
// stateless between calls; the only resources it touches are the host
// descriptors handed out by Open and Create, which the dispatcher owns.
type Passthrough struct {
	// root is the absolute path of the backing directory. Immutable for the
	// lifetime of the instance.
	root string

	log *zap.SugaredLogger
}

// New creates a Passthrough over the given backing root directory.
func New(root string, log *zap.SugaredLogger) (*Passthrough, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, fs.NewError("init", root, mapOSError(err))
	}
	if !fi.IsDir() {
		return nil, fs.NewError("init", root, fs.ErrNotDir)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fs.NewError("init", root, err)
	}

	log.Infow("passthrough filesystem initialized", "root", absRoot)

	return &Passthrough{
		root: absRoot,
		log:  log,
	}, nil
}

// Root returns the absolute path of the backing directory.
func (p *Passthrough) Root() string {
	return p.root
}

// realPath translates a virtual path into the backing location by stripping
// a single leading separator and joining the remainder onto the root. No
// other normalization happens here; symlink and dot-dot resolution is left
// to the host syscalls.
func (p *Passthrough) realPath(path string) string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return p.root
	}
	return p.root + string(filepath.Separator) + path
}

// mapOSError classifies a host error into the closed fs error set.
func mapOSError(err error) error {
	switch {
	case err == nil:
		return nil
	case os.IsNotExist(err):
		return fs.ErrNotExist
	case os.IsPermission(err):
		return fs.ErrPermission
	case os.IsExist(err):
		return fs.ErrExist
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ENOTEMPTY:
			return fs.ErrNotEmpty
		case syscall.EISDIR:
			return fs.ErrIsDir
		case syscall.ENOTDIR:
			return fs.ErrNotDir
		case syscall.EINVAL:
			return fs.ErrInvalid
		case syscall.ENOSPC:
			return fs.ErrNoSpace
		case syscall.EROFS:
			return fs.ErrReadOnly
		case syscall.ENOSYS, syscall.EOPNOTSUPP:
			return fs.ErrNotSupported
		}
	}

	return fs.ErrIO
}

// Access checks host-level access permission on the backing path.
func (p *Passthrough) Access(ctx context.Context, path string, mask uint32) error {
	if err := unix.Access(p.realPath(path), mask); err != nil {
		return fs.NewError("access", path, fs.ErrPermission)
	}
	return nil
}

// GetAttr returns a fresh attribute snapshot for the backing path. The stat
// is link-aware: a trailing symlink is reported, not followed.
func (p *Passthrough) GetAttr(ctx context.Context, path string) (fs.FileInfo, error) {
	info, err := os.Lstat(p.realPath(path))
	if err != nil {
		return fs.FileInfo{}, fs.NewError("getattr", path, mapOSError(err))
	}

	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fs.FileInfo{}, fs.NewError("getattr", path, fmt.Errorf("no system stat for %q", path))
	}

	return fs.FileInfo{
		Type:       fs.TypeOf(info.Mode()),
		Mode:       fs.ModeOf(info.Mode()),
		Size:       info.Size(),
		Uid:        st.Uid,
		Gid:        st.Gid,
		Nlink:      uint32(st.Nlink),
		Rdev:       uint64(st.Rdev),
		BlockSize:  uint32(st.Blksize),
		Blocks:     uint64(st.Blocks),
		AccessTime: time.Unix(st.Atim.Unix()),
		ModifyTime: time.Unix(st.Mtim.Unix()),
		ChangeTime: time.Unix(st.Ctim.Unix()),
	}, nil
}

// Chmod changes the permission bits on the backing path.
func (p *Passthrough) Chmod(ctx context.Context, path string, mode fs.FileMode) error {
	if err := os.Chmod(p.realPath(path), mode.OSMode()); err != nil {
		return fs.NewError("chmod", path, mapOSError(err))
	}
	return nil
}

// Chown changes the owner and group on the backing path.
func (p *Passthrough) Chown(ctx context.Context, path string, uid, gid uint32) error {
	if err := os.Chown(p.realPath(path), int(uid), int(gid)); err != nil {
		return fs.NewError("chown", path, mapOSError(err))
	}
	return nil
}

// Utimens sets access and modification times on the backing path. Nil times
// mean "now", matching host utimensat semantics.
func (p *Passthrough) Utimens(ctx context.Context, path string, atime, mtime *time.Time) error {
	now := time.Now()
	at, mt := now, now
	if atime != nil {
		at = *atime
	}
	if mtime != nil {
		mt = *mtime
	}
	if err := os.Chtimes(p.realPath(path), at, mt); err != nil {
		return fs.NewError("utimens", path, mapOSError(err))
	}
	return nil
}

// StatFS returns statistics for the filesystem holding the backing path.
func (p *Passthrough) StatFS(ctx context.Context, path string) (fs.FSStat, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(p.realPath(path), &st); err != nil {
		return fs.FSStat{}, fs.NewError("statfs", path, mapOSError(err))
	}

	return fs.FSStat{
		BlockSize:     uint32(st.Bsize),
		FragmentSize:  uint32(st.Frsize),
		Blocks:        st.Blocks,
		BlocksFree:    st.Bfree,
		BlocksAvail:   st.Bavail,
		Files:         st.Files,
		FilesFree:     st.Ffree,
		NameMaxLength: uint32(st.Namelen),
		Flags:         uint64(st.Flags),
	}, nil
}

// ReadDir lists the backing directory. The "." and ".." entries always come
// first; when the backing path is not a directory the listing is just those
// two entries.
func (p *Passthrough) ReadDir(ctx context.Context, path string) ([]fs.DirEntry, error) {
	entries := []fs.DirEntry{
		{Name: ".", Type: fs.FileTypeDirectory},
		{Name: "..", Type: fs.FileTypeDirectory},
	}

	real := p.realPath(path)
	info, err := os.Stat(real)
	if err != nil || !info.IsDir() {
		return entries, nil
	}

	dir, err := os.Open(real)
	if err != nil {
		return nil, fs.NewError("readdir", path, mapOSError(err))
	}
	defer dir.Close()

	// File.ReadDir keeps the host-reported order; os.ReadDir would sort.
	list, err := dir.ReadDir(-1)
	if err != nil {
		return nil, fs.NewError("readdir", path, mapOSError(err))
	}

	for _, entry := range list {
		entries = append(entries, fs.DirEntry{
			Name: entry.Name(),
			Type: fs.TypeOf(entry.Type()),
		})
	}

	p.log.Debugw("readdir", "path", path, "entries", len(entries))
	return entries, nil
}

// Mkdir creates a directory at the backing path.
func (p *Passthrough) Mkdir(ctx context.Context, path string, mode fs.FileMode) error {
	if err := os.Mkdir(p.realPath(path), mode.OSMode()); err != nil {
		return fs.NewError("mkdir", path, mapOSError(err))
	}
	return nil
}

// Rmdir removes the directory at the backing path.
func (p *Passthrough) Rmdir(ctx context.Context, path string) error {
	if err := unix.Rmdir(p.realPath(path)); err != nil {
		return fs.NewError("rmdir", path, mapOSError(err))
	}
	return nil
}

// Unlink removes the file at the backing path.
func (p *Passthrough) Unlink(ctx context.Context, path string) error {
	if err := unix.Unlink(p.realPath(path)); err != nil {
		return fs.NewError("unlink", path, mapOSError(err))
	}
	return nil
}

// Rename atomically moves oldPath to newPath, both translated to backing
// locations.
func (p *Passthrough) Rename(ctx context.Context, oldPath, newPath string) error {
	if err := os.Rename(p.realPath(oldPath), p.realPath(newPath)); err != nil {
		return fs.NewError("rename", oldPath, mapOSError(err))
	}
	return nil
}

// Symlink creates a symbolic link at linkPath storing the literal target
// string. The target is deliberately NOT translated: relative links must
// keep their meaning inside the mounted namespace.
func (p *Passthrough) Symlink(ctx context.Context, target, linkPath string) error {
	if err := os.Symlink(target, p.realPath(linkPath)); err != nil {
		return fs.NewError("symlink", linkPath, mapOSError(err))
	}
	return nil
}

// Readlink reads the stored target of the symlink at path. Absolute targets
// are rewritten relative to the backing root so links created directly in
// the backing directory stay valid when viewed through the mount.
func (p *Passthrough) Readlink(ctx context.Context, path string) (string, error) {
	target, err := os.Readlink(p.realPath(path))
	if err != nil {
		return "", fs.NewError("readlink", path, mapOSError(err))
	}

	if filepath.IsAbs(target) {
		rel, err := filepath.Rel(p.root, target)
		if err != nil {
			return "", fs.NewError("readlink", path, fs.ErrInvalid)
		}
		return rel, nil
	}
	return target, nil
}

// Link creates a hard link at newPath referring to oldPath.
func (p *Passthrough) Link(ctx context.Context, oldPath, newPath string) error {
	if err := os.Link(p.realPath(oldPath), p.realPath(newPath)); err != nil {
		return fs.NewError("link", newPath, mapOSError(err))
	}
	return nil
}

// Mknod creates a special file at the backing path. The node type comes from
// the caller-supplied type, never from implicit state.
func (p *Passthrough) Mknod(ctx context.Context, path string, mode fs.FileMode, fileType fs.FileType, dev uint64) error {
	raw := uint32(mode & 07777)
	switch fileType {
	case fs.FileTypeRegular:
		raw |= unix.S_IFREG
	case fs.FileTypeBlock:
		raw |= unix.S_IFBLK
	case fs.FileTypeChar:
		raw |= unix.S_IFCHR
	case fs.FileTypeFIFO:
		raw |= unix.S_IFIFO
	case fs.FileTypeSocket:
		raw |= unix.S_IFSOCK
	default:
		return fs.NewError("mknod", path, fs.ErrInvalid)
	}

	if err := unix.Mknod(p.realPath(path), raw, int(dev)); err != nil {
		return fs.NewError("mknod", path, mapOSError(err))
	}
	return nil
}
