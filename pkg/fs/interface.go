package fs

import (
	"context"
	"time"
)

// FileSystem is the contract between the kernel dispatcher binding and the
// storage backend. Paths are slash-rooted and relative to the mount point;
// the implementation is responsible for translating them to real locations.
//
// Operations that fail return one of the sentinel errors from this package,
// usually wrapped in an FSError carrying the operation name and path.
type FileSystem interface {
	// Access checks whether the file at path can be accessed with the
	// requested permission mask. No side effects.
	Access(ctx context.Context, path string, mask uint32) error

	// GetAttr retrieves the attribute snapshot for the file at path using a
	// link-aware stat; a trailing symlink is not followed.
	GetAttr(ctx context.Context, path string) (FileInfo, error)

	// Chmod changes the permission bits of the file at path.
	Chmod(ctx context.Context, path string, mode FileMode) error

	// Chown changes the owner and group of the file at path.
	Chown(ctx context.Context, path string, uid, gid uint32) error

	// Utimens sets the access and modification times of the file at path.
	// A nil time means "set to the current time".
	Utimens(ctx context.Context, path string, atime, mtime *time.Time) error

	// StatFS retrieves statistics for the filesystem holding path.
	StatFS(ctx context.Context, path string) (FSStat, error)

	// ReadDir lists the directory at path. The result always starts with the
	// "." and ".." entries; when path is a directory its entries follow in
	// host-reported order. The listing is materialized fresh per call.
	ReadDir(ctx context.Context, path string) ([]DirEntry, error)

	// Mkdir creates a directory at path with the given permission bits.
	Mkdir(ctx context.Context, path string, mode FileMode) error

	// Rmdir removes the empty directory at path.
	Rmdir(ctx context.Context, path string) error

	// Unlink removes the file at path.
	Unlink(ctx context.Context, path string) error

	// Rename atomically moves oldPath to newPath.
	Rename(ctx context.Context, oldPath, newPath string) error

	// Symlink creates a symbolic link at linkPath whose stored target is
	// exactly the literal string target. The target is never translated, so
	// relative links keep their meaning inside the mounted namespace.
	Symlink(ctx context.Context, target, linkPath string) error

	// Readlink reads the stored target of the symbolic link at path. An
	// absolute stored target is rewritten relative to the backing root so it
	// stays valid when resolved through the mount.
	Readlink(ctx context.Context, path string) (string, error)

	// Link creates a hard link at newPath referring to the file at oldPath.
	Link(ctx context.Context, oldPath, newPath string) error

	// Mknod creates a special file at path. The node type is taken from the
	// type bits of mode; dev carries the device numbers for block and
	// character nodes.
	Mknod(ctx context.Context, path string, mode FileMode, fileType FileType, dev uint64) error

	// Open opens the file at path with the given host open flags, which are
	// passed through untranslated. Returns the resulting handle.
	Open(ctx context.Context, path string, flags int) (Handle, error)

	// Create creates and opens the file at path write-only with the given
	// permission bits, then transfers ownership to the requesting caller so
	// the new file is owned by creds rather than by the driver process.
	Create(ctx context.Context, path string, mode FileMode, creds Credentials) (Handle, error)

	// Read repositions h to the absolute offset and reads up to length
	// bytes. A short read near end-of-file is returned as-is; the caller
	// resubmits if it needs more data.
	Read(ctx context.Context, path string, h Handle, offset int64, length int) ([]byte, error)

	// Write repositions h to the absolute offset and writes data, returning
	// the number of bytes actually written.
	Write(ctx context.Context, path string, h Handle, offset int64, data []byte) (int, error)

	// Truncate resizes the file at path to size bytes using a transient
	// handle, independent of any handle the caller may hold open.
	Truncate(ctx context.Context, path string, size int64) error

	// Flush forces pending writes on h to stable storage.
	Flush(ctx context.Context, path string, h Handle) error

	// Release closes h. The handle is invalid for any further use.
	Release(ctx context.Context, path string, h Handle) error

	// Fsync synchronizes h to stable storage. The data-sync hint is accepted
	// for protocol completeness and ignored; Fsync behaves exactly like
	// Flush.
	Fsync(ctx context.Context, path string, h Handle, dataSync bool) error
}
