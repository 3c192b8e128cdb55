package fuse

import (
	"context"
	"time"

	"bazil.org/fuse"

	"github.com/example/passfs/pkg/fs"
)

// node carries the state shared by directory and file nodes: the owning
// filesystem and the slash-rooted virtual path the kernel addressed.
type node struct {
	fs   *FS
	path string
}

// Attr fills in the attribute snapshot for the node. Validity is zero so the
// kernel re-queries on every access; the driver never caches attributes.
func (n *node) Attr(ctx context.Context, a *fuse.Attr) error {
	info, err := n.fs.backend.GetAttr(ctx, n.path)
	if err != nil {
		return ToErrno(err)
	}

	a.Valid = 0
	a.Size = uint64(info.Size)
	a.Blocks = info.Blocks
	a.Atime = info.AccessTime
	a.Mtime = info.ModifyTime
	a.Ctime = info.ChangeTime
	a.Mode = info.OSMode()
	a.Nlink = info.Nlink
	a.Uid = info.Uid
	a.Gid = info.Gid
	a.Rdev = uint32(info.Rdev)
	a.BlockSize = info.BlockSize
	return nil
}

// Access checks host-level permission for the requested mask.
func (n *node) Access(ctx context.Context, req *fuse.AccessRequest) error {
	if err := n.fs.backend.Access(ctx, n.path, req.Mask); err != nil {
		return ToErrno(err)
	}
	return nil
}

// Setattr dispatches the kernel's attribute changes to the matching
// operations: chmod, chown, truncate and utimens.
func (n *node) Setattr(ctx context.Context, req *fuse.SetattrRequest, resp *fuse.SetattrResponse) error {
	if req.Valid.Mode() {
		if err := n.fs.backend.Chmod(ctx, n.path, fs.ModeOf(req.Mode)); err != nil {
			return ToErrno(err)
		}
	}

	if req.Valid.Uid() || req.Valid.Gid() {
		uid, gid, err := n.fillOwner(ctx, req)
		if err != nil {
			return ToErrno(err)
		}
		if err := n.fs.backend.Chown(ctx, n.path, uid, gid); err != nil {
			return ToErrno(err)
		}
	}

	if req.Valid.Size() {
		if err := n.fs.backend.Truncate(ctx, n.path, int64(req.Size)); err != nil {
			return ToErrno(err)
		}
	}

	if req.Valid.Atime() || req.Valid.Mtime() || req.Valid.AtimeNow() || req.Valid.MtimeNow() {
		atime, mtime, err := n.fillTimes(ctx, req)
		if err != nil {
			return ToErrno(err)
		}
		if err := n.fs.backend.Utimens(ctx, n.path, atime, mtime); err != nil {
			return ToErrno(err)
		}
	}

	return n.Attr(ctx, &resp.Attr)
}

// fillOwner resolves a partial ownership change against the current
// snapshot, so chown(uid only) keeps the existing group and vice versa.
func (n *node) fillOwner(ctx context.Context, req *fuse.SetattrRequest) (uint32, uint32, error) {
	info, err := n.fs.backend.GetAttr(ctx, n.path)
	if err != nil {
		return 0, 0, err
	}

	uid, gid := info.Uid, info.Gid
	if req.Valid.Uid() {
		uid = req.Uid
	}
	if req.Valid.Gid() {
		gid = req.Gid
	}
	return uid, gid, nil
}

// fillTimes resolves the requested time change. A nil result means "now";
// the side the kernel did not touch keeps its current value.
func (n *node) fillTimes(ctx context.Context, req *fuse.SetattrRequest) (*time.Time, *time.Time, error) {
	var atime, mtime *time.Time

	if req.Valid.Atime() {
		t := req.Atime
		atime = &t
	}
	if req.Valid.Mtime() {
		t := req.Mtime
		mtime = &t
	}

	// One side untouched and not forced to "now": carry its current value
	// forward instead of clobbering it.
	atimeNow := req.Valid.AtimeNow()
	mtimeNow := req.Valid.MtimeNow()
	if (atime == nil && !atimeNow && (mtime != nil || mtimeNow)) ||
		(mtime == nil && !mtimeNow && (atime != nil || atimeNow)) {
		info, err := n.fs.backend.GetAttr(ctx, n.path)
		if err != nil {
			return nil, nil, err
		}
		if atime == nil && !atimeNow {
			t := info.AccessTime
			atime = &t
		}
		if mtime == nil && !mtimeNow {
			t := info.ModifyTime
			mtime = &t
		}
	}

	return atime, mtime, nil
}
