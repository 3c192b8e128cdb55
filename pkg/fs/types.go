package fs

import (
	"time"
)

// FileType represents the type of a file.
type FileType uint32

const (
	// FileTypeRegular is a regular file
	FileTypeRegular FileType = iota
	// FileTypeDirectory is a directory
	FileTypeDirectory
	// FileTypeSymlink is a symbolic link
	FileTypeSymlink
	// FileTypeBlock is a block special device
	FileTypeBlock
	// FileTypeChar is a character special device
	FileTypeChar
	// FileTypeFIFO is a named pipe
	FileTypeFIFO
	// FileTypeSocket is a socket
	FileTypeSocket
)

// String returns a string representation of the file type
func (ft FileType) String() string {
	switch ft {
	case FileTypeRegular:
		return "regular"
	case FileTypeDirectory:
		return "directory"
	case FileTypeSymlink:
		return "symlink"
	case FileTypeBlock:
		return "block"
	case FileTypeChar:
		return "char"
	case FileTypeFIFO:
		return "fifo"
	case FileTypeSocket:
		return "socket"
	default:
		return "unknown"
	}
}

// FileMode represents the permission bits of a file.
type FileMode uint32

const (
	// ModeMask is the mask for the file permission bits
	ModeMask FileMode = 0777
	// ModeSetUID is the set-user-ID bit
	ModeSetUID FileMode = 04000
	// ModeSetGID is the set-group-ID bit
	ModeSetGID FileMode = 02000
	// ModeSticky is the sticky bit
	ModeSticky FileMode = 01000
)

// FileInfo is the attribute snapshot returned by GetAttr. It is recomputed
// fresh on every query and never cached.
type FileInfo struct {
	// Type is the file type
	Type FileType

	// Mode contains the permission bits
	Mode FileMode

	// Size is the file size in bytes
	Size int64

	// Uid is the user ID of the file's owner
	Uid uint32

	// Gid is the group ID of the file's group
	Gid uint32

	// Nlink is the number of hard links to the file
	Nlink uint32

	// Rdev is the device ID (if special file)
	Rdev uint64

	// BlockSize is the filesystem block size
	BlockSize uint32

	// Blocks is the number of 512-byte blocks allocated
	Blocks uint64

	// AccessTime is the time of last access
	AccessTime time.Time

	// ModifyTime is the time of last modification
	ModifyTime time.Time

	// ChangeTime is the time of last status change
	ChangeTime time.Time
}

// DirEntry represents a single entry in a directory listing.
type DirEntry struct {
	// Name is the name of the entry
	Name string

	// Type is the entry's file type
	Type FileType
}

// FSStat contains statistics about a filesystem.
type FSStat struct {
	// BlockSize is the preferred I/O block size
	BlockSize uint32

	// FragmentSize is the fundamental block size
	FragmentSize uint32

	// Blocks is the total number of fragment-sized blocks
	Blocks uint64

	// BlocksFree is the number of free blocks
	BlocksFree uint64

	// BlocksAvail is the number of blocks available to unprivileged users
	BlocksAvail uint64

	// Files is the total number of inodes
	Files uint64

	// FilesFree is the number of free inodes
	FilesFree uint64

	// NameMaxLength is the maximum length of a file name
	NameMaxLength uint32

	// Flags holds the mount flags of the filesystem
	Flags uint64
}

// Credentials identifies the caller that issued a filesystem request,
// as reported by the kernel dispatcher.
type Credentials struct {
	// UID is the user ID
	UID uint32

	// GID is the primary group ID
	GID uint32
}
