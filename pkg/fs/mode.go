package fs

import (
	"os"
)

// TypeOf derives the FileType from an os.FileMode.
func TypeOf(mode os.FileMode) FileType {
	switch {
	case mode.IsDir():
		return FileTypeDirectory
	case mode&os.ModeSymlink != 0:
		return FileTypeSymlink
	case mode&os.ModeCharDevice != 0:
		return FileTypeChar
	case mode&os.ModeDevice != 0:
		return FileTypeBlock
	case mode&os.ModeNamedPipe != 0:
		return FileTypeFIFO
	case mode&os.ModeSocket != 0:
		return FileTypeSocket
	default:
		return FileTypeRegular
	}
}

// ModeOf extracts the permission and special bits from an os.FileMode.
func ModeOf(mode os.FileMode) FileMode {
	m := FileMode(mode.Perm())
	if mode&os.ModeSetuid != 0 {
		m |= ModeSetUID
	}
	if mode&os.ModeSetgid != 0 {
		m |= ModeSetGID
	}
	if mode&os.ModeSticky != 0 {
		m |= ModeSticky
	}
	return m
}

// OSMode converts the permission and special bits back into an os.FileMode.
func (m FileMode) OSMode() os.FileMode {
	mode := os.FileMode(m & ModeMask)
	if m&ModeSetUID != 0 {
		mode |= os.ModeSetuid
	}
	if m&ModeSetGID != 0 {
		mode |= os.ModeSetgid
	}
	if m&ModeSticky != 0 {
		mode |= os.ModeSticky
	}
	return mode
}

// OSMode returns the full os.FileMode for the snapshot, type bits included.
func (fi FileInfo) OSMode() os.FileMode {
	mode := fi.Mode.OSMode()
	switch fi.Type {
	case FileTypeDirectory:
		mode |= os.ModeDir
	case FileTypeSymlink:
		mode |= os.ModeSymlink
	case FileTypeBlock:
		mode |= os.ModeDevice
	case FileTypeChar:
		mode |= os.ModeDevice | os.ModeCharDevice
	case FileTypeFIFO:
		mode |= os.ModeNamedPipe
	case FileTypeSocket:
		mode |= os.ModeSocket
	}
	return mode
}
