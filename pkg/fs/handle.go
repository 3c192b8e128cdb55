package fs

// Handle is an opaque reference to an open file. It wraps the raw descriptor
// returned by the host OS open call; the descriptor is owned by the host and
// merely threaded through subsequent Read/Write/Flush/Fsync calls. A Handle
// becomes invalid after Release and must not be reused.
type Handle uint64

// InvalidHandle is returned by Open and Create on failure.
const InvalidHandle Handle = ^Handle(0)

// Fd returns the handle as a host file descriptor.
func (h Handle) Fd() int {
	return int(h)
}
