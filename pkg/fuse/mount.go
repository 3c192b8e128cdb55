package fuse

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/example/passfs/pkg/fs"
)

// MountOptions controls how the filesystem is exposed at the mount point.
type MountOptions struct {
	MountPoint string
	ReadOnly   bool
	AllowOther bool
	Debug      bool
}

// Mount registers the backend at the mount point and serves kernel requests
// until the process receives SIGINT/SIGTERM or the mount is torn down
// externally.
func Mount(backend fs.FileSystem, options MountOptions, log *zap.SugaredLogger) error {
	mountOpts := []fuse.MountOption{
		fuse.FSName("passfs"),
		fuse.Subtype("passfs"),
	}
	if options.ReadOnly {
		mountOpts = append(mountOpts, fuse.ReadOnly())
	}
	if options.AllowOther {
		mountOpts = append(mountOpts, fuse.AllowOther())
	}
	if options.Debug {
		fuse.Debug = func(msg interface{}) {
			log.Debugf("fuse: %v", msg)
		}
	}

	log.Infow("mounting filesystem", "mountpoint", options.MountPoint,
		"readonly", options.ReadOnly, "allowother", options.AllowOther)

	c, err := fuse.Mount(options.MountPoint, mountOpts...)
	if err != nil {
		return fmt.Errorf("mount %s: %w", options.MountPoint, err)
	}
	defer c.Close()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- fusefs.Serve(c, NewFS(backend, log))
	}()

	if err := waitForMount(options.MountPoint); err != nil {
		return fmt.Errorf("mount %s: %w", options.MountPoint, err)
	}
	log.Infow("filesystem mounted", "mountpoint", options.MountPoint)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Infow("signal received, unmounting", "signal", s.String())
		if err := Unmount(options.MountPoint); err != nil {
			log.Warnw("unmount failed", "error", err)
		}
		return <-serveErr
	case err := <-serveErr:
		// Serve returned on its own, e.g. an external unmount.
		return err
	}
}

// Unmount detaches the filesystem from the mount point.
func Unmount(mountPoint string) error {
	return fuse.Unmount(mountPoint)
}

// waitForMount polls until the kernel has the mount wired up. The directory
// itself exists before the mount completes, so a bare stat succeeding proves
// nothing; readiness is the mount point moving onto its own device.
func waitForMount(mountPoint string) error {
	for i := 0; i < 30; i++ {
		mounted, err := isMountPoint(mountPoint)
		if err == nil && mounted {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("mount not visible after 3 seconds")
}

// isMountPoint reports whether path sits on a different device than its
// parent directory, which is how a completed mount shows up in stat.
func isMountPoint(path string) (bool, error) {
	var st, parentSt unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return false, err
	}
	if err := unix.Stat(filepath.Dir(path), &parentSt); err != nil {
		return false, err
	}
	return st.Dev != parentSt.Dev, nil
}
