package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/passfs/internal/logger"
	"github.com/example/passfs/pkg/config"
	"github.com/example/passfs/pkg/fs/passthrough"
	passfuse "github.com/example/passfs/pkg/fuse"
)

// Build-time variable injected via ldflags
var version = "dev"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passfs <backing-root> <mountpoint>",
		Short: "Mount a directory tree as a passthrough filesystem",
		Long: `passfs exposes an existing directory tree as a second, independently
mounted view of the same files. Every operation on the mount point is
forwarded to the equivalent operation on the backing directory.

The mount stays active until the process is interrupted or the mount
point is unmounted externally.`,
		Args:          cobra.ExactArgs(2),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}

			zl, err := logger.New(logger.Config{
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
			})
			if err != nil {
				return err
			}
			defer func() { _ = zl.Sync() }()
			log := zl.Sugar()

			backend, err := passthrough.New(args[0], log.Named("passthrough"))
			if err != nil {
				return err
			}

			return passfuse.Mount(backend, passfuse.MountOptions{
				MountPoint: args[1],
				ReadOnly:   cfg.Mount.ReadOnly,
				AllowOther: cfg.Mount.AllowOther,
				Debug:      cfg.Mount.Debug,
			}, log.Named("fuse"))
		},
	}

	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().String("log-format", "console", "log output format (console, json)")
	cmd.Flags().Bool("read-only", false, "mount the filesystem read-only")
	cmd.Flags().Bool("allow-other", false, "allow other users to access the mount")
	cmd.Flags().Bool("debug", false, "log FUSE wire traffic")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
