// Command vfsshell drives the vfs package's syscall surface end to end
// from the command line: mount an in-memory filesystem, then ls/cat/write/
// mkdir/ln/stat against it. It exists to exercise the pkg/vfs/ops.go
// operations those subcommands use the way a real caller would, not as a
// production tool.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/Catrol-s-Forks/lunaix-os/pkg/vfs"
	"github.com/Catrol-s-Forks/lunaix-os/pkg/vfs/devfs"
	"github.com/Catrol-s-Forks/lunaix-os/pkg/vfs/ramfs"
)

var (
	theVFS  *vfs.VFS
	theTask *vfs.Task
)

func mustBoot() {
	theVFS = vfs.NewVFS(vfs.Config{})
	if err := theVFS.RegisterFilesystemType("ramfs", ramfs.ManifestJSON, ramfs.FSType{}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := theVFS.RegisterFilesystemType("devfs", devfs.ManifestJSON, devfs.FSType{}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if _, errno := theVFS.NewMount("ramfs", "/", "", nil); errno != 0 {
		fmt.Fprintln(os.Stderr, "mount /:", errno)
		os.Exit(1)
	}
	if errno := theVFS.Mkdir(theVFS.Root(), "/dev", 0755); errno != 0 {
		fmt.Fprintln(os.Stderr, "mkdir /dev:", errno)
		os.Exit(1)
	}
	if _, errno := theVFS.NewMount("devfs", "/dev", "", nil); errno != 0 {
		fmt.Fprintln(os.Stderr, "mount /dev:", errno)
		os.Exit(1)
	}
	theTask = vfs.NewTask(theVFS.Root(), theVFS.RootMount())
}

func cwdStart() *vfs.Dnode { return theTask.Cwd() }

func main() {
	mustBoot()

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&lsCmd{}, "")
	subcommands.Register(&catCmd{}, "")
	subcommands.Register(&writeCmd{}, "")
	subcommands.Register(&mkdirCmd{}, "")
	subcommands.Register(&lnCmd{}, "")
	subcommands.Register(&mountCmd{}, "")
	subcommands.Register(&statCmd{}, "")

	os.Exit(int(subcommands.Execute(context.Background())))
}
