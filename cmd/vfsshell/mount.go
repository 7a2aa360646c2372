package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

// mountCmd mounts a fresh instance of an already-registered driver
// ("ramfs" or "devfs") at an existing directory, exercising
// vfs.VFS.NewMount beyond the two mounts main() sets up at boot.
type mountCmd struct {
	ro bool
}

func (*mountCmd) Name() string     { return "mount" }
func (*mountCmd) Synopsis() string { return "mount a driver at a path" }
func (*mountCmd) Usage() string    { return "mount [-ro] <driver> <path>\n" }
func (c *mountCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.ro, "ro", false, "mount read-only")
}

func (c *mountCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Println("usage: mount [-ro] <driver> <path>")
		return subcommands.ExitUsageError
	}
	var opts map[string]string
	if c.ro {
		opts = map[string]string{"ro": "true"}
	}
	if _, errno := theVFS.NewMount(f.Arg(0), f.Arg(1), "", opts); errno != 0 {
		fmt.Println("mount:", errno)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
