package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

// statCmd reports cache occupancy, or a single path's canonical form when
// given an argument, exercising RealpathAt and vfs.VFS.Stats.
type statCmd struct{}

func (*statCmd) Name() string             { return "stat" }
func (*statCmd) Synopsis() string         { return "show cache stats, or a path's canonical form" }
func (*statCmd) Usage() string            { return "stat [path]\n" }
func (*statCmd) SetFlags(f *flag.FlagSet) {}

func (*statCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() == 0 {
		s := theVFS.Stats()
		fmt.Printf("dnodes=%d inodes=%d dnode_slab=%d inode_slab=%d\n",
			s.Dnodes, s.Inodes, s.DnodeSlabInUse, s.InodeSlabInUse)
		return subcommands.ExitSuccess
	}
	path, errno := theVFS.RealpathAt(cwdStart(), f.Arg(0))
	if errno != 0 {
		fmt.Println("stat:", errno)
		return subcommands.ExitFailure
	}
	fmt.Println(path)
	return subcommands.ExitSuccess
}
