package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type lnCmd struct {
	symbolic bool
}

func (*lnCmd) Name() string     { return "ln" }
func (*lnCmd) Synopsis() string { return "create a hard or symbolic link" }
func (*lnCmd) Usage() string    { return "ln [-s] <target> <link>\n" }

func (c *lnCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.symbolic, "s", false, "create a symbolic link instead of a hard link")
}

func (c *lnCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Println("usage:", c.Usage())
		return subcommands.ExitUsageError
	}
	var errno error
	if c.symbolic {
		if e := theVFS.Symlink(cwdStart(), f.Arg(1), f.Arg(0)); e != 0 {
			errno = e
		}
	} else {
		if e := theVFS.Link(cwdStart(), f.Arg(0), f.Arg(1)); e != 0 {
			errno = e
		}
	}
	if errno != nil {
		fmt.Println("ln:", errno)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
