package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/Catrol-s-Forks/lunaix-os/pkg/vfs"
)

type writeCmd struct {
	append bool
}

func (*writeCmd) Name() string     { return "write" }
func (*writeCmd) Synopsis() string { return "create/overwrite a file with the given text" }
func (*writeCmd) Usage() string    { return "write [-append] <path> <text>\n" }

func (c *writeCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.append, "append", false, "append instead of truncating")
}

func (c *writeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Println("usage:", c.Usage())
		return subcommands.ExitUsageError
	}
	flags := vfs.FOCreate
	if c.append {
		flags |= vfs.FOAppend
	} else {
		flags |= vfs.FOTruncate
	}
	file, errno := theVFS.Open(cwdStart(), f.Arg(0), flags, 0644)
	if errno != 0 {
		fmt.Println("write:", errno)
		return subcommands.ExitFailure
	}
	fd := mustFD(file)
	defer theVFS.Close(theTask, fd)

	if _, errno := theVFS.Write(file, []byte(f.Arg(1))); errno != 0 {
		fmt.Println("write:", errno)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
