package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/Catrol-s-Forks/lunaix-os/pkg/vfs"
)

type lsCmd struct{}

func (*lsCmd) Name() string             { return "ls" }
func (*lsCmd) Synopsis() string         { return "list a directory's entries" }
func (*lsCmd) Usage() string            { return "ls <path>\n" }
func (*lsCmd) SetFlags(f *flag.FlagSet) {}

type nameSink struct{ names []string }

func (s *nameSink) Handle(d vfs.Dirent) bool {
	s.names = append(s.names, d.Name)
	return true
}

func (*lsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Println("usage: ls <path>")
		return subcommands.ExitUsageError
	}
	file, errno := theVFS.Open(cwdStart(), f.Arg(0), 0, 0)
	if errno != 0 {
		fmt.Println("ls:", errno)
		return subcommands.ExitFailure
	}
	defer theVFS.Close(theTask, mustFD(file))

	sink := &nameSink{}
	if errno := theVFS.Readdir(file, sink, 0); errno != 0 {
		fmt.Println("ls:", errno)
		return subcommands.ExitFailure
	}
	for _, name := range sink.names {
		fmt.Println(name)
	}
	return subcommands.ExitSuccess
}

// mustFD installs f into theTask's descriptor table and returns the slot,
// for the shell's one-shot commands that open, use, then immediately close.
func mustFD(f *vfs.File) int {
	fd, errno := theTask.AllocFD(f)
	if errno != 0 {
		return -1
	}
	return fd
}
