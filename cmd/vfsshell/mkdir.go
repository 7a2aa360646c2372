package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type mkdirCmd struct{}

func (*mkdirCmd) Name() string             { return "mkdir" }
func (*mkdirCmd) Synopsis() string         { return "create a directory" }
func (*mkdirCmd) Usage() string            { return "mkdir <path>\n" }
func (*mkdirCmd) SetFlags(f *flag.FlagSet) {}

func (*mkdirCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Println("usage: mkdir <path>")
		return subcommands.ExitUsageError
	}
	if errno := theVFS.Mkdir(cwdStart(), f.Arg(0), 0755); errno != 0 {
		fmt.Println("mkdir:", errno)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
