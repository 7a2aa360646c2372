package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type catCmd struct{}

func (*catCmd) Name() string             { return "cat" }
func (*catCmd) Synopsis() string         { return "print a file's contents" }
func (*catCmd) Usage() string            { return "cat <path>\n" }
func (*catCmd) SetFlags(f *flag.FlagSet) {}

func (*catCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Println("usage: cat <path>")
		return subcommands.ExitUsageError
	}
	file, errno := theVFS.Open(cwdStart(), f.Arg(0), 0, 0)
	if errno != 0 {
		fmt.Println("cat:", errno)
		return subcommands.ExitFailure
	}
	fd := mustFD(file)
	defer theVFS.Close(theTask, fd)

	buf := make([]byte, 4096)
	for {
		n, errno := theVFS.Read(file, buf)
		if errno != 0 {
			fmt.Println("cat:", errno)
			return subcommands.ExitFailure
		}
		if n == 0 {
			break
		}
		os.Stdout.Write(buf[:n])
	}
	return subcommands.ExitSuccess
}
