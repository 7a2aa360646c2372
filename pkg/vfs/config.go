package vfs

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/mohae/deepcopy"
)

// MountEntry is one row of the static mount table (SPEC_FULL.md §1, §3),
// the Go analogue of lunaix-os's fs_setup.c registration list and of
// runsc's TOML configuration file.
type MountEntry struct {
	Driver string            `toml:"driver"`
	Target string            `toml:"target"`
	Source string            `toml:"source"`
	Opts   map[string]string `toml:"opts"`
}

// MountTable is the top-level shape of the TOML mount table file.
type MountTable struct {
	Mount []MountEntry `toml:"mount"`
}

// LoadMountTable parses a TOML mount table from path.
func LoadMountTable(path string) (MountTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MountTable{}, err
	}
	return DecodeMountTable(string(data))
}

// DecodeMountTable parses a TOML mount table from an in-memory string,
// primarily for tests.
func DecodeMountTable(data string) (MountTable, error) {
	var table MountTable
	if _, err := toml.Decode(data, &table); err != nil {
		return MountTable{}, err
	}
	return table, nil
}

// cloneOpts deep-copies a driver options map so that NewMount never lets a
// caller's later mutation of the map it passed in alias live mount state.
func cloneOpts(opts map[string]string) map[string]string {
	if opts == nil {
		return nil
	}
	cloned := deepcopy.Copy(opts)
	return cloned.(map[string]string)
}
