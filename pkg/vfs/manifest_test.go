package vfs

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidateManifestParsesKnownOps(t *testing.T) {
	m, err := validateManifest(`{"name":"ramfs","ops":["dir_lookup","mkdir","symlink","read","write"]}`)
	if err != nil {
		t.Fatalf("validateManifest: %v", err)
	}
	want := CapabilityManifest{
		Name: "ramfs",
		Ops:  []string{"dir_lookup", "mkdir", "symlink", "read", "write"},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Fatalf("manifest mismatch (-want +got):\n%s", diff)
	}
	if !m.Supports("mkdir") || m.Supports("rename") {
		t.Fatalf("Supports disagrees with declared ops: %+v", m)
	}
}

func TestValidateManifestRejectsUnknownOp(t *testing.T) {
	if _, err := validateManifest(`{"name":"bogus","ops":["frobnicate"]}`); err == nil {
		t.Fatalf("expected schema validation to reject an unknown op name")
	}
}

func TestValidateManifestRejectsMissingName(t *testing.T) {
	if _, err := validateManifest(`{"ops":["read"]}`); err == nil {
		t.Fatalf("expected schema validation to reject a manifest with no name")
	}
}

func TestValidateManifestRejectsMalformedJSON(t *testing.T) {
	if _, err := validateManifest(`not json`); err == nil {
		t.Fatalf("expected an error for malformed JSON")
	}
}
