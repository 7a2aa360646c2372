package vfs

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// capabilityManifestSchema constrains the JSON manifest a driver supplies at
// RegisterFilesystemType: which name it registers under and which InodeOps
// methods it actually implements. Validating this up front turns a typo'd
// operation name (spec.md §6, "missing operations map to ENOTSUP") into a
// registration-time error instead of a silent ENOTSUP surprise the first
// time a caller exercises that path.
const capabilityManifestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "ops"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "ops": {
      "type": "array",
      "items": {
        "type": "string",
        "enum": [
          "dir_lookup", "open", "mkdir", "rmdir", "create", "symlink",
          "unlink", "link", "rename", "read", "write", "sync", "seek",
          "read_symlink", "set_symlink"
        ]
      }
    }
  }
}`

var manifestSchema = gojsonschema.NewStringLoader(capabilityManifestSchema)

// CapabilityManifest describes which driver operations a FilesystemType
// implements, for introspection (VFS.Manifest) and for
// the validation RegisterFilesystemType performs.
type CapabilityManifest struct {
	Name string   `json:"name"`
	Ops  []string `json:"ops"`
}

// validateManifest parses and schema-checks a JSON capability manifest.
func validateManifest(manifestJSON string) (CapabilityManifest, error) {
	doc := gojsonschema.NewStringLoader(manifestJSON)
	result, err := gojsonschema.Validate(manifestSchema, doc)
	if err != nil {
		return CapabilityManifest{}, fmt.Errorf("vfs: manifest is not valid JSON: %w", err)
	}
	if !result.Valid() {
		return CapabilityManifest{}, fmt.Errorf("vfs: manifest failed schema validation: %v", result.Errors())
	}
	var m CapabilityManifest
	if err := json.Unmarshal([]byte(manifestJSON), &m); err != nil {
		return CapabilityManifest{}, err
	}
	return m, nil
}

// Supports reports whether op was declared in the manifest.
func (m CapabilityManifest) Supports(op string) bool {
	for _, o := range m.Ops {
		if o == op {
			return true
		}
	}
	return false
}
