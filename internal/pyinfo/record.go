package pyinfo

import (
	"encoding/json"
	"fmt"
)

// record is the on-disk shape of a cached InterpreterInfo: the payload
// plus the schema version it was written under. A cache store never
// unmarshals a record without checking SchemaVersion first.
type record struct {
	SchemaVersion int `json:"schema_version"`
	InterpreterInfo
}

// Encode serializes i as a schema-stamped JSON document, the format
// written under <root>/py_info/<schema>/<digest>.json.
func Encode(i InterpreterInfo) ([]byte, error) {
	r := record{SchemaVersion: SchemaVersion, InterpreterInfo: i}
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode interpreter info: %w", err)
	}
	return b, nil
}

// Decode parses a previously-encoded document, rejecting anything
// whose schema version does not match the one this build understands.
func Decode(data []byte) (InterpreterInfo, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return InterpreterInfo{}, fmt.Errorf("decode interpreter info: %w", err)
	}
	if r.SchemaVersion != SchemaVersion {
		return InterpreterInfo{}, fmt.Errorf("interpreter info schema mismatch: record is v%d, this build understands v%d", r.SchemaVersion, SchemaVersion)
	}
	return r.InterpreterInfo, nil
}
