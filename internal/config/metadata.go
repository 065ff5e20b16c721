package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Metadata is the caller-supplied thesis information used by the cover
// and commitment pages.
type Metadata struct {
	Title       string `json:"title" yaml:"title"`
	Major       string `json:"major" yaml:"major"`
	ClassName   string `json:"class_name" yaml:"class_name"`
	StudentID   string `json:"student_id" yaml:"student_id"`
	StudentName string `json:"student_name" yaml:"student_name"`
	Instructor  string `json:"instructor" yaml:"instructor"`
	Date        string `json:"date" yaml:"date"`
}

const metadataSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "title":        {"type": "string", "minLength": 1},
    "major":        {"type": "string"},
    "class_name":   {"type": "string"},
    "student_id":   {"type": "string"},
    "student_name": {"type": "string"},
    "instructor":   {"type": "string"},
    "date":         {"type": "string"}
  },
  "required": ["title"],
  "additionalProperties": false
}`

var compiledMetadataSchema = jsonschema.MustCompileString("metadata.json", metadataSchema)

// ParseMetadata validates raw JSON against the metadata schema and
// decodes it.
func ParseMetadata(raw []byte) (Metadata, error) {
	var meta Metadata

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return meta, fmt.Errorf("invalid metadata JSON: %w", err)
	}
	if err := compiledMetadataSchema.Validate(v); err != nil {
		return meta, fmt.Errorf("metadata validation failed: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&meta); err != nil {
		return meta, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return meta, nil
}
