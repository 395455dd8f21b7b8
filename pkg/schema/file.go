package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the on-disk schema document. A bare column list is accepted too.
type File struct {
	Columns Schema `yaml:"columns" json:"columns"`
}

// LoadFile reads a schema from a YAML or JSON file, choosing the decoder by extension.
func LoadFile(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	s, err := Parse(data, strings.ToLower(filepath.Ext(path)) == ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return s, nil
}

// Parse decodes a schema document. When asJSON is false the data is read as YAML.
func Parse(data []byte, asJSON bool) (Schema, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Schema{}, nil
	}

	if asJSON {
		if trimmed[0] == '[' {
			var s Schema
			if err := json.Unmarshal(trimmed, &s); err != nil {
				return nil, err
			}
			return s, nil
		}
		var f File
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return nil, err
		}
		return f.Columns, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) > 0 && doc.Content[0].Kind == yaml.SequenceNode {
		var s Schema
		if err := doc.Content[0].Decode(&s); err != nil {
			return nil, err
		}
		return s, nil
	}
	var f File
	if err := doc.Decode(&f); err != nil {
		return nil, err
	}
	return f.Columns, nil
}
