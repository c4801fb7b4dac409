package config

import (
	"bytes"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// ToTOML serializes the configuration to TOML, the on-disk format this
// linter's own config files use (rumdl.toml, pyproject.toml's [tool.rumdl]
// table). Config files with a .yaml, .yml or .json extension are read
// through FromYAML (yaml.go) instead.
func (c *Config) ToTOML() ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// FromTOML parses a configuration from TOML bytes (the body of a rumdl.toml
// file, or the decoded [tool.rumdl] subtable of a pyproject.toml).
func FromTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse toml config: %w", err)
	}
	return cfg, nil
}

// pyprojectDocument mirrors just enough of pyproject.toml's shape to reach
// the [tool.rumdl] subtable without depending on the rest of its schema.
type pyprojectDocument struct {
	Tool struct {
		Rumdl Config `toml:"rumdl"`
	} `toml:"tool"`
}

// FromPyprojectTOML extracts the [tool.rumdl] table from a pyproject.toml
// document.
func FromPyprojectTOML(data []byte) (*Config, bool, error) {
	var doc pyprojectDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("parse pyproject.toml: %w", err)
	}
	// go-toml leaves the substruct zero-valued (Flavor == "") when the
	// table is absent; distinguish "absent" from "present but empty" by
	// checking for the table key directly.
	var probe map[string]any
	if err := toml.Unmarshal(data, &probe); err != nil {
		return nil, false, fmt.Errorf("parse pyproject.toml: %w", err)
	}
	tool, _ := probe["tool"].(map[string]any)
	if tool == nil {
		return nil, false, nil
	}
	if _, ok := tool["rumdl"]; !ok {
		return nil, false, nil
	}
	cfg := doc.Tool.Rumdl
	return &cfg, true, nil
}
