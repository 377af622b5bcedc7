// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"pdfnorm/internal/paths"

	"gopkg.in/yaml.v3"
)

// DefaultHeaderConfigFile is the file looked up in the working directory when
// no --config flag is given.
const DefaultHeaderConfigFile = "header_config.yaml"

// ErrConfigNotFound is returned when the header config file does not exist.
var ErrConfigNotFound = errors.New("header config file not found")

// HeaderConfig maps canonical field names to the aliases that should be
// rewritten to them.
type HeaderConfig struct {
	// Fields keeps the order in which canonical fields appear in the file.
	// Normalization walks them in this order.
	Fields  CanonicalFields
	Options Options
}

// CanonicalField is one canonical name and its known variants.
type CanonicalField struct {
	Name    string
	Aliases []string
}

// CanonicalFields is an ordered list of canonical fields. It decodes from a
// YAML mapping without losing the mapping order.
type CanonicalFields []CanonicalField

// Options controls how aliases are matched.
type Options struct {
	CaseInsensitive bool `yaml:"case_insensitive"`
	WholeWordMatch  bool `yaml:"whole_word_match"`
}

// headerConfigFile mirrors the on-disk schema. Pointers let absent option
// keys fall back to their defaults.
type headerConfigFile struct {
	CanonicalFields CanonicalFields `yaml:"canonical_fields"`
	Options         struct {
		CaseInsensitive *bool `yaml:"case_insensitive"`
		WholeWordMatch  *bool `yaml:"whole_word_match"`
	} `yaml:"options"`
}

// DefaultOptions returns case-insensitive, whole-word matching.
func DefaultOptions() Options {
	return Options{
		CaseInsensitive: true,
		WholeWordMatch:  true,
	}
}

// EmptyHeaderConfig returns a config with no fields and default options.
// Normalizing with it leaves text untouched.
func EmptyHeaderConfig() *HeaderConfig {
	return &HeaderConfig{
		Fields:  CanonicalFields{},
		Options: DefaultOptions(),
	}
}

// UnmarshalYAML decodes the canonical_fields mapping in document order.
func (f *CanonicalFields) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*f = CanonicalFields{}
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: canonical_fields must be a mapping", node.Line)
	}

	fields := make(CanonicalFields, 0, len(node.Content)/2)
	seen := make(map[string]bool, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]

		var name string
		if err := keyNode.Decode(&name); err != nil {
			return fmt.Errorf("line %d: invalid canonical field name: %w", keyNode.Line, err)
		}
		if seen[name] {
			return fmt.Errorf("line %d: duplicate canonical field %q", keyNode.Line, name)
		}
		seen[name] = true

		var body struct {
			Aliases []string `yaml:"aliases"`
		}
		if err := valueNode.Decode(&body); err != nil {
			return fmt.Errorf("line %d: invalid definition for %q: %w", valueNode.Line, name, err)
		}

		fields = append(fields, CanonicalField{Name: name, Aliases: body.Aliases})
	}

	*f = fields
	return nil
}

// ParseHeaderConfig parses YAML header configuration data.
func ParseHeaderConfig(data []byte) (*HeaderConfig, error) {
	if err := ValidateHeaderConfigSchema(data); err != nil {
		return nil, err
	}

	var raw headerConfigFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error parsing header config: %w", err)
	}

	cfg := EmptyHeaderConfig()
	if raw.CanonicalFields != nil {
		cfg.Fields = raw.CanonicalFields
	}
	if raw.Options.CaseInsensitive != nil {
		cfg.Options.CaseInsensitive = *raw.Options.CaseInsensitive
	}
	if raw.Options.WholeWordMatch != nil {
		cfg.Options.WholeWordMatch = *raw.Options.WholeWordMatch
	}

	if err := ValidateHeaderConfig(cfg); err != nil {
		return nil, fmt.Errorf("header config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadHeaderConfig reads and parses the header config at configPath.
// A missing file yields an error wrapping ErrConfigNotFound.
func LoadHeaderConfig(configPath string) (*HeaderConfig, error) {
	if configPath == "" {
		return nil, fmt.Errorf("%w: no path given", ErrConfigNotFound)
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, cleanPath)
		}
		return nil, fmt.Errorf("error reading header config: %w", err)
	}

	return ParseHeaderConfig(data)
}

// LoadHeaderConfigOrEmpty behaves like LoadHeaderConfig but substitutes an
// empty config when the file does not exist. Parse errors are still returned.
func LoadHeaderConfigOrEmpty(configPath string) (*HeaderConfig, error) {
	cfg, err := LoadHeaderConfig(configPath)
	if errors.Is(err, ErrConfigNotFound) {
		return EmptyHeaderConfig(), nil
	}
	return cfg, err
}

// ValidateHeaderConfig checks that every canonical field has a usable name.
func ValidateHeaderConfig(cfg *HeaderConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	for i, field := range cfg.Fields {
		if strings.TrimSpace(field.Name) == "" {
			return fmt.Errorf("canonical field %d has an empty name", i+1)
		}
	}
	return nil
}

// FindHeaderConfigFile looks for a header config in the working directory and
// then in the per-user config directory. It returns "" when none exists.
func FindHeaderConfigFile() string {
	for _, name := range []string{DefaultHeaderConfigFile, "header_config.yml"} {
		if fileExists(name) {
			return name
		}
	}

	if standard := paths.GetConfigFile(); fileExists(standard) {
		return standard
	}
	return ""
}

// ResolveHeaderConfigPath returns the explicit path if given, otherwise the
// first config found on disk, otherwise DefaultHeaderConfigFile.
func ResolveHeaderConfigPath(explicit string) string {
	if explicit != "" {
		return paths.NormalizePath(explicit)
	}
	if found := FindHeaderConfigFile(); found != "" {
		return found
	}
	return DefaultHeaderConfigFile
}

// AliasCount returns the total number of aliases across all fields.
func (c *HeaderConfig) AliasCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, field := range c.Fields {
		n += len(field.Aliases)
	}
	return n
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
