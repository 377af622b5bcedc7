// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `
canonical_fields:
  PatientName:
    aliases: ["Name", "Patient"]
  DateOfBirth:
    aliases:
      - DOB
      - D.O.B.
  Address:
    aliases: ["Addr"]
options:
  case_insensitive: false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "header_config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoadHeaderConfig_PreservesFieldOrder(t *testing.T) {
	cfg, err := LoadHeaderConfig(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"PatientName", "DateOfBirth", "Address"}
	if len(cfg.Fields) != len(want) {
		t.Fatalf("expected %d fields, got %d", len(want), len(cfg.Fields))
	}
	for i, name := range want {
		if cfg.Fields[i].Name != name {
			t.Errorf("field %d: expected %q, got %q", i, name, cfg.Fields[i].Name)
		}
	}
	if got := cfg.Fields[1].Aliases; len(got) != 2 || got[0] != "DOB" || got[1] != "D.O.B." {
		t.Errorf("unexpected DateOfBirth aliases: %v", got)
	}
	if cfg.AliasCount() != 5 {
		t.Errorf("expected 5 aliases, got %d", cfg.AliasCount())
	}
}

func TestLoadHeaderConfig_OptionDefaults(t *testing.T) {
	cfg, err := LoadHeaderConfig(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Options.CaseInsensitive {
		t.Error("expected case_insensitive=false from file")
	}
	if !cfg.Options.WholeWordMatch {
		t.Error("expected whole_word_match to default to true when absent")
	}
}

func TestLoadHeaderConfig_MissingFile(t *testing.T) {
	_, err := LoadHeaderConfig("/nonexistent/path/header_config.yaml")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestLoadHeaderConfigOrEmpty_MissingFile(t *testing.T) {
	cfg, err := LoadHeaderConfigOrEmpty("/nonexistent/path/header_config.yaml")
	if err != nil {
		t.Fatalf("expected fallback without error, got %v", err)
	}
	if len(cfg.Fields) != 0 {
		t.Errorf("expected no fields, got %d", len(cfg.Fields))
	}
	if !cfg.Options.CaseInsensitive || !cfg.Options.WholeWordMatch {
		t.Error("expected default options on the empty config")
	}
}

func TestLoadHeaderConfigOrEmpty_InvalidYAML(t *testing.T) {
	_, err := LoadHeaderConfigOrEmpty(writeConfig(t, "canonical_fields: [\n"))
	if err == nil {
		t.Fatal("expected parse error to be returned, not swallowed")
	}
}

func TestParseHeaderConfig_Cases(t *testing.T) {
	cases := []struct {
		name       string
		content    string
		wantErr    bool
		wantFields int
	}{
		{"empty document", "", false, 0},
		{"null fields", "canonical_fields:\n", false, 0},
		{"field without aliases", "canonical_fields:\n  Phone:\n", false, 1},
		{"duplicate field", "canonical_fields:\n  A:\n    aliases: [x]\n  A:\n    aliases: [y]\n", true, 0},
		{"fields as list", "canonical_fields:\n  - A\n", true, 0},
		{"aliases not a list", "canonical_fields:\n  A:\n    aliases: 5\n", true, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := ParseHeaderConfig([]byte(tc.content))
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(cfg.Fields) != tc.wantFields {
				t.Errorf("expected %d fields, got %d", tc.wantFields, len(cfg.Fields))
			}
		})
	}
}

func TestValidateHeaderConfig_EmptyName(t *testing.T) {
	cfg := EmptyHeaderConfig()
	cfg.Fields = append(cfg.Fields, CanonicalField{Name: "  ", Aliases: []string{"x"}})
	if err := ValidateHeaderConfig(cfg); err == nil {
		t.Error("expected error for blank canonical name")
	}
	if err := ValidateHeaderConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestResolveHeaderConfigPath_Explicit(t *testing.T) {
	if got := ResolveHeaderConfigPath("conf/./headers.yaml"); got != filepath.Clean("conf/headers.yaml") {
		t.Errorf("expected cleaned explicit path, got %q", got)
	}
}
