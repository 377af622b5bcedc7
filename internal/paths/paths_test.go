// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"path/filepath"
	"testing"
)

func TestGetConfigDir_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PDFNORM_CONFIG_DIR", dir)

	if got := GetConfigDir(); got != filepath.Clean(dir) {
		t.Errorf("expected %q, got %q", dir, got)
	}
	if got := GetConfigFile(); got != filepath.Join(dir, "header_config.yaml") {
		t.Errorf("unexpected config file path %q", got)
	}
}

func TestGetTempDir_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PDFNORM_TEMP_DIR", dir)

	if got := GetTempDir(); got != filepath.Clean(dir) {
		t.Errorf("expected %q, got %q", dir, got)
	}
}

func TestValidatePath(t *testing.T) {
	if err := ValidatePath(""); err != nil {
		t.Errorf("empty path should be valid, got %v", err)
	}
	if err := ValidatePath("out/dir"); err != nil {
		t.Errorf("plain path should be valid, got %v", err)
	}
	if err := ValidatePath("bad\x00path"); err == nil {
		t.Error("expected error for null byte")
	}
}
