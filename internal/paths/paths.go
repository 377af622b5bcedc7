// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// GetConfigDir returns the pdfnorm configuration directory.
// PDFNORM_CONFIG_DIR overrides the platform default.
func GetConfigDir() string {
	if dir := os.Getenv("PDFNORM_CONFIG_DIR"); dir != "" {
		return NormalizePath(dir)
	}

	// os.UserConfigDir covers APPDATA on Windows and XDG_CONFIG_HOME elsewhere
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "pdfnorm")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".pdfnorm")
	}
	return ".pdfnorm"
}

// GetConfigFile returns the path to the per-user header config file
func GetConfigFile() string {
	return filepath.Join(GetConfigDir(), "header_config.yaml")
}

// GetTempDir returns the directory used for upload temp files.
// PDFNORM_TEMP_DIR overrides the system default.
func GetTempDir() string {
	if dir := os.Getenv("PDFNORM_TEMP_DIR"); dir != "" {
		return NormalizePath(dir)
	}
	return os.TempDir()
}

// NormalizePath cleans a path; on Windows this also converts slashes to backslashes
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Clean(path)
}

// ValidatePath rejects paths the filesystem cannot represent
func ValidatePath(path string) error {
	if path == "" {
		return nil
	}
	if strings.ContainsRune(path, 0) {
		return &PathValidationError{Path: path, Reason: "contains null byte"}
	}
	return nil
}

// PathValidationError represents a path validation error
type PathValidationError struct {
	Path   string
	Reason string
}

func (e *PathValidationError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Reason
}
