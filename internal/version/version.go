// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package version reports how the running pdfnorm binary was built.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X pdfnorm/internal/version.release=v1.2.3" and friends.
// Empty values fall back to the VCS stamp Go embeds in the binary.
var (
	release   = ""
	commit    = ""
	buildTime = ""
)

const unset = "unknown"

// Build describes the running binary
type Build struct {
	Release   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Modified  bool   `json:"modified,omitempty"`
}

// Current returns the build description, preferring linker-set values
func Current() Build {
	b := Build{
		Release:   release,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		fillFromBuildInfo(&b, info)
	}

	if b.Release == "" {
		b.Release = "devel"
	}
	if b.Commit == "" {
		b.Commit = unset
	}
	if b.BuildTime == "" {
		b.BuildTime = unset
	}
	return b
}

func fillFromBuildInfo(b *Build, info *debug.BuildInfo) {
	if b.Release == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.Release = info.Main.Version
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if b.Commit == "" {
				b.Commit = setting.Value
			}
		case "vcs.time":
			if b.BuildTime == "" {
				b.BuildTime = setting.Value
			}
		case "vcs.modified":
			b.Modified = setting.Value == "true"
		}
	}
}

// String renders the one-line form printed by --version
func (b Build) String() string {
	rev := b.Commit
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if b.Modified {
		rev += "+dirty"
	}
	return fmt.Sprintf("pdfnorm %s (%s, %s) %s %s", b.Release, rev, b.BuildTime, b.GoVersion, b.Platform)
}
