// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"fmt"
	"strings"
)

// Layout selects how extracted text is presented to callers
type Layout string

const (
	// LayoutPages keeps one record per page
	LayoutPages Layout = "pages"
	// LayoutText joins all pages into a single string
	LayoutText Layout = "text"
)

// ParseLayout accepts "pages" or "text" in any case; "" means LayoutPages
func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(s))) {
	case "", LayoutPages:
		return LayoutPages, nil
	case LayoutText:
		return LayoutText, nil
	default:
		return "", fmt.Errorf("unknown layout %q (expected %q or %q)", s, LayoutPages, LayoutText)
	}
}
