// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

// defaultFontSize is used for gap detection when a glyph reports no size
const defaultFontSize = 12.0

// extractTextWithProperSpacing rebuilds a page row by row, falling back to
// the library's plain text when row grouping fails.
func extractTextWithProperSpacing(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return p.GetPlainText(nil)
	}

	nonEmpty := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			nonEmpty = append(nonEmpty, row)
		}
	}
	if len(nonEmpty) == 0 {
		return p.GetPlainText(nil)
	}

	// PDF y grows upwards: larger y is closer to the top of the page
	sort.SliceStable(nonEmpty, func(i, j int) bool {
		return averageY(nonEmpty[i].Content) > averageY(nonEmpty[j].Content)
	})

	var sb strings.Builder
	for _, row := range nonEmpty {
		line := joinRow(row.Content)
		if strings.TrimSpace(line) == "" {
			continue
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

func averageY(texts []pdf.Text) float64 {
	if len(texts) == 0 {
		return 0
	}
	var total float64
	for _, t := range texts {
		total += t.Y
	}
	return total / float64(len(texts))
}

// joinRow orders glyph runs left to right and inserts a space wherever the
// horizontal gap exceeds a fifth of the font size.
func joinRow(texts []pdf.Text) string {
	if len(texts) == 0 {
		return ""
	}

	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].X < sorted[j].X
	})

	var sb strings.Builder
	for i, t := range sorted {
		sb.WriteString(t.S)
		if i == len(sorted)-1 {
			break
		}

		fontSize := t.FontSize
		if fontSize <= 0 {
			fontSize = defaultFontSize
		}
		gap := sorted[i+1].X - (t.X + t.W)
		if gap > fontSize*0.2 && !strings.HasSuffix(t.S, " ") && !strings.HasPrefix(sorted[i+1].S, " ") {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// cleanText composes Unicode, trims every line, collapses runs of spaces and
// tabs, and drops blank lines. Line breaks are kept so "Label: value" pairs
// stay on their own line.
func cleanText(text string) string {
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
