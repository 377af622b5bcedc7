// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"blank lines dropped", "\n\n  \nDOB: 1990\n\n", "DOB: 1990"},
		{"spaces collapsed", "Name:    Jane\t\tDoe", "Name: Jane Doe"},
		{"line breaks kept", "a\nb\r\nc\rd", "a\nb\nc\nd"},
		{"decomposed accents composed", "Jose\u0301", "Jos\u00e9"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, cleanText(tc.input))
		})
	}
}

func TestJoinRow_InsertsSpacesOnGaps(t *testing.T) {
	row := []pdf.Text{
		{S: "1990", X: 120, W: 20, FontSize: 10},
		{S: "DOB:", X: 72, W: 24, FontSize: 10},
	}
	assert.Equal(t, "DOB: 1990", joinRow(row))
}

func TestJoinRow_AdjacentRunsNotSeparated(t *testing.T) {
	row := []pdf.Text{
		{S: "Addr", X: 72, W: 20, FontSize: 10},
		{S: "ess", X: 92, W: 15, FontSize: 10},
	}
	assert.Equal(t, "Address", joinRow(row))
}

func TestAverageY(t *testing.T) {
	assert.Equal(t, 0.0, averageY(nil))
	assert.Equal(t, 15.0, averageY([]pdf.Text{{Y: 10}, {Y: 20}}))
}
