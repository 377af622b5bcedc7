// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"pdfnorm/internal/observability"
	"pdfnorm/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_PagesInOrder(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WritePDF(t, dir, "form.pdf", "DOB: 1990\nName: Jane", "Page two")

	doc, err := New(Options{}, nil).Extract(path)
	require.NoError(t, err)
	require.Len(t, doc.Pages, 2)

	assert.Equal(t, "form.pdf", doc.Filename)
	assert.Equal(t, 2, doc.TotalPages)
	assert.Equal(t, 1, doc.Pages[0].PageNumber)
	assert.Equal(t, 2, doc.Pages[1].PageNumber)
	assert.Contains(t, doc.Pages[0].RawText, "DOB: 1990")
	assert.Contains(t, doc.Pages[0].RawText, "Name: Jane")
	assert.Contains(t, doc.Pages[1].RawText, "Page two")
}

func TestExtract_EmptyPageGetsPlaceholder(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WritePDF(t, dir, "blank.pdf", "", "text", "")

	doc, err := New(Options{}, nil).Extract(path)
	require.NoError(t, err)
	require.Len(t, doc.Pages, 3)

	assert.Equal(t, NoTextPlaceholder, doc.Pages[0].RawText)
	assert.NotEqual(t, NoTextPlaceholder, doc.Pages[1].RawText)
	assert.Equal(t, NoTextPlaceholder, doc.Pages[2].RawText)
}

func TestExtract_MaxPages(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WritePDF(t, dir, "long.pdf", "one", "two", "three")

	var logs bytes.Buffer
	obs := observability.NewStandardObserver(observability.ObservabilityMetrics, &logs)

	doc, err := New(Options{MaxPages: 2}, obs).Extract(path)
	require.NoError(t, err)
	assert.Len(t, doc.Pages, 2)
	assert.Equal(t, 3, doc.TotalPages)
	assert.True(t, doc.Truncated())
	assert.Contains(t, logs.String(), "extracting the first 2")

	full, err := New(Options{}, nil).Extract(path)
	require.NoError(t, err)
	assert.False(t, full.Truncated())

	var nilDoc *Document
	assert.False(t, nilDoc.Truncated())
}

func TestExtract_CorruptFileReturnsError(t *testing.T) {
	cases := map[string][]byte{
		"not a pdf":    []byte("this is plain text, not a PDF"),
		"empty file":   {},
		"truncated":    testutil.BuildPDF("hello")[:40],
		"garbage tail": append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{0xff, 0x00}, 64)...),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.pdf")
			require.NoError(t, os.WriteFile(path, data, 0o600))

			var doc *Document
			var err error
			assert.NotPanics(t, func() {
				doc, err = New(Options{}, nil).Extract(path)
			})
			assert.ErrorIs(t, err, ErrExtraction)
			assert.Nil(t, doc)
		})
	}
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New(Options{}, nil).Extract(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtract_DebugTrace(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WritePDF(t, dir, "a.pdf", "hello")

	var logs bytes.Buffer
	_, err := New(Options{}, observability.NewObserver(true, &logs)).Extract(path)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "> extractor: extract")
	assert.Contains(t, logs.String(), "1 pages")
}

func TestInspect_PageCount(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WritePDF(t, dir, "a.pdf", "one", "two")

	info, err := New(Options{}, nil).Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, 2, info.PageCount)
	assert.Equal(t, "a.pdf", info.Filename)
}

func TestInspect_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.pdf")
	require.NoError(t, os.WriteFile(path, []byte("nope"), 0o600))

	_, err := New(Options{}, nil).Inspect(path)
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestDocumentText(t *testing.T) {
	doc := &Document{Pages: []Page{
		{PageNumber: 1, RawText: "a"},
		{PageNumber: 2, RawText: NoTextPlaceholder},
		{PageNumber: 3, RawText: "c"},
	}}
	assert.Equal(t, "a\n"+NoTextPlaceholder+"\nc", doc.Text())

	var nilDoc *Document
	assert.Equal(t, "", nilDoc.Text())
}
