// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"pdfnorm/internal/observability"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// NoTextPlaceholder stands in for a page that yields no extractable text.
const NoTextPlaceholder = "[No text found on this page]"

// ErrExtraction wraps every failure to read text out of a PDF.
var ErrExtraction = errors.New("pdf extraction failed")

func init() {
	// keep pdfcpu from creating a config directory in the user's home
	api.DisableConfigDir()
}

// Page is the raw text of a single PDF page
type Page struct {
	PageNumber int    `json:"pagenumber"`
	RawText    string `json:"raw_text"`
}

// Document is the ordered page text of one PDF
type Document struct {
	Filename string
	Pages    []Page
	// TotalPages is the page count reported by the file, which can exceed
	// len(Pages) when MaxPages truncates extraction.
	TotalPages int
}

// Text joins all pages into one blob, separated by newlines
func (d *Document) Text() string {
	if d == nil {
		return ""
	}
	texts := make([]string, len(d.Pages))
	for i, page := range d.Pages {
		texts[i] = page.RawText
	}
	return strings.Join(texts, "\n")
}

// Truncated reports whether MaxPages cut pages off the end of the file
func (d *Document) Truncated() bool {
	return d != nil && d.TotalPages > len(d.Pages)
}

// Options configures an Extractor
type Options struct {
	// Validate runs pdfcpu structural validation before extracting text.
	Validate bool
	// MaxPages limits how many pages are read; 0 means all pages.
	MaxPages int
}

// Extractor pulls per-page text out of PDF files
type Extractor struct {
	opts     Options
	observer *observability.StandardObserver
}

var _ observability.Observable = (*Extractor)(nil)

// New creates an Extractor. A nil observer discards all logging.
func New(opts Options, observer *observability.StandardObserver) *Extractor {
	if observer == nil {
		observer = observability.Discard()
	}
	return &Extractor{opts: opts, observer: observer}
}

// GetComponentName implements observability.Observable
func (e *Extractor) GetComponentName() string {
	return "extractor"
}

// Extract reads every page of the PDF at filePath in document order.
// Pages without text carry NoTextPlaceholder. Any failure, including a panic
// inside the PDF library, is returned as an error wrapping ErrExtraction.
func (e *Extractor) Extract(filePath string) (doc *Document, err error) {
	finishTiming := e.observer.StartTiming(e.GetComponentName(), "extract", filePath)
	var finishStep func(bool, string)
	if e.observer.DebugObserver != nil {
		finishStep = e.observer.DebugObserver.StartStep(e.GetComponentName(), "extract", filePath)
	}

	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: %s: %v", ErrExtraction, filepath.Base(filePath), r)
		}
		pages := 0
		if doc != nil {
			pages = len(doc.Pages)
		}
		finishTiming(err == nil, map[string]interface{}{"pages": pages})
		if finishStep != nil {
			details := fmt.Sprintf("%d pages", pages)
			if err != nil {
				details = err.Error()
			}
			finishStep(err == nil, details)
		}
	}()

	if e.opts.Validate {
		if verr := validate(filePath); verr != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrExtraction, filepath.Base(filePath), verr)
		}
	}

	f, r, oerr := pdf.Open(filePath)
	if oerr != nil {
		if f != nil {
			f.Close()
		}
		return nil, fmt.Errorf("%w: error opening %s: %v", ErrExtraction, filepath.Base(filePath), oerr)
	}
	defer f.Close()

	total := r.NumPage()
	limit := total
	if e.opts.MaxPages > 0 && limit > e.opts.MaxPages {
		limit = e.opts.MaxPages
		e.observer.Warn(e.GetComponentName(), "%s has %d pages, extracting the first %d", filepath.Base(filePath), total, limit)
	}

	doc = &Document{
		Filename:   filepath.Base(filePath),
		Pages:      make([]Page, 0, limit),
		TotalPages: total,
	}

	for i := 1; i <= limit; i++ {
		text := e.pageText(r, i)
		if strings.TrimSpace(text) == "" {
			text = NoTextPlaceholder
		}
		doc.Pages = append(doc.Pages, Page{PageNumber: i, RawText: text})
	}

	return doc, nil
}

// pageText extracts and cleans one page. A page the library cannot decode
// counts as a page without text.
func (e *Extractor) pageText(r *pdf.Reader, pageNum int) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			e.observer.Debugf(e.GetComponentName(), "page %d: recovered from %v", pageNum, rec)
			text = ""
		}
	}()

	p := r.Page(pageNum)
	if p.V.IsNull() {
		e.observer.Debugf(e.GetComponentName(), "page %d: null page object", pageNum)
		return ""
	}

	raw, err := extractTextWithProperSpacing(p)
	if err != nil {
		e.observer.Debugf(e.GetComponentName(), "page %d: %v", pageNum, err)
		return ""
	}
	return cleanText(raw)
}

// Info describes a PDF without extracting its text
type Info struct {
	Filename  string
	PageCount int
}

// Inspect reports the page count as seen by pdfcpu
func (e *Extractor) Inspect(filePath string) (*Info, error) {
	count, err := api.PageCountFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: inspecting %s: %v", ErrExtraction, filepath.Base(filePath), err)
	}
	return &Info{Filename: filepath.Base(filePath), PageCount: count}, nil
}

// validate checks the PDF structure with pdfcpu in relaxed mode
func validate(filePath string) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(filePath, conf); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
