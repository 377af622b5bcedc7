// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"pdfnorm/internal/extractor"
	"pdfnorm/internal/normalizer"
	"pdfnorm/internal/observability"
)

// Defaults used by the CLI
const (
	DefaultInputDir  = "."
	DefaultOutputDir = "extracted_texts"
)

// separatorLine follows the Source header in every output file
var separatorLine = strings.Repeat("=", 40)

// Options controls a batch run
type Options struct {
	InputDir  string
	OutputDir string
	Layout    extractor.Layout
	// OnFound is called once with the number of PDFs discovered
	OnFound func(count int)
	// OnFile is called before each PDF is processed
	OnFile func(src, dst string)
}

// FileError records a PDF whose text could not be extracted or written
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

// Report summarizes a batch run
type Report struct {
	Found   int
	Written []string
	Failed  []FileError
	// Skipped lists paths under the input directory that could not be read
	Skipped []FileError
}

// Succeeded returns the number of files written without an extraction error
func (r *Report) Succeeded() int {
	return r.Found - len(r.Failed)
}

// Runner extracts and normalizes every PDF under a directory tree
type Runner struct {
	opts       Options
	extractor  *extractor.Extractor
	normalizer *normalizer.Normalizer
	observer   *observability.StandardObserver
}

var _ observability.Observable = (*Runner)(nil)

// NewRunner creates a batch runner. A nil normalizer leaves text unchanged.
func NewRunner(opts Options, ext *extractor.Extractor, norm *normalizer.Normalizer, observer *observability.StandardObserver) *Runner {
	if opts.InputDir == "" {
		opts.InputDir = DefaultInputDir
	}
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultOutputDir
	}
	if opts.Layout == "" {
		opts.Layout = extractor.LayoutPages
	}
	if observer == nil {
		observer = observability.Discard()
	}
	if norm == nil {
		// an empty config never fails to compile
		norm, _ = normalizer.New(nil)
	}
	return &Runner{
		opts:       opts,
		extractor:  ext,
		normalizer: norm,
		observer:   observer,
	}
}

// GetComponentName implements observability.Observable
func (r *Runner) GetComponentName() string {
	return "batch"
}

// FindPDFs walks root and returns every file with a .pdf extension in any
// case, including symlinks that resolve to regular files. Entries below root
// that cannot be read are returned in skipped and the walk carries on; only
// an unreadable root is an error.
func FindPDFs(root string) (pdfs []string, skipped []FileError, err error) {
	w := &pdfWalker{root: filepath.Clean(root)}
	if err := filepath.WalkDir(root, w.visit); err != nil {
		return nil, nil, fmt.Errorf("error scanning %s: %w", root, err)
	}
	return w.pdfs, w.skipped, nil
}

// pdfWalker collects PDFs during a directory walk
type pdfWalker struct {
	root    string
	pdfs    []string
	skipped []FileError
}

func (w *pdfWalker) visit(path string, d fs.DirEntry, err error) error {
	if err != nil {
		if filepath.Clean(path) == w.root {
			return err
		}
		w.skipped = append(w.skipped, FileError{Path: path, Err: err})
		return nil
	}
	if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".pdf") {
		return nil
	}

	if d.Type()&fs.ModeSymlink != 0 {
		info, statErr := os.Stat(path)
		if statErr != nil {
			w.skipped = append(w.skipped, FileError{Path: path, Err: statErr})
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
	} else if !d.Type().IsRegular() {
		return nil
	}

	w.pdfs = append(w.pdfs, path)
	return nil
}

// OutputName derives {parent_folder}_{basename}.txt inside outputDir.
// The parent folder comes from the absolute path so "./a.pdf" still gets one.
func OutputName(pdfPath, outputDir string) string {
	base := filepath.Base(pdfPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	parent := filepath.Base(filepath.Dir(pdfPath))
	if abs, err := filepath.Abs(pdfPath); err == nil {
		parent = filepath.Base(filepath.Dir(abs))
	}

	return filepath.Join(outputDir, fmt.Sprintf("%s_%s.txt", parent, stem))
}

// Run processes every PDF found under the input directory.
// A failure on one file is recorded in the report and the run continues;
// only problems with the directories themselves are returned as errors.
func (r *Runner) Run() (*Report, error) {
	if err := os.MkdirAll(r.opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", r.opts.OutputDir, err)
	}

	pdfs, skipped, err := FindPDFs(r.opts.InputDir)
	if err != nil {
		return nil, err
	}
	for _, skip := range skipped {
		r.observer.Warn(r.GetComponentName(), "skipping %v", skip)
	}

	if r.opts.OnFound != nil {
		r.opts.OnFound(len(pdfs))
	}
	if r.observer.DebugObserver != nil {
		r.observer.DebugObserver.LogMetric(r.GetComponentName(), "pdfs_found", len(pdfs))
	}

	report := &Report{Found: len(pdfs), Skipped: skipped}
	for _, src := range pdfs {
		dst := OutputName(src, r.opts.OutputDir)
		if r.opts.OnFile != nil {
			r.opts.OnFile(src, dst)
		}

		if err := r.processFile(src, dst); err != nil {
			r.observer.Warn(r.GetComponentName(), "%v", err)
			report.Failed = append(report.Failed, FileError{Path: src, Err: err})
		}
		if fileExists(dst) {
			report.Written = append(report.Written, dst)
		}
	}

	if r.observer.DebugObserver != nil {
		r.observer.DebugObserver.LogMetric(r.GetComponentName(), "pdfs_failed", len(report.Failed))
	}
	return report, nil
}

// processFile writes the normalized text of src to dst. The output file is
// written even when extraction fails, carrying only the Source header.
func (r *Runner) processFile(src, dst string) error {
	doc, extractErr := r.extractor.Extract(src)

	var normErr error
	if doc != nil {
		normErr = r.normalizer.NormalizeDocument(doc)
		if normErr != nil {
			doc = nil
		}
	}

	if err := writeOutput(dst, src, doc, r.opts.Layout); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}

	if extractErr != nil {
		return extractErr
	}
	if normErr != nil {
		return fmt.Errorf("normalizing %s: %w", src, normErr)
	}
	return nil
}

func writeOutput(dst, src string, doc *extractor.Document, layout extractor.Layout) (err error) {
	f, err := os.Create(filepath.Clean(dst))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "Source: %s\n", src)
	fmt.Fprintf(w, "%s\n\n", separatorLine)

	if doc != nil {
		switch layout {
		case extractor.LayoutText:
			fmt.Fprintf(w, "%s\n", doc.Text())
		default:
			for _, page := range doc.Pages {
				fmt.Fprintf(w, "--- Page %d ---\n", page.PageNumber)
				fmt.Fprintf(w, "%s\n", page.RawText)
			}
		}
		if doc.Truncated() {
			fmt.Fprintf(w, "\n[Extracted %d of %d pages]\n", len(doc.Pages), doc.TotalPages)
		}
	}

	return w.Flush()
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
