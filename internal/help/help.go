// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// Topic is a named help page shown with --help <topic>
type Topic struct {
	Name             string
	ShortDescription string
	Render           func(h *System, w io.Writer)
}

// System manages help content for the application
type System struct {
	topics  map[string]Topic
	noColor bool
	colors  map[string]*color.Color
}

// NewSystem creates a new help system with the built-in topics registered
func NewSystem(noColor bool) *System {
	if noColor {
		color.NoColor = true
	}

	h := &System{
		topics:  make(map[string]Topic),
		noColor: noColor,
		colors: map[string]*color.Color{
			"title":   color.New(color.FgWhite, color.Bold),
			"header":  color.New(color.FgBlue, color.Bold),
			"item":    color.New(color.FgCyan),
			"warning": color.New(color.FgYellow),
			"example": color.New(color.FgMagenta),
		},
	}
	h.RegisterTopic(Topic{Name: "config", ShortDescription: "Header config file format", Render: (*System).showConfigHelp})
	h.RegisterTopic(Topic{Name: "layouts", ShortDescription: "Output layouts for batch and web mode", Render: (*System).showLayoutHelp})
	return h
}

// RegisterTopic adds a help topic to the system
func (h *System) RegisterTopic(topic Topic) {
	h.topics[strings.ToLower(topic.Name)] = topic
}

// TopicNames returns the registered topic names in sorted order
func (h *System) TopicNames() []string {
	names := make([]string, 0, len(h.topics))
	for name := range h.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ShowTopic renders the named topic. It returns false for unknown topics.
func (h *System) ShowTopic(w io.Writer, name string) bool {
	topic, ok := h.topics[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return false
	}
	topic.Render(h, w)
	return true
}

// ShowGeneralHelp displays general help information
func (h *System) ShowGeneralHelp(w io.Writer) {
	h.colors["title"].Fprintln(w, "pdfnorm - PDF Text Extraction and Header Normalization")
	fmt.Fprintln(w, "======================================================")
	fmt.Fprintln(w)
	h.colors["header"].Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  pdfnorm [--dir <path>] [--output-dir <path>] [options]  # Batch mode")
	fmt.Fprintln(w, "  pdfnorm --web [--port <port>]                           # Web server mode")
	fmt.Fprintln(w)

	h.colors["header"].Fprintln(w, "OPTIONS:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  --dir\t<path>\tDirectory searched recursively for PDFs (default: .)")
	fmt.Fprintln(tw, "  --output-dir\t<path>\tDirectory for extracted text files (default: extracted_texts)")
	fmt.Fprintln(tw, "  --config\t<path>\tHeader config file (default: header_config.yaml)")
	fmt.Fprintln(tw, "  --layout\t<layout>\tOutput layout: pages or text (default: pages)")
	fmt.Fprintln(tw, "  --validate\t\tValidate PDF structure before extraction")
	fmt.Fprintln(tw, "  --max-pages\t<n>\tOnly extract the first n pages (default: 0, no limit)")
	fmt.Fprintln(tw, "  --web\t\tStart web server mode instead of batch extraction")
	fmt.Fprintln(tw, "  --port\t<port>\tPort for web server (default: 8080, only used with --web)")
	fmt.Fprintln(tw, "  --debug\t\tShow extraction steps and timings")
	fmt.Fprintln(tw, "  --quiet\t\tSuppress progress output")
	fmt.Fprintln(tw, "  --no-color\t\tDisable colored output")
	fmt.Fprintln(tw, "  --version\t\tShow version information")
	fmt.Fprintln(tw, "  --help\t\tShow this help message")
	fmt.Fprintln(tw, "  --help <topic>\t\tShow help for a topic: "+strings.Join(h.TopicNames(), ", "))
	tw.Flush()

	fmt.Fprintln(w)
	h.colors["header"].Fprintln(w, "EXAMPLES:")
	h.colors["example"].Fprintln(w, "  pdfnorm --dir ./scans --output-dir ./out")
	h.colors["example"].Fprintln(w, "  pdfnorm --dir ./scans --config fields.yaml --layout text")
	h.colors["example"].Fprintln(w, "  pdfnorm --web --port 9000")
	h.colors["example"].Fprintln(w, "  curl -F file=@intake.pdf http://localhost:8080/extract")
}

func (h *System) showConfigHelp(w io.Writer) {
	h.colors["title"].Fprintln(w, "Header Config")
	fmt.Fprintln(w, "=============")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Each alias found in the extracted text is rewritten to its canonical name.")
	fmt.Fprintln(w, "Fields are applied in file order and aliases in list order, so a later rule")
	fmt.Fprintln(w, "sees the output of an earlier one. Aliases and names are taken literally.")
	fmt.Fprintln(w)
	h.colors["header"].Fprintln(w, "FORMAT:")
	h.colors["item"].Fprintln(w, "  canonical_fields:")
	h.colors["item"].Fprintln(w, "    DateOfBirth:")
	h.colors["item"].Fprintln(w, "      aliases: [\"DOB\", \"D.O.B\", \"Birth Date\"]")
	h.colors["item"].Fprintln(w, "  options:")
	h.colors["item"].Fprintln(w, "    case_insensitive: true   # default true")
	h.colors["item"].Fprintln(w, "    whole_word_match: true   # default true")
	fmt.Fprintln(w)
	h.colors["header"].Fprintln(w, "LOOKUP:")
	fmt.Fprintln(w, "  --config <path>, then ./header_config.yaml or ./header_config.yml,")
	fmt.Fprintln(w, "  then the per-user config directory ($PDFNORM_CONFIG_DIR overrides it).")
	h.colors["warning"].Fprintln(w, "  Batch mode stops when no config is found; web mode passes text through unchanged.")
}

func (h *System) showLayoutHelp(w io.Writer) {
	h.colors["title"].Fprintln(w, "Output Layouts")
	fmt.Fprintln(w, "==============")
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  pages\tOne block per page with its page number (default)")
	fmt.Fprintln(tw, "  text\tAll pages joined into a single text")
	tw.Flush()
	fmt.Fprintln(w)
	h.colors["header"].Fprintln(w, "WEB RESPONSES:")
	h.colors["item"].Fprintln(w, `  pages: {"filename": "...", "pages": [{"pagenumber": 1, "raw_text": "..."}]}`)
	h.colors["item"].Fprintln(w, `  text:  {"filename": "...", "extracted_text": "..."}`)
}
