// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package normalizer

import (
	"fmt"
	"time"

	"pdfnorm/internal/config"
	"pdfnorm/internal/extractor"

	"github.com/dlclark/regexp2"
)

// DefaultMatchTimeout bounds a single substitution pass over one text.
const DefaultMatchTimeout = 5 * time.Second

// rule is one compiled alias substitution
type rule struct {
	alias     string
	canonical string
	pattern   *regexp2.Regexp
}

// Normalizer rewrites header aliases to their canonical names.
// Rules run in config order; each one sees the output of the previous one.
type Normalizer struct {
	rules   []rule
	options config.Options
}

// New compiles every alias in cfg into a substitution rule.
// A nil config produces a Normalizer that returns text unchanged.
func New(cfg *config.HeaderConfig) (*Normalizer, error) {
	if cfg == nil {
		cfg = config.EmptyHeaderConfig()
	}

	n := &Normalizer{
		rules:   make([]rule, 0, cfg.AliasCount()),
		options: cfg.Options,
	}

	opts := regexp2.None
	if cfg.Options.CaseInsensitive {
		opts |= regexp2.IgnoreCase
	}

	for _, field := range cfg.Fields {
		for _, alias := range field.Aliases {
			if alias == "" {
				continue
			}

			expr := regexp2.Escape(alias)
			if cfg.Options.WholeWordMatch {
				expr = `\b` + expr + `\b`
			}

			re, err := regexp2.Compile(expr, opts)
			if err != nil {
				return nil, fmt.Errorf("failed to compile alias %q for %s: %w", alias, field.Name, err)
			}
			re.MatchTimeout = DefaultMatchTimeout

			n.rules = append(n.rules, rule{
				alias:     alias,
				canonical: field.Name,
				pattern:   re,
			})
		}
	}

	return n, nil
}

// GetComponentName implements observability.Observable
func (n *Normalizer) GetComponentName() string {
	return "normalizer"
}

// RuleCount returns the number of compiled alias rules
func (n *Normalizer) RuleCount() int {
	return len(n.rules)
}

// Options returns the matching options the rules were compiled with
func (n *Normalizer) Options() config.Options {
	return n.options
}

// Normalize applies every rule to text in order.
// The canonical name is inserted literally; "$" has no special meaning.
func (n *Normalizer) Normalize(text string) (string, error) {
	for _, r := range n.rules {
		canonical := r.canonical
		out, err := r.pattern.ReplaceFunc(text, func(regexp2.Match) string {
			return canonical
		}, -1, -1)
		if err != nil {
			return "", fmt.Errorf("substituting alias %q: %w", r.alias, err)
		}
		text = out
	}
	return text, nil
}

// NormalizePages returns a copy of pages with every RawText normalized
func (n *Normalizer) NormalizePages(pages []extractor.Page) ([]extractor.Page, error) {
	out := make([]extractor.Page, len(pages))
	for i, page := range pages {
		text, err := n.Normalize(page.RawText)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page.PageNumber, err)
		}
		out[i] = extractor.Page{PageNumber: page.PageNumber, RawText: text}
	}
	return out, nil
}

// NormalizeDocument normalizes every page of doc in place
func (n *Normalizer) NormalizeDocument(doc *extractor.Document) error {
	if doc == nil {
		return nil
	}
	pages, err := n.NormalizePages(doc.Pages)
	if err != nil {
		return err
	}
	doc.Pages = pages
	return nil
}

// NormalizeText compiles cfg and normalizes a single text
func NormalizeText(text string, cfg *config.HeaderConfig) (string, error) {
	n, err := New(cfg)
	if err != nil {
		return "", err
	}
	return n.Normalize(text)
}
