// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"pdfnorm/internal/batch"
	"pdfnorm/internal/config"
	"pdfnorm/internal/extractor"
	"pdfnorm/internal/help"
	"pdfnorm/internal/normalizer"
	"pdfnorm/internal/observability"
	"pdfnorm/internal/paths"
	"pdfnorm/internal/version"
	"pdfnorm/internal/web"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// cliFlags holds the parsed command line
type cliFlags struct {
	inputDir  string
	outputDir string
	config    string
	layout    string
	validate  bool
	maxPages  int
	webMode   bool
	port      string
	debug     bool
	quiet     bool
	noColor   bool
	version   bool
	help      bool
	args      []string
}

// cliEnv carries the process surroundings so run can be exercised in tests
type cliEnv struct {
	stdout      io.Writer
	stderr      io.Writer
	interactive bool
	ctx         context.Context
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, error) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("pdfnorm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {}

	fs.StringVar(&f.inputDir, "dir", batch.DefaultInputDir, "Directory searched recursively for PDFs")
	fs.StringVar(&f.outputDir, "output-dir", batch.DefaultOutputDir, "Directory for extracted text files")
	fs.StringVar(&f.config, "config", "", "Header config file (YAML)")
	fs.StringVar(&f.layout, "layout", string(extractor.LayoutPages), "Output layout: pages or text")
	fs.BoolVar(&f.validate, "validate", false, "Validate PDF structure before extraction")
	fs.IntVar(&f.maxPages, "max-pages", 0, "Only extract the first n pages (0 means all)")
	fs.BoolVar(&f.webMode, "web", false, "Start web server mode instead of batch extraction")
	fs.StringVar(&f.port, "port", web.DefaultPort, "Port for web server")
	fs.BoolVar(&f.debug, "debug", false, "Show extraction steps and timings")
	fs.BoolVar(&f.quiet, "quiet", false, "Suppress progress output")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&f.version, "version", false, "Show version information")
	fs.BoolVar(&f.help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	f.args = fs.Args()
	return f, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := run(os.Args[1:], cliEnv{
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		interactive: isTerminal(os.Stderr),
		ctx:         ctx,
	})
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code
func run(args []string, env cliEnv) int {
	flags, err := parseFlags(args, env.stderr)
	if errors.Is(err, flag.ErrHelp) {
		help.NewSystem(true).ShowGeneralHelp(env.stdout)
		return 0
	}
	if err != nil {
		fmt.Fprintln(env.stderr, "Run 'pdfnorm --help' for usage.")
		return 2
	}

	// Auto-detect non-interactive environment
	if !env.interactive || flags.quiet || os.Getenv("CI") != "" {
		flags.noColor = true
	}
	color.NoColor = flags.noColor

	if flags.version {
		fmt.Fprintln(env.stdout, version.Current())
		return 0
	}

	if flags.help {
		helpSystem := help.NewSystem(flags.noColor)
		if len(flags.args) == 0 {
			helpSystem.ShowGeneralHelp(env.stdout)
			return 0
		}
		if !helpSystem.ShowTopic(env.stdout, flags.args[0]) {
			fmt.Fprintf(env.stderr, "Error: unknown help topic %q\n", flags.args[0])
			return 2
		}
		return 0
	}

	if len(flags.args) > 0 {
		fmt.Fprintf(env.stderr, "Error: unexpected arguments: %v\nUse --dir to choose the input directory.\n", flags.args)
		return 2
	}

	layout, err := extractor.ParseLayout(flags.layout)
	if err != nil {
		fmt.Fprintf(env.stderr, "Error: %v\n", err)
		return 2
	}
	if flags.maxPages < 0 {
		fmt.Fprintf(env.stderr, "Error: --max-pages must not be negative\n")
		return 2
	}

	observer := observability.NewObserver(flags.debug, env.stderr)
	if flags.debug {
		observer.Debugf("main", "Command line arguments: %v", args)
	}

	extractOpts := extractor.Options{Validate: flags.validate, MaxPages: flags.maxPages}

	if flags.webMode {
		if err := runWeb(env.ctx, flags, layout, extractOpts, observer, env.stdout); err != nil {
			fmt.Fprintf(env.stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	return runBatch(flags, layout, extractOpts, observer, env)
}

// runWeb starts the web server and blocks until ctx is cancelled
func runWeb(ctx context.Context, flags *cliFlags, layout extractor.Layout, extractOpts extractor.Options, observer *observability.StandardObserver, stdout io.Writer) error {
	if _, err := validatePort(flags.port); err != nil {
		return fmt.Errorf("port validation failed: %w", err)
	}

	configPath := config.ResolveHeaderConfigPath(flags.config)
	server := web.NewWebServer(web.Options{
		Port:       flags.port,
		ConfigPath: configPath,
		Layout:     layout,
		Extraction: extractOpts,
	}, observer)

	if !flags.quiet {
		fmt.Fprintf(stdout, "pdfnorm web server listening on http://localhost:%s (POST /extract)\n", flags.port)
		fmt.Fprintf(stdout, "Header config: %s\n", configPath)
	}
	return server.Start(ctx)
}

// runBatch extracts every PDF under --dir into --output-dir
func runBatch(flags *cliFlags, layout extractor.Layout, extractOpts extractor.Options, observer *observability.StandardObserver, env cliEnv) int {
	if err := paths.ValidatePath(flags.inputDir); err != nil {
		fmt.Fprintf(env.stderr, "Error: %v\n", err)
		return 2
	}

	configPath := config.ResolveHeaderConfigPath(flags.config)
	cfg, err := config.LoadHeaderConfig(configPath)
	if err != nil {
		fmt.Fprintf(env.stderr, "Error loading header config: %v\n", err)
		if errors.Is(err, config.ErrConfigNotFound) {
			fmt.Fprintln(env.stderr, "Create header_config.yaml or pass --config <path>. See 'pdfnorm --help config'.")
		}
		return 1
	}
	observer.Debugf("main", "Loaded %d canonical fields (%d aliases) from %s", len(cfg.Fields), cfg.AliasCount(), configPath)

	norm, err := normalizer.New(cfg)
	if err != nil {
		fmt.Fprintf(env.stderr, "Error: %v\n", err)
		return 1
	}
	normOpts := norm.Options()
	observer.Debugf("main", "Compiled %d alias rules (case_insensitive=%t, whole_word_match=%t)",
		norm.RuleCount(), normOpts.CaseInsensitive, normOpts.WholeWordMatch)

	progress := env.stdout
	if flags.quiet {
		progress = io.Discard
	}

	runner := batch.NewRunner(batch.Options{
		InputDir:  flags.inputDir,
		OutputDir: flags.outputDir,
		Layout:    layout,
		OnFound: func(count int) {
			if count > 0 {
				fmt.Fprintf(progress, "Found %d PDF(s). Extracting to %s\n", count, flags.outputDir)
			}
		},
		OnFile: func(src, dst string) {
			fmt.Fprintf(progress, "Processing: %s -> %s\n", src, dst)
		},
	}, extractor.New(extractOpts, observer), norm, observer)

	fmt.Fprintf(progress, "Searching for PDFs in %s...\n", flags.inputDir)
	report, err := runner.Run()
	if err != nil {
		fmt.Fprintf(env.stderr, "Error: %v\n", err)
		return 1
	}
	if report.Found == 0 {
		fmt.Fprintln(progress, "No PDFs found.")
		return 0
	}

	printSummary(progress, report)
	return 0
}

func printSummary(w io.Writer, report *batch.Report) {
	fmt.Fprintln(w)
	color.New(color.FgGreen, color.Bold).Fprintf(w, "Extracted %d of %d PDF(s)\n", report.Succeeded(), report.Found)
	if len(report.Failed) > 0 {
		warn := color.New(color.FgYellow)
		warn.Fprintf(w, "%d PDF(s) could not be extracted:\n", len(report.Failed))
		for _, failure := range report.Failed {
			warn.Fprintf(w, "  %s\n", failure.Error())
		}
	}
	if len(report.Skipped) > 0 {
		warn := color.New(color.FgYellow)
		warn.Fprintf(w, "%d path(s) could not be read and were skipped:\n", len(report.Skipped))
		for _, skip := range report.Skipped {
			warn.Fprintf(w, "  %s\n", skip.Error())
		}
	}
}

// validatePort validates that the port string is a valid port number
func validatePort(portStr string) (string, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", fmt.Errorf("invalid port format '%s': must be a number", portStr)
	}

	if port < 1 || port > 65535 {
		return "", fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
	}

	return portStr, nil
}

// isTerminal checks if the file descriptor is a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
