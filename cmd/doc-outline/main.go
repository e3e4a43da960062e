package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/Sriram-PR/doc-outline/pkg/anchor"
	"github.com/Sriram-PR/doc-outline/pkg/config"
	"github.com/Sriram-PR/doc-outline/pkg/markdown"
	"github.com/Sriram-PR/doc-outline/pkg/orchestrate"
	"github.com/Sriram-PR/doc-outline/pkg/outline"
	"github.com/Sriram-PR/doc-outline/pkg/utils"
)

const version = "1.0.0"

// stdin is read when a document path is "-"
var stdin io.Reader = os.Stdin

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "headings":
		runHeadings(os.Args[2:])
	case "find":
		runFind(os.Args[2:])
	case "outline":
		runOutline(os.Args[2:])
	case "render":
		runRender(os.Args[2:])
	case "slug":
		os.Exit(doSlug(os.Args[2:], os.Stdout, os.Stderr))
	case "validate":
		runValidate(os.Args[2:])
	case "list-sets":
		runListSets(os.Args[2:])
	case "mcp-server":
		runMcpServer(os.Args[2:])
	case "version":
		fmt.Printf("doc-outline %s\n", version)
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	printUsageTo(os.Stdout)
}

// printUsageTo writes usage information to the provided writer.
func printUsageTo(w io.Writer) {
	fmt.Fprintln(w, `doc-outline - Markdown heading outlines and anchors

Usage:
  doc-outline <command> [options]

Commands:
  headings    List the headings of one or more documents
  find        Print the source line of the heading with an anchor id
  outline     Print a document outline as a Markdown list of links
  render      Render a document to HTML
  slug        Print the anchor id for heading text
  validate    Validate configuration file
  list-sets   List configured document sets
  mcp-server  Start MCP server for AI tool integration
  version     Show version info

Document paths may be '-' to read standard input.
Run 'doc-outline <command> -h' for command-specific help.`)
}

// loadConfig loads and parses the config file
func loadConfig(path string) (*config.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.WrapErrorf(err, "read config")
	}

	var cfg config.AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, utils.WrapErrorf(err, "parse config")
	}

	return &cfg, nil
}

// loadEffectiveConfig returns the validated config at path, or the defaults
// when path is empty. Warnings go to stderr.
func loadEffectiveConfig(path string, stderr io.Writer) (*config.AppConfig, error) {
	if path == "" {
		cfg := config.Default()
		return &cfg, nil
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}
	warnings, err := cfg.Validate()
	for _, w := range warnings {
		fmt.Fprintf(stderr, "WARN: %s\n", w)
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveMaxLevel picks the -max-level flag when set, else the configured depth.
func resolveMaxLevel(flagValue int, cfg *config.AppConfig) (int, error) {
	if flagValue == 0 {
		return cfg.MaxOutlineLevel, nil
	}
	if flagValue < 1 || flagValue > 6 {
		return 0, fmt.Errorf("%w: -max-level must be between 1 and 6, got %d", utils.ErrConfigValidation, flagValue)
	}
	return flagValue, nil
}

// defaultCLILogLevel keeps document commands quiet when neither the flag nor a
// config file sets a level.
const defaultCLILogLevel = "warn"

// resolveLogLevel picks the -loglevel flag when set, else log_level from the
// config file. Without a config file the fallback applies.
func resolveLogLevel(flagValue, configPath string, cfg *config.AppConfig, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	if configPath != "" && cfg.LogLevel != "" {
		return cfg.LogLevel
	}
	return fallback
}

// checkStdinPaths rejects document lists that read standard input twice.
func checkStdinPaths(paths []string) error {
	count := 0
	for _, p := range paths {
		if p == "-" {
			count++
		}
	}
	if count > 1 {
		return fmt.Errorf("%w: standard input ('-') can be given only once", utils.ErrConfigValidation)
	}
	return nil
}

// readDocument reads a Markdown document from path, or stdin for "-".
func readDocument(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("%w: reading '%s': %w", utils.ErrFilesystem, path, err)
	}
	return string(data), nil
}

// setupLogger creates a logrus.Logger writing to w with the given level.
func setupLogger(logLevelStr string, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	log.SetLevel(logrus.WarnLevel)

	level, err := logrus.ParseLevel(logLevelStr)
	if err != nil {
		log.Warnf("Invalid log level '%s', using default 'warn'. Error: %v", logLevelStr, err)
	} else {
		log.SetLevel(level)
	}

	return log
}

// headingsOptions holds the parsed flags of the headings subcommand
type headingsOptions struct {
	configPath string
	maxLevel   int
	format     string
	nested     bool
	sets       []string
	allSets    bool
	outline    bool
	html       bool
	logLevel   string
	paths      []string
}

// runHeadings handles the headings subcommand
func runHeadings(args []string) {
	fs := flag.NewFlagSet("headings", flag.ExitOnError)
	configFile := fs.String("config", "", "Path to config file (optional)")
	maxLevel := fs.Int("max-level", 0, "Deepest heading level to list, 1-6 (default from config)")
	format := fs.String("format", "text", "Output format (text, json, yaml)")
	nested := fs.Bool("nested", false, "Nest headings under their parents (json and yaml)")
	sets := fs.String("sets", "", "Comma-separated document set keys from config")
	allSets := fs.Bool("all-sets", false, "Process all configured document sets")
	withOutline := fs.Bool("outline", false, "Also render each document's Markdown outline")
	withHTML := fs.Bool("html", false, "Also render each document to HTML")
	logLevel := fs.String("loglevel", "", "Log level (debug, info, warn, error; default from config, else warn)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: doc-outline headings [options] [file...]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  doc-outline headings README.md\n")
		fmt.Fprintf(os.Stderr, "  doc-outline headings -format json -max-level 3 docs/*.md\n")
		fmt.Fprintf(os.Stderr, "  doc-outline headings -config config.yaml -sets guides,api\n")
		fmt.Fprintf(os.Stderr, "  doc-outline headings -config config.yaml -all-sets -outline -format yaml\n")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	opts := headingsOptions{
		configPath: *configFile,
		maxLevel:   *maxLevel,
		format:     *format,
		nested:     *nested,
		allSets:    *allSets,
		outline:    *withOutline,
		html:       *withHTML,
		logLevel:   *logLevel,
		paths:      fs.Args(),
	}
	if *sets != "" {
		for _, key := range strings.Split(*sets, ",") {
			if key = strings.TrimSpace(key); key != "" {
				opts.sets = append(opts.sets, key)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exitCode := doHeadings(ctx, opts, os.Stdout, os.Stderr)
	stop()
	os.Exit(exitCode)
}

// documentOutline is the serialized form of one document's headings
type documentOutline struct {
	Path     string                 `json:"path" yaml:"path"`
	Set      string                 `json:"set,omitempty" yaml:"set,omitempty"`
	Headings []outline.HeadingEntry `json:"headings" yaml:"headings"`
	Outline  string                 `json:"outline,omitempty" yaml:"outline,omitempty"`
	HTML     string                 `json:"html,omitempty" yaml:"html,omitempty"`
	Error    string                 `json:"error,omitempty" yaml:"error,omitempty"`
}

// doHeadings is the testable implementation of the headings subcommand.
// Returns exit code (0 = success, 1 = error).
func doHeadings(ctx context.Context, opts headingsOptions, stdout, stderr io.Writer) int {
	switch opts.format {
	case "text", "json", "yaml":
	default:
		fmt.Fprintf(stderr, "Error: unknown format '%s' (supported: text, json, yaml)\n", opts.format)
		return 1
	}
	if err := checkStdinPaths(opts.paths); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	appCfg, err := loadEffectiveConfig(opts.configPath, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	maxLevel, err := resolveMaxLevel(opts.maxLevel, appCfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	setKeys := opts.sets
	if opts.allSets {
		setKeys = orchestrate.GetAllSetKeys(appCfg)
	}
	jobs, err := orchestrate.JobsForSets(appCfg, setKeys)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if opts.maxLevel != 0 {
		for i := range jobs {
			jobs[i].MaxLevel = maxLevel
		}
	}
	jobs = append(jobs, orchestrate.JobsForFiles(opts.paths, maxLevel, appCfg.MarkdownOptions())...)
	if len(jobs) == 0 {
		fmt.Fprintln(stderr, "Error: no documents given (pass files, -sets or -all-sets)")
		return 1
	}

	log := setupLogger(resolveLogLevel(opts.logLevel, opts.configPath, appCfg, defaultCLILogLevel), stderr)
	o := orchestrate.NewOrchestrator(appCfg, nil, logrus.NewEntry(log))
	o.SetReadFile(readDocumentBytes)
	if opts.outline || opts.html {
		o.EnableRendering(markdown.NewRenderer(log), opts.outline, opts.html)
	}
	results := o.Run(ctx, jobs)

	docs := make([]documentOutline, 0, len(results))
	exitCode := 0
	for _, r := range results {
		doc := documentOutline{Path: r.Path, Set: r.SetKey, Headings: r.Headings, Outline: r.Outline, HTML: r.HTML}
		if doc.Headings == nil {
			doc.Headings = []outline.HeadingEntry{}
		}
		if opts.nested {
			doc.Headings = outline.Nest(doc.Headings)
		}
		if r.Error != nil {
			doc.Error = r.Error.Error()
			fmt.Fprintf(stderr, "Error: %v\n", r.Error)
			exitCode = 1
		}
		docs = append(docs, doc)
	}

	if err := writeHeadings(stdout, opts.format, opts.outline || opts.html, docs); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return exitCode
}

func readDocumentBytes(path string) ([]byte, error) {
	content, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	return []byte(content), nil
}

// writeHeadings renders the documents' headings in the requested format. In
// text format a document's rendered outline and HTML replace its heading list
// when rendered is set.
func writeHeadings(w io.Writer, format string, rendered bool, docs []documentOutline) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(docs); err != nil {
			return err
		}
		return enc.Close()
	}

	for i, doc := range docs {
		if doc.Error != "" {
			continue
		}
		if len(docs) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "==> %s <==\n", doc.Path)
		}
		if rendered {
			fmt.Fprint(w, doc.Outline)
			fmt.Fprint(w, doc.HTML)
			continue
		}
		writeHeadingTree(w, doc.Headings)
	}
	return nil
}

// writeHeadingTree prints one heading per line in document order, indented
// by level. Nested headings are flattened first.
func writeHeadingTree(w io.Writer, headings []outline.HeadingEntry) {
	for _, h := range outline.Flatten(headings) {
		indent := strings.Repeat("  ", max(0, h.Level-1))
		fmt.Fprintf(w, "%5d  %s%s  #%s\n", h.Line, indent, strings.TrimRight(h.Text, " \t"), h.AnchorID)
	}
}

// runFind handles the find subcommand
func runFind(args []string) {
	fs := flag.NewFlagSet("find", flag.ExitOnError)
	configFile := fs.String("config", "", "Path to config file (optional)")
	anchorID := fs.String("anchor", "", "Anchor id to look up, with or without '#' (required)")
	maxLevel := fs.Int("max-level", 0, "Deepest heading level to search, 1-6 (default from config)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: doc-outline find -anchor <id> [options] <file>\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 || *anchorID == "" {
		fs.Usage()
		os.Exit(1)
	}

	os.Exit(doFind(*configFile, *anchorID, *maxLevel, fs.Arg(0), os.Stdout, os.Stderr))
}

// doFind prints the 0-based line of the heading with anchorID.
// Returns exit code (0 = found, 1 = error or not found).
func doFind(configPath, anchorID string, maxLevel int, path string, stdout, stderr io.Writer) int {
	appCfg, err := loadEffectiveConfig(configPath, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	level, err := resolveMaxLevel(maxLevel, appCfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	md, err := readDocument(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	anchorID = strings.TrimPrefix(anchorID, "#")
	line := outline.FindHeadingLine(md, anchorID, level)
	if line < 0 {
		fmt.Fprintf(stderr, "Heading '#%s' not found in %s\n", anchorID, path)
		return 1
	}
	fmt.Fprintln(stdout, line)
	return 0
}

// runOutline handles the outline subcommand
func runOutline(args []string) {
	fs := flag.NewFlagSet("outline", flag.ExitOnError)
	configFile := fs.String("config", "", "Path to config file (optional)")
	maxLevel := fs.Int("max-level", 0, "Deepest heading level to include, 1-6 (default from config)")
	logLevel := fs.String("loglevel", "", "Log level (debug, info, warn, error; default from config, else warn)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: doc-outline outline [options] <file>\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}

	os.Exit(doOutline(*configFile, *maxLevel, *logLevel, fs.Arg(0), os.Stdout, os.Stderr))
}

// doOutline prints the Markdown outline of a document.
// Returns exit code (0 = success, 1 = error).
func doOutline(configPath string, maxLevel int, logLevel, path string, stdout, stderr io.Writer) int {
	appCfg, err := loadEffectiveConfig(configPath, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	level, err := resolveMaxLevel(maxLevel, appCfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	md, err := readDocument(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	renderer := markdown.NewRenderer(setupLogger(resolveLogLevel(logLevel, configPath, appCfg, defaultCLILogLevel), stderr))
	out, err := outline.MarkdownOutline(renderer, md, appCfg.MarkdownOptions(), level)
	if err != nil {
		if errors.Is(err, utils.ErrEmptyInput) {
			fmt.Fprintf(stderr, "No headings to outline in %s\n", path)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	fmt.Fprint(stdout, out)
	return 0
}

// runRender handles the render subcommand
func runRender(args []string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	configFile := fs.String("config", "", "Path to config file (optional)")
	noHTML := fs.Bool("no-html", false, "Omit raw HTML from the output")
	external := fs.Bool("external-links", false, "Open absolute links in a new tab")
	autoIDs := fs.Bool("auto-ids", false, "Emit id attributes on headings")
	logLevel := fs.String("loglevel", "", "Log level (debug, info, warn, error; default from config, else warn)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: doc-outline render [options] <file>\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}

	// Flags only switch options on; config settings otherwise apply
	overrides := markdown.Options{NoHTML: *noHTML, RenderLinksAsExternal: *external, AutoHeaderIdentifiers: *autoIDs}
	os.Exit(doRender(*configFile, overrides, *logLevel, fs.Arg(0), os.Stdout, os.Stderr))
}

// doRender writes the HTML rendering of a document.
// Returns exit code (0 = success, 1 = error).
func doRender(configPath string, overrides markdown.Options, logLevel, path string, stdout, stderr io.Writer) int {
	appCfg, err := loadEffectiveConfig(configPath, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	md, err := readDocument(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	opts := appCfg.MarkdownOptions()
	opts.NoHTML = opts.NoHTML || overrides.NoHTML
	opts.RenderLinksAsExternal = opts.RenderLinksAsExternal || overrides.RenderLinksAsExternal
	opts.AutoHeaderIdentifiers = opts.AutoHeaderIdentifiers || overrides.AutoHeaderIdentifiers

	renderer := markdown.NewRenderer(setupLogger(resolveLogLevel(logLevel, configPath, appCfg, defaultCLILogLevel), stderr))
	fmt.Fprint(stdout, renderer.RenderHTML(md, opts))
	return 0
}

// doSlug prints the anchor id of the heading text given as arguments.
func doSlug(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "Usage: doc-outline slug <heading text...>")
		return 1
	}
	fmt.Fprintln(stdout, anchor.Slug(strings.Join(args, " ")))
	return 0
}

// runValidate handles the validate subcommand
func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: doc-outline validate [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	os.Exit(doValidate(*configFile, os.Stdout, os.Stderr))
}

// doValidate validates config and writes output to provided writers.
// Returns exit code (0 = success, 1 = error).
func doValidate(configPath string, stdout, stderr io.Writer) int {
	appCfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	warnings, err := appCfg.Validate()
	for _, w := range warnings {
		fmt.Fprintf(stdout, "WARN: %s\n", w)
	}
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}

	for _, key := range orchestrate.GetAllSetKeys(appCfg) {
		fmt.Fprintf(stdout, "OK: [%s]\n", key)
	}

	fmt.Fprintln(stdout, "\nConfiguration valid.")
	return 0
}

// runListSets handles the list-sets subcommand
func runListSets(args []string) {
	fs := flag.NewFlagSet("list-sets", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: doc-outline list-sets [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	os.Exit(doListSets(*configFile, os.Stdout, os.Stderr))
}

// doListSets lists document sets and writes output to provided writers.
// Returns exit code (0 = success, 1 = error).
func doListSets(configPath string, stdout, stderr io.Writer) int {
	appCfg, err := loadEffectiveConfig(configPath, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Document sets in %s:\n\n", configPath)
	for _, key := range orchestrate.GetAllSetKeys(appCfg) {
		set := appCfg.DocumentSets[key]
		fmt.Fprintf(stdout, "  %s\n", key)
		fmt.Fprintf(stdout, "    Paths: %s\n", strings.Join(set.Paths, ", "))
		fmt.Fprintf(stdout, "    Max Outline Level: %d\n", config.GetEffectiveMaxOutlineLevel(set, *appCfg))
		fmt.Fprintln(stdout)
	}
	return 0
}
