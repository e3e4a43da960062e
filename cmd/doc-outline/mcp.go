package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-outline/pkg/mcp"
	"github.com/Sriram-PR/doc-outline/pkg/utils"
)

// runMcpServer handles the mcp-server subcommand
func runMcpServer(args []string) {
	fs := flag.NewFlagSet("mcp-server", flag.ExitOnError)
	configFile := fs.String("config", "", "Path to config file (optional)")
	transport := fs.String("transport", "", "Transport type (stdio, sse; default from config)")
	port := fs.Int("port", 0, "HTTP port for sse transport (default from config)")
	logLevel := fs.String("loglevel", "", "Log level (debug, info, warn, error; default from config)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: doc-outline mcp-server [options]

Start an MCP (Model Context Protocol) server for AI tool integration.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Start with stdio transport
  doc-outline mcp-server -config config.yaml

  # Start with SSE transport on port 8080
  doc-outline mcp-server -config config.yaml -transport sse -port 8080

Available MCP Tools:
  extract_headings      List headings with levels, lines and anchor ids
  find_heading_line     Find the source line of an anchor
  render_outline        Markdown list of links to the h1-h4 headings
  render_html           Render Markdown to HTML
  slugify               Heading text to anchor id
  list_document_sets    List configured document sets
  outline_document_set  Start a background outline job for a set
  get_job_status        Status and results of an outline job
  list_jobs             List outline jobs
  cancel_job            Cancel an outline job
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	exitCode := doMcpServer(*configFile, *transport, *port, *logLevel, os.Stdout, os.Stderr)
	os.Exit(exitCode)
}

// newMcpServer builds the MCP server from flags and config without starting it.
// An empty logLevel selects log_level from the config.
func newMcpServer(configPath, transport string, port int, logLevel string, stderr io.Writer) (*mcp.Server, *logrus.Logger, error) {
	appCfg, err := loadEffectiveConfig(configPath, stderr)
	if err != nil {
		return nil, nil, utils.WrapErrorf(err, "loading config")
	}

	// MCP protocol uses stdout, logs go to stderr
	logLevel = resolveLogLevel(logLevel, configPath, appCfg, appCfg.LogLevel)
	log := logrus.New()
	log.SetOutput(stderr)
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: invalid log level: %s", utils.ErrConfigValidation, logLevel)
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})

	server, err := mcp.NewServer(&mcp.ServerConfig{
		AppConfig:  appCfg,
		ConfigPath: configPath,
		Transport:  transport,
		Port:       port,
		Logger:     log,
	})
	if err != nil {
		return nil, nil, utils.WrapErrorf(err, "creating MCP server")
	}
	return server, log, nil
}

// doMcpServer is the testable implementation of the MCP server
func doMcpServer(configPath, transport string, port int, logLevel string, stdout, stderr io.Writer) int {
	server, log, err := newMcpServer(configPath, transport, port, logLevel, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	log.Infof("Starting MCP server (transport: %s)", server.Transport())

	if err := server.Run(); err != nil {
		fmt.Fprintf(stderr, "MCP server error: %v\n", err)
		return 1
	}

	return 0
}
