// Package mcp exposes the outline operations as Model Context Protocol tools.
package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-outline/pkg/config"
	"github.com/Sriram-PR/doc-outline/pkg/markdown"
	"github.com/Sriram-PR/doc-outline/pkg/outline"
	"github.com/Sriram-PR/doc-outline/pkg/utils"
)

const (
	serverName    = "doc-outline"
	serverVersion = "1.0.0"
)

// ServerConfig holds configuration for the MCP server
type ServerConfig struct {
	AppConfig  *config.AppConfig
	ConfigPath string
	Transport  string // "stdio" or "sse"
	Port       int
	Logger     *logrus.Logger
}

// Server wraps the MCP server with the outline tools
type Server struct {
	mcpServer  *server.MCPServer
	cfg        *ServerConfig
	log        *logrus.Entry
	renderer   *markdown.Renderer
	extractor  *outline.Extractor
	jobManager *JobManager
	toolCount  int
}

// NewServer creates a new MCP server instance
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg.AppConfig == nil {
		return nil, fmt.Errorf("%w: AppConfig is required", utils.ErrConfigValidation)
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Transport == "" {
		cfg.Transport = cfg.AppConfig.MCP.Transport
	}
	if cfg.Port == 0 {
		cfg.Port = cfg.AppConfig.MCP.Port
	}

	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithLogging(),
	)

	s := &Server{
		mcpServer:  mcpServer,
		cfg:        cfg,
		log:        cfg.Logger.WithField("component", "mcp"),
		renderer:   markdown.NewRenderer(cfg.Logger),
		extractor:  outline.NewExtractor(nil),
		jobManager: NewJobManager(),
	}

	s.registerTools()

	return s, nil
}

func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.mcpServer.AddTool(tool, handler)
	s.toolCount++
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	maxLevelDesc := fmt.Sprintf("Deepest heading level to include, 1-6 (default: %d)", s.cfg.AppConfig.MaxOutlineLevel)

	// extract_headings - Flat or nested heading list with source lines
	s.addTool(mcp.NewTool("extract_headings",
		mcp.WithDescription("Extract the headings of a Markdown document with their level, 0-based source line and anchor id. Front matter fields and title are returned when present."),
		mcp.WithString("markdown",
			mcp.Required(),
			mcp.Description("Markdown document text"),
		),
		mcp.WithNumber("max_level",
			mcp.Description(maxLevelDesc),
		),
		mcp.WithBoolean("nested",
			mcp.Description("Return headings as a tree instead of a flat list"),
		),
	), s.handleExtractHeadings)

	// find_heading_line - Anchor to source line
	s.addTool(mcp.NewTool("find_heading_line",
		mcp.WithDescription("Find the 0-based source line of the heading with the given anchor id. Returns -1 if not found."),
		mcp.WithString("markdown",
			mcp.Required(),
			mcp.Description("Markdown document text"),
		),
		mcp.WithString("anchor_id",
			mcp.Required(),
			mcp.Description("Anchor id without the leading '#', e.g. 'getting-started'"),
		),
		mcp.WithNumber("max_level",
			mcp.Description(maxLevelDesc),
		),
	), s.handleFindHeadingLine)

	// render_outline - Markdown list of links
	s.addTool(mcp.NewTool("render_outline",
		mcp.WithDescription("Render the h1-h4 headings of a Markdown document as an indented Markdown list of anchor links"),
		mcp.WithString("markdown",
			mcp.Required(),
			mcp.Description("Markdown document text"),
		),
		mcp.WithNumber("max_level",
			mcp.Description(maxLevelDesc),
		),
	), s.handleRenderOutline)

	// render_html - Markdown to HTML
	s.addTool(mcp.NewTool("render_html",
		mcp.WithDescription("Render a Markdown document to HTML. Front matter is stripped."),
		mcp.WithString("markdown",
			mcp.Required(),
			mcp.Description("Markdown document text"),
		),
		mcp.WithBoolean("no_html",
			mcp.Description("Omit raw HTML from the output (default from config)"),
		),
		mcp.WithBoolean("external_links",
			mcp.Description("Open absolute links in a new tab (default from config)"),
		),
		mcp.WithBoolean("auto_ids",
			mcp.Description("Emit id attributes on headings (default from config)"),
		),
	), s.handleRenderHTML)

	// slugify - Heading text to anchor id
	s.addTool(mcp.NewTool("slugify",
		mcp.WithDescription("Convert heading text to its GitHub-style anchor id"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Heading text"),
		),
	), s.handleSlugify)

	// list_document_sets - Configured sets
	s.addTool(mcp.NewTool("list_document_sets",
		mcp.WithDescription("List all configured document sets"),
	), s.handleListDocumentSets)

	// outline_document_set - Background batch job
	s.addTool(mcp.NewTool("outline_document_set",
		mcp.WithDescription("Start a background job extracting the headings and Markdown outline of every document of a configured set. Returns immediately with a job ID."),
		mcp.WithString("set_key",
			mcp.Required(),
			mcp.Description("Document set key from the config file"),
		),
		mcp.WithBoolean("include_html",
			mcp.Description("Also return each document rendered to HTML with the set's Markdown options"),
		),
	), s.handleOutlineDocumentSet)

	// get_job_status - Job progress and results
	s.addTool(mcp.NewTool("get_job_status",
		mcp.WithDescription("Get the status and results of an outline job"),
		mcp.WithString("job_id",
			mcp.Required(),
			mcp.Description("The job ID returned by outline_document_set"),
		),
	), s.handleGetJobStatus)

	// list_jobs - All jobs of this server
	s.addTool(mcp.NewTool("list_jobs",
		mcp.WithDescription("List all outline jobs started on this server, oldest first"),
	), s.handleListJobs)

	// cancel_job - Stop an active job
	s.addTool(mcp.NewTool("cancel_job",
		mcp.WithDescription("Cancel a pending or running outline job"),
		mcp.WithString("job_id",
			mcp.Required(),
			mcp.Description("The job ID returned by outline_document_set"),
		),
	), s.handleCancelJob)

	s.log.Infof("Registered %d MCP tools", s.toolCount)
}

// Transport returns the transport Run will use
func (s *Server) Transport() string {
	return s.cfg.Transport
}

// Run starts the MCP server with the configured transport
func (s *Server) Run() error {
	switch s.cfg.Transport {
	case "stdio":
		s.log.Info("Starting MCP server with stdio transport")
		return server.ServeStdio(s.mcpServer)
	case "sse":
		addr := fmt.Sprintf(":%d", s.cfg.Port)
		s.log.Infof("Starting MCP server with SSE transport on %s", addr)
		sseServer := server.NewSSEServer(s.mcpServer)
		return sseServer.Start(addr)
	default:
		return fmt.Errorf("%w: unknown transport: %s (supported: stdio, sse)", utils.ErrConfigValidation, s.cfg.Transport)
	}
}

// Shutdown cancels running jobs
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down MCP server...")
	s.jobManager.CancelAll()
	return nil
}
