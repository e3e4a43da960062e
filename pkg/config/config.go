package config

import "github.com/Sriram-PR/doc-outline/pkg/markdown"

// Default values applied by Validate.
const (
	DefaultMaxOutlineLevel = 6
	DefaultNumWorkers      = 4
	DefaultLogLevel        = "info"
	DefaultMCPTransport    = "stdio"
	DefaultMCPPort         = 8080
)

// MarkdownConfig holds the Markdown rendering switches
type MarkdownConfig struct {
	NoHTML                bool `yaml:"no_html,omitempty"`                  // Omit raw HTML from rendered output
	RenderLinksAsExternal bool `yaml:"render_links_as_external,omitempty"` // Open absolute links in a new tab
	AutoHeaderIdentifiers bool `yaml:"auto_header_identifiers,omitempty"`  // Emit id attributes on headings
}

// DocumentSetConfig holds overrides for a named group of documents
type DocumentSetConfig struct {
	Paths                 []string `yaml:"paths"` // File paths or glob patterns
	MaxOutlineLevel       *int     `yaml:"max_outline_level,omitempty"`
	NoHTML                *bool    `yaml:"no_html,omitempty"`
	RenderLinksAsExternal *bool    `yaml:"render_links_as_external,omitempty"`
}

// MCPConfig holds MCP server settings
type MCPConfig struct {
	Transport string `yaml:"transport,omitempty"` // "stdio" or "sse"
	Port      int    `yaml:"port,omitempty"`      // Listen port for the sse transport
}

// AppConfig holds the global application configuration
type AppConfig struct {
	MaxOutlineLevel int                          `yaml:"max_outline_level"`
	NumWorkers      int                          `yaml:"num_workers"`
	LogLevel        string                       `yaml:"log_level,omitempty"`
	Markdown        MarkdownConfig               `yaml:"markdown,omitempty"`
	MCP             MCPConfig                    `yaml:"mcp,omitempty"`
	DocumentSets    map[string]DocumentSetConfig `yaml:"document_sets,omitempty"`
}

// Default returns an AppConfig with every default applied.
func Default() AppConfig {
	cfg := AppConfig{}
	_, _ = cfg.Validate()
	return cfg
}

// MarkdownOptions converts the global Markdown settings to renderer options.
func (c AppConfig) MarkdownOptions() markdown.Options {
	return markdown.Options{
		NoHTML:                c.Markdown.NoHTML,
		RenderLinksAsExternal: c.Markdown.RenderLinksAsExternal,
		AutoHeaderIdentifiers: c.Markdown.AutoHeaderIdentifiers,
	}
}

// GetEffectiveMaxOutlineLevel determines the outline depth for a document set
func GetEffectiveMaxOutlineLevel(setCfg DocumentSetConfig, appCfg AppConfig) int {
	if setCfg.MaxOutlineLevel != nil {
		return *setCfg.MaxOutlineLevel
	}
	return appCfg.MaxOutlineLevel
}

// GetEffectiveMarkdownOptions determines the renderer options for a document set.
// Set-level switches override the global ones; AutoHeaderIdentifiers is always global.
func GetEffectiveMarkdownOptions(setCfg DocumentSetConfig, appCfg AppConfig) markdown.Options {
	opts := appCfg.MarkdownOptions()
	if setCfg.NoHTML != nil {
		opts.NoHTML = *setCfg.NoHTML
	}
	if setCfg.RenderLinksAsExternal != nil {
		opts.RenderLinksAsExternal = *setCfg.RenderLinksAsExternal
	}
	return opts
}
