package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"

	"github.com/Sriram-PR/doc-outline/pkg/markdown"
)

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(i int) *int {
	return &i
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultMaxOutlineLevel, cfg.MaxOutlineLevel)
	assert.Equal(t, DefaultNumWorkers, cfg.NumWorkers)
	assert.Equal(t, DefaultMCPTransport, cfg.MCP.Transport)
	assert.Equal(t, DefaultMCPPort, cfg.MCP.Port)
	assert.Equal(t, markdown.Options{}, cfg.MarkdownOptions())
}

func TestAppConfig_YAML(t *testing.T) {
	data := `
max_outline_level: 3
num_workers: 2
markdown:
  no_html: true
  render_links_as_external: true
mcp:
  transport: sse
  port: 9000
document_sets:
  api:
    paths: ["api/*.md"]
    max_outline_level: 2
    no_html: false
`
	var cfg AppConfig
	err := yaml.Unmarshal([]byte(data), &cfg)

	assert.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxOutlineLevel)
	assert.Equal(t, markdown.Options{NoHTML: true, RenderLinksAsExternal: true}, cfg.MarkdownOptions())
	assert.Equal(t, MCPConfig{Transport: "sse", Port: 9000}, cfg.MCP)
	assert.Equal(t, []string{"api/*.md"}, cfg.DocumentSets["api"].Paths)
	assert.Equal(t, intPtr(2), cfg.DocumentSets["api"].MaxOutlineLevel)
	assert.Equal(t, boolPtr(false), cfg.DocumentSets["api"].NoHTML)
	assert.Nil(t, cfg.DocumentSets["api"].RenderLinksAsExternal)
}

func TestGetEffectiveMaxOutlineLevel(t *testing.T) {
	tests := []struct {
		name     string
		setCfg   DocumentSetConfig
		appCfg   AppConfig
		expected int
	}{
		{
			name:     "set overrides global",
			setCfg:   DocumentSetConfig{MaxOutlineLevel: intPtr(2)},
			appCfg:   AppConfig{MaxOutlineLevel: 6},
			expected: 2,
		},
		{
			name:     "set nil uses global",
			setCfg:   DocumentSetConfig{},
			appCfg:   AppConfig{MaxOutlineLevel: 4},
			expected: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetEffectiveMaxOutlineLevel(tt.setCfg, tt.appCfg))
		})
	}
}

func TestGetEffectiveMarkdownOptions(t *testing.T) {
	tests := []struct {
		name     string
		setCfg   DocumentSetConfig
		appCfg   AppConfig
		expected markdown.Options
	}{
		{
			name:     "set nil uses global",
			setCfg:   DocumentSetConfig{},
			appCfg:   AppConfig{Markdown: MarkdownConfig{NoHTML: true, AutoHeaderIdentifiers: true}},
			expected: markdown.Options{NoHTML: true, AutoHeaderIdentifiers: true},
		},
		{
			name:     "set disables global no_html",
			setCfg:   DocumentSetConfig{NoHTML: boolPtr(false)},
			appCfg:   AppConfig{Markdown: MarkdownConfig{NoHTML: true}},
			expected: markdown.Options{},
		},
		{
			name:     "set enables external links",
			setCfg:   DocumentSetConfig{RenderLinksAsExternal: boolPtr(true)},
			appCfg:   AppConfig{},
			expected: markdown.Options{RenderLinksAsExternal: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetEffectiveMarkdownOptions(tt.setCfg, tt.appCfg))
		})
	}
}
