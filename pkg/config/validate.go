package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-outline/pkg/utils"
)

// Validate checks AppConfig fields and applies defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *AppConfig) Validate() (warnings []string, err error) {
	// MaxOutlineLevel
	if c.MaxOutlineLevel == 0 {
		c.MaxOutlineLevel = DefaultMaxOutlineLevel
	} else if c.MaxOutlineLevel < 1 || c.MaxOutlineLevel > 6 {
		warnings = append(warnings, fmt.Sprintf(
			"max_outline_level must be between 1 and 6 (got %d), defaulting to %d",
			c.MaxOutlineLevel, DefaultMaxOutlineLevel))
		c.MaxOutlineLevel = DefaultMaxOutlineLevel
	}

	// NumWorkers
	if c.NumWorkers <= 0 {
		warnings = append(warnings, fmt.Sprintf("num_workers should be > 0, defaulting to %d", DefaultNumWorkers))
		c.NumWorkers = DefaultNumWorkers
	}

	// LogLevel
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	} else if _, parseErr := logrus.ParseLevel(c.LogLevel); parseErr != nil {
		warnings = append(warnings, fmt.Sprintf("log_level %q is not a valid level, defaulting to %q", c.LogLevel, DefaultLogLevel))
		c.LogLevel = DefaultLogLevel
	}

	// MCP settings
	mcpWarnings, err := c.MCP.Validate()
	if err != nil {
		return warnings, err
	}
	warnings = append(warnings, mcpWarnings...)

	// Document sets, in name order so warnings are stable
	names := make([]string, 0, len(c.DocumentSets))
	for name := range c.DocumentSets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		set := c.DocumentSets[name]
		setWarnings, setErr := set.Validate()
		if setErr != nil {
			return warnings, fmt.Errorf("document set %q: %w", name, setErr)
		}
		for _, w := range setWarnings {
			warnings = append(warnings, fmt.Sprintf("document set %q: %s", name, w))
		}
		c.DocumentSets[name] = set
	}

	return warnings, nil
}

// Validate checks MCPConfig fields and applies defaults.
// An unknown transport is fatal.
func (c *MCPConfig) Validate() (warnings []string, err error) {
	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
	switch c.Transport {
	case "":
		c.Transport = DefaultMCPTransport
	case "stdio", "sse":
	default:
		return nil, fmt.Errorf("%w: mcp transport must be 'stdio' or 'sse', got %q", utils.ErrConfigValidation, c.Transport)
	}

	if c.Port == 0 {
		c.Port = DefaultMCPPort
	} else if c.Port < 0 || c.Port > 65535 {
		warnings = append(warnings, fmt.Sprintf("mcp port %d is out of range, defaulting to %d", c.Port, DefaultMCPPort))
		c.Port = DefaultMCPPort
	}

	return warnings, nil
}

// Validate checks DocumentSetConfig fields.
// Returns collected warnings and any fatal error.
func (c *DocumentSetConfig) Validate() (warnings []string, err error) {
	// Required: Paths
	if len(c.Paths) == 0 {
		return nil, fmt.Errorf("%w: document set has no paths", utils.ErrConfigValidation)
	}
	for _, p := range c.Paths {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("%w: document set has an empty path", utils.ErrConfigValidation)
		}
	}

	// MaxOutlineLevel (pointer)
	if c.MaxOutlineLevel != nil && (*c.MaxOutlineLevel < 1 || *c.MaxOutlineLevel > 6) {
		warnings = append(warnings, fmt.Sprintf(
			"max_outline_level must be between 1 and 6 (got %d), using the global setting", *c.MaxOutlineLevel))
		c.MaxOutlineLevel = nil
	}

	return warnings, nil
}
