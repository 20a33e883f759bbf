// Package tools defines the contract between the registry and the tool
// implementations it serves over MCP and the CLI.
package tools

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
)

// Tool is implemented by every registered tool.
type Tool interface {
	// Definition returns the MCP tool definition, including the input schema.
	Definition() mcp.Tool

	// Execute runs the tool with the shared logger and cache and the parsed
	// arguments. Data-level failures are reported inside the result; a Go
	// error means the call itself was invalid.
	Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]any) (*mcp.CallToolResult, error)
}

// ExtendedHelpProvider is an optional interface for tools that carry usage
// guidance beyond their input schema. The CLI help command renders it.
type ExtendedHelpProvider interface {
	ProvideExtendedInfo() *ExtendedHelp
}

// ExtendedHelp is the usage guidance a tool exposes: worked examples,
// per-parameter notes and fixes for the failures users actually hit.
type ExtendedHelp struct {
	Examples         []ToolExample        `json:"examples,omitempty"`
	CommonPatterns   []string             `json:"common_patterns,omitempty"`
	Troubleshooting  []TroubleshootingTip `json:"troubleshooting,omitempty"`
	ParameterDetails map[string]string    `json:"parameter_details,omitempty"`
	WhenToUse        string               `json:"when_to_use,omitempty"`
	WhenNotToUse     string               `json:"when_not_to_use,omitempty"`
}

// ToolExample is a single worked invocation with its expected output.
type ToolExample struct {
	Description    string         `json:"description"`
	Arguments      map[string]any `json:"arguments"`
	ExpectedResult string         `json:"expected_result,omitempty"`
}

// TroubleshootingTip pairs a failure symptom with its remedy.
type TroubleshootingTip struct {
	Problem  string `json:"problem"`
	Solution string `json:"solution"`
}
