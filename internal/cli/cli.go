// Package cli runs registered tools in-process, bypassing the MCP server.
// No transport or network round-trip is involved; tools are resolved and
// executed through the registry directly.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-base64/internal/registry"
	"github.com/sammcj/mcp-base64/internal/tools"
	"github.com/sirupsen/logrus"
)

// Runner executes CLI commands against the tool registry.
type Runner struct {
	logger *logrus.Logger
	cache  *sync.Map
	out    io.Writer
}

// NewRunner creates a Runner using the shared logger and cache.
func NewRunner(logger *logrus.Logger, cache *sync.Map) *Runner {
	return &Runner{logger: logger, cache: cache, out: os.Stdout}
}

// ListTools prints all enabled tools with the first line of their description.
func (r *Runner) ListTools() error {
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	for _, name := range registry.GetEnabledToolNames() {
		tool, ok := registry.GetTool(name)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", name, firstLine(tool.Definition().Description))
	}
	return w.Flush()
}

// HelpTool prints a tool's parameters from its input schema, followed by
// the tool's extended help when it provides one.
func (r *Runner) HelpTool(name string) error {
	tool, ok := registry.GetTool(name)
	if !ok {
		return fmt.Errorf("unknown tool: %s (run 'mcp-base64 cli list' to see available tools)", name)
	}

	def := tool.Definition()
	fmt.Fprintf(r.out, "Tool: %s\n\n%s\n", def.Name, def.Description)

	props := def.InputSchema.Properties
	if len(props) == 0 {
		fmt.Fprintln(r.out, "\nNo parameters.")
	} else {
		required := make(map[string]bool, len(def.InputSchema.Required))
		for _, name := range def.InputSchema.Required {
			required[name] = true
		}

		names := make([]string, 0, len(props))
		for name := range props {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintln(r.out, "\nParameters:")
		w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
		for _, pName := range names {
			pMap, ok := props[pName].(map[string]any)
			if !ok {
				continue
			}
			pType, _ := pMap["type"].(string)
			pDesc, _ := pMap["description"].(string)
			mark := ""
			if required[pName] {
				mark = " (required)"
			}
			fmt.Fprintf(w, "  --%s\t%s\t%s%s\n", pName, pType, firstLine(pDesc), mark)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if provider, ok := tool.(tools.ExtendedHelpProvider); ok {
		if info := provider.ProvideExtendedInfo(); info != nil {
			r.printExtendedHelp(def.Name, info)
		}
	}
	return nil
}

// printExtendedHelp renders a tool's extended help sections.
func (r *Runner) printExtendedHelp(name string, info *tools.ExtendedHelp) {
	if info.WhenToUse != "" {
		fmt.Fprintf(r.out, "\nWhen to use:\n  %s\n", info.WhenToUse)
	}
	if info.WhenNotToUse != "" {
		fmt.Fprintf(r.out, "\nWhen not to use:\n  %s\n", info.WhenNotToUse)
	}

	if len(info.ParameterDetails) > 0 {
		params := make([]string, 0, len(info.ParameterDetails))
		for param := range info.ParameterDetails {
			params = append(params, param)
		}
		sort.Strings(params)

		fmt.Fprintln(r.out, "\nParameter notes:")
		for _, param := range params {
			fmt.Fprintf(r.out, "  %s: %s\n", param, info.ParameterDetails[param])
		}
	}

	if len(info.Examples) > 0 {
		fmt.Fprintln(r.out, "\nExamples:")
		for _, example := range info.Examples {
			fmt.Fprintf(r.out, "  %s:\n", example.Description)
			if args, err := json.Marshal(example.Arguments); err == nil {
				fmt.Fprintf(r.out, "    mcp-base64 cli run %s '%s'\n", name, string(args))
			}
			if example.ExpectedResult != "" {
				fmt.Fprintf(r.out, "    returns: %s\n", firstLine(example.ExpectedResult))
			}
		}
	}

	if len(info.CommonPatterns) > 0 {
		fmt.Fprintln(r.out, "\nCommon patterns:")
		for _, pattern := range info.CommonPatterns {
			fmt.Fprintf(r.out, "  - %s\n", pattern)
		}
	}

	if len(info.Troubleshooting) > 0 {
		fmt.Fprintln(r.out, "\nTroubleshooting:")
		for _, tip := range info.Troubleshooting {
			fmt.Fprintf(r.out, "  %s\n    %s\n", tip.Problem, tip.Solution)
		}
	}
}

// RunTool executes a tool by name. Arguments are either a single JSON
// object or --key=value flags; flag values are coerced using the tool's
// input schema.
func (r *Runner) RunTool(ctx context.Context, name string, args []string) error {
	tool, ok := registry.GetTool(name)
	if !ok {
		return fmt.Errorf("unknown tool: %s (run 'mcp-base64 cli list' to see available tools)", name)
	}

	params, err := parseArgs(args, tool.Definition())
	if err != nil {
		return fmt.Errorf("argument error: %w", err)
	}

	result, err := tool.Execute(ctx, r.logger, r.cache, params)
	if err != nil {
		return fmt.Errorf("tool error: %w", err)
	}
	return r.renderResult(result)
}

// parseArgs converts CLI arguments into the map a tool's Execute expects.
func parseArgs(args []string, def mcp.Tool) (map[string]any, error) {
	types := make(map[string]string, len(def.InputSchema.Properties))
	for name, prop := range def.InputSchema.Properties {
		if pMap, ok := prop.(map[string]any); ok {
			if t, ok := pMap["type"].(string); ok {
				types[name] = t
			}
		}
	}

	params := make(map[string]any)
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "{") {
			var obj map[string]any
			if err := json.Unmarshal([]byte(arg), &obj); err != nil {
				return nil, fmt.Errorf("invalid JSON argument: %w", err)
			}
			for k, v := range obj {
				if _, exists := params[k]; !exists {
					params[k] = v
				}
			}
			continue
		}

		if !strings.HasPrefix(arg, "--") {
			return nil, fmt.Errorf("unexpected argument: %s (use --key=value flags or a JSON object)", arg)
		}

		key, rawVal, hasVal := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if !hasVal {
			// Bare flag: boolean true, otherwise consume the next argument.
			if types[key] == "boolean" {
				params[key] = true
				continue
			}
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("flag --%s requires a value", key)
			}
			rawVal = args[i]
		}
		params[key] = coerceValue(rawVal, types[key])
	}
	return params, nil
}

// coerceValue converts a flag value to the Go type its schema type implies.
func coerceValue(raw, schemaType string) any {
	switch schemaType {
	case "number", "integer":
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
		return raw
	case "boolean":
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
		return raw
	default:
		return raw
	}
}

// renderResult writes a tool result's text content to the runner's output.
func (r *Runner) renderResult(result *mcp.CallToolResult) error {
	if result == nil {
		return nil
	}
	for _, content := range result.Content {
		if text, ok := mcp.AsTextContent(content); ok {
			fmt.Fprintln(r.out, text.Text)
			continue
		}
		data, err := json.MarshalIndent(content, "", "  ")
		if err != nil {
			fmt.Fprintf(r.out, "%+v\n", content)
			continue
		}
		fmt.Fprintln(r.out, string(data))
	}
	if result.IsError {
		return fmt.Errorf("tool returned an error")
	}
	return nil
}

func firstLine(s string) string {
	if before, _, found := strings.Cut(s, "\n"); found {
		return before
	}
	return s
}
