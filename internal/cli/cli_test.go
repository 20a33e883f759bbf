package cli

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-base64/internal/registry"
	_ "github.com/sammcj/mcp-base64/internal/tools/base64convert"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plainTool struct{}

func (p *plainTool) Definition() mcp.Tool {
	return mcp.NewTool("plain_tool",
		mcp.WithDescription("A tool without extended help"),
		mcp.WithString("input", mcp.Description("Some input"), mcp.Required()),
	)
}

func (p *plainTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("plain output"), nil
}

func testRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	registry.Init(logger)

	var buf bytes.Buffer
	runner := NewRunner(logger, registry.GetCache())
	runner.out = &buf
	return runner, &buf
}

func TestHelpToolRendersExtendedHelp(t *testing.T) {
	runner, buf := testRunner(t)

	require.NoError(t, runner.HelpTool("base64_convert"))
	out := buf.String()

	assert.Contains(t, out, "Tool: base64_convert")
	assert.Contains(t, out, "Parameters:")
	assert.Contains(t, out, "--action")
	assert.Contains(t, out, "When to use:")
	assert.Contains(t, out, "When not to use:")
	assert.Contains(t, out, "Parameter notes:")
	assert.Contains(t, out, "Examples:")
	assert.Contains(t, out, "mcp-base64 cli run base64_convert")
	assert.Contains(t, out, "Common patterns:")
	assert.Contains(t, out, "Troubleshooting:")
}

func TestHelpToolWithoutExtendedHelp(t *testing.T) {
	runner, buf := testRunner(t)
	registry.Register(&plainTool{})

	require.NoError(t, runner.HelpTool("plain_tool"))
	out := buf.String()

	assert.Contains(t, out, "Tool: plain_tool")
	assert.Contains(t, out, "--input")
	assert.NotContains(t, out, "When to use:")
	assert.NotContains(t, out, "Troubleshooting:")
}

func TestHelpToolUnknown(t *testing.T) {
	runner, _ := testRunner(t)
	assert.Error(t, runner.HelpTool("no_such_tool"))
}

func TestRunToolEndToEnd(t *testing.T) {
	runner, buf := testRunner(t)

	err := runner.RunTool(context.Background(), "base64_convert",
		[]string{"--action", "encode", "--text", "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "SGVsbG8=\n", buf.String())
}

func TestRunToolErrorResult(t *testing.T) {
	runner, buf := testRunner(t)

	err := runner.RunTool(context.Background(), "base64_convert",
		[]string{"--action", "decode", "--text", "not base64!"})
	require.Error(t, err)
	assert.Contains(t, buf.String(), "invalid base64 character")
}

func TestParseArgs(t *testing.T) {
	tool, ok := registry.GetTool("base64_convert")
	require.True(t, ok)
	def := tool.Definition()

	params, err := parseArgs([]string{
		"--action=encode",
		"--text", "hi",
		"--wrap_column=64",
		"--data_uri",
	}, def)
	require.NoError(t, err)

	assert.Equal(t, "encode", params["action"])
	assert.Equal(t, "hi", params["text"])
	assert.Equal(t, int64(64), params["wrap_column"])
	assert.Equal(t, true, params["data_uri"])
}

func TestParseArgsJSONObject(t *testing.T) {
	tool, ok := registry.GetTool("base64_convert")
	require.True(t, ok)
	def := tool.Definition()

	params, err := parseArgs([]string{`{"action": "encode", "text": "hi", "wrap_column": 64}`}, def)
	require.NoError(t, err)

	assert.Equal(t, "encode", params["action"])
	assert.Equal(t, float64(64), params["wrap_column"])
}
