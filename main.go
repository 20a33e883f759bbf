package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sammcj/mcp-base64/internal/cli"
	"github.com/sammcj/mcp-base64/internal/config"
	"github.com/sammcj/mcp-base64/internal/format"
	"github.com/sammcj/mcp-base64/internal/registry"
	"github.com/sirupsen/logrus"
	ucli "github.com/urfave/cli/v3"

	// Import all tool packages to register them
	_ "github.com/sammcj/mcp-base64/internal/imports"
)

// Version information (set during build)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Global resources that need cleanup
// Atomic because signal-driven cleanup can race the main goroutine
var (
	debugLogFile atomic.Pointer[os.File]
	isStdioMode  atomic.Bool
)

// parseLogLevel parses the LOG_LEVEL environment variable.
// Defaults to WarnLevel if not set or invalid.
func parseLogLevel() logrus.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.WarnLevel
	}
}

func main() {
	// Best-effort .env loading; absence is not an error
	_ = godotenv.Load()

	// Context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Discard output until the transport mode is known: stdio transports
	// must never see log lines on stdout/stderr
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(parseLogLevel())
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	registry.Init(logger)
	config.Init(logger)

	defer performCleanup()

	app := &ucli.Command{
		Name:    "mcp-base64",
		Usage:   "MCP server for base64 conversion with formatted output",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		Flags: []ucli.Flag{
			&ucli.StringFlag{
				Name:    "transport",
				Aliases: []string{"t"},
				Value:   "stdio",
				Usage:   "Transport type (stdio, sse, or http)",
			},
			&ucli.StringFlag{
				Name:  "port",
				Value: "18080",
				Usage: "Port to use for HTTP transports (SSE and Streamable HTTP)",
			},
			&ucli.StringFlag{
				Name:  "base-url",
				Value: "http://localhost",
				Usage: "Base URL for HTTP transports",
			},
			&ucli.StringFlag{
				Name:  "auth-token",
				Usage: "Bearer token required on the Streamable HTTP transport (optional)",
			},
			&ucli.StringFlag{
				Name:  "endpoint-path",
				Value: "/http",
				Usage: "Endpoint path for Streamable HTTP transport",
			},
			&ucli.DurationFlag{
				Name:  "session-timeout",
				Value: 30 * time.Minute,
				Usage: "Session timeout for Streamable HTTP transport",
			},
		},
		Commands: []*ucli.Command{
			{
				Name:  "version",
				Usage: "Print version information",
				Action: func(ctx context.Context, cmd *ucli.Command) error {
					fmt.Printf("mcp-base64 version %s\n", Version)
					fmt.Printf("Commit: %s\n", Commit)
					fmt.Printf("Built: %s\n", BuildDate)
					return nil
				},
			},
			{
				Name:  "formats",
				Usage: "List recognised output formats",
				Action: func(ctx context.Context, cmd *ucli.Command) error {
					for _, name := range format.Names() {
						synonyms := format.Synonyms(name)
						if len(synonyms) > 1 {
							fmt.Printf("%s (%s)\n", name, strings.Join(synonyms, ", "))
						} else {
							fmt.Println(name)
						}
					}
					return nil
				},
			},
			{
				Name:  "cli",
				Usage: "Run tools directly without starting a server",
				Commands: []*ucli.Command{
					{
						Name:  "list",
						Usage: "List available tools",
						Action: func(ctx context.Context, cmd *ucli.Command) error {
							configureStderrLogging(logger)
							return cli.NewRunner(logger, registry.GetCache()).ListTools()
						},
					},
					{
						Name:      "help",
						Usage:     "Show parameters for a tool",
						ArgsUsage: "<tool>",
						Action: func(ctx context.Context, cmd *ucli.Command) error {
							if cmd.Args().Len() < 1 {
								return fmt.Errorf("usage: mcp-base64 cli help <tool>")
							}
							configureStderrLogging(logger)
							return cli.NewRunner(logger, registry.GetCache()).HelpTool(cmd.Args().First())
						},
					},
					{
						Name:      "run",
						Usage:     "Execute a tool with --key=value flags or a JSON object",
						ArgsUsage: "<tool> [args...]",
						Action: func(ctx context.Context, cmd *ucli.Command) error {
							if cmd.Args().Len() < 1 {
								return fmt.Errorf("usage: mcp-base64 cli run <tool> [args...]")
							}
							configureStderrLogging(logger)
							runner := cli.NewRunner(logger, registry.GetCache())
							return runner.RunTool(ctx, cmd.Args().First(), cmd.Args().Tail())
						},
					},
				},
			},
		},
		Action: func(cliCtx context.Context, cmd *ucli.Command) error {
			transport := cmd.String("transport")
			port := cmd.String("port")
			baseURL := cmd.String("base-url")

			isStdioMode.Store(transport == "stdio")
			configureFileLogging(logger)

			if transport != "stdio" {
				logger.Infof("Starting mcp-base64 version %s (commit: %s, built: %s)",
					Version, Commit, BuildDate)
			}

			mcpSrv := mcpserver.NewMCPServer("mcp-base64", Version)

			for toolName, toolImpl := range registry.GetEnabledTools() {
				name := toolName
				tool := toolImpl

				if transport != "stdio" {
					logger.Infof("Registering tool: %s", name)
				}

				mcpSrv.AddTool(tool.Definition(), func(toolCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
					currentTool, ok := registry.GetTool(name)
					if !ok {
						return nil, fmt.Errorf("tool not found: %s", name)
					}

					args, ok := request.Params.Arguments.(map[string]any)
					if !ok {
						return nil, fmt.Errorf("invalid arguments type: expected map[string]interface{}, got %T", request.Params.Arguments)
					}

					result, err := currentTool.Execute(toolCtx, registry.GetLogger(), registry.GetCache(), args)
					if err != nil {
						if transport != "stdio" {
							logger.WithError(err).Errorf("Tool execution failed: %s", name)
						}
						return nil, fmt.Errorf("tool execution failed: %w", err)
					}
					return result, nil
				})
			}

			logger.WithField("transport", transport).Debug("Starting server")
			switch transport {
			case "stdio":
				return mcpserver.ServeStdio(mcpSrv)
			case "sse":
				sseServer := mcpserver.NewSSEServer(mcpSrv, mcpserver.WithBaseURL(baseURL+"/sse"))
				return sseServer.Start(":" + port)
			case "http":
				return startStreamableHTTPServer(cmd, mcpSrv, logger)
			default:
				return fmt.Errorf("unsupported transport: %s", transport)
			}
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		// In stdio mode nothing may be written to stdout/stderr, as that
		// would corrupt the MCP protocol stream
		if !isStdioMode.Load() {
			logger.Fatalf("Error: %v", err)
		}
		os.Exit(1)
	}
}

// configureFileLogging sends all log output to ~/.mcp-base64/logs so the
// stdio transport stays protocol-clean. Falls back to stderr outside stdio
// mode, and to discarding output inside it.
func configureFileLogging(logger *logrus.Logger) {
	logLevel := parseLogLevel()
	if isStdioMode.Load() && logLevel < logrus.WarnLevel {
		logLevel = logrus.WarnLevel
	}

	fallback := func() {
		if isStdioMode.Load() {
			logger.SetOutput(io.Discard)
		} else {
			logger.SetOutput(os.Stderr)
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fallback()
		logger.SetLevel(logLevel)
		return
	}

	logDir := filepath.Join(homeDir, ".mcp-base64", "logs")
	if err := os.MkdirAll(logDir, 0700); err != nil {
		fallback()
		logger.SetLevel(logLevel)
		return
	}

	logFile := filepath.Join(logDir, "mcp-base64.log")
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		fallback()
		logger.SetLevel(logLevel)
		return
	}

	debugLogFile.Store(file)
	logger.SetOutput(file)
	logger.SetLevel(logLevel)
	logger.WithField("level", logLevel.String()).Debug("Logging configured")
}

// configureStderrLogging is used by the in-process CLI commands, where
// stdout carries tool output and logs belong on stderr.
func configureStderrLogging(logger *logrus.Logger) {
	logger.SetOutput(os.Stderr)
	logger.SetLevel(parseLogLevel())
}

// performCleanup closes resources on shutdown
func performCleanup() {
	// Close silently: in stdio mode no output is allowed, and elsewhere the
	// logger may be writing to this very file
	if file := debugLogFile.Load(); file != nil {
		_ = file.Close()
	}
}

// startStreamableHTTPServer configures and starts the Streamable HTTP server
func startStreamableHTTPServer(cmd *ucli.Command, mcpServer *mcpserver.MCPServer, logger *logrus.Logger) error {
	port := cmd.String("port")
	authToken := cmd.String("auth-token")
	endpointPath := cmd.String("endpoint-path")
	sessionTimeout := cmd.Duration("session-timeout")

	logger.Infof("Starting Streamable HTTP server on port %s with endpoint %s", port, endpointPath)

	opts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath(endpointPath),
	}

	if sessionTimeout > 0 {
		opts = append(opts, mcpserver.WithSessionIdManager(&sessionManager{logger: logger}))
	}

	if authToken != "" {
		opts = append(opts, mcpserver.WithHTTPContextFunc(createAuthMiddleware(authToken, logger)))
		logger.Info("Bearer token authentication enabled")
	}

	// Heartbeat at 1/4 of the session timeout keeps idle connections alive
	heartbeatInterval := 30 * time.Second
	if sessionTimeout > 0 {
		heartbeatInterval = sessionTimeout / 4
	}
	opts = append(opts, mcpserver.WithHeartbeatInterval(heartbeatInterval))
	opts = append(opts, mcpserver.WithLogger(&logrusAdapter{logger: logger}))

	httpServer := mcpserver.NewStreamableHTTPServer(mcpServer, opts...)

	logger.Infof("Heartbeat interval: %v", heartbeatInterval)
	return httpServer.Start(":" + port)
}

// createAuthMiddleware creates an HTTP context function for token authentication
func createAuthMiddleware(expectedToken string, logger *logrus.Logger) mcpserver.HTTPContextFunc {
	return func(ctx context.Context, req *http.Request) context.Context {
		authHeader := req.Header.Get("Authorization")
		if authHeader == "" {
			logger.Warn("Request missing Authorization header")
			return ctx
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			logger.Warn("Invalid authorization format, expected Bearer token")
			return ctx
		}

		if strings.TrimPrefix(authHeader, bearerPrefix) != expectedToken {
			logger.Warn("Invalid authentication token")
			return ctx
		}

		logger.Debug("Request authenticated successfully")
		return ctx
	}
}

// sessionManager issues UUID session IDs for the Streamable HTTP transport
type sessionManager struct {
	logger *logrus.Logger
}

func (s *sessionManager) Generate() string {
	return "session-" + uuid.NewString()
}

func (s *sessionManager) Validate(sessionID string) (bool, error) {
	if sessionID == "" {
		return false, fmt.Errorf("empty session ID")
	}
	return false, nil // Session is not terminated
}

func (s *sessionManager) Terminate(sessionID string) (bool, error) {
	s.logger.Debugf("Session terminated: %s", sessionID)
	return true, nil
}

// logrusAdapter adapts logrus.Logger to the mcp-go util.Logger interface
type logrusAdapter struct {
	logger *logrus.Logger
}

func (l *logrusAdapter) Debugf(format string, args ...any) {
	l.logger.Debugf(format, args...)
}

func (l *logrusAdapter) Infof(format string, args ...any) {
	l.logger.Infof(format, args...)
}

func (l *logrusAdapter) Warnf(format string, args ...any) {
	l.logger.Warnf(format, args...)
}

func (l *logrusAdapter) Errorf(format string, args ...any) {
	l.logger.Errorf(format, args...)
}
