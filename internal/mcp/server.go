// Package mcp exposes release note analysis as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/moolen/upgradelens/internal/analysis"
	"github.com/moolen/upgradelens/internal/logging"
)

// Tool is implemented by every MCP tool of the server.
type Tool interface {
	Execute(ctx context.Context, input json.RawMessage) (interface{}, error)
}

// Server wraps the mcp-go server with the analysis tools.
type Server struct {
	mcpServer *server.MCPServer
	tools     map[string]Tool
	logger    *logging.Logger
}

// NewServer registers the analysis tools against the engine published by
// holder.
func NewServer(holder *analysis.Holder, version string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"upgradelens",
			version,
			server.WithToolCapabilities(false),
			server.WithPromptCapabilities(false),
		),
		tools:  make(map[string]Tool),
		logger: logging.GetLogger("mcp"),
	}

	s.registerTool(
		"analyze_release_notes",
		"Analyze Kubernetes/EKS release notes: domain entities, change categories with severities, "+
			"Kubernetes context, breaking changes, API deprecations and prioritized action items",
		&analyzeTool{holder: holder},
		documentSchema("Release note text to analyze"),
	)
	s.registerTool(
		"detect_breaking_changes",
		"Summarize the upgrade risk of release notes: breaking changes, API deprecations, "+
			"critical actions and a 0-10 severity score",
		&breakingChangesTool{holder: holder},
		documentSchema("Release note text to check for breaking changes"),
	)
	s.registerPrompts()

	return s
}

func documentSchema(textDescription string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": textDescription,
			},
			"entities": map[string]interface{}{
				"type":        "array",
				"description": "Optional: entities from an external NER service, with text, type, confidence, begin_offset and end_offset",
				"items":       map[string]interface{}{"type": "object"},
			},
		},
		"required": []string{"text"},
	}
}

func (s *Server) registerTool(name, description string, tool Tool, inputSchema map[string]interface{}) {
	s.tools[name] = tool

	schemaJSON, err := json.Marshal(inputSchema)
	if err != nil {
		panic(fmt.Sprintf("Failed to marshal schema for tool %s: %v", name, err))
	}

	s.mcpServer.AddTool(mcp.NewToolWithRawSchema(name, description, schemaJSON), s.toolHandler(name, tool))
}

func (s *Server) toolHandler(name string, tool Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(request.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		result, err := tool.Execute(ctx, args)
		if err != nil {
			s.logger.WarnWithFields("Tool execution failed",
				logging.Field("tool", name),
				logging.Field("error", err))
			return mcp.NewToolResultError(fmt.Sprintf("Tool execution failed: %v", err)), nil
		}

		resultJSON, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}

func (s *Server) registerPrompts() {
	prompt := mcp.Prompt{
		Name:        "upgrade_readiness_review",
		Description: "Review release notes before a cluster upgrade",
		Arguments: []mcp.PromptArgument{
			{Name: "target_version", Description: "Kubernetes version being upgraded to", Required: true},
			{Name: "cluster", Description: "Optional cluster name", Required: false},
		},
	}

	s.mcpServer.AddPrompt(prompt, func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		target := request.Params.Arguments["target_version"]
		text := fmt.Sprintf("Fetch the release notes for Kubernetes %s and run detect_breaking_changes on them. "+
			"List every API deprecation with its replacement group/version, then the critical actions in priority order.", target)
		if cluster := request.Params.Arguments["cluster"]; cluster != "" {
			text += fmt.Sprintf(" The cluster being upgraded is %s.", cluster)
		}

		return &mcp.GetPromptResult{
			Description: "Upgrade readiness review",
			Messages: []mcp.PromptMessage{
				mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
			},
		}, nil
	})
}

// MCPServer returns the underlying mcp-go server for transport setup.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves the tools on stdin/stdout until stdin closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// HTTPHandler returns a stateless streamable HTTP handler mounted at
// endpointPath.
func (s *Server) HTTPHandler(endpointPath string) http.Handler {
	return server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithEndpointPath(endpointPath),
		server.WithStateLess(true),
	)
}
