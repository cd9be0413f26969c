package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/moolen/upgradelens/internal/analysis"
	"github.com/moolen/upgradelens/internal/logging"
	"github.com/moolen/upgradelens/internal/mcp"
)

type mcpOptions struct {
	*globalOptions
	transport    string
	httpAddr     string
	endpointPath string
}

func newMCPCmd(g *globalOptions) *cobra.Command {
	opts := &mcpOptions{globalOptions: g}
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server that exposes release note
analysis as MCP tools for AI assistants.

Supports two transport modes:
  - stdio: Standard input/output mode (default, for subprocess-based MCP clients)
  - http: HTTP server mode with a /health endpoint`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runMCP(cmd)
		},
	}
	cmd.Flags().StringVar(&opts.transport, "transport", "stdio", "Transport type: stdio or http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", getEnv("MCP_HTTP_ADDR", ":8082"), "HTTP server address (host:port)")
	cmd.Flags().StringVar(&opts.endpointPath, "mcp-endpoint", getEnv("MCP_ENDPOINT", "/mcp"), "HTTP endpoint path for MCP requests")
	return cmd
}

func (o *mcpOptions) runMCP(cmd *cobra.Command) error {
	logger := logging.GetLogger("mcp")
	logger.Info("Starting upgradelens MCP server (transport: %s)", o.transport)

	engine, err := o.engine()
	if err != nil {
		return err
	}
	server := mcp.NewServer(analysis.NewHolder(engine), Version)

	switch o.transport {
	case "stdio":
		if err := server.ServeStdio(); err != nil {
			logger.Error("Stdio transport error: %v", err)
			return err
		}
	case "http":
		return o.serveHTTP(cmd.Context(), server, logger)
	default:
		return errors.New("invalid transport type " + o.transport + " (must be 'stdio' or 'http')")
	}

	logger.Info("Server stopped")
	return nil
}

func (o *mcpOptions) serveHTTP(ctx context.Context, server *mcp.Server, logger *logging.Logger) error {
	endpointPath := o.endpointPath
	if endpointPath == "" {
		endpointPath = "/mcp"
	} else if endpointPath[0] != '/' {
		endpointPath = "/" + endpointPath
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle(endpointPath, server.HTTPHandler(endpointPath))

	httpSrv := &http.Server{
		Addr:              o.httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second, // Prevent Slowloris attacks
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server on %s (endpoint: %s)", o.httpAddr, endpointPath)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during shutdown: %v", err)
			return err
		}
	case err := <-errCh:
		logger.Error("Server error: %v", err)
		return err
	}

	logger.Info("Server stopped")
	return nil
}
