package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/moolen/upgradelens/internal/analysis"
	"github.com/moolen/upgradelens/internal/api"
	"github.com/moolen/upgradelens/internal/cache"
	"github.com/moolen/upgradelens/internal/config"
	"github.com/moolen/upgradelens/internal/lifecycle"
	"github.com/moolen/upgradelens/internal/logging"
	"github.com/moolen/upgradelens/internal/mcp"
	"github.com/moolen/upgradelens/internal/tracing"
)

type serverOptions struct {
	*globalOptions
	port        int
	mcpEnabled  bool
	watchReload bool
}

func newServerCmd(g *globalOptions) *cobra.Command {
	opts := &serverOptions{globalOptions: g}
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the analysis HTTP server",
		Long: `Start the HTTP server that exposes release note analysis as a JSON API,
with Prometheus metrics on /metrics and an optional MCP endpoint.

When a pattern registry file is configured it is watched and reloaded on
change unless --watch=false is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runServer(cmd)
		},
	}
	cmd.Flags().IntVar(&opts.port, "port", 0, "Port to listen on (overrides server.port)")
	cmd.Flags().BoolVar(&opts.mcpEnabled, "mcp", false, "Mount the MCP endpoint (overrides mcp.enabled)")
	cmd.Flags().BoolVar(&opts.watchReload, "watch", true, "Reload the pattern registry file when it changes")
	return cmd
}

func (o *serverOptions) runServer(cmd *cobra.Command) error {
	logger := logging.GetLogger("server")
	cfg := o.cfg
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = o.port
	}
	if cmd.Flags().Changed("mcp") {
		cfg.MCP.Enabled = o.mcpEnabled
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Info("Starting upgradelens server (version %s)", Version)
	manager := lifecycle.NewManager()

	tracingProvider, err := tracing.New(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		TLSCAPath:   cfg.Tracing.TLSCAPath,
		TLSInsecure: cfg.Tracing.TLSInsecure,
	})
	if err != nil {
		return fmt.Errorf("failed to create tracing provider: %w", err)
	}
	if err := manager.Register(tracingProvider); err != nil {
		return err
	}

	engine, err := o.engine()
	if err != nil {
		return err
	}
	holder := analysis.NewHolder(engine.WithTracer(tracingProvider.Tracer("upgradelens.analysis")))

	apiOpts := api.Options{
		Port:             cfg.Server.Port,
		MaxBodyBytes:     cfg.Server.MaxBodyBytes,
		BatchConcurrency: cfg.Server.BatchConcurrency,
		Tracer:           tracingProvider.Tracer("upgradelens.api"),
	}
	if cfg.Server.Cache.Enabled {
		resultCache, err := cache.New(cfg.Server.Cache.MaxEntries, cfg.Server.Cache.TTL)
		if err != nil {
			return fmt.Errorf("failed to create result cache: %w", err)
		}
		apiOpts.Cache = resultCache
	}
	if cfg.MCP.Enabled {
		mcpServer := mcp.NewServer(holder, Version)
		apiOpts.MCPHandler = mcpServer.HTTPHandler(cfg.MCP.Endpoint)
		apiOpts.MCPEndpoint = cfg.MCP.Endpoint
	}

	apiServer := api.NewServer(holder, apiOpts)
	if err := manager.Register(apiServer, tracingProvider); err != nil {
		return err
	}

	if cfg.PatternsFile != "" && o.watchReload {
		watcher, err := config.NewPatternsWatcher(cfg.PatternsFile, config.DefaultDebounce, apiServer.Reload)
		if err != nil {
			return fmt.Errorf("failed to create patterns watcher: %w", err)
		}
		if err := manager.Register(watcher, apiServer); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("startup error: %w", err)
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var serveErr error
	select {
	case sig := <-sigChan:
		logger.Info("Received signal: %v, shutting down gracefully...", sig)
	case serveErr = <-apiServer.Err():
		logger.Error("API server failed: %v", serveErr)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := manager.Stop(shutdownCtx); err != nil {
		logger.Error("Error during shutdown: %v", err)
	}

	logger.Info("Shutdown complete")
	return serveErr
}
