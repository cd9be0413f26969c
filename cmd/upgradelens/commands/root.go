package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moolen/upgradelens/internal/analysis"
	"github.com/moolen/upgradelens/internal/config"
	"github.com/moolen/upgradelens/internal/logging"
	"github.com/moolen/upgradelens/internal/tracing"
)

const Version = "0.1.0"

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath    string
	patternsPath  string
	logLevelFlags []string // Supports multiple --log-level flags

	cfg *config.Config
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "upgradelens",
		Short: "upgradelens - release note analysis for EKS and Kubernetes upgrades",
		Long: `upgradelens reads EKS and Kubernetes release notes and reports the breaking
changes, API deprecations and follow-up actions an upgrade requires.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	// Supports per-package log levels: --log-level debug --log-level classifier=debug
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", getEnv("UPGRADELENS_CONFIG", ""),
		"Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.patternsPath, "patterns", getEnv("UPGRADELENS_PATTERNS", ""),
		"Path to a pattern registry YAML file. Overrides patterns_file from the configuration")
	rootCmd.PersistentFlags().StringSliceVar(&opts.logLevelFlags, "log-level",
		[]string{"info"},
		"Log level for packages. Use 'default=level' for default, or 'package.name=level' for per-package.\n"+
			"Examples: --log-level debug (all), --log-level analysis=debug --log-level api=warn")

	rootCmd.AddCommand(newAnalyzeCmd(opts))
	rootCmd.AddCommand(newBreakingChangesCmd(opts))
	rootCmd.AddCommand(newBatchCmd(opts))
	rootCmd.AddCommand(newPatternsCmd(opts))
	rootCmd.AddCommand(newServerCmd(opts))
	rootCmd.AddCommand(newMCPCmd(opts))
	return rootCmd
}

// Execute runs the command tree and reports a failure on stderr.
func Execute() error {
	err := NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

// HandleError prints error and exits
func HandleError(err error, msg string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		os.Exit(1)
	}
}

// setup loads the configuration and initializes logging. The configured
// log level applies unless --log-level was given.
func (o *globalOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.patternsPath != "" {
		cfg.PatternsFile = o.patternsPath
	}
	o.cfg = cfg
	tracing.Version = Version

	flags := o.logLevelFlags
	if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
		flags = []string{cfg.LogLevel}
	}
	return setupLog(flags)
}

// engine builds an analysis engine from the loaded configuration.
func (o *globalOptions) engine() (*analysis.Engine, error) {
	registry, err := config.LoadRegistry(o.cfg.PatternsFile)
	if err != nil {
		return nil, err
	}
	return analysis.NewEngine(registry, o.cfg.Analysis.Policy())
}

// setupLog initializes the logging system with parsed log level flags
// Priority: CLI flags > Environment variables > Initialize default
func setupLog(flags []string) error {
	defaultLevel, packageLevels, err := parseLogLevelFlags(flags)
	if err != nil {
		return err
	}
	return logging.Initialize(defaultLevel, packageLevels)
}

// parseLogLevelFlags parses CLI flags and environment variables
// Priority: CLI flags > Environment variables
//
// CLI format: ["debug"], ["default=info", "config.watcher=debug"], or ["info"]
// Env vars: LOG_LEVEL_CONFIG_WATCHER=debug (package name uppercased, dots to underscores)
//
// Returns: (defaultLevel, packageLevels map, error)
func parseLogLevelFlags(flags []string) (string, map[string]string, error) {
	result := make(map[string]string)

	for _, envPair := range os.Environ() {
		if !strings.HasPrefix(envPair, "LOG_LEVEL_") {
			continue
		}
		parts := strings.SplitN(envPair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		result[convertEnvKeyToPackageName(parts[0])] = parts[1]
	}

	for _, flag := range flags {
		if !strings.Contains(flag, "=") {
			// Simple format like "debug" or "info" means default level
			result["default"] = flag
			continue
		}
		parts := strings.SplitN(flag, "=", 2)
		result[parts[0]] = parts[1]
	}

	defaultLevel := "info"
	if level, exists := result["default"]; exists {
		defaultLevel = level
		delete(result, "default")
	}

	if err := validateLogLevel(defaultLevel); err != nil {
		return "", nil, err
	}
	for pkg, level := range result {
		if err := validateLogLevel(level); err != nil {
			return "", nil, fmt.Errorf("invalid log level for package %q: %v", pkg, err)
		}
	}

	return defaultLevel, result, nil
}

// convertEnvKeyToPackageName converts LOG_LEVEL_CONFIG_WATCHER -> config.watcher
func convertEnvKeyToPackageName(envKey string) string {
	name := strings.TrimPrefix(envKey, "LOG_LEVEL_")
	return strings.ToLower(strings.ReplaceAll(name, "_", "."))
}

func validateLogLevel(level string) error {
	if _, err := logging.ParseLevel(level); err != nil {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error, fatal)", level)
	}
	return nil
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
