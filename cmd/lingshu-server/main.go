package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lingshu/internal/config"
	"lingshu/internal/llm"
	"lingshu/internal/llm/openai"
	"lingshu/internal/logger"
	"lingshu/internal/mcp"
	"lingshu/internal/tool"
	"lingshu/internal/tool/medical"

	"github.com/spf13/cobra"
)

var (
	host       string
	port       int
	path       string
	configPath string
	logLevel   string
	noColor    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lingshu-server",
		Short: "Lingshu Medical MCP Server",
		Long:  "MCP server exposing medical image analysis, report generation and Q&A tools backed by the Lingshu model",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		RunE:  runServe,
	}

	serveCmd.Flags().StringVar(&host, "host", "", "Listen address (overrides config)")
	serveCmd.Flags().IntVar(&port, "port", 0, "Listen port (overrides config)")
	serveCmd.Flags().StringVar(&path, "path", "", "HTTP mount path (overrides config)")
	serveCmd.Flags().StringVar(&configPath, "config", "", "Config file path")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warning, error)")
	serveCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	log := logger.NewLogger(os.Stdout, level)
	if noColor {
		log.SetColorMode(false)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if path != "" {
		cfg.Server.Path = path
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Debug("Creating Lingshu backend client (model: %s, url: %s)", cfg.Lingshu.Model, cfg.Lingshu.BaseURL)
	var backend llm.Client = openai.NewClient(cfg.Lingshu.APIKey, cfg.Lingshu.Model, cfg.Lingshu.BaseURL)

	registry := tool.NewRegistry()
	for _, t := range []tool.Tool{
		medical.NewAnalyzeTool(backend),
		medical.NewReportTool(backend),
		medical.NewQATool(backend),
	} {
		if err := registry.Register(t); err != nil {
			return err
		}
	}

	log.Info("Registered tools:")
	for _, t := range registry.List() {
		log.Info("  - %s: %s", t.Name(), t.Description())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer(registry, log)
	log.Info("Serving MCP over streamable HTTP at %s", cfg.MCPURL())
	return server.Serve(ctx, cfg.Server.Host, cfg.Server.Port, cfg.Server.Path)
}

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.LoadWithDefaults()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	cfg.ApplyDefaults()
	return cfg, nil
}
