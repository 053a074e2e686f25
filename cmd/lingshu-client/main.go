package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lingshu/internal/agent"
	"lingshu/internal/config"
	"lingshu/internal/llm"
	"lingshu/internal/llm/openai"
	"lingshu/internal/logger"
	"lingshu/internal/mcp"

	"github.com/spf13/cobra"
)

// defaultQuery exercises the full tool path out of the box
const defaultQuery = "How to evaluate lung nodules in CT images? What imaging features should be noted?"

var (
	mcpURL  string
	verbose bool
	noColor bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lingshu-client",
		Short: "Lingshu Medical Agent Client",
		Long:  "Agent client that discovers medical tools over MCP and drives them with a general-purpose reasoning model",
	}

	askCmd := &cobra.Command{
		Use:   "ask [query]",
		Short: "Ask a medical question through the agent",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAsk,
	}

	askCmd.Flags().StringVar(&mcpURL, "mcp-url", "", "MCP server endpoint (overrides config)")
	askCmd.Flags().BoolVar(&verbose, "verbose", false, "Enable verbose output (debug mode)")
	askCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(askCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := defaultQuery
	if len(args) > 0 {
		query = args[0]
	}

	logLevel := logger.LevelInfo
	if verbose {
		logLevel = logger.LevelDebug
	}
	log := logger.NewLogger(os.Stdout, logLevel)
	if noColor {
		log.SetColorMode(false)
	}

	cfg, err := config.LoadWithDefaults()
	if err != nil {
		return err
	}
	endpoint := cfg.MCPURL()
	if mcpURL != "" {
		endpoint = mcpURL
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Debug("Connecting to MCP server at %s", endpoint)
	provider, err := mcp.NewClient(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to tool provider at %s: %w", endpoint, err)
	}
	defer provider.Close()

	log.Debug("Creating reasoning model client (model: %s, url: %s)", cfg.LLM.Model, cfg.LLM.BaseURL)
	var reasoner llm.Client = openai.NewClient(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL)

	ag := agent.New(reasoner, provider, log)
	out, err := ag.Run(ctx, query)
	if err != nil {
		log.Error("Agent run failed: %v", err)
		return err
	}

	for _, call := range out.Calls {
		if call.Err != nil {
			log.Warn("Call to %s did not complete: %v", call.ToolName, call.Err)
		}
	}

	return nil
}
