package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	stateline "github.com/stateline-dev/stateline"
	"github.com/stateline-dev/stateline/internal/config"
	"github.com/stateline-dev/stateline/internal/logging"
	mcpAdapter "github.com/stateline-dev/stateline/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the Stateline service as an MCP Server.
This allows AI agents to define workflows and drive instances as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfgPath, _ := cmd.Flags().GetString("config")
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		cfg := config.Default()
		if cfgPath != "" {
			var err error
			cfg, err = config.Load(cfgPath)
			if err != nil {
				log.Fatalf("Error loading config: %v", err)
			}
		}

		level, err := cfg.SlogLevel()
		if err != nil {
			log.Fatalf("Error in config: %v", err)
		}
		// Stdout carries MCP traffic on stdio transport; the logger writes to
		// stderr.
		logger := logging.New(level)

		store, locker, cleanup, err := buildStore(cfg)
		if err != nil {
			log.Fatalf("Error building store: %v", err)
		}
		defer cleanup()

		opts := []stateline.Option{stateline.WithLogger(logger)}
		if locker != nil {
			opts = append(opts, stateline.WithLocker(locker))
		}
		svc := stateline.New(store, opts...)

		server := mcpAdapter.NewServer(svc)

		switch transport {
		case "sse":
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := server.ServeSSE(ctx, port); err != nil {
				log.Fatalf("MCP SSE server error: %v", err)
			}
		default:
			if err := server.ServeStdio(); err != nil {
				log.Fatalf("MCP stdio server error: %v", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport to use: stdio or sse")
	mcpCmd.Flags().Int("port", 8090, "Port for the SSE transport")
}
