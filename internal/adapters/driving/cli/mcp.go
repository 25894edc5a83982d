package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clauselab/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default, for Claude Desktop)
  clauselab mcp serve

  # Preload standards
  clauselab --doc ./standards mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  clauselab mcp serve --port 8080

PDFs in the folder set with 'clauselab settings watch' are loaded as they appear.

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "clauselab": {
        "command": "/path/to/clauselab",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Document:   documentService,
		Generation: generationService,
		Export:     exportService,
		Viewer:     viewerService,
	}

	server, err := mcp.NewServer(ports, version)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	startBackgroundWatch(ctx, nil)

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
