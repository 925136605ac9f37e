package main

import (
	"context"

	"github.com/spf13/cobra"

	"eightd/internal/logging"
	mcpserver "eightd/internal/mcp"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing the 8D review tools
and the review_8d_prompt prompt. Logs go to stderr.

The server monitors for parent process death. When the client disconnects
the server shuts itself down.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	store, closeFn, err := cfg.OpenKnowledge()
	if err != nil {
		return err
	}
	defer closeFn()

	srv := mcpserver.NewServer(mcpserver.Options{
		Auditor:           newAuditor(),
		Renderer:          newRenderer(""),
		Knowledge:         store,
		GoldenPromptPath:  cfg.Knowledge.GoldenPrompt,
		RequireLogicAudit: cfg.Report.RequireLogicAudit,
		OutputDir:         cfg.Report.OutputDir,
		Version:           version,
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mcpserver.WatchStdin(ctx, cancel)

	logging.New("mcp").Info("starting eightd MCP server over stdio (parent watchdog active)",
		"knowledge", cfg.Knowledge.Backend, "segmentation", cfg.Mode())
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
