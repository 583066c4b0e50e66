package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/joseph-ayodele/proof-extractor/internal/common"
	"github.com/joseph-ayodele/proof-extractor/internal/tool"
)

var version = "0.1.0"

func main() {
	// stdout carries the protocol; logs go to stderr
	logger := common.NewLogger(common.LogConfig{Level: os.Getenv("LOG_LEVEL"), Format: "text"}, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("serving MCP over stdio", "version", version)
	if err := tool.NewServer(version).Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("mcp server failed", "error", err)
		os.Exit(1)
	}
}
