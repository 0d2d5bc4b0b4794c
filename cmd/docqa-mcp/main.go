package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/docqa/internal/app"
	"github.com/ternarybob/docqa/internal/common"
)

func main() {
	common.InstallCrashHandler(os.Getenv("DOCQA_CRASH_DIR"))
	defer common.RecoverWithCrashFile()

	configPath := os.Getenv("DOCQA_CONFIG")
	var paths []string
	if configPath != "" {
		paths = append(paths, configPath)
	} else if _, err := os.Stat("docqa.toml"); err == nil {
		paths = append(paths, "docqa.toml")
	}

	config, err := common.LoadFromFiles(paths...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol
	logger := common.InitStderrLogger("warn")

	owner := strings.TrimSpace(config.Owner)
	if owner == "" {
		logger.Fatal().Msg("No owner configured: set DOCQA_OWNER or owner in docqa.toml")
	}

	ctx := context.Background()
	application, err := app.New(ctx, config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	if err := application.RequireProviders(); err != nil {
		logger.Warn().Err(err).Msg("Providers not configured, ask_question will fail")
	}

	mcpServer := newServer(owner, application.DocumentService, application.ChatService, logger)

	// Blocks on stdio
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error().Err(err).Msg("MCP server failed")
	}
}
