package main

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
)

// handleAskQuestion implements the ask_question tool
func handleAskQuestion(owner string, chats interfaces.ChatService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil || strings.TrimSpace(question) == "" {
			return mcp.NewToolResultError("Error: question parameter is required"), nil
		}

		resp, err := chats.Ask(common.WithOwner(ctx, owner), &interfaces.AskRequest{
			ChatID:   request.GetString("chat_id", ""),
			Question: question,
		})
		if err != nil {
			logger.Error().Err(err).Msg("ask_question failed")
			return mcp.NewToolResultError(common.UserMessage(err)), nil
		}

		return mcp.NewToolResultText(formatAnswer(resp)), nil
	}
}

// handleListDocuments implements the list_documents tool
func handleListDocuments(owner string, documents interfaces.DocumentService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := clampLimit(request.GetInt("limit", 50), 200)

		docs, err := documents.List(common.WithOwner(ctx, owner))
		if err != nil {
			logger.Error().Err(err).Msg("list_documents failed")
			return mcp.NewToolResultError(common.UserMessage(err)), nil
		}
		if len(docs) > limit {
			docs = docs[:limit]
		}

		return mcp.NewToolResultText(formatDocuments(docs)), nil
	}
}

// handleListChats implements the list_chats tool
func handleListChats(owner string, chats interfaces.ChatService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := clampLimit(request.GetInt("limit", 20), 100)

		list, err := chats.ListChats(common.WithOwner(ctx, owner))
		if err != nil {
			logger.Error().Err(err).Msg("list_chats failed")
			return mcp.NewToolResultError(common.UserMessage(err)), nil
		}
		if len(list) > limit {
			list = list[:limit]
		}

		return mcp.NewToolResultText(formatChats(list)), nil
	}
}

// handleGetChat implements the get_chat tool
func handleGetChat(owner string, chats interfaces.ChatService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		chatID, err := request.RequireString("chat_id")
		if err != nil || chatID == "" {
			return mcp.NewToolResultError("Error: chat_id parameter is required"), nil
		}

		chat, err := chats.GetChat(common.WithOwner(ctx, owner), chatID)
		if err != nil {
			logger.Error().Err(err).Str("chat_id", chatID).Msg("get_chat failed")
			return mcp.NewToolResultError(common.UserMessage(err)), nil
		}

		return mcp.NewToolResultText(formatChat(chat)), nil
	}
}

func clampLimit(limit, maxLimit int) int {
	if limit <= 0 {
		return 1
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
