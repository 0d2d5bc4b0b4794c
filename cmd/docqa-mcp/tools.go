package main

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
)

// newServer registers the docqa tools for a single owner
func newServer(owner string, documents interfaces.DocumentService, chats interfaces.ChatService, logger arbor.ILogger) *server.MCPServer {
	mcpServer := server.NewMCPServer(
		"docqa",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createAskQuestionTool(), handleAskQuestion(owner, chats, logger))
	mcpServer.AddTool(createListDocumentsTool(), handleListDocuments(owner, documents, logger))
	mcpServer.AddTool(createListChatsTool(), handleListChats(owner, chats, logger))
	mcpServer.AddTool(createGetChatTool(), handleGetChat(owner, chats, logger))

	return mcpServer
}

// createAskQuestionTool returns the ask_question tool definition
func createAskQuestionTool() mcp.Tool {
	return mcp.NewTool("ask_question",
		mcp.WithDescription("Answer a question from the owner's ingested documents, citing the source documents"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Natural language question"),
		),
		mcp.WithString("chat_id",
			mcp.Description("Chat to continue (format: chat_{uuid}); omit to start a new chat"),
		),
	)
}

// createListDocumentsTool returns the list_documents tool definition
func createListDocumentsTool() mcp.Tool {
	return mcp.NewTool("list_documents",
		mcp.WithDescription("List the owner's ingested documents, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 50)"),
		),
	)
}

// createListChatsTool returns the list_chats tool definition
func createListChatsTool() mcp.Tool {
	return mcp.NewTool("list_chats",
		mcp.WithDescription("List the owner's chats, most recently updated first"),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 20)"),
		),
	)
}

// createGetChatTool returns the get_chat tool definition
func createGetChatTool() mcp.Tool {
	return mcp.NewTool("get_chat",
		mcp.WithDescription("Retrieve a chat transcript by ID"),
		mcp.WithString("chat_id",
			mcp.Required(),
			mcp.Description("Chat ID (format: chat_{uuid})"),
		),
	)
}
