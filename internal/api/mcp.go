package api

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"pdfchat/internal/chat"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Controller *chat.Controller
}

// NewMCPServer creates an MCP server exposing the chat controller to
// agent hosts: upload a document, ask about it, reset the session, and
// read the transcript as a resource.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"pdfchat",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("pdfchat: load one PDF into the backing store and hold a question/answer conversation about it."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("upload_document",
			mcp.WithDescription("Upload a PDF from the local filesystem and make it the conversation subject. Replaces any previous document and clears the transcript."),
			mcp.WithString("path", mcp.Description("Path to the PDF file"), mcp.Required()),
		),
		mcpUploadDocument(deps),
	)

	s.AddTool(
		mcp.NewTool("ask_document",
			mcp.WithDescription("Ask a question about the uploaded document. The full conversation history is sent with every question."),
			mcp.WithString("question", mcp.Description("The question to ask"), mcp.Required()),
		),
		mcpAskDocument(deps),
	)

	s.AddTool(
		mcp.NewTool("reset_session",
			mcp.WithDescription("Discard the active document, transcript and sources."),
		),
		mcpResetSession(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"chat://transcript",
			"Conversation Transcript",
			mcp.WithResourceDescription("Messages of the current conversation as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceTranscript(deps),
	)

	return s
}

func mcpUploadDocument(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcpError("path is required"), nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return mcpError(fmt.Sprintf("reading file: %v", err)), nil
		}

		docID, err := deps.Controller.Upload(ctx, filepath.Base(path), data)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		return mcpText(fmt.Sprintf("Uploaded document %s", docID)), nil
	}
}

func mcpAskDocument(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return mcpError("question is required"), nil
		}

		reply, sources, err := deps.Controller.Ask(ctx, question)
		if err != nil {
			return mcpError(err.Error()), nil
		}

		var b strings.Builder
		b.WriteString(reply.Content)
		for _, s := range sources {
			b.WriteString("\n")
			if s.PageNumber != nil {
				fmt.Fprintf(&b, "[page %d] ", *s.PageNumber)
			}
			b.WriteString(s.Snippet)
		}
		return mcpText(b.String()), nil
	}
}

func mcpResetSession(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		deps.Controller.Reset()
		return mcpText("Session reset"), nil
	}
}

func mcpResourceTranscript(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(deps.Controller.Messages())
		if err != nil {
			return nil, fmt.Errorf("marshalling transcript: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
