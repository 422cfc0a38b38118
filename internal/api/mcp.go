package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/fairwaylabs/fairway/internal/ingest"
	"github.com/fairwaylabs/fairway/internal/retrieval"
	"github.com/fairwaylabs/fairway/internal/storage"
)

// MCPRetriever abstracts drill search for the MCP layer.
type MCPRetriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]retrieval.DrillChunk, error)
}

// NewMCPServer creates an MCP server exposing the coaching tools and
// resources to MCP-capable clients.
func NewMCPServer(deps AppDeps, retriever MCPRetriever) *server.MCPServer {
	s := server.NewMCPServer(
		"fairway",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("fairway — a personal golf coaching assistant with durable golfer profiles, a drill library, and long-term memory."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("ask_coach",
			mcp.WithDescription("Ask the golf coach a question on behalf of a golfer. The coach remembers the golfer across sessions."),
			mcp.WithString("golfer_id", mcp.Description("Stable identifier for the golfer"), mcp.Required()),
			mcp.WithString("message", mcp.Description("The golfer's question"), mcp.Required()),
		),
		mcpAskCoach(deps),
	)

	s.AddTool(
		mcp.NewTool("golfer_profile",
			mcp.WithDescription("Return the stored profile for a golfer as JSON."),
			mcp.WithString("golfer_id", mcp.Description("Stable identifier for the golfer"), mcp.Required()),
		),
		mcpGolferProfile(deps),
	)

	s.AddTool(
		mcp.NewTool("add_drill",
			mcp.WithDescription("Store drill material in the coaching library for later retrieval."),
			mcp.WithString("title", mcp.Description("Title for the drill entry")),
			mcp.WithString("content", mcp.Description("The drill text to store"), mcp.Required()),
			mcp.WithArray("tags", mcp.Description("Optional tags for categorization")),
		),
		mcpAddDrill(deps),
	)

	s.AddTool(
		mcp.NewTool("find_drills",
			mcp.WithDescription("Semantically search the drill library and return relevant excerpts."),
			mcp.WithString("query", mcp.Description("Search query"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 5)")),
		),
		mcpFindDrills(retriever),
	)

	s.AddTool(
		mcp.NewTool("remember",
			mcp.WithDescription("Store a long-term memory note about a golfer."),
			mcp.WithString("golfer_id", mcp.Description("Stable identifier for the golfer"), mcp.Required()),
			mcp.WithString("note", mcp.Description("The fact to remember"), mcp.Required()),
		),
		mcpRemember(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"golfer://profiles",
			"Golfer Profiles",
			mcp.WithResourceDescription("All known golfer IDs as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceGolfers(deps),
	)

	return s
}

func mcpAskCoach(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		golferID, err := req.RequireString("golfer_id")
		if err != nil {
			return mcpError("golfer_id is required"), nil
		}
		message, err := req.RequireString("message")
		if err != nil {
			return mcpError("message is required"), nil
		}

		sess := deps.Sessions.Get(golferID)
		reply, err := deps.Coach.Respond(ctx, sess, message)
		if err != nil {
			return mcpError(fmt.Sprintf("coach unavailable: %v", err)), nil
		}
		return mcpText(reply), nil
	}
}

func mcpGolferProfile(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		golferID, err := req.RequireString("golfer_id")
		if err != nil {
			return mcpError("golfer_id is required"), nil
		}

		p, err := deps.Profiles.Load(golferID)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load profile: %v", err)), nil
		}
		b, err := json.Marshal(p)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal profile: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpAddDrill(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := req.RequireString("content")
		if err != nil {
			return mcpError("content is required"), nil
		}

		title := req.GetString("title", "")
		tags := req.GetStringSlice("tags", nil)

		tagsJSON := "[]"
		if len(tags) > 0 {
			b, err := json.Marshal(tags)
			if err != nil {
				return mcpError(fmt.Sprintf("failed to marshal tags: %v", err)), nil
			}
			tagsJSON = string(b)
		}

		doc := storage.DrillDoc{
			ID:        uuid.NewString(),
			Title:     title,
			Content:   content,
			Source:    "mcp",
			Tags:      tagsJSON,
			CreatedAt: time.Now().UTC(),
		}
		if err := deps.Store.SaveDrillDoc(doc); err != nil {
			return mcpError(fmt.Sprintf("failed to save: %v", err)), nil
		}

		payload, err := json.Marshal(ingest.EmbedPayload{DrillDocID: doc.ID})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal job payload: %v", err)), nil
		}
		job := storage.Job{
			ID:          uuid.NewString(),
			Type:        ingest.JobTypeDrillEmbed,
			PayloadJSON: string(payload),
		}
		if err := deps.Store.EnqueueJob(job); err != nil {
			return mcpError(fmt.Sprintf("saved drill but failed to queue embedding: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Stored drill %s", doc.ID)), nil
	}
}

func mcpFindDrills(retriever MCPRetriever) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if retriever == nil {
			return mcpError("drill search not available: no embedding model configured"), nil
		}

		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		limit := req.GetInt("limit", 5)
		if limit <= 0 {
			limit = 5
		}
		if limit > 50 {
			limit = 50
		}

		chunks, err := retriever.Retrieve(ctx, query, limit)
		if err != nil {
			return mcpError(fmt.Sprintf("drill search failed: %v", err)), nil
		}
		if len(chunks) == 0 {
			return mcpText("[]"), nil
		}

		type chunkResult struct {
			ID      string  `json:"id"`
			DrillID string  `json:"drill_id"`
			Source  string  `json:"source"`
			Text    string  `json:"text"`
			Score   float32 `json:"score"`
			Tags    string  `json:"tags,omitempty"`
		}

		results := make([]chunkResult, len(chunks))
		for i, c := range chunks {
			results[i] = chunkResult{
				ID:      c.ID,
				DrillID: c.DrillID,
				Source:  c.Source,
				Text:    c.Text,
				Score:   c.Score,
				Tags:    c.Tags,
			}
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpRemember(deps AppDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		golferID, err := req.RequireString("golfer_id")
		if err != nil {
			return mcpError("golfer_id is required"), nil
		}
		note, err := req.RequireString("note")
		if err != nil {
			return mcpError("note is required"), nil
		}
		if utf8.RuneCountInString(note) > 1000 {
			return mcpError("note is too long (max 1000 characters)"), nil
		}

		m := storage.Memory{
			ID:        uuid.NewString(),
			GolferID:  golferID,
			Note:      note,
			CreatedAt: time.Now().UTC(),
		}
		if err := deps.Store.AddMemory(m); err != nil {
			return mcpError(fmt.Sprintf("failed to save note: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Remembered note for golfer %s", golferID)), nil
	}
}

func mcpResourceGolfers(deps AppDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := deps.Store.ListGolferIDs()
		if err != nil {
			return nil, fmt.Errorf("failed to list golfers: %w", err)
		}
		if ids == nil {
			ids = []string{}
		}

		b, err := json.Marshal(ids)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal golfer ids: %w", err)
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
