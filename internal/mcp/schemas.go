package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hyperjump/notesearch/internal/models"
)

// Tool names.
const (
	ToolGetRelevantNotes = "get_relevant_notes"
	ToolNotesStatus      = "notes_status"
)

func getRelevantNotesTool(defaults models.RankingConfig, maxTopK int) mcp.Tool {
	return mcp.Tool{
		Name: ToolGetRelevantNotes,
		Description: "Retrieve the most relevant chunks from the personal note collection for a natural-language query. " +
			"Combines embedding similarity with keyword relevance.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural-language query",
				},
				"top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Number of chunks to return",
					"default":     defaults.TopK,
					"minimum":     1,
					"maximum":     maxTopK,
				},
				"hybrid": map[string]interface{}{
					"type":        "boolean",
					"description": "Re-rank vector hits with keyword relevance",
					"default":     defaults.Hybrid,
				},
				"vector_weight": map[string]interface{}{
					"type":        "number",
					"description": "Weight of vector similarity in the fused score; keyword weight is 1 - vector_weight",
					"default":     defaults.VectorWeight,
					"minimum":     0,
					"maximum":     1,
				},
			},
			Required: []string{"query"},
		},
	}
}

func notesStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolNotesStatus,
		Description: "Report the configured note store: location, collection, record count and disk usage",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
