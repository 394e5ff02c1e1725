package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/hyperjump/notesearch/internal/models"
	"github.com/hyperjump/notesearch/internal/search"
	"github.com/hyperjump/notesearch/internal/storage"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
)

func (s *Server) handleGetRelevantNotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	topK, err := getInt(args, "top_k", 0)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, err.Error(), nil)
	}
	query := &models.NoteQuery{
		Query: getStringDefault(args, "query", ""),
		TopK:  topK,
	}
	if v, ok := args["hybrid"].(bool); ok {
		query.Hybrid = &v
	}
	if v, ok := args["vector_weight"].(float64); ok {
		query.VectorWeight = &v
	}

	resp, err := s.engine.Search(ctx, query)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrEmptyQuery),
			errors.Is(err, models.ErrInvalidTopK),
			errors.Is(err, models.ErrInvalidVectorWeight),
			search.IsConnectivityError(err):
			return mcp.NewToolResultError(err.Error()), nil
		default:
			s.logger.Error("get_relevant_notes failed", zap.Error(err))
			return nil, newMCPError(ErrorCodeInternalError, "query failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return mcp.NewToolResultText(formatJSON(resp)), nil
}

func (s *Server) handleNotesStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := storage.CollectStatus(ctx, s.engine, s.config)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "status failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return mcp.NewToolResultText(formatJSON(st)), nil
}

func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getInt extracts an integer parameter with a default value. JSON numbers arrive as float64;
// fractional or out-of-range values are rejected.
func getInt(args map[string]interface{}, key string, defaultValue int) (int, error) {
	switch val := args[key].(type) {
	case float64:
		if val != math.Trunc(val) || math.Abs(val) > math.MaxInt32 {
			return 0, fmt.Errorf("%s must be an integer, got %v", key, val)
		}
		return int(val), nil
	case int:
		return val, nil
	}
	return defaultValue, nil
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
