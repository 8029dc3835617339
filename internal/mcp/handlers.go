package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/skuloc/internal/chat"
	"github.com/hpungsan/skuloc/internal/config"
	"github.com/hpungsan/skuloc/internal/errors"
	"github.com/hpungsan/skuloc/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg}
}

// Request types for each tool

// LookupRequest represents the arguments for location_lookup.
type LookupRequest struct {
	SKUs []string `json:"skus"`
	Sort string   `json:"sort,omitempty"`
}

// SKURequest represents the arguments for tools addressing one SKU.
type SKURequest struct {
	SKU string `json:"sku"`
}

// ListRequest represents the arguments for location_list.
type ListRequest struct {
	Prefix   string `json:"prefix,omitempty"`
	Location string `json:"location,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// RecentRequest represents the arguments for location_recent.
type RecentRequest struct {
	Limit int `json:"limit,omitempty"`
}

// SetRequest represents the arguments for location_set.
type SetRequest struct {
	SKU      string `json:"sku"`
	Location string `json:"location"`
	Source   string `json:"source,omitempty"`
}

// MoveRequest represents the arguments for location_move.
type MoveRequest struct {
	FromLocation *string `json:"from_location,omitempty"`
	Prefix       *string `json:"prefix,omitempty"`
	ToLocation   string  `json:"to_location"`
	Source       string  `json:"source,omitempty"`
}

// BulkDeleteRequest represents the arguments for location_bulk_delete.
type BulkDeleteRequest struct {
	Prefix   *string `json:"prefix,omitempty"`
	Location *string `json:"location,omitempty"`
}

// ClearRequest represents the arguments for location_clear.
type ClearRequest struct {
	Confirm bool `json:"confirm"`
}

// PathRequest represents the arguments for location_export and location_import.
type PathRequest struct {
	Path string `json:"path,omitempty"`
}

// ChatRequest represents the arguments for chat_parse and chat_ingest.
type ChatRequest struct {
	Path           string `json:"path"`
	JSONPath       string `json:"json_path,omitempty"`
	CSVPath        string `json:"csv_path,omitempty"`
	IncludeMapping *bool  `json:"include_mapping,omitempty"`
}

// ParseResponse is the chat_parse result. Mapping is omitted when the
// caller sets include_mapping=false.
type ParseResponse struct {
	Count   int              `json:"count"`
	Mapping *chat.Mapping    `json:"mapping,omitempty"`
	Stats   chat.Stats       `json:"stats"`
	Sinks   []ops.SinkResult `json:"sinks"`
}

// Handler implementations

// HandleLookup handles the location_lookup tool call.
func (h *Handlers) HandleLookup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LookupRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	sort := input.Sort
	if sort == "" {
		sort = h.cfg.DefaultSort
	}

	result, err := ops.Lookup(ctx, h.db, ops.LookupInput{SKUs: input.SKUs, Sort: sort})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleGet handles the location_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SKURequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Get(ctx, h.db, ops.GetInput{SKU: input.SKU})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleList handles the location_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{
		Prefix:   input.Prefix,
		Location: input.Location,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRecent handles the location_recent tool call.
func (h *Handlers) HandleRecent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RecentRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Recent(ctx, h.db, ops.RecentInput{Limit: input.Limit})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSet handles the location_set tool call.
func (h *Handlers) HandleSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Set(ctx, h.db, ops.SetInput{
		SKU:      input.SKU,
		Location: input.Location,
		Source:   input.Source,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleMove handles the location_move tool call.
func (h *Handlers) HandleMove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MoveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Move(ctx, h.db, ops.MoveInput{
		FromLocation: input.FromLocation,
		Prefix:       input.Prefix,
		ToLocation:   input.ToLocation,
		Source:       input.Source,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleDelete handles the location_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SKURequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Delete(ctx, h.db, ops.DeleteInput{SKU: input.SKU})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleBulkDelete handles the location_bulk_delete tool call.
func (h *Handlers) HandleBulkDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BulkDeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.BulkDelete(ctx, h.db, ops.BulkDeleteInput{
		Prefix:   input.Prefix,
		Location: input.Location,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleClear handles the location_clear tool call.
func (h *Handlers) HandleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ClearRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Clear(ctx, h.db, ops.ClearInput{Confirm: input.Confirm})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleExport handles the location_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PathRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.db, h.cfg, ops.ExportInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleImport handles the location_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PathRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Import(ctx, h.db, h.cfg, ops.ImportInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleStats handles the location_stats tool call.
func (h *Handlers) HandleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Stats(ctx, h.db)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleParse handles the chat_parse tool call.
func (h *Handlers) HandleParse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ChatRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Parse(ctx, h.cfg, ops.ParseInput{
		Path:     input.Path,
		JSONPath: input.JSONPath,
		CSVPath:  input.CSVPath,
	})
	if err != nil {
		return errorResult(err), nil
	}

	resp := ParseResponse{
		Count: result.Count,
		Stats: result.Stats,
		Sinks: result.Sinks,
	}
	if input.IncludeMapping == nil || *input.IncludeMapping {
		resp.Mapping = result.Mapping
	}
	return successResult(resp)
}

// HandleIngest handles the chat_ingest tool call.
func (h *Handlers) HandleIngest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ChatRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Ingest(ctx, h.db, h.cfg, ops.IngestInput{
		Path:     input.Path,
		JSONPath: input.JSONPath,
		CSVPath:  input.CSVPath,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error messages and details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	errorObj := map[string]any{
		"code":    string(errors.ErrInternal),
		"message": "an internal error occurred",
		"status":  500,
	}

	var sErr *errors.SkulocError
	if errors.As(err, &sErr) && sErr.Code != errors.ErrInternal {
		msg := sErr.Message
		// Keep context added by wrapping, e.g. "entry 3: ..."
		if prefix := strings.TrimSuffix(err.Error(), sErr.Error()); prefix != err.Error() {
			msg = prefix + msg
		}
		errorObj["code"] = string(sErr.Code)
		errorObj["message"] = msg
		errorObj["status"] = sErr.Status
		if sErr.Details != nil {
			errorObj["details"] = sErr.Details
		}
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
