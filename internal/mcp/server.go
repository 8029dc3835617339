package mcp

import (
	"database/sql"
	"log/slog"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/skuloc/internal/config"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"location", "chat"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"location_lookup": {
		def:     lookupToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLookup },
	},
	"location_get": {
		def:     getToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGet },
	},
	"location_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"location_recent": {
		def:     recentToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecent },
	},
	"location_set": {
		def:     setToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSet },
	},
	"location_move": {
		def:     moveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMove },
	},
	"location_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"location_bulk_delete": {
		def:     bulkDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBulkDelete },
	},
	"location_clear": {
		def:     clearToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleClear },
	},
	"location_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"location_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
	"location_stats": {
		def:     statsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStats },
	},
	"chat_parse": {
		def:     parseToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleParse },
	},
	"chat_ingest": {
		def:     ingestToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleIngest },
	},
}

// AllToolNames returns all valid tool names, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if !slices.Contains(KnownTypes, name) {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "chat_parse" → "chat").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if slices.Contains(types, GetTypeForTool(name)) {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with skuloc tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration. Unknown names are logged and ignored.
func NewServer(db *sql.DB, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"skuloc",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg)

	if unknown := ValidateDisabledTypes(cfg.DisabledTypes); len(unknown) > 0 {
		slog.Warn("ignoring unknown disabled_types", "types", unknown, "known", KnownTypes)
	}
	if unknown := ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		slog.Warn("ignoring unknown disabled_tools", "tools", unknown)
	}

	// Build set of disabled tools: first expand types, then add individual tools
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, version string) error {
	s := NewServer(db, cfg, version)
	return server.ServeStdio(s)
}
