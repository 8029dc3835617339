package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var lookupToolDef = mcp.NewTool("location_lookup",
	mcp.WithDescription("Find storage locations for one or more SKUs. Tries normalization fallbacks "+
		"(case, spacing, hyphen vs space, base code without style) and flags exact_match. "+
		"Found results are ordered by sort; misses are listed in not_found."),
	mcp.WithArray("skus",
		mcp.Required(),
		mcp.Description("SKUs as typed or scanned, e.g. [\"GY9265 100\", \"ITEM1001\"]"),
		mcp.Items(map[string]any{"type": "string"}),
	),
	mcp.WithString("sort",
		mcp.Description("Result order: location (default), sku, or route (zone letter then bin number, for a pick walk)"),
		mcp.Enum("location", "sku", "route"),
	),
	mcp.WithReadOnlyHintAnnotation(true),
)

var getToolDef = mcp.NewTool("location_get",
	mcp.WithDescription("Fetch the stored record for one SKU by exact (normalized) key, with no fallbacks."),
	mcp.WithString("sku", mcp.Required(), mcp.Description("SKU to fetch")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var listToolDef = mcp.NewTool("location_list",
	mcp.WithDescription("Page through stored records ordered by SKU."),
	mcp.WithString("prefix", mcp.Description("Only SKUs starting with this prefix")),
	mcp.WithString("location", mcp.Description("Only records at this exact location, e.g. A01")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Records to skip (default 0)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var recentToolDef = mcp.NewTool("location_recent",
	mcp.WithDescription("List the most recently added or moved records, newest first."),
	mcp.WithNumber("limit", mcp.Description("How many records (default 10, max 100)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var setToolDef = mcp.NewTool("location_set",
	mcp.WithDescription("Store a location for a SKU, replacing any existing one."),
	mcp.WithString("sku", mcp.Required(), mcp.Description("SKU, e.g. SKU12345 or GY9265 100")),
	mcp.WithString("location", mcp.Required(), mcp.Description("Bin code like A01, or a pair like A01 & A02")),
	mcp.WithString("source", mcp.Description("Where the information came from (default: manual)")),
	mcp.WithIdempotentHintAnnotation(true),
)

var moveToolDef = mcp.NewTool("location_move",
	mcp.WithDescription("Move every SKU matching the filters to a new location. At least one filter is required."),
	mcp.WithString("from_location", mcp.Description("Only records currently at this location")),
	mcp.WithString("prefix", mcp.Description("Only SKUs starting with this prefix")),
	mcp.WithString("to_location", mcp.Required(), mcp.Description("New location")),
	mcp.WithString("source", mcp.Description("Where the move came from (default: manual)")),
)

var deleteToolDef = mcp.NewTool("location_delete",
	mcp.WithDescription("Remove the stored location for one SKU."),
	mcp.WithString("sku", mcp.Required(), mcp.Description("SKU to remove")),
	mcp.WithDestructiveHintAnnotation(true),
)

var bulkDeleteToolDef = mcp.NewTool("location_bulk_delete",
	mcp.WithDescription("Remove every record matching the filters. At least one filter is required."),
	mcp.WithString("prefix", mcp.Description("Only SKUs starting with this prefix")),
	mcp.WithString("location", mcp.Description("Only records at this location")),
	mcp.WithDestructiveHintAnnotation(true),
)

var clearToolDef = mcp.NewTool("location_clear",
	mcp.WithDescription("Delete every stored record. Requires confirm=true."),
	mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true")),
	mcp.WithDestructiveHintAnnotation(true),
)

var exportToolDef = mcp.NewTool("location_export",
	mcp.WithDescription("Export the record store to a .json mapping or .csv table. "+
		"The file must sit directly in ~/.skuloc/exports or a configured allowed path."),
	mcp.WithString("path", mcp.Description("Output path (default: ~/.skuloc/exports/sku_locations-<timestamp>.json)")),
)

var importToolDef = mcp.NewTool("location_import",
	mcp.WithDescription("Import a .json mapping ({\"SKU\": \"LOC\"} or [{\"sku\", \"location\"}]) or a .csv table "+
		"(optional SKU,Location header) into the record store. Invalid rows are skipped and reported."),
	mcp.WithString("path", mcp.Required(), mcp.Description("File to import")),
)

var statsToolDef = mcp.NewTool("location_stats",
	mcp.WithDescription("Report record count, distinct locations, newest update and SKUs per zone."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var parseToolDef = mcp.NewTool("chat_parse",
	mcp.WithDescription("Extract SKU to location pairs from an exported chat transcript (.txt) without "+
		"touching the store. Optionally writes JSON and CSV sinks; a failed sink is reported, not fatal."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Transcript file")),
	mcp.WithString("json_path", mcp.Description("Optional JSON sink path")),
	mcp.WithString("csv_path", mcp.Description("Optional CSV sink path")),
	mcp.WithBoolean("include_mapping", mcp.Description("Return the extracted mapping in the result (default true)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var ingestToolDef = mcp.NewTool("chat_ingest",
	mcp.WithDescription("Extract SKU to location pairs from a chat transcript and upsert them into the "+
		"record store (last message wins). Optional JSON and CSV sinks."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Transcript file")),
	mcp.WithString("json_path", mcp.Description("Optional JSON sink path")),
	mcp.WithString("csv_path", mcp.Description("Optional CSV sink path")),
)
