package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/skuloc/internal/config"
	"github.com/hpungsan/skuloc/internal/errors"
	"github.com/hpungsan/skuloc/internal/ops"
	"github.com/hpungsan/skuloc/internal/web"
)

// maxStdinBytes caps SKU lists piped into lookup.
const maxStdinBytes = 1 << 20

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	trusted := trustedConfig(cfg)
	app := &cli.App{
		Name:    "skuloc",
		Usage:   "Warehouse SKU locations from chat exports",
		Version: Version,
		Commands: []*cli.Command{
			parseCmd(trusted),
			ingestCmd(db, trusted),
			lookupCmd(db, cfg),
			getCmd(db),
			setCmd(db),
			moveCmd(db),
			deleteCmd(db),
			bulkDeleteCmd(db),
			listCmd(db),
			recentCmd(db),
			statsCmd(db),
			exportCmd(db, trusted),
			importCmd(db, trusted),
			clearCmd(db),
			serveCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// trustedConfig returns a copy of cfg for file access on behalf of the
// local user: directory restrictions are lifted, symlink checks remain.
func trustedConfig(cfg *config.Config) *config.Config {
	if cfg == nil {
		return nil
	}
	c := *cfg
	c.AllowUnsafePaths = true
	return &c
}

// parseCmd creates the parse command.
func parseCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Extract SKU locations from a chat export and write JSON and CSV files",
		ArgsUsage: "<transcript>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "json", Value: ops.DefaultJSONSink, Usage: "JSON output path"},
			&cli.StringFlag{Name: "csv", Value: ops.DefaultCSVSink, Usage: "CSV output path"},
			&cli.BoolFlag{Name: "no-json", Usage: "Skip the JSON output"},
			&cli.BoolFlag{Name: "no-csv", Usage: "Skip the CSV output"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("transcript path is required"))
			}

			jsonPath, csvPath := c.String("json"), c.String("csv")
			if c.Bool("no-json") {
				jsonPath = ""
			}
			if c.Bool("no-csv") {
				csvPath = ""
			}

			output, err := ops.Extract(c.Context, cfg, c.Args().First())
			if err != nil {
				return outputError(err)
			}

			w := c.App.Writer
			fmt.Fprintf(w, "Found %d unique SKU-location pairs\n", output.Count)

			output.Sinks = ops.WriteSinks(cfg, jsonPath, csvPath, output.Mapping)
			for _, s := range output.Sinks {
				if s.OK() {
					fmt.Fprintf(w, "Exported %d SKU-location pairs to %s\n", s.Count, s.Path)
				} else {
					fmt.Fprintf(c.App.ErrWriter, "Failed to write %s: %s\n", s.Path, s.Error)
				}
			}

			return sinkStatus(output.Sinks)
		},
	}
}

// ingestCmd creates the ingest command.
func ingestCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Usage:     "Extract SKU locations from a chat export into the store",
		ArgsUsage: "<transcript>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "json", Usage: "Also write a JSON mapping to this path"},
			&cli.StringFlag{Name: "csv", Usage: "Also write a CSV table to this path"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("transcript path is required"))
			}

			output, err := ops.Ingest(c.Context, db, cfg, ops.IngestInput{
				Path:     c.Args().First(),
				JSONPath: c.String("json"),
				CSVPath:  c.String("csv"),
			})
			if err != nil {
				return outputError(err)
			}

			if err := outputJSON(c, output); err != nil {
				return err
			}
			return sinkStatus(output.Sinks)
		},
	}
}

// lookupCmd creates the lookup command.
func lookupCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	defaultSort := "location"
	if cfg != nil && cfg.DefaultSort != "" {
		defaultSort = cfg.DefaultSort
	}
	return &cli.Command{
		Name:      "lookup",
		Usage:     "Find the location of one or more SKUs (reads SKUs from stdin when piped)",
		ArgsUsage: "<sku>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "sort", Aliases: []string{"s"}, Value: defaultSort, Usage: "Result order: location|sku|route"},
		},
		Action: func(c *cli.Context) error {
			skus := ops.SplitSKUs(strings.Join(c.Args().Slice(), "\n"))
			if len(skus) == 0 && stdinHasData() {
				text, err := readStdin(maxStdinBytes)
				if err != nil {
					return outputError(err)
				}
				skus = ops.SplitSKUs(text)
			}

			output, err := ops.Lookup(c.Context, db, ops.LookupInput{SKUs: skus, Sort: c.String("sort")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// getCmd creates the get command.
func getCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get the stored record for a SKU (exact match)",
		ArgsUsage: "<sku>",
		Action: func(c *cli.Context) error {
			output, err := ops.Get(c.Context, db, ops.GetInput{SKU: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// setCmd creates the set command.
func setCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Store a location for a SKU",
		ArgsUsage: "<sku> <location>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "source", Usage: "Record source (default: manual)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return outputError(errors.NewInvalidRequest("sku and location are required"))
			}

			output, err := ops.Set(c.Context, db, ops.SetInput{
				SKU:      c.Args().Get(0),
				Location: strings.Join(c.Args().Slice()[1:], " "),
				Source:   c.String("source"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// moveCmd creates the move command.
func moveCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "move",
		Usage: "Relocate every record matching the filters",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Aliases: []string{"t"}, Required: true, Usage: "New location"},
			&cli.StringFlag{Name: "from", Aliases: []string{"f"}, Usage: "Filter by current location"},
			&cli.StringFlag{Name: "prefix", Aliases: []string{"p"}, Usage: "Filter by SKU prefix"},
			&cli.StringFlag{Name: "source", Usage: "Record source (default: manual)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.MoveInput{
				FromLocation: optionalString(c, "from"),
				Prefix:       optionalString(c, "prefix"),
				ToLocation:   c.String("to"),
				Source:       c.String("source"),
			}

			output, err := ops.Move(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Remove the stored location of a SKU",
		ArgsUsage: "<sku>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, db, ops.DeleteInput{SKU: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// bulkDeleteCmd creates the bulk-delete command.
func bulkDeleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "bulk-delete",
		Usage: "Remove every record matching the filters (at least one filter required)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "prefix", Aliases: []string{"p"}, Usage: "Filter by SKU prefix"},
			&cli.StringFlag{Name: "location", Aliases: []string{"l"}, Usage: "Filter by location"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.BulkDelete(c.Context, db, ops.BulkDeleteInput{
				Prefix:   optionalString(c, "prefix"),
				Location: optionalString(c, "location"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stored records ordered by SKU",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "prefix", Aliases: []string{"p"}, Usage: "Filter by SKU prefix"},
			&cli.StringFlag{Name: "location", Usage: "Filter by location"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, db, ops.ListInput{
				Prefix:   c.String("prefix"),
				Location: c.String("location"),
				Limit:    c.Int("limit"),
				Offset:   c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// recentCmd creates the recent command.
func recentCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "recent",
		Usage: "Show the most recently updated records",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultRecentLimit, Usage: "Maximum items to return"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Recent(c.Context, db, ops.RecentInput{Limit: c.Int("limit")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// statsCmd creates the stats command.
func statsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show record totals and per-zone counts",
		Action: func(c *cli.Context) error {
			output, err := ops.Stats(c.Context, db)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the store to a JSON mapping or CSV table",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path, .json or .csv (default: ~/.skuloc/exports/sku_locations-<timestamp>.json)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, db, cfg, ops.ExportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import a JSON mapping or CSV table into the store",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path, .json or .csv"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(c.Context, db, cfg, ops.ImportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// clearCmd creates the clear command.
func clearCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete every stored record",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "confirm", Usage: "Required to actually clear the store"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Clear(c.Context, db, ops.ClearInput{Confirm: c.Bool("confirm")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	bind, port := "127.0.0.1", 8377
	if cfg != nil {
		bind, port = cfg.WebBind, cfg.WebPort
	}
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: bind, Usage: "Address to listen on"},
			&cli.IntFlag{Name: "port", Value: port, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv, err := web.NewServer(db, cfg, Version, c.String("bind"), c.Int("port"))
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON writes v to the app's stdout as indented JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var sErr *errors.SkulocError
	if errors.As(err, &sErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", sErr.Code, sErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// sinkStatus turns failed sinks into an exit error after all output is written.
func sinkStatus(sinks []ops.SinkResult) error {
	var failed []string
	for _, s := range sinks {
		if !s.OK() {
			failed = append(failed, string(s.Sink))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return cli.Exit(fmt.Sprintf("[%s] failed sinks: %s", errors.ErrSinkWriteFailed, strings.Join(failed, ", ")), 1)
}

// optionalString returns a pointer to the flag value, or nil when unset.
func optionalString(c *cli.Context, name string) *string {
	if !c.IsSet(name) {
		return nil
	}
	v := c.String(name)
	return &v
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads stdin up to maxBytes.
func readStdin(maxBytes int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, maxBytes+1))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if int64(len(data)) > maxBytes {
		return "", errors.NewInvalidRequest(fmt.Sprintf("stdin exceeds %d bytes", maxBytes))
	}
	return strings.TrimSpace(string(data)), nil
}
