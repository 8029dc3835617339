package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/hpungsan/skuloc/internal/config"
	"github.com/hpungsan/skuloc/internal/db"
	"github.com/hpungsan/skuloc/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"parse": true, "ingest": true,
	"lookup": true, "get": true, "set": true, "move": true,
	"delete": true, "bulk-delete": true, "clear": true,
	"list": true, "recent": true, "stats": true,
	"export": true, "import": true, "serve": true,
	"help": true,
}

// storelessCommands run without opening the database.
var storelessCommands = map[string]bool{"parse": true}

// needsStore reports whether the requested mode uses the record store.
func needsStore() bool {
	return len(os.Args) < 2 || !storelessCommands[os.Args[1]]
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v"
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func printBanner() {
	fmt.Println(`
       _          _
   ___| | ___   _| | ___   ___
  / __| |/ / | | | |/ _ \ / __|
  \__ \   <| |_| | | (_) | (__
  |___/_|\_\\__,_|_|\___/ \___|

  Warehouse SKU locations from chat exports

  Usage: skuloc <command> [options]
         skuloc --help

  MCP server mode requires piped input.`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Help and version need neither config nor database.
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil)
		if err := app.Run(os.Args); err != nil {
			fatal("%v", err)
		}
		return
	}

	baseDir, err := config.DefaultBaseDir()
	if err != nil {
		fatal("could not determine home directory: %v", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		fatal("could not determine working directory: %v", err)
	}

	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fatal("failed to load config: %v", err)
	}

	// stdout carries CLI JSON and the MCP protocol, so logs go to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	if !needsStore() {
		app := newCLIApp(nil, cfg)
		if err := app.Run(os.Args); err != nil {
			fatal("%v", err)
		}
		return
	}

	database, err := db.Init(baseDir)
	if err != nil {
		fatal("failed to initialize database: %v", err)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	if isCLIMode() {
		app := newCLIApp(database, cfg)
		if err := app.Run(os.Args); err != nil {
			database.Close()
			fatal("%v", err)
		}
		return
	}

	// Unknown argument on a terminal is a typo, not an MCP client.
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'skuloc --help' for usage.\n")
		database.Close()
		os.Exit(1)
	}

	if err := mcp.Run(database, cfg, Version); err != nil {
		database.Close()
		fatal("%v", err)
	}
}
