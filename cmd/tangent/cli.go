package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/tangent/internal/config"
	"github.com/hpungsan/tangent/internal/editor"
	"github.com/hpungsan/tangent/internal/errors"
	"github.com/hpungsan/tangent/internal/ops"
	"github.com/hpungsan/tangent/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "tangent",
		Usage:   "Margin-note portals for markdown documents",
		Version: Version,
		Commands: []*cli.Command{
			listCmd(db, cfg),
			lookupCmd(db, cfg),
			removeCmd(db, cfg),
			purgeCmd(db, cfg),
			checkCmd(db, cfg),
			typeCmd(db, cfg),
			reviseCmd(db, cfg),
			serveCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// fileFlag is the document flag shared by every command.
func fileFlag() *cli.StringFlag {
	return &cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Primary document path", Required: true}
}

// listCmd creates the list command.
func listCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List annotation entries and door markers in a document",
		Flags: []cli.Flag{fileFlag()},
		Action: func(c *cli.Context) error {
			output, err := ops.List(db, cfg, ops.ListInput{Path: c.String("file")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// lookupCmd creates the lookup command.
func lookupCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Usage:     "Fetch the annotation entry for a portal identifier",
		ArgsUsage: "<portal-id>",
		Flags:     []cli.Flag{fileFlag()},
		Action: func(c *cli.Context) error {
			output, err := ops.Lookup(db, cfg, ops.LookupInput{
				Path:     c.String("file"),
				PortalID: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// removeCmd creates the remove command.
func removeCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Delete a portal: its annotation entry and its door marker",
		ArgsUsage: "<portal-id>",
		Flags:     []cli.Flag{fileFlag()},
		Action: func(c *cli.Context) error {
			output, err := ops.Remove(db, cfg, ops.RemoveInput{
				Path:     c.String("file"),
				PortalID: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// purgeCmd creates the purge command.
func purgeCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Delete entries left withdrawn by abandoned edit sessions",
		Flags: []cli.Flag{fileFlag()},
		Action: func(c *cli.Context) error {
			output, err := ops.Purge(db, cfg, ops.PurgeInput{Path: c.String("file")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// checkCmd creates the check command.
func checkCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Audit the one-door-one-entry invariant without changing anything",
		Flags: []cli.Flag{fileFlag()},
		Action: func(c *cli.Context) error {
			output, err := ops.Check(db, cfg, ops.CheckInput{Path: c.String("file")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// typeCmd creates the type command.
func typeCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "type",
		Usage: "Type a script into a document keystroke by keystroke (reads script from stdin unless --script is given)",
		Flags: []cli.Flag{
			fileFlag(),
			&cli.StringFlag{Name: "script", Aliases: []string{"s"}, Usage: "Text to type; trigger sequences open and close portals"},
			&cli.IntFlag{Name: "line", Value: -1, Usage: "Cursor line before typing (zero-based, default end of document)"},
			&cli.IntFlag{Name: "ch", Usage: "Cursor column before typing (zero-based rune offset)"},
		},
		Action: func(c *cli.Context) error {
			script, err := scriptArg(c)
			if err != nil {
				return outputError(err)
			}

			input := ops.ReplayInput{Path: c.String("file"), Script: script}
			if line := c.Int("line"); line >= 0 {
				input.At = &editor.Position{Line: line, Ch: c.Int("ch")}
			}

			output, err := ops.Replay(db, cfg, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// reviseCmd creates the revise command.
func reviseCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "revise",
		Usage:     "Re-open an existing portal, append a script to its content, and commit",
		ArgsUsage: "<portal-id>",
		Flags: []cli.Flag{
			fileFlag(),
			&cli.StringFlag{Name: "script", Aliases: []string{"s"}, Usage: "Text to append (reads from stdin if omitted)"},
		},
		Action: func(c *cli.Context) error {
			script, err := scriptArg(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Revise(db, cfg, ops.ReviseInput{
				Path:     c.String("file"),
				PortalID: c.Args().First(),
				Script:   script,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the annotation web viewer",
		Flags: []cli.Flag{
			fileFlag(),
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Value: 7777, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, cfg, c.String("file"), Version, c.String("bind"), c.Int("port"))
			fmt.Fprintf(os.Stderr, "tangent web viewer listening on http://%s\n", srv.Addr)
			if err := web.Run(srv); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// scriptArg resolves the script from --script or piped stdin. The flag wins
// so tests and shells can avoid pipe plumbing.
func scriptArg(c *cli.Context) (string, error) {
	if c.IsSet("script") {
		return c.String("script"), nil
	}
	if !stdinHasData() {
		return "", errors.NewInvalidRequest("script must be passed via --script or piped on stdin")
	}
	return readStdin()
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if pErr, ok := err.(*errors.PortalError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", pErr.Code, pErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}
