package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/tangent/internal/config"
)

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	return path
}

func TestNewCLIApp_Commands(t *testing.T) {
	app := newCLIApp(nil, config.DefaultConfig())

	want := []string{"list", "lookup", "remove", "purge", "check", "type", "revise", "serve"}
	found := make(map[string]bool)
	for _, cmd := range app.Commands {
		found[cmd.Name] = true
	}
	for _, name := range want {
		if !found[name] {
			t.Errorf("missing command %q", name)
		}
	}
}

func TestCLI_TypeAndLookup(t *testing.T) {
	path := writeDoc(t, "")
	app := newCLIApp(nil, config.DefaultConfig())

	err := app.Run([]string{"tangent", "type", "--file", path, "--script", "Hi ||aside|| bye"})
	if err != nil {
		t.Fatalf("type failed: %v", err)
	}

	saved, _ := os.ReadFile(path)
	if !strings.Contains(string(saved), "🚪[") {
		t.Errorf("document has no door marker:\n%s", saved)
	}
	if !strings.Contains(string(saved), "aside") {
		t.Errorf("capture lost:\n%s", saved)
	}
}

func TestCLI_LookupMissing(t *testing.T) {
	path := writeDoc(t, "plain text")
	app := newCLIApp(nil, config.DefaultConfig())

	err := app.Run([]string{"tangent", "lookup", "--file", path, "ghost"})
	if err == nil {
		t.Fatal("lookup of a missing portal succeeded")
	}
	if !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Errorf("err = %v, want NOT_FOUND code in message", err)
	}
}

func TestCLI_CheckMissingFile(t *testing.T) {
	app := newCLIApp(nil, config.DefaultConfig())

	err := app.Run([]string{"tangent", "check", "--file", filepath.Join(t.TempDir(), "absent.md")})
	if err == nil {
		t.Fatal("check of a missing document succeeded")
	}
	if !strings.Contains(err.Error(), "INVALID_REQUEST") {
		t.Errorf("err = %v, want INVALID_REQUEST code in message", err)
	}
}

func TestCLIMode_Detection(t *testing.T) {
	orig := os.Args
	defer func() { os.Args = orig }()

	os.Args = []string{"tangent", "list"}
	if !isCLIMode() {
		t.Error("list should run in CLI mode")
	}

	os.Args = []string{"tangent"}
	if isCLIMode() {
		t.Error("no args should run the MCP server")
	}

	os.Args = []string{"tangent", "--help"}
	if !isCLIMode() || !isHelpOrVersion() {
		t.Error("--help should run in CLI mode")
	}
}
