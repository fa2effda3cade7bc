package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Trigger != "||" {
		t.Errorf("Trigger = %q, want ||", cfg.Trigger)
	}
	if cfg.MarkerGlyph != "🚪" {
		t.Errorf("MarkerGlyph = %q, want 🚪", cfg.MarkerGlyph)
	}
	if cfg.TriggerWindowMs != 200 {
		t.Errorf("TriggerWindowMs = %d, want 200", cfg.TriggerWindowMs)
	}
	if cfg.Backend != BackendSection {
		t.Errorf("Backend = %q, want section", cfg.Backend)
	}
	if cfg.CommitKey != "Escape" {
		t.Errorf("CommitKey = %q, want Escape", cfg.CommitKey)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Trigger != "||" || cfg.Backend != BackendSection {
		t.Errorf("missing file did not yield defaults: %+v", cfg)
	}
}

func TestLoad_PartialOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, filepath.Join(dir, "config.json"), `{"trigger": ">>", "trigger_window_ms": 500}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Trigger != ">>" {
		t.Errorf("Trigger = %q, want >>", cfg.Trigger)
	}
	if cfg.TriggerWindowMs != 500 {
		t.Errorf("TriggerWindowMs = %d, want 500", cfg.TriggerWindowMs)
	}
	// Unset fields keep defaults.
	if cfg.MarkerGlyph != "🚪" {
		t.Errorf("MarkerGlyph = %q, want default", cfg.MarkerGlyph)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, filepath.Join(dir, "config.json"), `{not json`)

	if _, err := Load(dir); err == nil {
		t.Error("Load accepted invalid JSON")
	}
}

func TestMerge_RepoOverridesGlobal(t *testing.T) {
	base := &Config{Trigger: "||", Backend: "section", TriggerWindowMs: 200}
	overlay := &Config{Backend: "sqlite"}

	merged := Merge(base, overlay)
	if merged.Backend != "sqlite" {
		t.Errorf("Backend = %q, want sqlite", merged.Backend)
	}
	if merged.Trigger != "||" {
		t.Errorf("Trigger = %q, want base value", merged.Trigger)
	}
	if merged.TriggerWindowMs != 200 {
		t.Errorf("TriggerWindowMs = %d, want base value", merged.TriggerWindowMs)
	}
}

func TestMerge_DisabledToolsDeduplicated(t *testing.T) {
	base := &Config{DisabledTools: []string{"portal_type", "portal_purge"}}
	overlay := &Config{DisabledTools: []string{"portal_purge", " portal_check "}}

	merged := Merge(base, overlay)
	want := []string{"portal_type", "portal_purge", "portal_check"}
	if len(merged.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", merged.DisabledTools, want)
	}
	for i, name := range want {
		if merged.DisabledTools[i] != name {
			t.Errorf("DisabledTools[%d] = %q, want %q", i, merged.DisabledTools[i], name)
		}
	}
}

func TestFindRepoConfig_WalksUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	cfgDir := filepath.Join(root, "a", ".tangent")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(cfgDir, "config.json")
	writeConfig(t, cfgPath, `{}`)

	if got := FindRepoConfig(nested); got != cfgPath {
		t.Errorf("FindRepoConfig = %q, want %q", got, cfgPath)
	}
}

func TestFindRepoConfig_NotFound(t *testing.T) {
	if got := FindRepoConfig(t.TempDir()); got != "" {
		t.Errorf("FindRepoConfig = %q, want empty", got)
	}
}

func TestLoadWithRepo_Precedence(t *testing.T) {
	globalDir := t.TempDir()
	writeConfig(t, filepath.Join(globalDir, "config.json"),
		`{"trigger": ">>", "section_header": "Global"}`)

	repoRoot := t.TempDir()
	repoCfg := filepath.Join(repoRoot, ".tangent")
	if err := os.MkdirAll(repoCfg, 0755); err != nil {
		t.Fatal(err)
	}
	writeConfig(t, filepath.Join(repoCfg, "config.json"), `{"section_header": "Repo"}`)

	cfg, err := LoadWithRepo(globalDir, repoRoot)
	if err != nil {
		t.Fatalf("LoadWithRepo failed: %v", err)
	}
	if cfg.SectionHeader != "Repo" {
		t.Errorf("SectionHeader = %q, want repo value", cfg.SectionHeader)
	}
	if cfg.Trigger != ">>" {
		t.Errorf("Trigger = %q, want global value", cfg.Trigger)
	}
	if cfg.MarkerGlyph != "🚪" {
		t.Errorf("MarkerGlyph = %q, want default", cfg.MarkerGlyph)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = "csv"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted unknown backend")
	}

	cfg = DefaultConfig()
	cfg.Trigger = "  "
	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted blank trigger")
	}

	cfg = DefaultConfig()
	cfg.MarkerGlyph = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validate accepted empty marker glyph")
	}
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
