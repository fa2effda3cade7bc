package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Backend names for the annotation store.
const (
	BackendSection = "section" // delimited section inside the primary document
	BackendSQLite  = "sqlite"  // companion SQLite store keyed by document identity
)

// Config holds application configuration.
type Config struct {
	// Trigger is the character sequence that opens a capture session.
	Trigger string `json:"trigger,omitempty"`

	// MarkerGlyph is the fixed glyph that prefixes every door marker.
	MarkerGlyph string `json:"marker_glyph,omitempty"`

	// TriggerWindowMs bounds how long a partial trigger sequence stays live.
	// A one-of-two keystroke older than this window is discarded.
	TriggerWindowMs int `json:"trigger_window_ms,omitempty"`

	// PollIntervalMs is the suggested interval for hosts that poll editor
	// state instead of receiving change callbacks.
	PollIntervalMs int `json:"poll_interval_ms,omitempty"`

	// SectionHeader is the heading of the annotation section for the
	// section backend (without the leading hashes).
	SectionHeader string `json:"section_header,omitempty"`

	// Backend selects the annotation store: "section" or "sqlite".
	Backend string `json:"backend,omitempty"`

	// CommitKey is the keystroke that commits an open session.
	CommitKey string `json:"commit_key,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Trigger:         "||",
		MarkerGlyph:     "🚪",
		TriggerWindowMs: 200,
		PollIntervalMs:  500,
		SectionHeader:   "Tangents",
		Backend:         BackendSection,
		CommitKey:       "Escape",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.tangent.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.tangent) and repo
// (.tangent) directories. Repo config is found by walking upward from startDir
// to find the nearest .tangent/config.json. Repo config takes precedence for
// scalar values; arrays are merged (deduplicated). Either or both configs may
// be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repoConfigPath := FindRepoConfig(startDir)
	repo, err := loadFileRaw(repoConfigPath)
	if err != nil {
		return nil, err
	}

	// Apply defaults, then global, then repo
	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .tangent/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".tangent", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root, not found
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.Trigger = overrideString(base.Trigger, overlay.Trigger)
	result.MarkerGlyph = overrideString(base.MarkerGlyph, overlay.MarkerGlyph)
	result.SectionHeader = overrideString(base.SectionHeader, overlay.SectionHeader)
	result.Backend = overrideString(base.Backend, overlay.Backend)
	result.CommitKey = overrideString(base.CommitKey, overlay.CommitKey)

	result.TriggerWindowMs = overlay.TriggerWindowMs
	if result.TriggerWindowMs == 0 {
		result.TriggerWindowMs = base.TriggerWindowMs
	}

	result.PollIntervalMs = overlay.PollIntervalMs
	if result.PollIntervalMs == 0 {
		result.PollIntervalMs = base.PollIntervalMs
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// Validate checks configuration values that have a constrained domain.
func (c *Config) Validate() error {
	if c.Backend != BackendSection && c.Backend != BackendSQLite {
		return errors.New("backend must be one of: section, sqlite")
	}
	if strings.TrimSpace(c.Trigger) == "" {
		return errors.New("trigger must not be empty")
	}
	if strings.TrimSpace(c.MarkerGlyph) == "" {
		return errors.New("marker_glyph must not be empty")
	}
	return nil
}

// overrideString returns overlay if non-empty, else base.
func overrideString(base, overlay string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
