package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions. Secrets (LLM key, TTS key, service account JSON) are resolved
// from the environment at startup and are never written to the config file.

// FeedConfig describes a single subscribed calendar feed.
type FeedConfig struct {
	// Name is the route-facing source name (e.g. "work", "family").
	Name string `yaml:"name" json:"name"`
	// URL is the ICS feed endpoint.
	URL string `yaml:"url" json:"url"`
	// Tag optionally pins every event from this feed to one calendar
	// ("work" or "family"). Empty means classify per event.
	Tag string `yaml:"tag,omitempty" json:"tag,omitempty"`
}

// SheetsConfig holds the spreadsheet-as-database coordinates.
type SheetsConfig struct {
	SpreadsheetID string `yaml:"spreadsheet_id" json:"spreadsheet_id"`

	// Tab names inside the spreadsheet.
	RemindersTab    string `yaml:"reminders_tab" json:"reminders_tab"`
	RemindersAddTab string `yaml:"reminders_add_tab" json:"reminders_add_tab"`
	WorkTasksTab    string `yaml:"work_tasks_tab" json:"work_tasks_tab"`
	EmailTab        string `yaml:"email_tab" json:"email_tab"`
}

// WebhookConfig holds the outbound automation webhook endpoints.
type WebhookConfig struct {
	AddWorkTask      string `yaml:"add_work_task" json:"add_work_task"`
	CompleteWorkTask string `yaml:"complete_work_task" json:"complete_work_task"`
	EmailDraft       string `yaml:"email_draft" json:"email_draft"`
}

// AssistantConfig tunes the LLM chat layer.
type AssistantConfig struct {
	Model        string `yaml:"model" json:"model"`
	SystemPrompt string `yaml:"system_prompt,omitempty" json:"system_prompt,omitempty"`
}

// TTSConfig tunes the text-to-speech proxy.
type TTSConfig struct {
	VoiceID string `yaml:"voice_id" json:"voice_id"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA reference timezone used to resolve "today" when a
	// request omits the target date (e.g. "America/Chicago").
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is a cron-style schedule string (e.g. "*/15 * * * *") used
	// to pre-warm the feed caches. Empty disables background refresh.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// Feeds is the list of subscribed calendar feeds.
	Feeds []FeedConfig `yaml:"feeds" json:"feeds"`

	Sheets    SheetsConfig    `yaml:"sheets" json:"sheets"`
	Webhooks  WebhookConfig   `yaml:"webhooks" json:"webhooks"`
	Assistant AssistantConfig `yaml:"assistant" json:"assistant"`
	TTS       TTSConfig       `yaml:"tts" json:"tts"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		Timezone:    "America/Chicago",
		RefreshCron: "*/15 * * * *",
		Feeds:       []FeedConfig{},
		Sheets: SheetsConfig{
			RemindersTab:    "Apple To Jazzy",
			RemindersAddTab: "Add to Apple",
			WorkTasksTab:    "Work Tasks",
			EmailTab:        "Jazzy Email",
		},
		Assistant: AssistantConfig{
			Model: "gpt-4.1",
		},
		TTS: TTSConfig{
			VoiceID: "21m00Tcm4TlvDq8ikWAM",
		},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs (e.g., older versions) still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "America/Chicago"
	}
	if c.Feeds == nil {
		c.Feeds = []FeedConfig{}
	}
	if c.Sheets.RemindersTab == "" {
		c.Sheets.RemindersTab = "Apple To Jazzy"
	}
	if c.Sheets.RemindersAddTab == "" {
		c.Sheets.RemindersAddTab = "Add to Apple"
	}
	if c.Sheets.WorkTasksTab == "" {
		c.Sheets.WorkTasksTab = "Work Tasks"
	}
	if c.Sheets.EmailTab == "" {
		c.Sheets.EmailTab = "Jazzy Email"
	}
	if c.Assistant.Model == "" {
		c.Assistant.Model = "gpt-4.1"
	}
	if c.TTS.VoiceID == "" {
		c.TTS.VoiceID = "21m00Tcm4TlvDq8ikWAM"
	}
}

// Feed returns the feed config with the given name, if present.
func (c *Config) Feed(name string) (FeedConfig, bool) {
	for _, f := range c.Feeds {
		if f.Name == name {
			return f, true
		}
	}
	return FeedConfig{}, false
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".jazzy-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Set permissions to 0600 on temp file before rename.
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	// Rename over the target path.
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
