// Package config loads the operator settings file. Settings cover the
// remote data store, the target window, safety hotkeys, and typing pace;
// flow definitions live in their own file (see flowdef).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the operator-editable configuration.
type Settings struct {
	Supabase SupabaseSettings `yaml:"supabase"`
	ERP      ERPSettings      `yaml:"erp"`
	Safety   SafetySettings   `yaml:"safety"`
	Typing   TypingSettings   `yaml:"typing"`
	Ledger   LedgerSettings   `yaml:"ledger"`

	// FlowsFile overrides the built-in flow definitions when set.
	FlowsFile string `yaml:"flows_file"`

	// ScreenshotsDir holds the template images screenshot_click steps
	// reference.
	ScreenshotsDir string `yaml:"screenshots_dir"`
}

// SupabaseSettings locate the remote data store.
type SupabaseSettings struct {
	URL     string `yaml:"url"`
	AnonKey string `yaml:"anon_key"`
}

// ERPSettings describe the target application.
type ERPSettings struct {
	WindowTitle string `yaml:"window_title"`
}

// SafetySettings configure the pause/stop hotkeys and the pre-run focus
// check.
type SafetySettings struct {
	HotkeyPause string `yaml:"hotkey_pause"`
	HotkeyStop  string `yaml:"hotkey_stop"`
	FocusCheck  bool   `yaml:"focus_check"`
}

// TypingSettings pace the synthesized input.
type TypingSettings struct {
	KeyIntervalMS  int `yaml:"key_interval_ms"`
	SettleMS       int `yaml:"settle_ms"`
	ImagePollMS    int `yaml:"image_poll_ms"`
	ImageTimeoutMS int `yaml:"image_timeout_ms"`
}

// LedgerSettings pick the dedup store. Remote uses the sync_log table in
// the Supabase project; otherwise the local SQLite file at Path is used.
type LedgerSettings struct {
	Remote bool   `yaml:"remote"`
	Path   string `yaml:"path"`
	Target string `yaml:"target_system"`
}

// Default returns the settings used when no file is present.
func Default() Settings {
	return Settings{
		ERP: ERPSettings{WindowTitle: "ERP System"},
		Safety: SafetySettings{
			HotkeyPause: "f9",
			HotkeyStop:  "f10",
			FocusCheck:  true,
		},
		Typing: TypingSettings{
			KeyIntervalMS:  30,
			SettleMS:       200,
			ImagePollMS:    500,
			ImageTimeoutMS: 10000,
		},
		Ledger: LedgerSettings{
			Path:   "sync_ledger.db",
			Target: "legacy_erp",
		},
		ScreenshotsDir: "screenshots",
	}
}

// Load reads settings from path, layering the file over the defaults. A
// missing file is not an error; the defaults are returned as-is.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decode settings %s: %w", path, err)
	}
	return s, nil
}

// KeyInterval returns the per-keystroke delay as a duration.
func (t TypingSettings) KeyInterval() time.Duration {
	return time.Duration(t.KeyIntervalMS) * time.Millisecond
}

// Settle returns the post-action delay as a duration.
func (t TypingSettings) Settle() time.Duration {
	return time.Duration(t.SettleMS) * time.Millisecond
}

// ImagePoll returns the template-locate retry interval.
func (t TypingSettings) ImagePoll() time.Duration {
	return time.Duration(t.ImagePollMS) * time.Millisecond
}

// ImageTimeout returns the template-locate give-up duration.
func (t TypingSettings) ImageTimeout() time.Duration {
	return time.Duration(t.ImageTimeoutMS) * time.Millisecond
}
