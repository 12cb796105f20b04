// Package config manages the user preferences file.
//
// Preferences live in JSON under the data directory and are merged over
// defaults on load, so files written by older versions keep working when
// new settings appear.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds user-facing preferences. Fields map 1:1 onto the JSON
// file; unknown keys in the file are rejected on load.
type Config struct {
	Language        string `json:"language"`
	Theme           string `json:"theme"`
	VimMode         bool   `json:"vim_mode"`
	AutoSaveDrafts  bool   `json:"auto_save_drafts"`
	ShowAvatars     bool   `json:"show_avatars"`
	ShowIcons       bool   `json:"show_icons"`
	CompactView     bool   `json:"compact_view"`
	MarkdownPreview bool   `json:"markdown_preview"`
	LogLevel        string `json:"log_level"`
	LogPath         string `json:"log_path"`
}

// Defaults returns the configuration used when no file exists yet.
func Defaults() Config {
	return Config{
		Theme:           "dark",
		VimMode:         true,
		AutoSaveDrafts:  true,
		ShowAvatars:     true,
		ShowIcons:       true,
		MarkdownPreview: true,
		LogLevel:        "info",
	}
}

// Load reads the config file at path, merging it over the defaults. A
// missing file yields the defaults and writes them out; an unparsable
// file or one with unknown keys yields the defaults and an error the
// caller may log and ignore.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Defaults()
		return cfg, Save(path, cfg)
	}
	if err != nil {
		return Defaults(), err
	}

	cfg := Defaults()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Defaults(), err
	}
	return cfg, nil
}

// Save writes the config as pretty-printed JSON, creating the parent
// directory when needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
