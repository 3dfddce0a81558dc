package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TechnicallyShaun/audiolink/internal/storage"
)

// exampleOverrides maps a note-taking dialect to the config values that
// differ from the engine defaults.
var exampleOverrides = map[string]func(*Config){
	"obsidian": func(c *Config) {
		c.VaultPath = "./vault"
		c.AudioFolderName = "Audio"
		c.TranscriptsFolderName = "Audio-Transcripts"
		c.LinkFormatStyle = LinkStyleWikilink
	},
	"logseq": func(c *Config) {
		c.VaultPath = "./vault"
		c.AudioFolderName = "assets"
		c.TranscriptsFolderName = "transcripts"
		c.LinkFormatStyle = LinkStyleWikilink
	},
	"foam": func(c *Config) {
		c.VaultPath = "./vault"
		c.AudioFolderName = "attachments"
		c.TranscriptsFolderName = "transcripts"
		c.LinkFormatStyle = LinkStyleStandard
	},
	"generic": func(c *Config) {
		c.VaultPath = "./vault"
		c.AudioFolderName = "media"
		c.TranscriptsFolderName = "transcripts"
		c.LinkFormatStyle = LinkStyleStandard
	},
}

// ExampleKinds lists the supported example configuration kinds.
func ExampleKinds() []string {
	return []string{"obsidian", "logseq", "foam", "generic"}
}

// Example returns a Config preconfigured for the given note-taking app.
func Example(kind string) (*Config, error) {
	override, ok := exampleOverrides[kind]
	if !ok {
		return nil, fmt.Errorf("config: unknown configuration type %q", kind)
	}
	cfg := Default()
	override(cfg)
	return cfg, nil
}

// WriteExample writes an example configuration file for the given kind.
// The serialization format follows the destination extension.
func WriteExample(path, kind string) error {
	cfg, err := Example(kind)
	if err != nil {
		return err
	}

	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(cfg, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		return fmt.Errorf("config: %q: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		return fmt.Errorf("config: marshal example: %w", err)
	}

	return storage.WriteAtomic(path, data)
}
