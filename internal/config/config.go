// Package config provides the configuration schema, loader, and validation
// for the audiolink engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// LinkStyle selects how transcript links are rendered into notes.
type LinkStyle string

const (
	// LinkStyleWikilink renders `prefix [[name_transcript]]`.
	LinkStyleWikilink LinkStyle = "wikilink"

	// LinkStyleStandard renders `prefix [name_transcript](name_transcript.md)`.
	LinkStyleStandard LinkStyle = "standard"

	// LinkStyleCustom renders through the configured link template.
	LinkStyleCustom LinkStyle = "custom"
)

// IsValid reports whether s is a recognised link style.
func (s LinkStyle) IsValid() bool {
	switch s {
	case LinkStyleWikilink, LinkStyleStandard, LinkStyleCustom:
		return true
	}
	return false
}

// ProviderMode selects the speech-recognition backend.
type ProviderMode string

const (
	// ProviderModeCLI shells out to the local whisper executable.
	ProviderModeCLI ProviderMode = "cli"

	// ProviderModeASR posts audio to a whisper-asr-webservice instance.
	ProviderModeASR ProviderMode = "asr"
)

// IsValid reports whether m is a recognised provider mode.
func (m ProviderMode) IsValid() bool {
	return m == ProviderModeCLI || m == ProviderModeASR
}

// WhisperModels lists the accepted provider model sizes.
var WhisperModels = []string{"tiny", "base", "small", "medium", "large", "large-v2", "large-v3"}

// Config holds the validated, immutable engine settings. Construct via
// Load or Default; do not mutate after validation.
type Config struct {
	VaultPath             string `yaml:"vault_path" json:"vault_path"`
	AudioFolderName       string `yaml:"audio_folder_name" json:"audio_folder_name"`
	TranscriptsFolderName string `yaml:"transcripts_folder_name" json:"transcripts_folder_name"`
	TempDir               string `yaml:"temp_dir" json:"temp_dir"`

	TranscriptTemplatePath string `yaml:"transcript_template_path" json:"transcript_template_path"`
	LinkTemplatePath       string `yaml:"link_template_path" json:"link_template_path"`

	WhisperModel string       `yaml:"whisper_model" json:"whisper_model"`
	WhisperMode  ProviderMode `yaml:"whisper_mode" json:"whisper_mode"`
	ASRURL       string       `yaml:"asr_url" json:"asr_url"`
	Language     string       `yaml:"language" json:"language"`
	RetryCount   int          `yaml:"retry_count" json:"retry_count"`

	LogFile  string `yaml:"log_file" json:"log_file"`
	LockFile string `yaml:"lock_file" json:"lock_file"`
	Encoding string `yaml:"encoding" json:"encoding"`

	AudioExtensions []string `yaml:"audio_extensions" json:"audio_extensions"`
	VideoExtensions []string `yaml:"video_extensions" json:"video_extensions"`

	LinkFormatPrefix string    `yaml:"link_format_prefix" json:"link_format_prefix"`
	LinkFormatStyle  LinkStyle `yaml:"link_format_style" json:"link_format_style"`

	AutoMoveFiles           bool `yaml:"auto_move_files" json:"auto_move_files"`
	CreateTimestamps        bool `yaml:"create_timestamps" json:"create_timestamps"`
	SkipExistingTranscripts bool `yaml:"skip_existing_transcripts" json:"skip_existing_transcripts"`
	RecursiveSearch         bool `yaml:"recursive_search" json:"recursive_search"`

	LogLevel       string `yaml:"log_level" json:"log_level"`
	ConsoleLogging bool   `yaml:"console_logging" json:"console_logging"`
	FileLogging    bool   `yaml:"file_logging" json:"file_logging"`

	// baseDir is the directory the config file was loaded from; relative
	// template paths resolve against it.
	baseDir string
}

// Default returns a Config populated with the engine defaults. Loading a
// config file overlays the file's keys on top of these values.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		VaultPath:               filepath.Join(home, "Notes"),
		AudioFolderName:         "Audio",
		TranscriptsFolderName:   "Audio-Transcripts",
		TempDir:                 os.TempDir(),
		TranscriptTemplatePath:  "templates/transcript-template.md",
		LinkTemplatePath:        "templates/link-template.md",
		WhisperModel:            "medium",
		WhisperMode:             ProviderModeCLI,
		Language:                "auto",
		RetryCount:              3,
		LogFile:                 filepath.Join(home, ".audiolink", "audiolink.log"),
		LockFile:                filepath.Join(home, ".audiolink", "audiolink.lock"),
		Encoding:                "utf-8",
		AudioExtensions:         []string{".mp3", ".wav", ".m4a", ".flac", ".ogg", ".aac", ".wma"},
		VideoExtensions:         []string{".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv", ".webm"},
		LinkFormatPrefix:        "📝 **Transcript:**",
		LinkFormatStyle:         LinkStyleWikilink,
		AutoMoveFiles:           true,
		CreateTimestamps:        true,
		SkipExistingTranscripts: true,
		RecursiveSearch:         true,
		LogLevel:                "info",
		ConsoleLogging:          true,
		FileLogging:             true,
	}
}

// Validate checks that the configuration values are coherent. It does not
// touch the filesystem; CheckPaths covers existence checks.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.VaultPath, validation.Required),
		validation.Field(&c.AudioFolderName, validation.Required),
		validation.Field(&c.TranscriptsFolderName, validation.Required),
		validation.Field(&c.TranscriptTemplatePath, validation.Required),
		validation.Field(&c.LinkTemplatePath, validation.Required),
		validation.Field(&c.WhisperModel, validation.Required, validation.In(toAny(WhisperModels)...)),
		validation.Field(&c.WhisperMode, validation.By(validMode)),
		validation.Field(&c.Language, validation.Required),
		validation.Field(&c.RetryCount, validation.Min(1)),
		validation.Field(&c.LockFile, validation.Required),
		validation.Field(&c.Encoding, validation.In("utf-8", "utf8", "UTF-8")),
		validation.Field(&c.LinkFormatStyle, validation.By(validStyle)),
		validation.Field(&c.AudioExtensions, validation.Each(validation.By(validExtension))),
		validation.Field(&c.VideoExtensions, validation.Each(validation.By(validExtension))),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "warning", "error")),
	)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if len(c.AudioExtensions)+len(c.VideoExtensions) == 0 {
		return &FieldError{Field: "audio_extensions", Err: fmt.Errorf("at least one audio or video extension must be set")}
	}
	if c.WhisperMode == ProviderModeASR && c.ASRURL == "" {
		return &FieldError{Field: "asr_url", Err: fmt.Errorf("required when whisper_mode is %q", ProviderModeASR)}
	}
	return nil
}

func validStyle(value any) error {
	s, _ := value.(LinkStyle)
	if !s.IsValid() {
		return fmt.Errorf("must be one of %q, %q, %q", LinkStyleWikilink, LinkStyleStandard, LinkStyleCustom)
	}
	return nil
}

func validMode(value any) error {
	m, _ := value.(ProviderMode)
	if !m.IsValid() {
		return fmt.Errorf("must be %q or %q", ProviderModeCLI, ProviderModeASR)
	}
	return nil
}

func validExtension(value any) error {
	s, _ := value.(string)
	if !strings.HasPrefix(s, ".") || len(s) < 2 {
		return fmt.Errorf("extension %q must begin with a dot", s)
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// CheckPaths verifies that the vault and template files exist and are
// usable. Called after Validate and path expansion.
func (c *Config) CheckPaths() error {
	info, err := os.Stat(c.VaultPath)
	if err != nil {
		return &FieldError{Field: "vault_path", Err: err}
	}
	if !info.IsDir() {
		return &FieldError{Field: "vault_path", Err: fmt.Errorf("not a directory: %s", c.VaultPath)}
	}

	if err := checkTemplate("transcript_template_path", c.TranscriptTemplatePath); err != nil {
		return err
	}
	if err := checkTemplate("link_template_path", c.LinkTemplatePath); err != nil {
		return err
	}
	return nil
}

func checkTemplate(field, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &FieldError{Field: field, Err: err}
	}
	if info.Size() == 0 {
		return &FieldError{Field: field, Err: fmt.Errorf("template is empty: %s", path)}
	}
	return nil
}

// SupportedExtensions returns the union of audio and video extensions,
// lowercased and sorted.
func (c *Config) SupportedExtensions() []string {
	seen := make(map[string]bool, len(c.AudioExtensions)+len(c.VideoExtensions))
	var out []string
	for _, ext := range append(append([]string{}, c.AudioExtensions...), c.VideoExtensions...) {
		low := strings.ToLower(ext)
		if !seen[low] {
			seen[low] = true
			out = append(out, low)
		}
	}
	sort.Strings(out)
	return out
}

// AudioFolder returns the absolute path of the audio folder.
func (c *Config) AudioFolder() string {
	return filepath.Join(c.VaultPath, c.AudioFolderName)
}

// TranscriptsFolder returns the absolute path of the transcripts folder.
func (c *Config) TranscriptsFolder() string {
	return filepath.Join(c.VaultPath, c.TranscriptsFolderName)
}

// TranscriptPath returns the destination path of the transcript for the
// media file with the given basename.
func (c *Config) TranscriptPath(base string) string {
	return filepath.Join(c.TranscriptsFolder(), base+"_transcript.md")
}

// expandPaths expands ~ and resolves relative paths. The vault and the
// template paths resolve against the config file's directory; lock, log,
// and temp paths are expanded but left as given otherwise.
func (c *Config) expandPaths() {
	c.VaultPath = c.resolve(expandTilde(c.VaultPath))
	c.TempDir = expandTilde(c.TempDir)
	c.LogFile = expandTilde(c.LogFile)
	c.LockFile = expandTilde(c.LockFile)

	c.TranscriptTemplatePath = c.resolve(expandTilde(c.TranscriptTemplatePath))
	c.LinkTemplatePath = c.resolve(expandTilde(c.LinkTemplatePath))
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if c.baseDir == "" {
		return absolute(path)
	}
	return filepath.Join(c.baseDir, path)
}

func absolute(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// expandTilde expands ~ at the beginning of a path to the user's home directory.
func expandTilde(path string) string {
	if path == "" {
		return path
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
