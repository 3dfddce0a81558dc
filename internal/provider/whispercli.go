package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CLITranscriber implements Transcriber by shelling out to the local
// `whisper` executable with JSON output into a temp directory.
type CLITranscriber struct {
	binary  string
	tempDir string
}

// NewCLITranscriber creates a transcriber using the whisper CLI. tempDir
// receives whisper's intermediate output files, which are removed after
// each call.
func NewCLITranscriber(tempDir string) *CLITranscriber {
	return &CLITranscriber{binary: "whisper", tempDir: tempDir}
}

// Available reports whether the whisper executable can be invoked.
func (t *CLITranscriber) Available() bool {
	_, err := exec.LookPath(t.binary)
	return err == nil
}

// Transcribe runs whisper on the media file and parses its JSON output.
func (t *CLITranscriber) Transcribe(ctx context.Context, path string, opts Options) (*Result, error) {
	if err := os.MkdirAll(t.tempDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create temp dir: %v", ErrProvider, err)
	}

	args := []string{
		path,
		"--model", opts.Model,
		"--word_timestamps", "True",
		"--output_format", "json",
		"--output_dir", t.tempDir,
		"--verbose", "False",
	}
	if opts.Language != "" && opts.Language != "auto" {
		args = append(args, "--language", opts.Language)
	}

	cmd := exec.CommandContext(ctx, t.binary, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: whisper failed: %v: %s", ErrProvider, err, strings.TrimSpace(stderr.String()))
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	jsonPath := filepath.Join(t.tempDir, base+".json")
	defer t.cleanup(base)

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read whisper output: %v", ErrProvider, err)
	}

	var out cliOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: parse whisper output: %v", ErrProvider, err)
	}

	return &Result{
		Text:     strings.TrimSpace(out.Text),
		Language: out.Language,
		Segments: out.Segments,
	}, nil
}

// cleanup removes whisper's intermediate files for the given basename.
func (t *CLITranscriber) cleanup(base string) {
	matches, err := filepath.Glob(filepath.Join(t.tempDir, base+".*"))
	if err != nil {
		return
	}
	for _, m := range matches {
		os.Remove(m)
	}
}

// cliOutput represents whisper's JSON output file.
type cliOutput struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}
