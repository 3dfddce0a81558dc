// Package provider defines the speech-recognition boundary and its
// implementations. The engine treats transcription as an opaque call:
// audio in, text and timestamp segments out.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/TechnicallyShaun/audiolink/internal/config"
)

// ErrProvider marks failures originating at the transcription backend.
var ErrProvider = errors.New("transcription provider error")

// Options configures a transcription request.
type Options struct {
	Model    string
	Language string
}

// Segment is one recognized span of speech.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result contains the provider response.
type Result struct {
	Text     string
	Language string
	Segments []Segment
}

// Transcriber converts an audio/video file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string, opts Options) (*Result, error)
}

// FromConfig builds the configured Transcriber, wrapped with retry.
func FromConfig(cfg *config.Config) (Transcriber, error) {
	var base Transcriber
	switch cfg.WhisperMode {
	case config.ProviderModeASR:
		base = NewASRClient(cfg.ASRURL)
	case config.ProviderModeCLI:
		base = NewCLITranscriber(cfg.TempDir)
	default:
		return nil, fmt.Errorf("provider: unknown whisper_mode %q", cfg.WhisperMode)
	}
	return NewRetryTranscriber(base, WithRetryCount(cfg.RetryCount)), nil
}
