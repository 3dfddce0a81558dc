// Package transcript invokes the transcription provider and writes the
// rendered transcript markdown into the vault.
package transcript

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/TechnicallyShaun/audiolink/internal/config"
	"github.com/TechnicallyShaun/audiolink/internal/logging"
	"github.com/TechnicallyShaun/audiolink/internal/media"
	"github.com/TechnicallyShaun/audiolink/internal/provider"
	"github.com/TechnicallyShaun/audiolink/internal/storage"
	"github.com/TechnicallyShaun/audiolink/internal/template"
)

// Transcript describes a written (or pre-existing) transcript file. Once
// written it is never partially patched: re-runs either skip it or fully
// overwrite it.
type Transcript struct {
	Base     string
	Path     string
	Body     string
	Segments []provider.Segment
	// Existed is true when skip-existing short-circuited the provider call.
	Existed bool
}

// Writer produces transcript files for media files.
type Writer struct {
	cfg         *config.Config
	transcriber provider.Transcriber
	logger      logging.Logger
	tmpl        string
	now         func() time.Time
}

// NewWriter creates a Writer rendering through the given transcript
// template text.
func NewWriter(cfg *config.Config, transcriber provider.Transcriber, tmpl string, logger logging.Logger) *Writer {
	return &Writer{
		cfg:         cfg,
		transcriber: transcriber,
		logger:      logger,
		tmpl:        tmpl,
		now:         time.Now,
	}
}

// Write transcribes the media file and writes its transcript atomically.
// When skip-existing is enabled and the destination already exists, the
// provider is not called and the existing transcript is returned. When
// auto-move is enabled the source file is relocated into the audio folder
// only after the transcript is safely on disk.
func (w *Writer) Write(ctx context.Context, f media.File) (*Transcript, error) {
	destPath := w.cfg.TranscriptPath(f.Base)

	if w.cfg.SkipExistingTranscripts {
		if _, err := os.Stat(destPath); err == nil {
			w.logger.Info("transcript already exists, skipping",
				logging.String("file", filepath.Base(f.Path)),
			)
			return &Transcript{Base: f.Base, Path: destPath, Existed: true}, nil
		}
	}

	result, err := w.transcriber.Transcribe(ctx, f.Path, provider.Options{
		Model:    w.cfg.WhisperModel,
		Language: w.cfg.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("transcript: transcribe %s: %w", filepath.Base(f.Path), err)
	}

	body, err := w.render(f, result)
	if err != nil {
		return nil, fmt.Errorf("transcript: render %s: %w", filepath.Base(f.Path), err)
	}

	if err := storage.WriteAtomic(destPath, []byte(body)); err != nil {
		return nil, fmt.Errorf("transcript: write %s: %w", destPath, err)
	}
	w.logger.Info("transcript saved",
		logging.String("output", destPath),
	)

	if w.cfg.AutoMoveFiles {
		if err := w.moveToAudioFolder(f); err != nil {
			// The transcript is already safe; a failed move is not fatal.
			w.logger.Warn("could not move media file",
				logging.String("path", f.Path),
				logging.String("reason", err.Error()),
			)
		}
	}

	return &Transcript{
		Base:     f.Base,
		Path:     destPath,
		Body:     body,
		Segments: result.Segments,
	}, nil
}

// render fills the transcript template with the provider result.
func (w *Writer) render(f media.File, result *provider.Result) (string, error) {
	content := result.Text
	if len(result.Segments) > 0 {
		var lines []string
		for _, seg := range result.Segments {
			lines = append(lines, strings.TrimSpace(seg.Text))
		}
		content = strings.Join(lines, "\n")
	}

	timestamps := ""
	if w.cfg.CreateTimestamps {
		timestamps = renderTimestamps(result.Segments)
	}

	vars := map[string]string{
		"filename":           filepath.Base(f.Path),
		"date":               w.now().Format("2006-01-02 15:04:05"),
		"audio_folder":       w.cfg.AudioFolderName,
		"transcript_content": strings.TrimSpace(content),
		"timestamp_content":  timestamps,
	}
	if err := template.Require(vars, "filename", "date", "transcript_content"); err != nil {
		return "", err
	}
	return template.Render(w.tmpl, vars), nil
}

// renderTimestamps expands one `**[m:ss]** text` line per segment.
func renderTimestamps(segments []provider.Segment) string {
	var sb strings.Builder
	for _, seg := range segments {
		minutes := int(seg.Start) / 60
		seconds := int(seg.Start) % 60
		sb.WriteString(fmt.Sprintf("**[%d:%02d]** %s\n", minutes, seconds, strings.TrimSpace(seg.Text)))
	}
	return strings.TrimSpace(sb.String())
}

// moveToAudioFolder relocates a processed media file into the audio folder.
// Files already there stay put.
func (w *Writer) moveToAudioFolder(f media.File) error {
	audioFolder := w.cfg.AudioFolder()
	if filepath.Dir(f.Path) == audioFolder {
		return nil
	}
	dest := filepath.Join(audioFolder, filepath.Base(f.Path))
	if err := storage.Move(f.Path, dest); err != nil {
		return err
	}
	w.logger.Info("moved media file",
		logging.String("from", f.Path),
		logging.String("to", dest),
	)
	return nil
}
