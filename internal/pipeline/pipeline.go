// Package pipeline orchestrates one discovery-and-linking run: acquire the
// vault lock, discover media, transcribe and write transcripts, link them
// into every embedding note, and release the lock on every exit path.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/TechnicallyShaun/audiolink/internal/config"
	"github.com/TechnicallyShaun/audiolink/internal/lock"
	"github.com/TechnicallyShaun/audiolink/internal/logging"
	"github.com/TechnicallyShaun/audiolink/internal/media"
	"github.com/TechnicallyShaun/audiolink/internal/note"
	"github.com/TechnicallyShaun/audiolink/internal/provider"
	"github.com/TechnicallyShaun/audiolink/internal/template"
	"github.com/TechnicallyShaun/audiolink/internal/transcript"
)

// ErrLocked is returned when another live process holds the vault lock.
// The run aborts without touching the vault; the caller decides whether to
// retry later.
var ErrLocked = errors.New("another instance is already running")

// Pipeline runs the discovery-and-linking engine against one vault.
// Media files are processed strictly one at a time so failures stay
// isolated and the log stays ordered.
type Pipeline struct {
	cfg      *config.Config
	logger   *logging.EngineLogger
	lock     *lock.Lock
	writer   *transcript.Writer
	matcher  *note.Matcher
	linkTmpl string
}

// New builds a Pipeline from configuration, constructing the configured
// transcription provider.
func New(cfg *config.Config, logger *logging.EngineLogger) (*Pipeline, error) {
	transcriber, err := provider.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithTranscriber(cfg, transcriber, logger), nil
}

// NewWithTranscriber builds a Pipeline with an explicit transcriber.
// Tests inject fakes through this constructor.
func NewWithTranscriber(cfg *config.Config, transcriber provider.Transcriber, logger *logging.EngineLogger) *Pipeline {
	transcriptTmpl, ok := template.LoadOrDefault(cfg.TranscriptTemplatePath, template.DefaultTranscript)
	if !ok {
		logger.Warn("transcript template unreadable, using built-in",
			logging.String("path", cfg.TranscriptTemplatePath),
		)
	}
	linkTmpl, ok := template.LoadOrDefault(cfg.LinkTemplatePath, template.DefaultLink)
	if !ok {
		logger.Warn("link template unreadable, using built-in",
			logging.String("path", cfg.LinkTemplatePath),
		)
	}

	return &Pipeline{
		cfg:      cfg,
		logger:   logger,
		lock:     lock.New(cfg.LockFile),
		writer:   transcript.NewWriter(cfg, transcriber, transcriptTmpl, logger.WithComponent("transcript")),
		matcher:  note.NewMatcher(cfg, logger.WithComponent("matcher")),
		linkTmpl: linkTmpl,
	}
}

// Run executes one full pass. Vault-scoped failures (lock held) abort
// before any file is touched; file-scoped failures are logged and the run
// continues with the next file. The lock is released on every exit path.
func (p *Pipeline) Run(ctx context.Context) error {
	acquired, err := p.lock.TryAcquire()
	if err != nil {
		return err
	}
	if !acquired {
		return ErrLocked
	}
	defer func() {
		if err := p.lock.Release(); err != nil {
			p.logger.Error("release lock", err)
		}
	}()

	if err := p.setupDirectories(); err != nil {
		return err
	}

	p.logger.Info("starting run",
		logging.String("vault", p.cfg.VaultPath),
		logging.String("audio_folder", p.cfg.AudioFolderName),
		logging.String("transcripts_folder", p.cfg.TranscriptsFolderName),
	)

	files, err := media.Discover(p.cfg)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		p.logger.Info("no new files to transcribe")
	} else {
		p.logger.Info("found files to transcribe", logging.Int("count", len(files)))
	}

	succeeded := 0
	for _, f := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p.logger.Info("transcribing", logging.String("file", filepath.Base(f.Path)))
		if _, err := p.writer.Write(ctx, f); err != nil {
			p.logger.Error("transcription failed", err,
				logging.String("file", filepath.Base(f.Path)),
			)
			continue
		}
		succeeded++
	}

	if len(files) > 0 {
		p.logger.Info("transcription finished",
			logging.Int("succeeded", succeeded),
			logging.Int("total", len(files)),
		)
	}

	if err := p.linkTranscripts(); err != nil {
		return err
	}

	p.logger.Info("run complete")
	return nil
}

// linkTranscripts inserts a transcript link into every note embedding a
// transcribed media file, for all transcripts in the transcripts folder
// (new and pre-existing alike).
func (p *Pipeline) linkTranscripts() error {
	entries, err := os.ReadDir(p.cfg.TranscriptsFolder())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("pipeline: read transcripts folder: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, "_transcript.md") {
			continue
		}
		base := strings.TrimSuffix(name, "_transcript.md")

		linkText, err := note.LinkText(base, p.cfg, p.linkTmpl)
		if err != nil {
			p.logger.Error("render link", err, logging.String("base", base))
			continue
		}

		patterns := note.BuildPatterns(base, p.cfg)
		matches, err := p.matcher.FindMatches(patterns)
		if err != nil {
			return err
		}

		for _, m := range groupDescending(matches) {
			inserted, err := note.InsertLink(m, linkText)
			if err != nil {
				p.logger.Error("insert link", err,
					logging.String("note", m.NotePath),
				)
				continue
			}
			if inserted {
				p.logger.Info("added transcript link",
					logging.String("note", m.NotePath),
					logging.String("base", base),
				)
			}
		}
	}
	return nil
}

// groupDescending orders matches so that, within each note, higher offsets
// come first. Inserting at a later offset never invalidates an earlier one.
func groupDescending(matches []note.Match) []note.Match {
	out := make([]note.Match, len(matches))
	copy(out, matches)
	sort.Slice(out, func(i, j int) bool {
		if out[i].NotePath != out[j].NotePath {
			return out[i].NotePath < out[j].NotePath
		}
		return out[i].Offset > out[j].Offset
	})
	return out
}

// setupDirectories creates the folders a run writes into.
func (p *Pipeline) setupDirectories() error {
	dirs := []string{
		p.cfg.AudioFolder(),
		p.cfg.TranscriptsFolder(),
		p.cfg.TempDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("pipeline: create %s: %w", dir, err)
		}
	}
	return nil
}
