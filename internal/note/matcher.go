package note

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/TechnicallyShaun/audiolink/internal/config"
	"github.com/TechnicallyShaun/audiolink/internal/logging"
)

// Match records one embed occurrence inside a note. Matches are transient:
// produced by a scan and consumed by the inserter within the same run.
type Match struct {
	NotePath string
	// Offset is the byte offset of the embed occurrence.
	Offset int
	// Length is the byte length of the matched embed text.
	Length  int
	Pattern Pattern
}

// Matcher scans the vault's markdown notes for media embeds.
type Matcher struct {
	cfg    *config.Config
	logger logging.Logger
}

// NewMatcher creates a Matcher for the given configuration.
func NewMatcher(cfg *config.Config, logger logging.Logger) *Matcher {
	return &Matcher{cfg: cfg, logger: logger}
}

// FindMatches scans every note under the vault (excluding the transcripts
// folder) for the given patterns and returns one Match per occurrence,
// ordered by note path then offset. Notes that cannot be read or are not
// valid UTF-8 are logged and skipped.
func (m *Matcher) FindMatches(patterns []Pattern) ([]Match, error) {
	var matches []Match

	err := filepath.WalkDir(m.cfg.VaultPath, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			// Generated transcripts are not scanned for embeds.
			if d.Name() == m.cfg.TranscriptsFolderName {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}

		data, err := os.ReadFile(p)
		if err != nil {
			m.logger.Warn("skipping unreadable note",
				logging.String("path", p),
				logging.String("reason", err.Error()),
			)
			return nil
		}
		if !utf8.Valid(data) {
			m.logger.Warn("skipping note with invalid encoding",
				logging.String("path", p),
			)
			return nil
		}

		content := string(data)
		for _, pat := range patterns {
			for _, loc := range pat.Regexp().FindAllStringIndex(content, -1) {
				matches = append(matches, Match{
					NotePath: p,
					Offset:   loc[0],
					Length:   loc[1] - loc[0],
					Pattern:  pat,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("note: scan vault: %w", err)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].NotePath != matches[j].NotePath {
			return matches[i].NotePath < matches[j].NotePath
		}
		return matches[i].Offset < matches[j].Offset
	})
	return matches, nil
}
