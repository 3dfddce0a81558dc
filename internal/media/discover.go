// Package media discovers the audio and video files in a vault that still
// need transcription.
package media

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/TechnicallyShaun/audiolink/internal/config"
)

// File describes a discovered media file. Instances are rebuilt on every
// discovery pass and never persisted.
type File struct {
	Path         string
	Base         string
	Ext          string
	DiscoveredAt time.Time
}

// Discover walks the vault and returns the media files matching the
// configured extensions, in lexicographic path order. When recursive search
// is off, only the vault top level and the audio folder are scanned. When
// skip-existing is on, files whose transcript already exists are excluded.
func Discover(cfg *config.Config) ([]File, error) {
	extensions := make(map[string]bool)
	for _, ext := range cfg.SupportedExtensions() {
		extensions[ext] = true
	}

	var paths []string
	if cfg.RecursiveSearch {
		err := filepath.WalkDir(cfg.VaultPath, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				return nil
			}
			paths = append(paths, p)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("media: walk vault: %w", err)
		}
	} else {
		for _, dir := range []string{cfg.VaultPath, cfg.AudioFolder()} {
			entries, err := os.ReadDir(dir)
			if err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return nil, fmt.Errorf("media: read %s: %w", dir, err)
			}
			for _, e := range entries {
				if !e.IsDir() {
					paths = append(paths, filepath.Join(dir, e.Name()))
				}
			}
		}
	}

	now := time.Now()
	var files []File
	for _, p := range paths {
		ext := strings.ToLower(filepath.Ext(p))
		if !extensions[ext] {
			continue
		}

		base := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		if cfg.SkipExistingTranscripts {
			if _, err := os.Stat(cfg.TranscriptPath(base)); err == nil {
				continue
			}
		}

		files = append(files, File{
			Path:         p,
			Base:         base,
			Ext:          ext,
			DiscoveredAt: now,
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
