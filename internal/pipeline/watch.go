package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/TechnicallyShaun/audiolink/internal/logging"
)

const (
	stabilizeInterval = 2 * time.Second
	stabilizeChecks   = 3
)

// Watch runs the pipeline once, then keeps watching the vault and re-runs
// a full pass whenever a new media file lands and stops growing. New
// directories created at runtime are added to the watch list. Watch blocks
// until ctx is cancelled.
func (p *Pipeline) Watch(ctx context.Context) error {
	if err := p.Run(ctx); err != nil && !errors.Is(err, ErrLocked) {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := p.addWatchDirs(w); err != nil {
		return err
	}

	extensions := make(map[string]bool)
	for _, ext := range p.cfg.SupportedExtensions() {
		extensions[ext] = true
	}

	stab := newStabilizer(stabilizeInterval, stabilizeChecks)
	logger := p.logger.WithComponent("watch")
	logger.Info("watching vault", logging.String("root", p.cfg.VaultPath))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if p.cfg.RecursiveSearch {
						if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
							logger.Warn("could not watch new directory",
								logging.String("path", ev.Name),
								logging.String("reason", addErr.Error()),
							)
						}
					}
					continue
				}
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !extensions[strings.ToLower(filepath.Ext(ev.Name))] {
				continue
			}

			logger.Info("media file detected", logging.String("path", ev.Name))
			if err := stab.waitForStable(ctx, ev.Name); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Warn("stabilization failed",
					logging.String("path", ev.Name),
					logging.String("reason", err.Error()),
				)
				continue
			}

			if err := p.Run(ctx); err != nil {
				if errors.Is(err, ErrLocked) {
					logger.Info("run skipped, lock held elsewhere")
					continue
				}
				if ctx.Err() != nil {
					return nil
				}
				logger.Error("run failed", err)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", logging.String("reason", watchErr.Error()))
		}
	}
}

// addWatchDirs registers the directories the discoverer would scan.
func (p *Pipeline) addWatchDirs(w *fsnotify.Watcher) error {
	if p.cfg.RecursiveSearch {
		return addDirsRecursive(w, p.cfg.VaultPath)
	}
	if err := w.Add(p.cfg.VaultPath); err != nil {
		return err
	}
	if err := w.Add(p.cfg.AudioFolder()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}
