package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/TechnicallyShaun/audiolink/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.VaultPath = t.TempDir()
	return cfg
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func basenames(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Base
	}
	return out
}

func TestDiscover_Recursive(t *testing.T) {
	cfg := testConfig(t)
	touch(t, filepath.Join(cfg.VaultPath, "lecture1.mp3"))
	touch(t, filepath.Join(cfg.VaultPath, "notes", "deep", "meeting.m4a"))
	touch(t, filepath.Join(cfg.VaultPath, "readme.md"))

	files, err := Discover(cfg)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	got := basenames(files)
	if len(got) != 2 || got[0] != "lecture1" || got[1] != "meeting" {
		t.Errorf("unexpected discoveries: %v", got)
	}
}

func TestDiscover_NonRecursive(t *testing.T) {
	cfg := testConfig(t)
	cfg.RecursiveSearch = false
	touch(t, filepath.Join(cfg.VaultPath, "top.mp3"))
	touch(t, filepath.Join(cfg.AudioFolder(), "moved.mp3"))
	touch(t, filepath.Join(cfg.VaultPath, "notes", "hidden.mp3"))

	files, err := Discover(cfg)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	got := basenames(files)
	if len(got) != 2 {
		t.Fatalf("expected top level and audio folder only, got %v", got)
	}
	for _, b := range got {
		if b == "hidden" {
			t.Error("nested file found despite non-recursive search")
		}
	}
}

func TestDiscover_CaseInsensitiveExtensions(t *testing.T) {
	cfg := testConfig(t)
	touch(t, filepath.Join(cfg.VaultPath, "SHOUT.MP3"))
	touch(t, filepath.Join(cfg.VaultPath, "Clip.Mp4"))

	files, err := Discover(cfg)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %v", basenames(files))
	}
	for _, f := range files {
		if f.Ext != ".mp3" && f.Ext != ".mp4" {
			t.Errorf("extension not lowercased: %q", f.Ext)
		}
	}
}

func TestDiscover_SkipsExistingTranscripts(t *testing.T) {
	cfg := testConfig(t)
	touch(t, filepath.Join(cfg.VaultPath, "done.mp3"))
	touch(t, filepath.Join(cfg.VaultPath, "pending.mp3"))
	touch(t, cfg.TranscriptPath("done"))

	files, err := Discover(cfg)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	got := basenames(files)
	if len(got) != 1 || got[0] != "pending" {
		t.Errorf("expected only pending, got %v", got)
	}
}

func TestDiscover_SkipExistingDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.SkipExistingTranscripts = false
	touch(t, filepath.Join(cfg.VaultPath, "done.mp3"))
	touch(t, cfg.TranscriptPath("done"))

	files, err := Discover(cfg)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("expected done.mp3 despite existing transcript, got %v", basenames(files))
	}
}

func TestDiscover_Ordering(t *testing.T) {
	cfg := testConfig(t)
	for _, name := range []string{"c.mp3", "a.mp3", "b.mp3"} {
		touch(t, filepath.Join(cfg.VaultPath, name))
	}

	files, err := Discover(cfg)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	got := basenames(files)
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestDiscover_EmptyVault(t *testing.T) {
	files, err := Discover(testConfig(t))
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %v", basenames(files))
	}
}
