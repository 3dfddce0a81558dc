package note

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/TechnicallyShaun/audiolink/internal/config"
	"github.com/TechnicallyShaun/audiolink/internal/logging"
)

const testLink = "📝 **Transcript:** [[clip_transcript]]"

// scanNote builds real matches for a note by scanning it.
func scanNote(t *testing.T, cfg *config.Config) []Match {
	t.Helper()
	matches, err := NewMatcher(cfg, logging.Discard()).FindMatches(BuildPatterns("clip", cfg))
	if err != nil {
		t.Fatal(err)
	}
	return matches
}

func TestInsertLink(t *testing.T) {
	cfg := matcherConfig(t)
	path := filepath.Join(cfg.VaultPath, "a.md")
	writeNote(t, path, "before\n![[clip.mp3]]\nafter\n")

	matches := scanNote(t, cfg)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}

	inserted, err := InsertLink(matches[0], testLink)
	if err != nil {
		t.Fatalf("InsertLink failed: %v", err)
	}
	if !inserted {
		t.Fatal("expected an insertion")
	}

	data, _ := os.ReadFile(path)
	want := "before\n![[clip.mp3]]\n" + testLink + "\nafter\n"
	if string(data) != want {
		t.Errorf("note content:\n%q\nwant:\n%q", data, want)
	}
}

func TestInsertLink_Idempotent(t *testing.T) {
	cfg := matcherConfig(t)
	path := filepath.Join(cfg.VaultPath, "a.md")
	writeNote(t, path, "![[clip.mp3]]\n")

	m := scanNote(t, cfg)[0]
	if ok, err := InsertLink(m, testLink); err != nil || !ok {
		t.Fatalf("first insert: ok=%v err=%v", ok, err)
	}
	after, _ := os.ReadFile(path)

	// Rescan and insert again; nothing should change.
	m = scanNote(t, cfg)[0]
	ok, err := InsertLink(m, testLink)
	if err != nil {
		t.Fatalf("second insert failed: %v", err)
	}
	if ok {
		t.Error("second insert should be a no-op")
	}
	again, _ := os.ReadFile(path)
	if string(after) != string(again) {
		t.Errorf("note changed on repeated insert:\n%q\nvs\n%q", after, again)
	}
}

func TestInsertLink_BlankLineBetween(t *testing.T) {
	cfg := matcherConfig(t)
	path := filepath.Join(cfg.VaultPath, "a.md")
	writeNote(t, path, "![[clip.mp3]]\n\n"+testLink+"\n")

	ok, err := InsertLink(scanNote(t, cfg)[0], testLink)
	if err != nil {
		t.Fatalf("InsertLink failed: %v", err)
	}
	if ok {
		t.Error("link separated only by blank lines still counts as present")
	}
}

func TestInsertLink_NoTrailingNewline(t *testing.T) {
	cfg := matcherConfig(t)
	path := filepath.Join(cfg.VaultPath, "a.md")
	writeNote(t, path, "![[clip.mp3]]")

	ok, err := InsertLink(scanNote(t, cfg)[0], testLink)
	if err != nil {
		t.Fatalf("InsertLink failed: %v", err)
	}
	if !ok {
		t.Fatal("expected an insertion")
	}

	data, _ := os.ReadFile(path)
	want := "![[clip.mp3]]\n" + testLink + "\n"
	if string(data) != want {
		t.Errorf("content = %q, want %q", data, want)
	}
}

func TestInsertLink_PreservesSurroundingBytes(t *testing.T) {
	cfg := matcherConfig(t)
	path := filepath.Join(cfg.VaultPath, "a.md")
	content := "---\ntitle: Ünïcode ✓\n---\n\ttabs\t \n![[clip.mp3]]\ntrailing   spaces   \n"
	writeNote(t, path, content)

	if _, err := InsertLink(scanNote(t, cfg)[0], testLink); err != nil {
		t.Fatalf("InsertLink failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	got := string(data)
	inserted := testLink + "\n"
	idx := strings.Index(got, inserted)
	if idx < 0 {
		t.Fatalf("link missing: %q", got)
	}
	if got[:idx]+got[idx+len(inserted):] != content {
		t.Errorf("surrounding bytes changed:\n%q", got)
	}
}

func TestInsertLink_MultipleDescending(t *testing.T) {
	cfg := matcherConfig(t)
	path := filepath.Join(cfg.VaultPath, "a.md")
	writeNote(t, path, "![[clip.mp3]]\nmiddle\n![[clip.mp3]]\nend\n")

	matches := scanNote(t, cfg)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Offset > matches[j].Offset })

	for _, m := range matches {
		if ok, err := InsertLink(m, testLink); err != nil || !ok {
			t.Fatalf("insert at offset %d: ok=%v err=%v", m.Offset, ok, err)
		}
	}

	data, _ := os.ReadFile(path)
	want := "![[clip.mp3]]\n" + testLink + "\nmiddle\n![[clip.mp3]]\n" + testLink + "\nend\n"
	if string(data) != want {
		t.Errorf("content:\n%q\nwant:\n%q", data, want)
	}
}

func TestInsertLink_StaleOffset(t *testing.T) {
	cfg := matcherConfig(t)
	path := filepath.Join(cfg.VaultPath, "a.md")
	writeNote(t, path, "![[clip.mp3]]\n")

	m := scanNote(t, cfg)[0]
	writeNote(t, path, "x")

	if _, err := InsertLink(m, testLink); err == nil {
		t.Fatal("expected error for stale offset")
	}
}

func TestInsertLink_MissingNote(t *testing.T) {
	m := Match{NotePath: filepath.Join(t.TempDir(), "gone.md"), Offset: 0, Length: 5}
	if _, err := InsertLink(m, testLink); err == nil {
		t.Fatal("expected error for missing note")
	}
}
