// Package status provides log parsing for run status display.
package status

import (
	"bufio"
	"os"
	"regexp"
	"time"
)

// Stats holds parsed statistics from the engine log file.
type Stats struct {
	TranscriptsWritten int
	LinksInserted      int
	Errors             int
	LastTranscript     *LastTranscript
}

// LastTranscript holds information about the most recent transcript write.
type LastTranscript struct {
	Timestamp time.Time
	Output    string
}

// Log line shapes produced by internal/logging, e.g.
// 2026-08-28T14:30:00Z INFO  [transcript] transcript saved output=/vault/Audio-Transcripts/clip_transcript.md
var (
	savedPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z)\s+INFO\s+\[transcript\]\s+transcript saved\s+output=("[^"]*"|\S+)`)
	linkPattern  = regexp.MustCompile(`\s+INFO\s+.*\badded transcript link\b`)
	errorPattern = regexp.MustCompile(`\s+ERROR\s+`)
)

// ParseLogFile parses an engine log file and returns statistics.
// Returns empty stats if the file doesn't exist.
func ParseLogFile(path string) (*Stats, error) {
	stats := &Stats{}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		if matches := savedPattern.FindStringSubmatch(line); matches != nil {
			stats.TranscriptsWritten++
			if timestamp, err := time.Parse(time.RFC3339, matches[1]); err == nil {
				stats.LastTranscript = &LastTranscript{
					Timestamp: timestamp,
					Output:    unquoteIfNeeded(matches[2]),
				}
			}
		}

		if linkPattern.MatchString(line) {
			stats.LinksInserted++
		}

		if errorPattern.MatchString(line) {
			stats.Errors++
		}
	}

	return stats, scanner.Err()
}

// unquoteIfNeeded removes surrounding quotes from a string if present.
func unquoteIfNeeded(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// FormatTimestamp formats a timestamp for display.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format("2006-01-02T15:04:05")
}
