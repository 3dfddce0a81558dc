package template

import (
	"fmt"
	"os"
)

// DefaultTranscript is the built-in transcript template used when the
// configured template file cannot be read.
const DefaultTranscript = `# Transcription: {filename}

**File:** ` + "`{filename}`" + `
**Date:** {date}
**Original Location:** ` + "`{audio_folder}/{filename}`" + `

## Transcript

{transcript_content}

## Detailed Timestamps

{timestamp_content}
`

// DefaultLink is the built-in link template used when the configured
// template file cannot be read.
const DefaultLink = "📝 **Transcript:** [[{audio_name}_transcript]]"

// LoadFile reads a template file.
func LoadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("template: read %s: %w", path, err)
	}
	return string(data), nil
}

// LoadOrDefault reads a template file, falling back to the given built-in
// template when the file cannot be read. The returned bool is false when
// the fallback was used.
func LoadOrDefault(path, fallback string) (string, bool) {
	text, err := LoadFile(path)
	if err != nil {
		return fallback, false
	}
	return text, true
}
