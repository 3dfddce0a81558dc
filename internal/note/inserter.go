package note

import (
	"fmt"
	"os"
	"strings"

	"github.com/TechnicallyShaun/audiolink/internal/storage"
)

// InsertLink inserts linkText on the line immediately following the embed
// matched by m, rewriting the note atomically. It returns false without
// mutating when an equivalent link already follows the embed, so repeated
// runs are no-ops. All other note content is preserved byte-for-byte.
//
// When one note carries several matches, callers must apply them in
// descending offset order: an insert at a later offset never invalidates an
// earlier one.
func InsertLink(m Match, linkText string) (bool, error) {
	data, err := os.ReadFile(m.NotePath)
	if err != nil {
		return false, fmt.Errorf("note: read %s: %w", m.NotePath, err)
	}
	content := string(data)

	if m.Offset < 0 || m.Offset+m.Length > len(content) {
		return false, fmt.Errorf("note: stale match offset %d in %s", m.Offset, m.NotePath)
	}

	// End of the embed's line.
	lineEnd := strings.IndexByte(content[m.Offset:], '\n')
	var insertPos int
	if lineEnd < 0 {
		insertPos = len(content)
	} else {
		insertPos = m.Offset + lineEnd + 1
	}

	if linkPresent(content[insertPos:], linkText) {
		return false, nil
	}

	var sb strings.Builder
	sb.Grow(len(content) + len(linkText) + 2)
	sb.WriteString(content[:insertPos])
	if lineEnd < 0 {
		// Embed line had no trailing newline.
		sb.WriteString("\n")
	}
	sb.WriteString(linkText)
	sb.WriteString("\n")
	sb.WriteString(content[insertPos:])

	if err := storage.WriteAtomic(m.NotePath, []byte(sb.String())); err != nil {
		return false, fmt.Errorf("note: rewrite %s: %w", m.NotePath, err)
	}
	return true, nil
}

// linkPresent reports whether the first non-blank line of rest already
// carries the link.
func linkPresent(rest, linkText string) bool {
	for _, line := range strings.Split(rest, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		return strings.Contains(line, linkText)
	}
	return false
}
