// Package note locates media embeds inside markdown notes and mutates
// notes to link their transcripts. The pattern builder is the single source
// of truth for "what counts as an embed": the matcher and the inserter both
// consume its tagged variants.
package note

import (
	"regexp"

	"github.com/TechnicallyShaun/audiolink/internal/config"
)

// Syntax identifies the embed dialect a pattern matches.
type Syntax string

const (
	// SyntaxWikilink matches `![[file.ext]]` embeds.
	SyntaxWikilink Syntax = "wikilink"

	// SyntaxMarkdown matches `![alt](file.ext)` embeds.
	SyntaxMarkdown Syntax = "markdown"
)

// Pattern is one compiled embed-matching variant.
type Pattern struct {
	Syntax Syntax
	// Folder is true for folder-qualified variants (`Audio/file.ext`).
	Folder bool
	Ext    string

	re *regexp.Regexp
}

// Regexp returns the compiled expression for this variant.
func (p Pattern) Regexp() *regexp.Regexp { return p.re }

// BuildPatterns produces the embed patterns for a media basename: each
// combination of embed syntax × {bare, folder-qualified} × configured
// extension. Extensions match case-insensitively and the basename is
// matched literally, so `lecture1` never matches `lecture10.mp3`.
func BuildPatterns(base string, cfg *config.Config) []Pattern {
	folder := regexp.QuoteMeta(cfg.AudioFolderName)

	var patterns []Pattern
	for _, ext := range cfg.SupportedExtensions() {
		name := regexp.QuoteMeta(base + ext)

		patterns = append(patterns,
			Pattern{
				Syntax: SyntaxWikilink,
				Ext:    ext,
				re:     regexp.MustCompile(`(?i)!\[\[` + name + `\]\]`),
			},
			Pattern{
				Syntax: SyntaxWikilink,
				Folder: true,
				Ext:    ext,
				re:     regexp.MustCompile(`(?i)!\[\[` + folder + `/` + name + `\]\]`),
			},
			Pattern{
				Syntax: SyntaxMarkdown,
				Ext:    ext,
				re:     regexp.MustCompile(`(?i)!\[[^\]]*\]\(` + name + `\)`),
			},
			Pattern{
				Syntax: SyntaxMarkdown,
				Folder: true,
				Ext:    ext,
				re:     regexp.MustCompile(`(?i)!\[[^\]]*\]\(` + folder + `/` + name + `\)`),
			},
		)
	}
	return patterns
}
