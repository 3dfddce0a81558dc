package note

import (
	"fmt"
	"strings"

	"github.com/TechnicallyShaun/audiolink/internal/config"
	"github.com/TechnicallyShaun/audiolink/internal/template"
)

// LinkText renders the transcript link for a media basename according to
// the configured link style. linkTemplate is only consulted for the custom
// style; it may be empty otherwise.
func LinkText(base string, cfg *config.Config, linkTemplate string) (string, error) {
	name := base + "_transcript"

	switch cfg.LinkFormatStyle {
	case config.LinkStyleWikilink:
		return strings.TrimSpace(cfg.LinkFormatPrefix + " [[" + name + "]]"), nil
	case config.LinkStyleStandard:
		return strings.TrimSpace(fmt.Sprintf("%s [%s](%s.md)", cfg.LinkFormatPrefix, name, name)), nil
	case config.LinkStyleCustom:
		vars := map[string]string{"audio_name": base}
		if err := template.Require(vars, "audio_name"); err != nil {
			return "", err
		}
		return strings.TrimSpace(template.Render(linkTemplate, vars)), nil
	default:
		return "", fmt.Errorf("note: unknown link style %q", cfg.LinkFormatStyle)
	}
}
