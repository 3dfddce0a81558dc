// Package template renders the transcript and link templates by
// substituting named `{placeholder}` tokens.
package template

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrMissingBinding indicates a required placeholder value was not supplied.
var ErrMissingBinding = errors.New("missing template binding")

// placeholderRe matches `{name}` tokens. Only simple identifiers are
// placeholders; anything else (including `{{…}}`) is left untouched.
var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Render substitutes every `{name}` token present in vars. Tokens without a
// binding are left verbatim so no data is silently lost.
func Render(text string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(text, func(tok string) string {
		name := tok[1 : len(tok)-1]
		if value, ok := vars[name]; ok {
			return value
		}
		return tok
	})
}

// Require verifies that every listed key has a binding in vars. Returns an
// error wrapping ErrMissingBinding naming the first absent key.
func Require(vars map[string]string, keys ...string) error {
	for _, key := range keys {
		if _, ok := vars[key]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingBinding, key)
		}
	}
	return nil
}

// Placeholders returns the distinct placeholder names referenced by text,
// in order of first appearance.
func Placeholders(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}
