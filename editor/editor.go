// Package editor is the boundary to the host application's documents. The
// generation core only sees the Host and View interfaces; FileView and
// Workspace back them with plain markdown files for the command line.
package editor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kardolus/textgen/frontmatter"
	"github.com/kardolus/textgen/types"
)

const (
	MarkdownView  = "markdown"
	PlainTextView = "plaintext"
	aliasesKey    = "aliases"
	aliasKey      = "alias"
)

// View is an open document. Offsets are byte offsets into Content.
type View interface {
	ID() string
	Type() string
	Content() string
	Caret() (int, bool)
	SetCaret(offset int)
	Insert(offset int, text string) error
}

type Host interface {
	// ActiveView returns nil when no document is focused.
	ActiveView() View
}

// ActiveMarkdown returns the focused view when it is an editable markdown view.
func ActiveMarkdown(h Host) (View, error) {
	v := h.ActiveView()
	if v == nil || v.Type() != MarkdownView {
		return nil, types.ErrNoActiveEditor
	}
	return v, nil
}

// ContextBeforeCaret returns the document text up to the caret along with the
// caret offset.
func ContextBeforeCaret(v View) (string, int, error) {
	offset, ok := v.Caret()
	if !ok {
		return "", 0, types.ErrNoActiveEditor
	}

	content := v.Content()
	if offset < 0 || offset > len(content) {
		return "", 0, fmt.Errorf("%w: caret %d outside document of length %d", types.ErrNoActiveEditor, offset, len(content))
	}

	if !IsRuneBoundary(content, offset) {
		return "", 0, fmt.Errorf("%w: caret %d splits a character", types.ErrNoActiveEditor, offset)
	}

	return content[:offset], offset, nil
}

// IsRuneBoundary reports whether offset falls between two characters of
// content. Both ends of the document count as boundaries.
func IsRuneBoundary(content string, offset int) bool {
	if offset <= 0 || offset >= len(content) {
		return offset == 0 || offset == len(content)
	}
	return utf8.RuneStart(content[offset])
}

// ReadMetadata returns the document's front matter. Aliases are normalised to
// a list under "aliases" whether they were written as a list, a comma
// separated string or the singular "alias" key.
func ReadMetadata(v View) (map[string]any, error) {
	meta, _, err := frontmatter.Parse(v.Content())
	if err != nil {
		return map[string]any{}, err
	}

	aliases := parseAliases(meta[aliasesKey])
	if len(aliases) == 0 {
		aliases = parseAliases(meta[aliasKey])
	}
	delete(meta, aliasKey)
	if len(aliases) > 0 {
		meta[aliasesKey] = aliases
	}

	return meta, nil
}

func parseAliases(raw any) []string {
	var result []string

	switch value := raw.(type) {
	case string:
		for _, alias := range strings.Split(value, ",") {
			if alias = strings.TrimSpace(alias); alias != "" {
				result = append(result, alias)
			}
		}
	case []any:
		for _, item := range value {
			if alias := strings.TrimSpace(fmt.Sprint(item)); alias != "" {
				result = append(result, alias)
			}
		}
	}

	return result
}
