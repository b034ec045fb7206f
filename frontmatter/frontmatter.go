// Package frontmatter reads the YAML block delimited by "---" lines at the top
// of a markdown document. Documents and templates share this convention.
package frontmatter

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Split returns the raw YAML block and the body following it. When the input
// has no complete front matter block, found is false and body is the input
// unchanged. Windows line endings are normalised first.
func Split(raw string) (block, body string, found bool) {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	if !strings.HasPrefix(raw, delimiter+"\n") {
		return "", raw, false
	}

	rest := raw[len(delimiter)+1:]

	// Empty block: the closing delimiter follows the opening one directly.
	if rest == delimiter {
		return "", "", true
	}
	if strings.HasPrefix(rest, delimiter+"\n") {
		return "", rest[len(delimiter)+1:], true
	}

	block, body, found = strings.Cut(rest, "\n"+delimiter+"\n")
	if found {
		return block, body, true
	}

	if strings.HasSuffix(rest, "\n"+delimiter) {
		return strings.TrimSuffix(rest, "\n"+delimiter), "", true
	}

	return "", raw, false
}

// Parse decodes the front matter of raw into a key/value map and returns the
// remaining body. A document without front matter yields an empty map.
func Parse(raw string) (map[string]any, string, error) {
	block, body, found := Split(raw)
	meta := map[string]any{}
	if !found || strings.TrimSpace(block) == "" {
		return meta, body, nil
	}

	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		return map[string]any{}, body, fmt.Errorf("frontmatter: %w", err)
	}
	if meta == nil {
		meta = map[string]any{}
	}

	return meta, body, nil
}
