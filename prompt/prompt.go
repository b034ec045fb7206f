// Package prompt assembles the text sent to the completion service from the
// configuration, the document and an optional template.
package prompt

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kardolus/textgen/config"
	"github.com/kardolus/textgen/template"
	"github.com/kardolus/textgen/types"
	"gopkg.in/yaml.v3"
)

const (
	metadataDelimiter = "---\n"
	listSeparator     = ", "
)

// placeholder matches {{meta.key}} and {{key}}.
var placeholder = regexp.MustCompile(`\{\{\s*(?:meta\.)?([\w-]+)\s*\}\}`)

type Input struct {
	// Context is the document text up to the caret.
	Context string
	// Metadata is the document's front matter, possibly empty.
	Metadata map[string]any
	// Template is required in template mode and ignored otherwise.
	Template *template.Template
	// AugmentMetadata adds the metadata section in template mode.
	AugmentMetadata bool
}

// Build returns the prompt text for mode. Parts are concatenated without
// separators. Plain and metadata modes send the static prompt, the metadata
// section and the context; template mode sends the metadata section, the
// rendered template and the context.
func Build(cfg config.Config, mode types.Mode, in Input) (string, error) {
	var b strings.Builder

	switch mode {
	case types.ModePlain:
		b.WriteString(cfg.Prompt)
	case types.ModeMetadata:
		b.WriteString(cfg.Prompt)
		section, err := metadataSection(in.Metadata)
		if err != nil {
			return "", err
		}
		b.WriteString(section)
	case types.ModeTemplate:
		if in.Template == nil {
			return "", fmt.Errorf("%w: no template content", types.ErrTemplateNotFound)
		}
		if in.AugmentMetadata {
			section, err := metadataSection(in.Metadata)
			if err != nil {
				return "", err
			}
			b.WriteString(section)
		}
		b.WriteString(Render(in.Template.Content, merge(in.Template.Metadata, in.Metadata)))
	default:
		return "", fmt.Errorf("unknown mode %d", mode)
	}

	b.WriteString(in.Context)

	result := b.String()
	if strings.TrimSpace(result) == "" {
		return "", types.ErrEmptyPrompt
	}

	return result, nil
}

// NewRequest pairs prompt text with the generation parameters. Values are
// passed through unclamped.
func NewRequest(cfg config.Config, text string) types.Request {
	return types.Request{
		Engine:           cfg.Engine,
		Prompt:           text,
		MaxTokens:        cfg.MaxTokens,
		Temperature:      cfg.Temperature,
		FrequencyPenalty: cfg.FrequencyPenalty,
	}
}

// Render substitutes placeholders from values. Unknown keys render empty.
func Render(content string, values map[string]any) string {
	return placeholder.ReplaceAllStringFunc(content, func(match string) string {
		key := placeholder.FindStringSubmatch(match)[1]
		value, ok := values[key]
		if !ok {
			return ""
		}
		return format(value)
	})
}

func metadataSection(meta map[string]any) (string, error) {
	if len(meta) == 0 {
		return "", nil
	}

	data, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("failed to serialize metadata: %w", err)
	}

	return metadataDelimiter + string(data) + metadataDelimiter, nil
}

// merge overlays the document's metadata on the template's own.
func merge(templateMeta, documentMeta map[string]any) map[string]any {
	result := make(map[string]any, len(templateMeta)+len(documentMeta))
	for k, v := range templateMeta {
		result[k] = v
	}
	for k, v := range documentMeta {
		result[k] = v
	}
	return result
}

func format(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, listSeparator)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, format(item))
		}
		return strings.Join(parts, listSeparator)
	case time.Time:
		// Front matter dates decode as midnight UTC.
		if v.Equal(v.Truncate(24*time.Hour)) && v.Location() == time.UTC {
			return v.Format(time.DateOnly)
		}
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}
