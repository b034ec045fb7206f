// Package template resolves a user-chosen template file into prompt text and
// the metadata declared in its front matter.
package template

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/kardolus/textgen/frontmatter"
	"github.com/kardolus/textgen/types"
	"go.uber.org/zap"
)

const (
	// PromptSectionEnd is a line that closes the prompt section of a template.
	// Anything after it is not sent.
	PromptSectionEnd = "***"
	candidatesTTL    = 30 * time.Second
	templateExt      = ".md"
)

type Template struct {
	Path     string
	Content  string
	Metadata map[string]any
}

//go:generate mockgen -destination=choosermocks_test.go -package=template_test github.com/kardolus/textgen/template Chooser
type Chooser interface {
	// Choose returns the confirmed candidate, or types.ErrCancelled.
	Choose(ctx context.Context, candidates []string) (string, error)
}

type Loader struct {
	dir     string
	chooser Chooser
	cache   *ttlcache.Cache[string, []string]
	logger  *zap.SugaredLogger
}

func New(dir string, chooser Chooser) *Loader {
	return &Loader{
		dir:     dir,
		chooser: chooser,
		cache: ttlcache.New[string, []string](
			ttlcache.WithTTL[string, []string](candidatesTTL),
			ttlcache.WithDisableTouchOnHit[string, []string](),
		),
		logger: zap.NewNop().Sugar(),
	}
}

func (l *Loader) WithLogger(logger *zap.SugaredLogger) *Loader {
	l.logger = logger
	return l
}

// Candidates lists the markdown files under the template directory, relative
// to it and sorted. Directory scans are cached briefly.
func (l *Loader) Candidates() ([]string, error) {
	if item := l.cache.Get(l.dir); item != nil {
		return item.Value(), nil
	}

	var result []string
	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), templateExt) {
			return nil
		}

		rel, err := filepath.Rel(l.dir, path)
		if err != nil {
			return err
		}
		result = append(result, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrTemplateNotFound, err)
	}

	sort.Strings(result)
	l.cache.Set(l.dir, result, ttlcache.DefaultTTL)
	l.logger.Debugf("found %d templates in %s", len(result), l.dir)

	return result, nil
}

// Resolve lets the user pick a template and loads it. A cancelled choice is
// returned as types.ErrCancelled.
func (l *Loader) Resolve(ctx context.Context) (Template, error) {
	candidates, err := l.Candidates()
	if err != nil {
		return Template{}, err
	}
	if len(candidates) == 0 {
		return Template{}, fmt.Errorf("%w: no templates in %s", types.ErrTemplateNotFound, l.dir)
	}

	choice, err := l.chooser.Choose(ctx, candidates)
	if err != nil {
		return Template{}, err
	}

	path := choice
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.dir, choice)
	}

	return Load(path)
}

// Load reads a template file. Front matter becomes Metadata; Content is the
// body up to the prompt section end marker.
func Load(path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("%w: %v", types.ErrTemplateNotFound, err)
	}

	meta, body, err := frontmatter.Parse(string(data))
	if err != nil {
		return Template{}, fmt.Errorf("template %s: %w", path, err)
	}

	return Template{
		Path:     path,
		Content:  promptSection(body),
		Metadata: meta,
	}, nil
}

func promptSection(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == PromptSectionEnd {
			return strings.Join(lines[:i], "\n")
		}
	}
	return body
}
