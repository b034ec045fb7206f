package editor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileView is a markdown file loaded into memory with a caret.
type FileView struct {
	mu       sync.Mutex
	path     string
	content  string
	caret    int
	hasCaret bool
}

// Ensure FileView implements View interface
var _ View = &FileView{}

// Open loads path with the caret at the end of the document.
func Open(path string) (*FileView, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &FileView{
		path:     path,
		content:  string(data),
		caret:    len(data),
		hasCaret: true,
	}, nil
}

// WithCaret moves the caret. A negative offset leaves the caret unbound; an
// offset inside a multi-byte character moves back to that character's start.
func (f *FileView) WithCaret(offset int) *FileView {
	f.mu.Lock()
	defer f.mu.Unlock()

	if offset < 0 {
		f.hasCaret = false
		return f
	}
	f.caret = runeBoundary(f.content, offset)
	f.hasCaret = true
	return f
}

func (f *FileView) ID() string {
	return f.path
}

func (f *FileView) Type() string {
	switch strings.ToLower(filepath.Ext(f.path)) {
	case ".md", ".markdown":
		return MarkdownView
	default:
		return PlainTextView
	}
}

func (f *FileView) Content() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.content
}

func (f *FileView) Caret() (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.caret, f.hasCaret
}

func (f *FileView) SetCaret(offset int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.caret = runeBoundary(f.content, max(offset, 0))
	f.hasCaret = true
}

func (f *FileView) Insert(offset int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if offset < 0 || offset > len(f.content) {
		return fmt.Errorf("insert offset %d outside document of length %d", offset, len(f.content))
	}
	if !IsRuneBoundary(f.content, offset) {
		return fmt.Errorf("insert offset %d splits a character", offset)
	}

	f.content = f.content[:offset] + text + f.content[offset:]
	if f.hasCaret && f.caret > offset {
		f.caret += len(text)
	}
	return nil
}

// Append adds text at the end of the document and moves the caret there.
func (f *FileView) Append(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content += text
	f.caret = len(f.content)
	f.hasCaret = true
}

func (f *FileView) Save() error {
	f.mu.Lock()
	content := f.content
	f.mu.Unlock()

	return os.WriteFile(f.path, []byte(content), 0o644)
}

// runeBoundary clamps offset to content and moves it back to the start of
// the character it falls in.
func runeBoundary(content string, offset int) int {
	if offset > len(content) {
		return len(content)
	}
	for offset > 0 && !IsRuneBoundary(content, offset) {
		offset--
	}
	return offset
}

// Workspace is a Host with at most one focused view.
type Workspace struct {
	mu     sync.Mutex
	active View
}

// Ensure Workspace implements Host interface
var _ Host = &Workspace{}

func NewWorkspace(active View) *Workspace {
	return &Workspace{active: active}
}

func (w *Workspace) ActiveView() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

func (w *Workspace) Focus(v View) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = v
}
