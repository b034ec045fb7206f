// Package insert writes generated text back into the document it was
// requested from.
package insert

import (
	"fmt"

	"github.com/kardolus/textgen/editor"
	"github.com/kardolus/textgen/types"
)

// Point is where generated text goes: the caret at write time, or a fixed
// offset captured when the request was built.
type Point struct {
	atCaret bool
	offset  int
}

func AtCaret() Point {
	return Point{atCaret: true}
}

func At(offset int) Point {
	return Point{offset: offset}
}

func (p Point) String() string {
	if p.atCaret {
		return "caret"
	}
	return fmt.Sprintf("offset %d", p.offset)
}

// Insert writes text into the view with id viewID and leaves the caret after
// it. The view must still be the active markdown view; the host is re-checked
// right before writing. Empty text is a no-op.
func Insert(host editor.Host, viewID, text string, point Point) error {
	if text == "" {
		return nil
	}

	view, err := editor.ActiveMarkdown(host)
	if err != nil || view.ID() != viewID {
		return types.ErrEditorUnavailable
	}

	offset := point.offset
	if point.atCaret {
		caret, ok := view.Caret()
		if !ok {
			return types.ErrEditorUnavailable
		}
		offset = caret
	}

	if err := view.Insert(offset, text); err != nil {
		return fmt.Errorf("%w: %w", types.ErrEditorUnavailable, err)
	}
	view.SetCaret(offset + len(text))

	return nil
}
