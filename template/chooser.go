package template

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"
	"github.com/kardolus/textgen/types"
)

const chooserTitle = "Choose a template"

// HuhChooser asks on the terminal. Esc or Ctrl-C cancels.
type HuhChooser struct{}

// Ensure HuhChooser implements Chooser interface
var _ Chooser = HuhChooser{}

func (HuhChooser) Choose(ctx context.Context, candidates []string) (string, error) {
	var choice string

	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(chooserTitle).
			Options(huh.NewOptions(candidates...)...).
			Value(&choice),
	)).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, context.Canceled) {
		return "", types.ErrCancelled
	}
	if err != nil {
		return "", err
	}

	return choice, nil
}
