package types

import "errors"

var (
	ErrNoActiveEditor    = errors.New("no active editor")
	ErrEmptyPrompt       = errors.New("empty prompt")
	ErrTemplateNotFound  = errors.New("template not found")
	ErrMissingCredential = errors.New("missing api key")
	ErrMissingEngine     = errors.New("missing engine")
	ErrNetwork           = errors.New("network error")
	ErrAuth              = errors.New("credential rejected")
	ErrRateLimited       = errors.New("rate limited")
	ErrService           = errors.New("service error")
	ErrEditorUnavailable = errors.New("editor unavailable")
	ErrCancelled         = errors.New("cancelled")
	ErrBusy              = errors.New("generation already in progress")
)

const unclassifiedHint = "check logs"

var hints = []struct {
	err  error
	hint string
}{
	{ErrNoActiveEditor, "open a markdown file"},
	{ErrEmptyPrompt, "nothing to send"},
	{ErrTemplateNotFound, "template not found"},
	{ErrMissingCredential, "set api key"},
	{ErrMissingEngine, "set engine"},
	{ErrNetwork, "network"},
	{ErrAuth, "invalid api key"},
	{ErrRateLimited, "rate limited"},
	{ErrService, "service error"},
	{ErrEditorUnavailable, "editor changed"},
	{ErrBusy, "busy"},
}

// Hint returns the short label shown by the status surface for err.
func Hint(err error) string {
	for _, h := range hints {
		if errors.Is(err, h.err) {
			return h.hint
		}
	}
	return unclassifiedHint
}
