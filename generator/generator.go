// Package generator runs text generations end to end: it reads the active
// document, builds the prompt, calls the completion service and writes the
// result back, keeping the status reporter in step.
package generator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/kardolus/textgen/client"
	"github.com/kardolus/textgen/config"
	"github.com/kardolus/textgen/editor"
	"github.com/kardolus/textgen/http"
	"github.com/kardolus/textgen/insert"
	"github.com/kardolus/textgen/internal"
	"github.com/kardolus/textgen/prompt"
	"github.com/kardolus/textgen/status"
	"github.com/kardolus/textgen/template"
	"github.com/kardolus/textgen/types"
	"go.uber.org/zap"
)

// CompleterFactory builds the completion client for one invocation.
type CompleterFactory func(cfg config.Config) (client.Completer, error)

// TemplateResolver picks and loads a template.
type TemplateResolver interface {
	Resolve(ctx context.Context) (template.Template, error)
}

// Notifier shows a transient message for a failed invocation.
type Notifier interface {
	Notify(err error)
}

type Generator struct {
	manager      *config.Manager
	host         editor.Host
	reporter     *status.Reporter
	templates    TemplateResolver
	newCompleter CompleterFactory
	notifier     Notifier
	logger       *zap.SugaredLogger
	singleFlight bool
	inFlight     atomic.Bool
}

type Option func(*Generator)

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(g *Generator) { g.logger = logger }
}

func WithTemplates(templates TemplateResolver) Option {
	return func(g *Generator) { g.templates = templates }
}

func WithCompleterFactory(factory CompleterFactory) Option {
	return func(g *Generator) { g.newCompleter = factory }
}

func WithNotifier(notifier Notifier) Option {
	return func(g *Generator) { g.notifier = notifier }
}

// WithSingleFlight rejects an invocation with types.ErrBusy while another
// one is pending. Without it overlapping invocations run independently.
func WithSingleFlight() Option {
	return func(g *Generator) { g.singleFlight = true }
}

func New(manager *config.Manager, host editor.Host, reporter *status.Reporter, opts ...Option) *Generator {
	g := &Generator{
		manager:  manager,
		host:     host,
		reporter: reporter,
		logger:   zap.NewNop().Sugar(),
	}
	g.newCompleter = g.defaultCompleter

	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate completes the static prompt plus the text before the caret.
func (g *Generator) Generate(ctx context.Context) (types.Result, error) {
	return g.run(ctx, types.ModePlain, false)
}

// GenerateWithMetadata adds the document's front matter to the prompt.
func (g *Generator) GenerateWithMetadata(ctx context.Context) (types.Result, error) {
	return g.run(ctx, types.ModeMetadata, true)
}

// GenerateFromTemplate lets the user choose a template that replaces the
// static prompt. A cancelled choice aborts silently.
func (g *Generator) GenerateFromTemplate(ctx context.Context, withMetadata bool) (types.Result, error) {
	return g.run(ctx, types.ModeTemplate, withMetadata)
}

func (g *Generator) IncreaseMaxTokens() error {
	return g.adjustTokens(g.manager.IncreaseMaxTokens)
}

func (g *Generator) DecreaseMaxTokens() error {
	return g.adjustTokens(g.manager.DecreaseMaxTokens)
}

func (g *Generator) adjustTokens(update func() error) error {
	if err := update(); err != nil {
		g.notify(err)
		return err
	}

	maxTokens := g.manager.Config.MaxTokens
	g.reporter.SetMaxTokens(maxTokens)
	g.logger.Infof("max tokens set to %d", maxTokens)
	return nil
}

func (g *Generator) run(ctx context.Context, mode types.Mode, augment bool) (result types.Result, err error) {
	logger := g.logger.With("invocation", internal.NewInvocationID(), "mode", mode.String())

	if g.singleFlight {
		if !g.inFlight.CompareAndSwap(false, true) {
			logger.Warn("rejected: another generation is pending")
			g.notify(types.ErrBusy)
			return types.Result{}, types.ErrBusy
		}
		defer g.inFlight.Store(false)
	}

	g.reporter.Start()
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("generation panicked: %v", r)
			result, err = types.Result{}, fmt.Errorf("unexpected failure: %v", r)
		}
		err = g.finish(logger, err)
	}()

	return g.generate(ctx, logger, mode, augment)
}

func (g *Generator) finish(logger *zap.SugaredLogger, err error) error {
	switch {
	case err == nil:
		g.reporter.Succeed()
		return nil
	case errors.Is(err, types.ErrCancelled):
		logger.Info("template choice cancelled")
		g.reporter.Succeed()
		return nil
	default:
		logger.Errorf("generation failed: %v", err)
		g.reporter.Fail(err)
		g.notify(err)
		return err
	}
}

func (g *Generator) generate(ctx context.Context, logger *zap.SugaredLogger, mode types.Mode, augment bool) (types.Result, error) {
	cfg := g.manager.Config

	view, err := editor.ActiveMarkdown(g.host)
	if err != nil {
		return types.Result{}, err
	}

	var tpl *template.Template
	if mode == types.ModeTemplate {
		if g.templates == nil {
			return types.Result{}, fmt.Errorf("%w: no template directory configured", types.ErrTemplateNotFound)
		}
		resolved, err := g.templates.Resolve(ctx)
		if err != nil {
			return types.Result{}, err
		}
		logger.Debugf("using template %s", resolved.Path)
		tpl = &resolved
	}

	docContext, caret, err := editor.ContextBeforeCaret(view)
	if err != nil {
		return types.Result{}, err
	}

	var meta map[string]any
	if mode != types.ModePlain {
		meta, err = editor.ReadMetadata(view)
		if err != nil {
			logger.Warnf("ignoring unreadable front matter: %v", err)
			meta = map[string]any{}
		}
	}

	text, err := prompt.Build(cfg, mode, prompt.Input{
		Context:         docContext,
		Metadata:        meta,
		Template:        tpl,
		AugmentMetadata: augment,
	})
	if err != nil {
		return types.Result{}, err
	}

	completer, err := g.newCompleter(cfg)
	if err != nil {
		return types.Result{}, err
	}

	generated, err := completer.Complete(ctx, prompt.NewRequest(cfg, text))
	if err != nil {
		return types.Result{}, err
	}

	point := insert.AtCaret()
	if mode == types.ModeTemplate {
		point = insert.At(caret)
	}
	if err := insert.Insert(g.host, view.ID(), generated, point); err != nil {
		return types.Result{}, err
	}

	logger.Infof("generated %d chars into %s at %s", len(generated), view.ID(), point)
	return types.Result{Text: generated, Mode: mode}, nil
}

func (g *Generator) defaultCompleter(cfg config.Config) (client.Completer, error) {
	c, err := client.New(http.RealCallerFactory, cfg)
	if err != nil {
		return nil, err
	}
	return c.WithLogger(g.logger), nil
}

func (g *Generator) notify(err error) {
	if g.notifier != nil {
		g.notifier.Notify(err)
	}
}
