package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/joho/godotenv"
	"github.com/kardolus/textgen/cmd/textgen/utils"
	"github.com/kardolus/textgen/config"
	"github.com/kardolus/textgen/editor"
	"github.com/kardolus/textgen/generator"
	"github.com/kardolus/textgen/http"
	"github.com/kardolus/textgen/internal"
	"github.com/kardolus/textgen/status"
	"github.com/kardolus/textgen/template"
	"github.com/kardolus/textgen/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	defaultInteractivePrompt = "[%counter] %tokens>"
	historyFile              = "history"
	helpText                 = `Lines are appended to the document. Commands:
  :gen   generate from the static prompt
  :meta  generate with the document's front matter
  :tpl   generate from a template
  :tplm  generate from a template with the document's front matter
  :+ :-  raise or lower the token limit by 10
  :show  print the document
  :w     save the document
  :q     save and quit`
)

var (
	debug             bool
	filePath          string
	caret             int
	withMetadata      bool
	interactivePrompt string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "textgen",
		Short:         "Text generation for markdown documents",
		Long:          "Generate text from a completion service and insert it into markdown documents, optionally driven by templates and front matter.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			internal.InitLogger(debug)
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Complete the static prompt plus the text before the caret",
		RunE: runGeneration(func(ctx context.Context, g *generator.Generator) (types.Result, error) {
			return g.Generate(ctx)
		}),
	}
	metadataCmd := &cobra.Command{
		Use:   "generate-metadata",
		Short: "Like generate, with the document's front matter added to the prompt",
		RunE: runGeneration(func(ctx context.Context, g *generator.Generator) (types.Result, error) {
			return g.GenerateWithMetadata(ctx)
		}),
	}
	templateCmd := &cobra.Command{
		Use:   "generate-template",
		Short: "Choose a template and complete it plus the text before the caret",
		RunE: runGeneration(func(ctx context.Context, g *generator.Generator) (types.Result, error) {
			return g.GenerateFromTemplate(ctx, withMetadata)
		}),
	}
	templateCmd.Flags().BoolVar(&withMetadata, "metadata", false, "Add the document's front matter to the prompt")

	interactiveCmd := &cobra.Command{
		Use:   "interactive",
		Short: "Edit a document line by line and trigger generations",
		RunE:  runInteractive,
	}
	interactiveCmd.Flags().StringVar(&interactivePrompt, "prompt", defaultInteractivePrompt, "Prompt format (%counter, %tokens, %date, %time, %datetime)")

	for _, cmd := range []*cobra.Command{generateCmd, metadataCmd, templateCmd, interactiveCmd} {
		cmd.Flags().StringVarP(&filePath, "file", "f", "", "Markdown document to generate into")
		cmd.Flags().IntVar(&caret, "caret", -1, "Caret offset in bytes (default: end of document)")
		_ = cmd.MarkFlagRequired("file")
	}

	tokensCmd := &cobra.Command{
		Use:   "tokens",
		Short: "Adjust the token limit",
	}
	tokensCmd.AddCommand(
		&cobra.Command{
			Use:   "increase",
			Short: fmt.Sprintf("Raise the token limit by %d", config.TokenStep),
			Args:  cobra.NoArgs,
			RunE: runTokens(func(g *generator.Generator) error {
				return g.IncreaseMaxTokens()
			}),
		},
		&cobra.Command{
			Use:   "decrease",
			Short: fmt.Sprintf("Lower the token limit by %d", config.TokenStep),
			Args:  cobra.NoArgs,
			RunE: runTokens(func(g *generator.Generator) error {
				return g.DecreaseMaxTokens()
			}),
		},
	)

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE:  runShowConfig,
	})

	templatesCmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect the template directory",
	}
	templatesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the available templates",
		Args:  cobra.NoArgs,
		RunE:  runListTemplates,
	})

	rootCmd.AddCommand(generateCmd, metadataCmd, templateCmd, tokensCmd, configCmd, templatesCmd, interactiveCmd)

	if err := rootCmd.Execute(); err != nil {
		if utils.ShouldPrint(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// app wires one process worth of collaborators.
type app struct {
	manager   *config.Manager
	reporter  *status.Reporter
	loader    *template.Loader
	workspace *editor.Workspace
	view      *editor.FileView
	generator *generator.Generator
}

func newApp(documentPath string) (*app, error) {
	manager, err := config.NewManager(config.New())
	if err != nil {
		return nil, err
	}
	manager.WithEnvironment()
	cfg := manager.Config

	templatesDir := cfg.TemplatesDir
	if templatesDir == "" {
		if templatesDir, err = internal.GetTemplateHome(); err != nil {
			return nil, err
		}
	}

	logger := zap.S()
	a := &app{
		manager:   manager,
		reporter:  status.New(status.NewTerminal(os.Stderr), cfg.MaxTokens, cfg.ShowStatusBar).WithLogger(logger),
		loader:    template.New(templatesDir, template.HuhChooser{}).WithLogger(logger),
		workspace: editor.NewWorkspace(nil),
	}

	if documentPath != "" {
		view, err := editor.Open(documentPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", documentPath, err)
		}
		if caret >= 0 {
			view.WithCaret(caret)
		}
		a.view = view
		a.workspace.Focus(view)
	}

	a.generator = generator.New(manager, a.workspace, a.reporter,
		generator.WithLogger(logger),
		generator.WithTemplates(a.loader),
		generator.WithNotifier(stderrNotifier{}),
	)

	return a, nil
}

func runGeneration(fn func(context.Context, *generator.Generator) (types.Result, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(filePath)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		result, err := fn(ctx, a.generator)
		if err != nil {
			return utils.Reported(err)
		}
		if result.Text == "" {
			return nil
		}

		return a.view.Save()
	}
}

func runTokens(fn func(*generator.Generator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp("")
		if err != nil {
			return err
		}
		return utils.Reported(fn(a.generator))
	}
}

func runShowConfig(cmd *cobra.Command, args []string) error {
	a, err := newApp("")
	if err != nil {
		return err
	}

	out, err := a.manager.ShowConfig()
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func runListTemplates(cmd *cobra.Command, args []string) error {
	a, err := newApp("")
	if err != nil {
		return err
	}

	candidates, err := a.loader.Candidates()
	if err != nil {
		return err
	}

	for _, candidate := range candidates {
		fmt.Fprintln(cmd.OutOrStdout(), candidate)
	}
	return nil
}

func runInteractive(cmd *cobra.Command, args []string) error {
	a, err := newApp(filePath)
	if err != nil {
		return err
	}

	var historyPath string
	if home, err := internal.GetConfigHome(); err == nil {
		historyPath = filepath.Join(home, historyFile)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          utils.FormatPrompt(interactivePrompt, 1, a.manager.Config.MaxTokens, time.Now()),
		HistoryFile:     historyPath,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Fprintln(rl.Stdout(), helpText)

	for counter := 1; ; counter++ {
		rl.SetPrompt(utils.FormatPrompt(interactivePrompt, counter, a.manager.Config.MaxTokens, time.Now()))

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return a.view.Save()
		}
		if err != nil {
			return err
		}

		if done := a.dispatch(cmd.Context(), rl.Stdout(), line); done {
			return a.view.Save()
		}
	}
}

// dispatch handles one interactive line and reports whether the session ends.
// Command failures are already reported by the generator's notifier.
func (a *app) dispatch(ctx context.Context, out io.Writer, line string) bool {
	switch utils.ParseCommand(line) {
	case utils.None:
		a.view.Append(line + "\n")
	case utils.Generate:
		_, _ = a.generator.Generate(ctx)
	case utils.GenerateWithMetadata:
		_, _ = a.generator.GenerateWithMetadata(ctx)
	case utils.GenerateFromTemplate:
		_, _ = a.generator.GenerateFromTemplate(ctx, false)
	case utils.GenerateFromTemplateWithMetadata:
		_, _ = a.generator.GenerateFromTemplate(ctx, true)
	case utils.IncreaseTokens:
		_ = a.generator.IncreaseMaxTokens()
	case utils.DecreaseTokens:
		_ = a.generator.DecreaseMaxTokens()
	case utils.Show:
		fmt.Fprintln(out, a.view.Content())
	case utils.Save:
		if err := a.view.Save(); err != nil {
			fmt.Fprintln(out, "error:", err)
		}
	case utils.Quit:
		return true
	case utils.Help:
		fmt.Fprintln(out, helpText)
	default:
		fmt.Fprintf(out, "unknown command %q, try :help\n", strings.TrimSpace(line))
	}
	return false
}

type stderrNotifier struct{}

func (stderrNotifier) Notify(err error) {
	msg := "Text Generator: " + err.Error()
	if http.IsTransient(err) {
		msg += " (try again)"
	}
	fmt.Fprintln(os.Stderr, msg)
}
