package integration_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kardolus/textgen/config"
	"github.com/kardolus/textgen/editor"
	"github.com/kardolus/textgen/generator"
	"github.com/kardolus/textgen/status"
	"github.com/kardolus/textgen/template"
	"github.com/kardolus/textgen/test"
	"github.com/kardolus/textgen/types"
	"github.com/sclevine/spec"
	"github.com/sclevine/spec/report"

	. "github.com/onsi/gomega"
)

const generated = " It scatters short wavelengths of sunlight."

func TestIntegration(t *testing.T) {
	spec.Run(t, "Integration Tests", testIntegration, spec.Report(report.Terminal{}))
}

func testIntegration(t *testing.T, when spec.G, it spec.S) {
	var (
		tmpDir     string
		server     *completionServer
		fileIO     *config.FileIO
		manager    *config.Manager
		view       *editor.FileView
		workspace  *editor.Workspace
		reporter   *status.Reporter
		subject    *generator.Generator
		ctx        context.Context
		configPath string
	)

	setup := func(apiKey string) {
		cfg := fileIO.ReadDefaults()
		cfg.APIKey = apiKey
		cfg.URL = server.URL
		cfg.Prompt = "Summarize:"
		Expect(fileIO.Write(cfg)).To(Succeed())

		var err error
		manager, err = config.NewManager(fileIO)
		Expect(err).NotTo(HaveOccurred())

		dataDir, err := test.DataDir()
		Expect(err).NotTo(HaveOccurred())

		loader := template.New(filepath.Join(dataDir, "templates"), fixedChooser{choice: "summary.md"})
		reporter = status.New(nil, manager.Config.MaxTokens, manager.Config.ShowStatusBar)
		subject = generator.New(manager, workspace, reporter, generator.WithTemplates(loader))
	}

	it.Before(func() {
		RegisterTestingT(t)

		tmpDir = t.TempDir()
		ctx = context.Background()
		server = newCompletionServer()

		configPath = filepath.Join(tmpDir, "config.yaml")
		fileIO = config.New().WithConfigPath(configPath)

		docPath := filepath.Join(tmpDir, "sky.md")
		Expect(os.WriteFile(docPath, []byte("The sky is blue."), 0o644)).To(Succeed())

		var err error
		view, err = editor.Open(docPath)
		Expect(err).NotTo(HaveOccurred())
		workspace = editor.NewWorkspace(view)
	})

	it.After(func() {
		server.Close()
	})

	when("the configuration is persisted", func() {
		it("reloads field for field", func() {
			cfg := fileIO.ReadDefaults()
			cfg.APIKey = "key"
			cfg.Engine = "davinci"
			cfg.MaxTokens = -20
			cfg.Temperature = 1.5
			cfg.FrequencyPenalty = 0
			cfg.Prompt = "Write:\n"
			cfg.ShowStatusBar = false

			Expect(fileIO.Write(cfg)).To(Succeed())

			read, err := fileIO.Read()
			Expect(err).NotTo(HaveOccurred())
			Expect(read).To(Equal(cfg))
		})

		it("keeps token changes across restarts", func() {
			setup(expectedToken)

			Expect(subject.IncreaseMaxTokens()).To(Succeed())
			Expect(subject.IncreaseMaxTokens()).To(Succeed())

			restarted, err := config.NewManager(config.New().WithConfigPath(configPath))
			Expect(err).NotTo(HaveOccurred())
			Expect(restarted.Config.MaxTokens).To(Equal(180))
		})
	})

	when("generating against the completions endpoint", func() {
		it("sends the assembled prompt and writes the completion into the document", func() {
			setup(expectedToken)

			result, err := subject.Generate(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Text).To(Equal(generated))

			requests := server.received()
			Expect(requests).To(HaveLen(1))
			Expect(requests[0]).To(Equal(types.CompletionsRequest{
				Model:            "text-davinci-002",
				Prompt:           "Summarize:The sky is blue.",
				MaxTokens:        160,
				Temperature:      0.7,
				FrequencyPenalty: 0.5,
			}))

			Expect(view.Save()).To(Succeed())
			saved, err := os.ReadFile(view.ID())
			Expect(err).NotTo(HaveOccurred())
			Expect(string(saved)).To(Equal("The sky is blue." + generated))
			Expect(reporter.State()).To(Equal(status.Idle))
		})

		it("renders the chosen template and leaves its trailing section out", func() {
			setup(expectedToken)

			_, err := subject.GenerateFromTemplate(ctx, false)
			Expect(err).NotTo(HaveOccurred())

			requests := server.received()
			Expect(requests).To(HaveLen(1))
			Expect(requests[0].Prompt).To(Equal("Summarize the note titled Notes (weather, sky):The sky is blue."))
		})

		it("classifies a rejected credential", func() {
			setup("INVALID_KEY")

			_, err := subject.Generate(ctx)
			Expect(err).To(MatchError(types.ErrAuth))
			Expect(err.Error()).To(ContainSubstring("Incorrect API key provided"))
			Expect(err.Error()).NotTo(ContainSubstring(expectedToken))
			Expect(reporter.State()).To(Equal(status.Error))
			Expect(view.Content()).To(Equal("The sky is blue."))
		})

		it("classifies rate limiting", func() {
			setup(rateLimitedToken)

			_, err := subject.Generate(ctx)
			Expect(err).To(MatchError(types.ErrRateLimited))
			Expect(reporter.Text()).To(Equal("Text Generator(160): Error: rate limited"))
		})

		it("never reaches the endpoint without a credential", func() {
			setup("")

			_, err := subject.Generate(ctx)
			Expect(err).To(MatchError(types.ErrMissingCredential))
			Expect(server.received()).To(BeEmpty())
		})

		it("reports a network error when the service is down", func() {
			setup(expectedToken)
			server.Close()

			_, err := subject.Generate(ctx)
			Expect(err).To(MatchError(types.ErrNetwork))
		})
	})
}
