package config

type Config struct {
	APIKey           string  `yaml:"api_key" validate:"required"`
	APIKeyFile       string  `yaml:"api_key_file"`
	Engine           string  `yaml:"engine" validate:"required"`
	MaxTokens        int     `yaml:"max_tokens"`
	Temperature      float64 `yaml:"temperature"`
	FrequencyPenalty float64 `yaml:"frequency_penalty"`
	Prompt           string  `yaml:"prompt"`
	ShowStatusBar    bool    `yaml:"showStatusBar"`
	Provider         string  `yaml:"provider"`
	URL              string  `yaml:"url"`
	CompletionsPath  string  `yaml:"completions_path"`
	AuthHeader       string  `yaml:"auth_header"`
	AuthTokenPrefix  string  `yaml:"auth_token_prefix"`
	TemplatesDir     string  `yaml:"templates_dir"`
	TimeoutSeconds   int     `yaml:"timeout_seconds"`
}

const (
	OpenAI = "openai"
	Cohere = "cohere"
)
