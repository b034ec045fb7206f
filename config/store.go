package config

import (
	"os"
	"path/filepath"

	"github.com/kardolus/textgen/internal"
	"gopkg.in/yaml.v3"
)

const (
	defaultEngine           = "text-davinci-002"
	defaultMaxTokens        = 160
	defaultTemperature      = 0.7
	defaultFrequencyPenalty = 0.5
	defaultShowStatusBar    = true
	defaultURL              = "https://api.openai.com"
	defaultCompletionsPath  = "/v1/completions"
	defaultAuthHeader       = "Authorization"
	defaultAuthTokenPrefix  = "Bearer "
	defaultTimeoutSeconds   = 60
	configFileName          = "config.yaml"
)

type ConfigStore interface {
	Read() (Config, error)
	ReadDefaults() Config
	Write(Config) error
}

// Ensure FileIO implements ConfigStore interface
var _ ConfigStore = &FileIO{}

type FileIO struct {
	configFilePath string
}

func New() *FileIO {
	configPath, _ := getPath()

	return &FileIO{
		configFilePath: configPath,
	}
}

func (f *FileIO) WithConfigPath(configFilePath string) *FileIO {
	f.configFilePath = configFilePath
	return f
}

// Read decodes the config file over the defaults: keys present in the file win,
// missing keys keep their default and unknown keys are dropped.
func (f *FileIO) Read() (Config, error) {
	result := f.ReadDefaults()

	buf, err := os.ReadFile(f.configFilePath)
	if err != nil {
		return Config{}, err
	}

	if err := yaml.Unmarshal(buf, &result); err != nil {
		return Config{}, err
	}

	return result, nil
}

func (f *FileIO) ReadDefaults() Config {
	return Config{
		Engine:           defaultEngine,
		MaxTokens:        defaultMaxTokens,
		Temperature:      defaultTemperature,
		FrequencyPenalty: defaultFrequencyPenalty,
		ShowStatusBar:    defaultShowStatusBar,
		Provider:         OpenAI,
		URL:              defaultURL,
		CompletionsPath:  defaultCompletionsPath,
		AuthHeader:       defaultAuthHeader,
		AuthTokenPrefix:  defaultAuthTokenPrefix,
		TimeoutSeconds:   defaultTimeoutSeconds,
	}
}

// Write replaces the config file atomically.
func (f *FileIO) Write(config Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.configFilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, configFileName+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), f.configFilePath)
}

func getPath() (string, error) {
	homeDir, err := internal.GetConfigHome()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, configFileName), nil
}
