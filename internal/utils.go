package internal

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	ConfigHomeEnv      = "TEXTGEN_CONFIG_HOME"
	DefaultConfigDir   = ".textgen"
	DefaultTemplateDir = "templates"
	InvocationIDLength = 8
)

// NewInvocationID returns a short random id used to correlate the log lines of
// one generation.
func NewInvocationID() string {
	return uuid.New().String()[:InvocationIDLength]
}

func GetConfigHome() (string, error) {
	var result string

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	result = filepath.Join(homeDir, DefaultConfigDir)

	if tmp := os.Getenv(ConfigHomeEnv); tmp != "" {
		result = tmp
	}

	return result, nil
}

func GetTemplateHome() (string, error) {
	configHome, err := GetConfigHome()
	if err != nil {
		return "", err
	}

	return filepath.Join(configHome, DefaultTemplateDir), nil
}
