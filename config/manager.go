package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kardolus/textgen/types"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix      = "TEXTGEN"
	TokenStep      = 10
	maskedAPIKey   = "********"
	fieldAPIKey    = "APIKey"
	fieldEngine    = "Engine"
	errReadConfig  = "failed to read config: %w"
	errWriteConfig = "failed to write config: %w"
)

var validate = validator.New()

// Manager owns the process-wide configuration. Persisted holds what is on
// disk; Config is the effective value after environment overrides. A field
// changed through Update is released from its override.
type Manager struct {
	configStore ConfigStore
	env         *viper.Viper
	released    map[string]bool
	persisted   Config
	Config      Config
}

func NewManager(cs ConfigStore) (*Manager, error) {
	configuration, err := cs.Read()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf(errReadConfig, err)
		}
		configuration = cs.ReadDefaults()
	}

	return &Manager{
		configStore: cs,
		released:    map[string]bool{},
		persisted:   configuration,
		Config:      configuration,
	}, nil
}

// WithEnvironment overlays TEXTGEN_<KEY> environment variables on the
// effective configuration. Overrides are never written back to the store.
func (m *Manager) WithEnvironment() *Manager {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	m.env = v
	m.Config = m.replaceByEnvironment(m.persisted)
	return m
}

// Update applies fn to the persisted configuration and writes it out. The
// in-memory value only changes once the write succeeded. fn is also applied to
// the effective configuration to find the fields it sets, so it must not have
// side effects.
func (m *Manager) Update(fn func(*Config)) error {
	next := m.persisted
	fn(&next)

	effective := m.Config
	fn(&effective)

	if err := m.configStore.Write(next); err != nil {
		return fmt.Errorf(errWriteConfig, err)
	}

	for _, key := range append(changedKeys(m.persisted, next), changedKeys(m.Config, effective)...) {
		m.released[key] = true
	}

	m.persisted = next
	m.Config = m.replaceByEnvironment(next)
	return nil
}

// IncreaseMaxTokens raises the effective token limit by TokenStep and
// persists the result.
func (m *Manager) IncreaseMaxTokens() error {
	return m.setMaxTokens(m.Config.MaxTokens + TokenStep)
}

func (m *Manager) DecreaseMaxTokens() error {
	return m.setMaxTokens(m.Config.MaxTokens - TokenStep)
}

func (m *Manager) setMaxTokens(maxTokens int) error {
	return m.Update(func(c *Config) { c.MaxTokens = maxTokens })
}

// ShowConfig serializes the effective configuration with the api key masked.
func (m *Manager) ShowConfig() (string, error) {
	shown := m.Config
	if shown.APIKey != "" {
		shown.APIKey = maskedAPIKey
	}

	data, err := yaml.Marshal(shown)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// Validate checks the fields a completion call cannot do without.
func Validate(c Config) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		for _, fe := range fieldErrors {
			switch fe.Field() {
			case fieldAPIKey:
				return types.ErrMissingCredential
			case fieldEngine:
				return types.ErrMissingEngine
			}
		}
	}

	return err
}

func (m *Manager) replaceByEnvironment(configuration Config) Config {
	if m.env == nil {
		return configuration
	}

	t := reflect.TypeOf(configuration)
	v := reflect.ValueOf(&configuration).Elem()

	for i := 0; i < t.NumField(); i++ {
		key := strings.ToLower(t.Field(i).Tag.Get("yaml"))
		if key == "" || m.released[key] || !m.env.IsSet(key) {
			continue
		}

		field := v.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(m.env.GetString(key))
		case reflect.Int:
			field.SetInt(int64(m.env.GetInt(key)))
		case reflect.Bool:
			field.SetBool(m.env.GetBool(key))
		case reflect.Float64:
			field.SetFloat(m.env.GetFloat64(key))
		}
	}

	return configuration
}

// changedKeys lists the lowercased yaml keys of the fields that differ.
func changedKeys(before, after Config) []string {
	var keys []string

	t := reflect.TypeOf(before)
	b := reflect.ValueOf(before)
	a := reflect.ValueOf(after)

	for i := 0; i < t.NumField(); i++ {
		if !reflect.DeepEqual(b.Field(i).Interface(), a.Field(i).Interface()) {
			keys = append(keys, strings.ToLower(t.Field(i).Tag.Get("yaml")))
		}
	}

	return keys
}
