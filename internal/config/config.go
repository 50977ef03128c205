package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"cag/internal/generation/openai"
)

// DataConfig locates the document set.
type DataConfig struct {
	Path       string `yaml:"path"`
	SeedSample bool   `yaml:"seed_sample"`
}

// OpenAIGeneratorConfig holds configuration for the OpenAI-compatible generator.
type OpenAIGeneratorConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	TimeoutSecs int     `yaml:"timeout_secs"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
}

// GeneratorConfig selects and configures the text generator implementation.
type GeneratorConfig struct {
	Type         string                 `yaml:"type"`
	MaxSentences int                    `yaml:"max_sentences"`
	OpenAI       *OpenAIGeneratorConfig `yaml:"openai,omitempty"`
}

// SearchConfig configures the similarity search used on a cache miss.
type SearchConfig struct {
	TopK int `yaml:"top_k"`
}

// CacheConfig configures the topic cache.
type CacheConfig struct {
	Preload       bool     `yaml:"preload"`
	Topics        []string `yaml:"topics,omitempty"`
	MatchAcronyms bool     `yaml:"match_acronyms"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Data      DataConfig      `yaml:"data"`
	Generator GeneratorConfig `yaml:"generator"`
	Search    SearchConfig    `yaml:"search"`
	Cache     CacheConfig     `yaml:"cache"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	// Unset keys keep their defaults
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/cag/config.yaml.
// If neither exists, it writes defaults to ~/.config/cag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Data:      DataConfig{Path: filepath.Join("data", "documents.json"), SeedSample: true},
		Generator: GeneratorConfig{Type: "extractive", MaxSentences: 3},
		Search:    SearchConfig{TopK: 3},
		Cache:     CacheConfig{Preload: true, MatchAcronyms: true},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Data.Path == "" {
		cfg.Data.Path = filepath.Join("data", "documents.json")
	}
	if cfg.Search.TopK <= 0 {
		cfg.Search.TopK = 3
	}
	if cfg.Generator.MaxSentences <= 0 {
		cfg.Generator.MaxSentences = 3
	}
	if cfg.Generator.Type == "openai" || cfg.Generator.Type == "groq" {
		if cfg.Generator.OpenAI == nil {
			cfg.Generator.OpenAI = &OpenAIGeneratorConfig{}
		}
		o := cfg.Generator.OpenAI
		baseURL, keyEnv, model := openai.DefaultBaseURL, openai.DefaultAPIKeyEnv, openai.DefaultModel
		if cfg.Generator.Type == "openai" {
			baseURL, keyEnv, model = openai.OpenAIBaseURL, openai.OpenAIAPIKeyEnv, openai.OpenAIModel
		}
		if o.BaseURL == "" {
			o.BaseURL = baseURL
		}
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = keyEnv
		}
		if o.Model == "" {
			o.Model = model
		}
		if o.TimeoutSecs == 0 {
			o.TimeoutSecs = int(openai.DefaultTimeout.Seconds())
		}
		if o.MaxTokens == 0 {
			o.MaxTokens = openai.DefaultMaxTokens
		}
	}
}
