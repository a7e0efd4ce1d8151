// Package config loads and validates the application configuration from a
// YAML file, with environment variable overrides for every credential and
// path so scripted deployments never need to edit the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Provider names accepted in the "provider" field.
const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
	ProviderOllama = "ollama"
)

// OpenAIConfig holds credentials for the OpenAI API.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// AzureConfig holds credentials for an Azure OpenAI deployment.
type AzureConfig struct {
	APIKey     string `yaml:"api_key"`
	Endpoint   string `yaml:"endpoint"`
	Deployment string `yaml:"deployment"`
	APIVersion string `yaml:"api_version"`
}

// OllamaConfig points at a local Ollama server.
type OllamaConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// PriceOverride is a per-model price override, expressed per 1K tokens to
// match provider pricing pages.
type PriceOverride struct {
	InputPer1K  float64 `yaml:"input_per_1k"`
	OutputPer1K float64 `yaml:"output_per_1k"`
}

// Config is the full application configuration.
type Config struct {
	// DiaryPath and PlannerPath are the directories holding reflection and
	// plan entries. Both are required.
	DiaryPath   string `yaml:"diary_path"`
	PlannerPath string `yaml:"planner_path"`

	// Provider selects the completion backend: openai, azure, or ollama.
	Provider string `yaml:"provider"`

	OpenAI OpenAIConfig `yaml:"openai"`
	Azure  AzureConfig  `yaml:"azure"`
	Ollama OllamaConfig `yaml:"ollama"`

	// CostDBPath locates the usage ledger database. Defaults under the
	// state directory.
	CostDBPath string `yaml:"cost_db_path"`

	// MinSubstantialChars is the brain-dump length below which an entry is
	// skipped for analysis. Zero means the built-in default.
	MinSubstantialChars int `yaml:"min_substantial_chars"`

	// Prices overrides the built-in price table per model tier.
	Prices map[string]PriceOverride `yaml:"prices"`
}

// DefaultPath returns the default config file location,
// ~/.brain/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".brain", "config.yaml"), nil
}

// defaultCostDBPath returns ~/.brain/costs.db.
func defaultCostDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".brain", "costs.db"), nil
}

// Load reads the config file at path (DefaultPath when empty), applies
// environment overrides, fills defaults, and validates. A missing file is
// not an error by itself; the result must still validate, so a missing
// file with no environment overrides fails on the required paths.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.fillDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with BRAIN_* environment variables.
func (c *Config) applyEnv() {
	setString(&c.DiaryPath, "BRAIN_DIARY_PATH")
	setString(&c.PlannerPath, "BRAIN_PLANNER_PATH")
	setString(&c.Provider, "BRAIN_PROVIDER")
	setString(&c.CostDBPath, "BRAIN_COST_DB")

	setString(&c.OpenAI.APIKey, "BRAIN_OPENAI_API_KEY")
	setString(&c.OpenAI.Model, "BRAIN_OPENAI_MODEL")
	setString(&c.OpenAI.BaseURL, "BRAIN_OPENAI_BASE_URL")

	setString(&c.Azure.APIKey, "BRAIN_AZURE_API_KEY")
	setString(&c.Azure.Endpoint, "BRAIN_AZURE_ENDPOINT")
	setString(&c.Azure.Deployment, "BRAIN_AZURE_DEPLOYMENT")
	setString(&c.Azure.APIVersion, "BRAIN_AZURE_API_VERSION")

	setString(&c.Ollama.BaseURL, "BRAIN_OLLAMA_URL")
	setString(&c.Ollama.Model, "BRAIN_OLLAMA_MODEL")

	if v := os.Getenv("BRAIN_MIN_SUBSTANTIAL_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MinSubstantialChars = n
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// fillDefaults completes optional fields.
func (c *Config) fillDefaults() error {
	if c.Provider == "" {
		c.Provider = ProviderOllama
	}
	if c.CostDBPath == "" {
		p, err := defaultCostDBPath()
		if err != nil {
			return err
		}
		c.CostDBPath = p
	}
	if c.Ollama.BaseURL == "" {
		c.Ollama.BaseURL = "http://localhost:11434"
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = "llama3.1"
	}
	return nil
}

// Validate checks required fields and provider credentials, returning
// errors that tell the user exactly what to set.
func (c *Config) Validate() error {
	if c.DiaryPath == "" {
		return fmt.Errorf("diary_path is required: set it in the config file or BRAIN_DIARY_PATH")
	}
	if c.PlannerPath == "" {
		return fmt.Errorf("planner_path is required: set it in the config file or BRAIN_PLANNER_PATH")
	}
	if info, err := os.Stat(c.DiaryPath); err != nil || !info.IsDir() {
		return fmt.Errorf("diary_path does not exist or is not a directory: %s", c.DiaryPath)
	}
	if info, err := os.Stat(c.PlannerPath); err != nil || !info.IsDir() {
		return fmt.Errorf("planner_path does not exist or is not a directory: %s", c.PlannerPath)
	}

	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("provider openai requires openai.api_key or BRAIN_OPENAI_API_KEY")
		}
	case ProviderAzure:
		if c.Azure.APIKey == "" {
			return fmt.Errorf("provider azure requires azure.api_key or BRAIN_AZURE_API_KEY")
		}
		if c.Azure.Endpoint == "" {
			return fmt.Errorf("provider azure requires azure.endpoint or BRAIN_AZURE_ENDPOINT")
		}
		if c.Azure.Deployment == "" {
			return fmt.Errorf("provider azure requires azure.deployment or BRAIN_AZURE_DEPLOYMENT")
		}
	case ProviderOllama:
		// Defaulted above; nothing required.
	default:
		return fmt.Errorf("unknown provider %q: expected openai, azure, or ollama", c.Provider)
	}
	return nil
}
