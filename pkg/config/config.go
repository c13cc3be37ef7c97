// Package config provides the explicit, immutable configuration value passed
// into every grocer component at construction. Nothing outside this package
// reads the environment or a config file; components receive a Config and
// keep it.
//
// Sources are merged in order, later wins:
//
//	built-in defaults -> <data dir>/config.yaml -> environment
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables recognized by Load. GROCER_API_KEY falls back to
// OPENAI_API_KEY so the key can be shared with other tooling.
const (
	EnvAPIKey       = "GROCER_API_KEY"
	EnvAPIKeyLegacy = "OPENAI_API_KEY"
	EnvModel        = "GROCER_MODEL"
	EnvBaseURL      = "GROCER_BASE_URL"
	EnvDataDir      = "GROCER_DIR"
	EnvFormat       = "GROCER_FORMAT"
)

// Output format variants understood by the list formatter.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

// DefaultModel is used when neither the config file nor the environment
// names one.
const DefaultModel = "gpt-4o"

// Config holds everything grocer needs at runtime. Treat values as
// immutable after Load.
type Config struct {
	// APIKey authenticates against the OpenAI-compatible endpoint used for
	// ingredient consolidation.
	APIKey string `yaml:"api_key"`

	// Model is the chat model used for consolidation.
	Model string `yaml:"model"`

	// BaseURL overrides the API endpoint for compatible services. Empty
	// means the provider default.
	BaseURL string `yaml:"base_url"`

	// DataDir is where sessions, the pantry set, rendered lists, and logs
	// live. Defaults to ~/.grocer.
	DataDir string `yaml:"data_dir"`

	// OutputFormat selects the list formatter variant: "text" or "markdown".
	OutputFormat string `yaml:"output_format"`

	// StoreSections is the ordered store-section enumeration used for
	// categorizing and grouping the final list.
	StoreSections []string `yaml:"store_sections"`

	// FallbackSection buckets ingredients whose section is not in
	// StoreSections. It must be a member of StoreSections.
	FallbackSection string `yaml:"fallback_section"`

	// SystemPrompt is the instruction block sent to the consolidation model.
	SystemPrompt string `yaml:"system_prompt"`
}

// Default returns the built-in configuration. The data dir is resolved
// against the current user's home; when the home directory cannot be
// determined the dir is left relative (".grocer") so callers can still
// operate in tests and containers.
func Default() Config {
	dir := ".grocer"
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".grocer")
	}
	return Config{
		Model:        DefaultModel,
		DataDir:      dir,
		OutputFormat: FormatText,
		StoreSections: []string{
			"Produce",
			"Meat & Seafood",
			"Dairy & Eggs",
			"Bakery & Bread",
			"Pantry & Dry Goods",
			"Canned & Jarred Goods",
			"Frozen",
			"Spices & Seasonings",
			"Oils & Condiments",
			"Beverages",
			"Other",
		},
		FallbackSection: "Other",
		SystemPrompt:    defaultSystemPrompt,
	}
}

// Load builds the effective configuration from defaults, the optional
// config.yaml in the data dir, and the environment.
func Load() (Config, error) {
	cfg := Default()

	// The data dir env var has to win before the file is looked up, since
	// it decides where the file lives.
	if dir := os.Getenv(EnvDataDir); dir != "" {
		cfg.DataDir = dir
	}

	if err := cfg.mergeFile(filepath.Join(cfg.DataDir, "config.yaml")); err != nil {
		return Config{}, err
	}
	cfg.mergeEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// mergeFile overlays values from a yaml config file. A missing file is not
// an error; a malformed one is.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if file.APIKey != "" {
		c.APIKey = file.APIKey
	}
	if file.Model != "" {
		c.Model = file.Model
	}
	if file.BaseURL != "" {
		c.BaseURL = file.BaseURL
	}
	if file.OutputFormat != "" {
		c.OutputFormat = file.OutputFormat
	}
	if len(file.StoreSections) > 0 {
		c.StoreSections = file.StoreSections
	}
	if file.FallbackSection != "" {
		c.FallbackSection = file.FallbackSection
	}
	if file.SystemPrompt != "" {
		c.SystemPrompt = file.SystemPrompt
	}
	return nil
}

// mergeEnv overlays environment values on top of file values.
func (c *Config) mergeEnv() {
	if key := os.Getenv(EnvAPIKey); key != "" {
		c.APIKey = key
	} else if key := os.Getenv(EnvAPIKeyLegacy); key != "" && c.APIKey == "" {
		c.APIKey = key
	}
	if model := os.Getenv(EnvModel); model != "" {
		c.Model = model
	}
	if url := os.Getenv(EnvBaseURL); url != "" {
		c.BaseURL = url
	}
	if format := os.Getenv(EnvFormat); format != "" {
		c.OutputFormat = format
	}
}

// Validate checks structural consistency. It does not require an API key;
// only commands that trigger consolidation need one (see RequireAPIKey).
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data dir must not be empty")
	}
	if len(c.StoreSections) == 0 {
		return fmt.Errorf("store sections must not be empty")
	}
	if c.OutputFormat != FormatText && c.OutputFormat != FormatMarkdown {
		return fmt.Errorf("unknown output format %q (want %q or %q)", c.OutputFormat, FormatText, FormatMarkdown)
	}
	if !c.HasSection(c.FallbackSection) {
		return fmt.Errorf("fallback section %q is not in the store sections list", c.FallbackSection)
	}
	return nil
}

// RequireAPIKey fails when no API key is configured. Commands that invoke
// the consolidation service call this before doing any work.
func (c Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return fmt.Errorf("no API key configured: set %s (or %s), or api_key in %s",
			EnvAPIKey, EnvAPIKeyLegacy, filepath.Join(c.DataDir, "config.yaml"))
	}
	return nil
}

// HasSection reports whether name is one of the configured store sections.
func (c Config) HasSection(name string) bool {
	for _, s := range c.StoreSections {
		if s == name {
			return true
		}
	}
	return false
}
