// Package config handles Emissary configuration loading and management.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".emissary")

	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Persona: PersonaConfig{
			Name:        "",
			SummaryPath: filepath.Join(dataDir, "me", "summary.txt"),
			ProfilePath: filepath.Join(dataDir, "me", "profile.pdf"),
		},
		Model: ModelConfig{
			BaseURL:        "https://api.openai.com/v1",
			ChatModel:      "gpt-4o-mini",
			EvalModel:      "gpt-4o-mini",
			TimeoutSeconds: 120,
			Temperature:    0.7,
		},
		Agent: AgentConfig{
			MaxToolRounds: 8,
			Evaluate:      true,
		},
		Notify: NotifyConfig{
			Enabled: true,
			URL:     "https://api.pushover.net/1/messages.json",
		},
		Paths: PathsConfig{
			DataDir: dataDir,
			LeadsDB: filepath.Join(dataDir, "leads.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads the configuration from the given path.
// If the file doesn't exist, returns defaults. Secrets may also come from
// the environment (OPENAI_API_KEY, PUSHOVER_USER, PUSHOVER_TOKEN), which
// takes precedence over file values.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnv(expandPaths(cfg)), nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return applyEnv(expandPaths(cfg)), nil
}

// Save saves the configuration to the given path.
func (c *Config) Save(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	return encoder.Encode(c)
}

// applyEnv overrides secret fields from environment variables.
func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Model.APIKey = v
	}
	if v := os.Getenv("PUSHOVER_USER"); v != "" {
		cfg.Notify.User = v
	}
	if v := os.Getenv("PUSHOVER_TOKEN"); v != "" {
		cfg.Notify.Token = v
	}
	return cfg
}

// expandPaths expands a leading ~ in path fields.
func expandPaths(cfg *Config) *Config {
	homeDir, _ := os.UserHomeDir()

	expand := func(p string) string {
		if len(p) > 0 && p[0] == '~' {
			return filepath.Join(homeDir, p[1:])
		}
		return p
	}

	cfg.Persona.SummaryPath = expand(cfg.Persona.SummaryPath)
	cfg.Persona.ProfilePath = expand(cfg.Persona.ProfilePath)
	cfg.Paths.DataDir = expand(cfg.Paths.DataDir)
	cfg.Paths.LeadsDB = expand(cfg.Paths.LeadsDB)

	return cfg
}

// Timeout returns the model call timeout, falling back to the default when
// the configured value is zero or negative.
func (m ModelConfig) Timeout() int {
	if m.TimeoutSeconds <= 0 {
		return 120
	}
	return m.TimeoutSeconds
}

// NotifyConfigured returns true if the Pushover credentials are present.
func (c *Config) NotifyConfigured() bool {
	return c.Notify.Enabled && c.Notify.User != "" && c.Notify.Token != ""
}
