// Package config provides configuration types for Emissary.
package config

// Config represents the main Emissary configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Persona PersonaConfig `toml:"persona"`
	Model   ModelConfig   `toml:"model"`
	Agent   AgentConfig   `toml:"agent"`
	Notify  NotifyConfig  `toml:"notify"`
	Paths   PathsConfig   `toml:"paths"`
	Logging LoggingConfig `toml:"logging"`
}

// ServerConfig contains the HTTP chat endpoint settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// PersonaConfig identifies the person Emissary represents and where
// their background material lives.
type PersonaConfig struct {
	Name        string `toml:"name"`
	SummaryPath string `toml:"summary_path"`
	ProfilePath string `toml:"profile_path"` // PDF export of the profile
}

// ModelConfig configures the chat-completions backend.
type ModelConfig struct {
	BaseURL        string  `toml:"base_url"`
	APIKey         string  `toml:"api_key"` // overridden by OPENAI_API_KEY when set
	ChatModel      string  `toml:"chat_model"`
	EvalModel      string  `toml:"eval_model"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	Temperature    float64 `toml:"temperature"`
}

// AgentConfig contains conversation loop settings.
type AgentConfig struct {
	MaxToolRounds int  `toml:"max_tool_rounds"`
	Evaluate      bool `toml:"evaluate"`
}

// NotifyConfig configures the Pushover side channel.
type NotifyConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	User    string `toml:"user"`  // overridden by PUSHOVER_USER when set
	Token   string `toml:"token"` // overridden by PUSHOVER_TOKEN when set
}

// PathsConfig contains file path settings.
type PathsConfig struct {
	DataDir string `toml:"data_dir"`
	LeadsDB string `toml:"leads_db"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}
