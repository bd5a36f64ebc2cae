package config

import "time"

const (
	DefaultWindowSize = 6
	DefaultTimeout    = 120 * time.Second
)

// DefaultDeveloperPrompt is prepended to every developer-mode exchange.
const DefaultDeveloperPrompt = `You are a senior software engineer acting as a pair programmer.
Give precise, production-ready answers. Prefer code over prose, state
assumptions explicitly and point out edge cases and pitfalls.
Before answering, reason step by step inside <think></think> tags, then
give the final answer after the closing tag.`

func float64Ptr(v float64) *float64 { return &v }
func intPtr(v int) *int             { return &v }

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/paradox",
	}
}

// Defaults returns the built-in configuration used before any file is read.
func Defaults() *Config {
	return &Config{
		DataDirectory:  "~/.local/share/paradox",
		WindowSize:     DefaultWindowSize,
		Timeout:        DefaultTimeout,
		MarkerLookback: false,
		Generation: RouteConfig{
			Provider: "gemini",
			Model:    "gemini-2.0-flash",
		},
		Search: RouteConfig{
			Provider:       "perplexity",
			Model:          "sonar",
			ReasoningModel: "sonar-reasoning",
		},
		Developer: DeveloperConfig{
			Provider:     "gemini",
			Model:        "gemini-2.0-flash",
			SystemPrompt: DefaultDeveloperPrompt,
			Temperature:  float64Ptr(0.7),
			TopP:         float64Ptr(0.9),
			TopK:         intPtr(40),
		},
		FollowUps:   FollowUpConfig{Enabled: true},
		Providers:   DefaultProviders(),
		Keybindings: DefaultKeybindings(),
	}
}

func DefaultUserConfig() *UserConfig {
	d := Defaults()
	return &UserConfig{
		WindowSize: d.WindowSize,
		Timeout:    d.Timeout.String(),
		Generation: d.Generation,
		Search:     d.Search,
		Developer:  DeveloperConfig{Provider: d.Developer.Provider, Model: d.Developer.Model},
		FollowUps:  d.FollowUps,
		Providers:  d.Providers,
	}
}

func GenerateSystemConfigTemplate() string {
	return `# Paradox System Configuration
# Location: ~/.config/paradox/settings.toml
# This file uses TOML format: https://toml.io

# Directory where sessions, credentials and user config are stored
data_directory = "~/.local/share/paradox"
`
}

func GenerateUserConfigTemplate() string {
	return `# Paradox User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

# Number of prior messages sent with each request
window_size = 6

# Per-request timeout
timeout = "120s"

[stream]
# Recognize <think> markers split across tokens
marker_lookback = false

[generation]
provider = "gemini"
model = "gemini-2.0-flash"

[search]
# Used for web search and reasoning mode
provider = "perplexity"
model = "sonar"
reasoning_model = "sonar-reasoning"

[developer]
provider = "gemini"
model = "gemini-2.0-flash"
# system_prompt = ""
# temperature = 0.7
# top_p = 0.9
# top_k = 40

[follow_ups]
enabled = true
# Defaults to the generation provider
# provider = ""

# API keys live in credentials.toml or PARADOX_<ID>_API_KEY.

[[providers]]
id = "gemini"
name = "Google Gemini"
enabled = true

[[providers]]
id = "perplexity"
name = "Perplexity"
base_url = "https://api.perplexity.ai"
enabled = true

[[providers]]
id = "ollama"
name = "Ollama"
base_url = "http://localhost:11434"
enabled = false
`
}
