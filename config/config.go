package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type StreamConfig struct {
	MarkerLookback bool `toml:"marker_lookback"`
}

// RouteConfig selects the provider and model behind one dispatch route.
type RouteConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	ReasoningModel string `toml:"reasoning_model,omitempty"`
}

type DeveloperConfig struct {
	Provider     string   `toml:"provider"`
	Model        string   `toml:"model"`
	SystemPrompt string   `toml:"system_prompt,omitempty"`
	Temperature  *float64 `toml:"temperature,omitempty"`
	TopP         *float64 `toml:"top_p,omitempty"`
	TopK         *int     `toml:"top_k,omitempty"`
}

type FollowUpConfig struct {
	Enabled  bool   `toml:"enabled"`
	Provider string `toml:"provider,omitempty"`
}

type ProviderConfig struct {
	ID      string `toml:"id"`
	Name    string `toml:"name"`
	BaseURL string `toml:"base_url,omitempty"`
	Enabled bool   `toml:"enabled"`
}

type UserConfig struct {
	WindowSize int              `toml:"window_size"`
	Timeout    string           `toml:"timeout"`
	Stream     StreamConfig     `toml:"stream"`
	Generation RouteConfig      `toml:"generation"`
	Search     RouteConfig      `toml:"search"`
	Developer  DeveloperConfig  `toml:"developer"`
	FollowUps  FollowUpConfig   `toml:"follow_ups"`
	Providers  []ProviderConfig `toml:"providers"`
}

type Config struct {
	DataDirectory   string
	WindowSize      int
	Timeout         time.Duration
	MarkerLookback  bool
	Generation      RouteConfig
	Search          RouteConfig
	Developer       DeveloperConfig
	FollowUps       FollowUpConfig
	Providers       []ProviderConfig
	CredentialStore *CredentialStore
	Keybindings     *KeyBindingsConfig
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// Provider returns the configuration entry for id, if present.
func (c *Config) Provider(id string) (ProviderConfig, bool) {
	for _, p := range c.Providers {
		if p.ID == id {
			return p, true
		}
	}
	return ProviderConfig{}, false
}

// ProviderEnabled reports whether id is enabled. Providers without an entry
// are enabled.
func (c *Config) ProviderEnabled(id string) bool {
	p, ok := c.Provider(id)
	return !ok || p.Enabled
}

// BaseURL returns the configured base URL for id, falling back to the
// provider's default.
func (c *Config) BaseURL(id string) string {
	if p, ok := c.Provider(id); ok && p.BaseURL != "" {
		return p.BaseURL
	}
	return DefaultBaseURL(id)
}

// APIKey returns the key for a provider. PARADOX_<ID>_API_KEY takes
// precedence over the credential store.
func (c *Config) APIKey(providerID string) string {
	if key := os.Getenv(apiKeyEnvVar(providerID)); key != "" {
		return key
	}
	if c.CredentialStore == nil {
		return ""
	}
	return c.CredentialStore.Get(providerID)
}

func apiKeyEnvVar(providerID string) string {
	return "PARADOX_" + strings.ToUpper(providerID) + "_API_KEY"
}

func (c *Config) applyUserConfig(u *UserConfig) error {
	if u.WindowSize > 0 {
		c.WindowSize = u.WindowSize
	}
	if u.Timeout != "" {
		d, err := time.ParseDuration(u.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", u.Timeout, err)
		}
		c.Timeout = d
	}
	c.MarkerLookback = u.Stream.MarkerLookback
	c.Generation = mergeRoute(c.Generation, u.Generation)
	c.Search = mergeRoute(c.Search, u.Search)
	if u.Developer.Provider != "" {
		c.Developer.Provider = u.Developer.Provider
	}
	if u.Developer.Model != "" {
		c.Developer.Model = u.Developer.Model
	}
	if u.Developer.SystemPrompt != "" {
		c.Developer.SystemPrompt = u.Developer.SystemPrompt
	}
	if u.Developer.Temperature != nil {
		c.Developer.Temperature = u.Developer.Temperature
	}
	if u.Developer.TopP != nil {
		c.Developer.TopP = u.Developer.TopP
	}
	if u.Developer.TopK != nil {
		c.Developer.TopK = u.Developer.TopK
	}
	c.FollowUps = u.FollowUps
	if len(u.Providers) > 0 {
		c.Providers = u.Providers
	}
	return nil
}

func mergeRoute(base, over RouteConfig) RouteConfig {
	if over.Provider != "" {
		base.Provider = over.Provider
	}
	if over.Model != "" {
		base.Model = over.Model
	}
	if over.ReasoningModel != "" {
		base.ReasoningModel = over.ReasoningModel
	}
	return base
}

func (c *Config) applyEnvOverrides() {
	if dataDir := os.Getenv("PARADOX_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if p := os.Getenv("PARADOX_GENERATION_PROVIDER"); p != "" {
		c.Generation.Provider = p
	}
	if m := os.Getenv("PARADOX_GENERATION_MODEL"); m != "" {
		c.Generation.Model = m
	}
}

func CheckDebug() bool {
	debug := os.Getenv("PARADOX_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: the log may contain prompts
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (PARADOX_DEBUG=%s) ===", os.Getenv("PARADOX_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

// Load resolves the data directory from settings.toml (or PARADOX_DATA_DIR),
// reads the user config and credentials, and applies env overrides.
func Load() (*Config, error) {
	cfg := Defaults()

	if dataDir := os.Getenv("PARADOX_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
	} else {
		systemCfg, err := LoadSystemConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load system config: %w", err)
		}
		cfg.DataDirectory = systemCfg.DataDirectory
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	if err := cfg.applyUserConfig(userCfg); err != nil {
		return nil, fmt.Errorf("failed to apply user config: %w", err)
	}
	cfg.applyEnvOverrides()

	cfg.CredentialStore = NewCredentialStore()
	if err := cfg.CredentialStore.Load(dataDir); err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	cfg.Keybindings, err = LoadKeybindings(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load keybindings: %w", err)
	}

	return cfg, nil
}
