package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWritesDefaults(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PARADOX_DATA_DIR", dataDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.WindowSize != DefaultWindowSize {
		t.Errorf("window size: got %d, want %d", cfg.WindowSize, DefaultWindowSize)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("timeout: got %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.MarkerLookback {
		t.Error("marker lookback should be off by default")
	}
	if cfg.Search.ReasoningModel != "sonar-reasoning" {
		t.Errorf("reasoning model: got %q", cfg.Search.ReasoningModel)
	}
	if !cfg.FollowUps.Enabled {
		t.Error("follow-ups should be enabled by default")
	}
	if cfg.Developer.SystemPrompt != DefaultDeveloperPrompt {
		t.Error("developer prompt should default to the built-in prompt")
	}
	if !FileExists(filepath.Join(dataDir, "config.toml")) {
		t.Error("expected config.toml template to be written")
	}
}

func TestLoadUserConfigOverrides(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PARADOX_DATA_DIR", dataDir)

	content := `window_size = 4
timeout = "30s"

[stream]
marker_lookback = true

[generation]
provider = "mistral"
model = "mistral-small-latest"

[developer]
top_k = 10
`
	if err := os.WriteFile(filepath.Join(dataDir, "config.toml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.WindowSize != 4 {
		t.Errorf("window size: got %d, want 4", cfg.WindowSize)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("timeout: got %v, want 30s", cfg.Timeout)
	}
	if !cfg.MarkerLookback {
		t.Error("expected marker lookback enabled")
	}
	if cfg.Generation.Provider != "mistral" || cfg.Generation.Model != "mistral-small-latest" {
		t.Errorf("generation: got %+v", cfg.Generation)
	}
	if cfg.Search.Provider != "perplexity" {
		t.Errorf("search provider should keep default, got %q", cfg.Search.Provider)
	}
	if cfg.Developer.TopK == nil || *cfg.Developer.TopK != 10 {
		t.Errorf("developer top_k: got %v, want 10", cfg.Developer.TopK)
	}
	if cfg.Developer.Temperature == nil || *cfg.Developer.Temperature != 0.7 {
		t.Errorf("developer temperature should keep default 0.7, got %v", cfg.Developer.Temperature)
	}
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PARADOX_DATA_DIR", dataDir)

	if err := os.WriteFile(filepath.Join(dataDir, "config.toml"), []byte(`timeout = "soon"`), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid timeout")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PARADOX_DATA_DIR", t.TempDir())
	t.Setenv("PARADOX_GENERATION_PROVIDER", "openai")
	t.Setenv("PARADOX_GENERATION_MODEL", "gpt-4o-mini")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Generation.Provider != "openai" || cfg.Generation.Model != "gpt-4o-mini" {
		t.Errorf("generation: got %+v", cfg.Generation)
	}
}

func TestAPIKeyResolution(t *testing.T) {
	dataDir := t.TempDir()
	cfg := Defaults()
	cfg.DataDirectory = dataDir

	if err := cfg.SetAPIKey("gemini", "stored-key"); err != nil {
		t.Fatalf("SetAPIKey: %v", err)
	}
	if got := cfg.APIKey("gemini"); got != "stored-key" {
		t.Errorf("stored key: got %q", got)
	}

	t.Setenv("PARADOX_GEMINI_API_KEY", "env-key")
	if got := cfg.APIKey("gemini"); got != "env-key" {
		t.Errorf("env key should win: got %q", got)
	}

	reloaded := NewCredentialStore()
	if err := reloaded.Load(dataDir); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := reloaded.Get("gemini"); got != "stored-key" {
		t.Errorf("persisted key: got %q", got)
	}

	info, err := os.Stat(filepath.Join(dataDir, "credentials.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("credentials perms: got %o, want 600", perm)
	}
}

func TestSetAPIKeyRejects(t *testing.T) {
	cfg := Defaults()
	cfg.DataDirectory = t.TempDir()

	tests := []struct {
		name     string
		provider string
	}{
		{"unknown provider", "nope"},
		{"keyless provider", "ollama"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := cfg.SetAPIKey(tt.provider, "k"); err == nil {
				t.Errorf("expected error for %s", tt.provider)
			}
		})
	}
}

func TestProviderLookup(t *testing.T) {
	cfg := Defaults()
	cfg.Providers = []ProviderConfig{
		{ID: "mistral", BaseURL: "https://proxy.local/v1", Enabled: false},
	}

	if cfg.ProviderEnabled("mistral") {
		t.Error("mistral should be disabled")
	}
	if !cfg.ProviderEnabled("gemini") {
		t.Error("providers without an entry should be enabled")
	}
	if got := cfg.BaseURL("mistral"); got != "https://proxy.local/v1" {
		t.Errorf("base url: got %q", got)
	}
	if got := cfg.BaseURL("perplexity"); got != "https://api.perplexity.ai" {
		t.Errorf("default base url: got %q", got)
	}
}

func TestUpdateProviderField(t *testing.T) {
	dataDir := t.TempDir()

	if err := UpdateProviderField(dataDir, "ollama", "enabled", "true"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := UpdateProviderField(dataDir, "ollama", "base_url", "http://gpu:11434"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u, err := LoadUserConfig(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, p := range u.Providers {
		if p.ID == "ollama" {
			found = true
			if !p.Enabled || p.BaseURL != "http://gpu:11434" {
				t.Errorf("ollama entry: got %+v", p)
			}
		}
	}
	if !found {
		t.Error("ollama entry missing")
	}

	if err := UpdateProviderField(dataDir, "ollama", "color", "x"); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := ExpandPath("~/data"); got != filepath.Join(home, "data") {
		t.Errorf("got %q", got)
	}
	if got := ExpandPath(""); got != "" {
		t.Errorf("empty path: got %q", got)
	}
}
