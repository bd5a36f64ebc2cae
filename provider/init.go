package provider

import (
	"paradox/config"
	"paradox/model"
)

// Adapters is the set of routes the orchestrator dispatches to. A nil
// entry means the route is unavailable (provider disabled or key missing).
type Adapters struct {
	Developer *Adapter
	Search    *Adapter
	Generate  *Adapter
	FollowUp  *Adapter
}

// InitializeAdapters builds every adapter from configuration and stored
// credentials.
//
// Providers are created once per provider id and shared between routes.
// Failures are logged and leave the route nil so the app still starts;
// the orchestrator reports the missing route when it is used.
func InitializeAdapters(cfg *config.Config) Adapters {
	providers := make(map[string]model.Provider)
	get := func(id string) model.Provider {
		if p, ok := providers[id]; ok {
			return p
		}
		p := initializeProvider(cfg, id)
		providers[id] = p
		return p
	}

	var set Adapters

	if p := get(cfg.Generation.Provider); p != nil {
		set.Generate = NewAdapter(p, Variant{
			Name:           "generation",
			Model:          cfg.Generation.Model,
			ReasoningModel: cfg.Generation.ReasoningModel,
			Timeout:        cfg.Timeout,
		})
	}

	if p := get(cfg.Search.Provider); p != nil {
		set.Search = NewAdapter(p, Variant{
			Name:           "search",
			Model:          cfg.Search.Model,
			ReasoningModel: cfg.Search.ReasoningModel,
			Timeout:        cfg.Timeout,
		})
	}

	if p := get(cfg.Developer.Provider); p != nil {
		set.Developer = NewAdapter(p, Variant{
			Name:         "developer",
			Model:        cfg.Developer.Model,
			SystemPrompt: cfg.Developer.SystemPrompt,
			Sampling: model.Sampling{
				Temperature: cfg.Developer.Temperature,
				TopP:        cfg.Developer.TopP,
				TopK:        cfg.Developer.TopK,
			},
			Timeout: cfg.Timeout,
		})
	}

	if cfg.FollowUps.Enabled {
		id, modelName := cfg.FollowUps.Provider, ""
		if id == "" || id == cfg.Generation.Provider {
			id, modelName = cfg.Generation.Provider, cfg.Generation.Model
		}
		if p := get(id); p != nil {
			set.FollowUp = NewAdapter(p, Variant{
				Name:    "follow-ups",
				Model:   modelName,
				Timeout: cfg.Timeout,
			})
		}
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Provider] Adapters: generation=%v search=%v developer=%v follow-ups=%v",
			set.Generate != nil, set.Search != nil, set.Developer != nil, set.FollowUp != nil)
	}

	return set
}

// initializeProvider creates the provider for id, or returns nil when it is
// disabled, unknown or missing its API key.
func initializeProvider(cfg *config.Config, id string) model.Provider {
	if id == "" {
		return nil
	}
	if !config.IsKnownProvider(id) {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Provider] Unknown provider %q", id)
		}
		return nil
	}
	if !cfg.ProviderEnabled(id) {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Provider] Provider %s is disabled", id)
		}
		return nil
	}

	apiKey := cfg.APIKey(id)
	if config.RequiresAPIKey(id) && apiKey == "" {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Provider] No API key for %s", id)
		}
		return nil
	}

	p, err := NewProvider(Config{
		Type:    MapProviderIDToType(id),
		BaseURL: cfg.BaseURL(id),
		APIKey:  apiKey,
	})
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Provider] Warning: failed to initialize provider %s: %v", id, err)
		}
		return nil
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Provider] Initialized provider: %s", id)
	}
	return p
}
