package provider

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"paradox/config"
)

// PingProviderMsg is sent when provider ping completes
type PingProviderMsg struct {
	ProviderID string
	Valid      bool
	Err        error
}

// PingProvider validates a provider's credentials by calling Ping().
// Used after a key is entered so a bad key is reported immediately.
func PingProvider(providerID, baseURL, apiKey string) tea.Cmd {
	return func() tea.Msg {
		p, err := NewProvider(Config{
			Type:    MapProviderIDToType(providerID),
			BaseURL: baseURL,
			APIKey:  apiKey,
		})
		if err != nil {
			return PingProviderMsg{
				ProviderID: providerID,
				Err:        fmt.Errorf("failed to create provider: %w", err),
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			return PingProviderMsg{
				ProviderID: providerID,
				Err:        fmt.Errorf("connection failed: %w", err),
			}
		}

		if config.DebugLog != nil {
			config.DebugLog.Printf("[Provider] Provider %s ping successful", providerID)
		}

		return PingProviderMsg{ProviderID: providerID, Valid: true}
	}
}
