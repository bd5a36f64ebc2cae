package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"paradox/chat"
	"paradox/config"
	"paradox/provider"
	"paradox/storage"
	"paradox/ui"
)

const (
	Version = "v0.01.00"
	License = "Apache-2.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize debug logging after config is loaded
	config.InitDebugLog(cfg.DataDir())

	sessionStorage, err := storage.NewSessionStorage(cfg.DataDir())
	if err != nil {
		fmt.Printf("Failed to initialize session storage: %v\n", err)
		os.Exit(1)
	}

	// The exchange log is optional; the app runs without /stats if it fails
	exchangeLog, err := storage.NewExchangeLog(config.ExchangeLogPath(cfg.DataDir()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: exchange log unavailable: %v\n", err)
		exchangeLog = nil
	} else {
		defer exchangeLog.Close()
	}

	var lastSession *storage.Session
	if lastSessionID, err := sessionStorage.LoadCurrentSessionID(); err == nil && lastSessionID != "" {
		lastSession, err = sessionStorage.Load(lastSessionID)
		if err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("[Main] Could not resume session %s: %v", lastSessionID, err)
		}
	}

	conv := storage.NewConversation()

	opts := chat.Options{
		WindowSize:     cfg.WindowSize,
		MarkerLookback: cfg.MarkerLookback,
	}
	if exchangeLog != nil {
		opts.Recorder = exchangeLog
	}
	orch := chat.NewOrchestrator(conv, provider.InitializeAdapters(cfg), opts)

	p := tea.NewProgram(
		ui.NewAppView(ui.Deps{
			Config:       cfg,
			Conversation: conv,
			Orchestrator: orch,
			Sessions:     sessionStorage,
			Exchanges:    exchangeLog,
			Session:      lastSession,
			Version:      Version + " (" + License + ")",
		}),
		tea.WithAltScreen(),
	)

	unbind := ui.Bind(p, conv, orch)
	defer unbind()

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running paradox: %v\n", err)
		os.Exit(1)
	}
}
