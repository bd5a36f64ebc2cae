package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// KeyBindingsConfig holds modifier customization and optional per-action overrides
type KeyBindingsConfig struct {
	Modifiers ModifierConfig    `toml:"modifiers"`
	Actions   map[string]string `toml:"actions"` // Optional overrides for specific actions
}

type ModifierConfig struct {
	Primary   string `toml:"primary"`   // e.g., "ctrl", "alt"
	Secondary string `toml:"secondary"` // e.g., "alt", "ctrl+alt"
}

const (
	defaultPrimary   = "ctrl"
	defaultSecondary = "alt"
)

// actionDef defines the default modifier and key for an action
type actionDef struct {
	modifier string // "primary", "secondary", or "none"
	key      string
}

// actionRegistry maps action names to their default keybindings.
// Users can override any of these in the [actions] section of keybindings.toml
var actionRegistry = map[string]actionDef{
	// Modes (mutually exclusive)
	"toggle_web_search": {"primary", "w"},
	"toggle_reasoning":  {"primary", "r"},
	"toggle_developer":  {"primary", "d"},

	// Display
	"toggle_thinking": {"primary", "t"},
	"help":            {"none", "f1"},

	// Actions
	"send":               {"none", "enter"},
	"newline":            {"secondary", "enter"},
	"cancel":             {"none", "esc"},
	"yank_last_response": {"primary", "y"},
	"new_session":        {"primary", "n"},
	"search_sessions":    {"primary", "f"},
	"quit":               {"primary", "q"},

	// Scrolling
	"scroll_up":        {"none", "pgup"},
	"scroll_down":      {"none", "pgdown"},
	"scroll_to_top":    {"secondary", "g"},
	"scroll_to_bottom": {"secondary", "G"},
}

// DefaultKeybindings returns default configuration
func DefaultKeybindings() *KeyBindingsConfig {
	return &KeyBindingsConfig{
		Modifiers: ModifierConfig{
			Primary:   defaultPrimary,
			Secondary: defaultSecondary,
		},
	}
}

// LoadKeybindings loads keybindings from data directory
func LoadKeybindings(dataDir string) (*KeyBindingsConfig, error) {
	cfg := DefaultKeybindings()
	keybindingsPath := filepath.Join(dataDir, "keybindings.toml")

	if !FileExists(keybindingsPath) {
		if err := CreateDefaultKeybindings(dataDir); err != nil {
			return nil, fmt.Errorf("failed to create keybindings: %w", err)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(keybindingsPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse keybindings: %w", err)
	}

	if cfg.Modifiers.Primary == "" {
		cfg.Modifiers.Primary = defaultPrimary
	}
	if cfg.Modifiers.Secondary == "" {
		cfg.Modifiers.Secondary = defaultSecondary
	}

	if ok, warning := cfg.Validate(); !ok {
		return nil, fmt.Errorf("invalid keybindings: %s", warning)
	} else if warning != "" && DebugLog != nil {
		DebugLog.Printf("[Config] Keybindings: %s", warning)
	}

	return cfg, nil
}

// CreateDefaultKeybindings creates default keybindings.toml
func CreateDefaultKeybindings(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	keybindingsPath := filepath.Join(dataDir, "keybindings.toml")
	if FileExists(keybindingsPath) {
		return nil
	}

	if err := os.WriteFile(keybindingsPath, []byte(GenerateKeybindingsTemplate()), 0600); err != nil {
		return fmt.Errorf("failed to write keybindings: %w", err)
	}

	return nil
}

// GenerateKeybindingsTemplate returns the default TOML template
func GenerateKeybindingsTemplate() string {
	return `# Paradox Keybindings Configuration
# Location: <data_dir>/keybindings.toml
# This file uses TOML format: https://toml.io

[modifiers]
primary = "ctrl"   # Mode toggles, thinking, copy, quit
secondary = "alt"  # Newline and scroll jumps

[actions]
# Override single actions, for example:
#   toggle_thinking = "alt+t"
#   toggle_web_search = "alt+w"
#   quit = "ctrl+x"
#
# Available actions:
#   toggle_web_search, toggle_reasoning, toggle_developer, toggle_thinking,
#   help, send, newline, cancel, yank_last_response, new_session,
#   search_sessions, quit, scroll_up, scroll_down, scroll_to_top,
#   scroll_to_bottom
`
}

// Primary returns the primary modifier
func (kb *KeyBindingsConfig) Primary() string {
	if kb.Modifiers.Primary == "" {
		return defaultPrimary
	}
	return kb.Modifiers.Primary
}

// Secondary returns the secondary modifier
func (kb *KeyBindingsConfig) Secondary() string {
	if kb.Modifiers.Secondary == "" {
		return defaultSecondary
	}
	return kb.Modifiers.Secondary
}

// PrimaryKey builds a keybinding string with primary modifier
// Example: PrimaryKey("t") returns "ctrl+t"
func (kb *KeyBindingsConfig) PrimaryKey(key string) string {
	return kb.Primary() + "+" + key
}

// SecondaryKey builds a keybinding string with secondary modifier.
// For modifiers containing "shift" and single letter keys, the letter is
// upper-cased instead, which is what terminals report.
func (kb *KeyBindingsConfig) SecondaryKey(key string) string {
	secondary := kb.Secondary()

	if strings.Contains(strings.ToLower(secondary), "shift") && len(key) == 1 && key[0] >= 'a' && key[0] <= 'z' {
		var cleanMods []string
		for _, part := range strings.Split(secondary, "+") {
			if strings.ToLower(part) != "shift" {
				cleanMods = append(cleanMods, part)
			}
		}
		if len(cleanMods) > 0 {
			return strings.Join(cleanMods, "+") + "+" + strings.ToUpper(key)
		}
		return strings.ToUpper(key)
	}

	return secondary + "+" + key
}

// GetActionKey returns the keybinding for a specific action.
// User overrides win over the registry defaults.
func (kb *KeyBindingsConfig) GetActionKey(action string) string {
	if kb.Actions != nil {
		if override, exists := kb.Actions[action]; exists && override != "" {
			return override
		}
	}

	if def, exists := actionRegistry[action]; exists {
		switch def.modifier {
		case "primary":
			return kb.PrimaryKey(def.key)
		case "secondary":
			return kb.SecondaryKey(def.key)
		case "none":
			return def.key
		}
	}

	return ""
}

// Matches reports whether a key press (as reported by bubbletea's
// KeyMsg.String) triggers action.
func (kb *KeyBindingsConfig) Matches(pressed, action string) bool {
	k := kb.GetActionKey(action)
	return k != "" && k == pressed
}

// DisplayActionKey returns a display-friendly version of an action's keybinding
// Example: "ctrl+t" -> "Ctrl+T"
func (kb *KeyBindingsConfig) DisplayActionKey(action string) string {
	key := kb.GetActionKey(action)
	if key == "" {
		return ""
	}
	return capitalizeKeybinding(key)
}

// capitalizeKeybinding capitalizes a keybinding string for display.
// An upper-case letter after a modifier is shown as Shift+letter.
//
//	"ctrl+t" -> "Ctrl+T"
//	"alt+G"  -> "Alt+Shift+G"
func capitalizeKeybinding(key string) string {
	parts := strings.Split(key, "+")
	hasShift := false
	for _, p := range parts {
		if strings.ToLower(p) == "shift" {
			hasShift = true
		}
	}

	var result []string
	for i, part := range parts {
		if part == "" {
			continue
		}
		if len(part) == 1 && part[0] >= 'A' && part[0] <= 'Z' {
			if !hasShift && i > 0 {
				result = append(result, "Shift")
			}
			result = append(result, part)
			continue
		}
		result = append(result, strings.ToUpper(part[:1])+part[1:])
	}

	return strings.Join(result, "+")
}

// Validate checks if the configuration is valid
// Returns (isValid, warningMessage)
func (kb *KeyBindingsConfig) Validate() (bool, string) {
	primary := kb.Primary()
	secondary := kb.Secondary()

	if primary == "shift" || secondary == "shift" {
		return false, "Shift alone conflicts with typing"
	}
	if primary == secondary {
		return false, "Primary and secondary modifiers must differ"
	}

	if strings.Contains(primary, "alt") {
		return true, "Warning: Alt may be captured by the window manager"
	}

	return true, ""
}
