package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (a AppView) renderHelpModal(width, height int) string {
	kb := a.kb

	green := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor)

	title := green.Render("Paradox - Keyboard Shortcuts")
	if a.version != "" {
		title += DimStyle.Render("  " + a.version)
	}

	blue := lipgloss.NewStyle().Foreground(accentColor)

	modes := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Answer Modes"),
		fmt.Sprintf("• %-13s Web search", kb.DisplayActionKey("toggle_web_search")),
		fmt.Sprintf("• %-13s Reasoning search", kb.DisplayActionKey("toggle_reasoning")),
		fmt.Sprintf("• %-13s Developer", kb.DisplayActionKey("toggle_developer")),
		"  Press a mode key again for chat",
	)

	globalActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Global Actions"),
		fmt.Sprintf("• %-13s New session", kb.DisplayActionKey("new_session")),
		fmt.Sprintf("• %-13s Search sessions", kb.DisplayActionKey("search_sessions")),
		fmt.Sprintf("• %-13s Show thinking", kb.DisplayActionKey("toggle_thinking")),
		fmt.Sprintf("• %-13s Copy last answer", kb.DisplayActionKey("yank_last_response")),
		fmt.Sprintf("• %-13s Toggle this help", kb.DisplayActionKey("help")),
		fmt.Sprintf("• %-13s Quit", kb.DisplayActionKey("quit")),
	)

	chatActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Chat"),
		fmt.Sprintf("• %-13s Send message", kb.DisplayActionKey("send")),
		fmt.Sprintf("• %-13s New line", kb.DisplayActionKey("newline")),
		fmt.Sprintf("• %-13s Cancel response", kb.DisplayActionKey("cancel")),
		fmt.Sprintf("• %-13s Use follow-up", "Tab"),
		fmt.Sprintf("• %-13s Page up", kb.DisplayActionKey("scroll_up")),
		fmt.Sprintf("• %-13s Page down", kb.DisplayActionKey("scroll_down")),
		fmt.Sprintf("• %-13s Jump to top", kb.DisplayActionKey("scroll_to_top")),
		fmt.Sprintf("• %-13s Jump to bottom", kb.DisplayActionKey("scroll_to_bottom")),
	)

	commands := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Commands"),
		"• /image <path>   Attach an image",
		"• /pdf <path>     Attach a PDF",
		"• /detach         Clear attachments",
		"• /key <id> <key> Set an API key",
		"• /sessions       List sessions",
		"• /search <text>  Search sessions",
		"• /rename <name>  Rename session",
		"• /export         Export session",
		"• /stats          Provider stats",
		"• /new  /quit",
	)

	column1 := lipgloss.JoinVertical(
		lipgloss.Left,
		modes,
		"",
		globalActions,
	)

	column2 := lipgloss.JoinVertical(
		lipgloss.Left,
		chatActions,
		"",
		commands,
	)

	columnStyle := lipgloss.NewStyle().Width(42).PaddingLeft(4)

	twoColumns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(column1),
		"    ",
		columnStyle.Render(column2),
	)

	footer := lipgloss.NewStyle().
		Foreground(dimColor).
		Render(fmt.Sprintf("Press %s or Esc to close this help", kb.DisplayActionKey("help")))

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		twoColumns,
		"",
		footer,
	)

	helpBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2).
		Width(100)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		helpBox.Render(content),
	)
}
