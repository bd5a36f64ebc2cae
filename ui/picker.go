package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// pickerItem is one selectable session in the picker.
type pickerItem struct {
	SessionID string
	Title     string
	Detail    string
	Time      time.Time
}

// pickerState is the session list or search result overlay.
type pickerState struct {
	active   bool
	title    string
	items    []pickerItem
	selected int
	scroll   int
}

// visibleItems is how many entries fit in a picker of the given height.
func visibleItems(height int) int {
	// Border(2) + Padding(2) + Title(1) + Blank(1) + Count(2) + Indicators(4) + Blank(1) + Footer(1)
	n := (height - 14) / 3
	if n < 1 {
		n = 1
	}
	return n
}

func (p *pickerState) move(delta, height int) {
	if len(p.items) == 0 {
		return
	}
	p.selected += delta
	if p.selected < 0 {
		p.selected = 0
	}
	if p.selected >= len(p.items) {
		p.selected = len(p.items) - 1
	}

	visible := visibleItems(height)
	if p.selected < p.scroll {
		p.scroll = p.selected
	}
	if p.selected >= p.scroll+visible {
		p.scroll = p.selected - visible + 1
	}
}

func (a AppView) handlePickerKey(msg tea.KeyMsg) (AppView, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		a.picker.move(-1, a.height)
	case "down", "j":
		a.picker.move(1, a.height)
	case "enter":
		if len(a.picker.items) == 0 {
			a.picker = pickerState{}
			return a, nil
		}
		item := a.picker.items[a.picker.selected]
		a.picker = pickerState{}
		if a.streaming {
			a.setNotice("Wait for the current response to finish, or cancel it first.", true)
			return a, nil
		}
		return a, a.loadSession(item.SessionID)
	case "esc", "q":
		a.picker = pickerState{}
	}
	return a, nil
}

func (a AppView) renderPicker(width, height int) string {
	modalWidth := width - 4
	if modalWidth > 100 {
		modalWidth = 100
	}
	textWidth := modalWidth - 10
	if textWidth < 10 {
		textWidth = 10
	}

	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(1, 2)

	p := a.picker
	visible := visibleItems(height)
	end := p.scroll + visible
	if end > len(p.items) {
		end = len(p.items)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d sessions:\n\n", len(p.items))

	if p.scroll > 0 {
		b.WriteString(DimStyle.Render(fmt.Sprintf("↑ %d more above", p.scroll)) + "\n\n")
	}

	for i := p.scroll; i < end; i++ {
		item := p.items[i]
		title := item.Title
		if title == "" {
			title = "Untitled"
		}
		title = runewidth.Truncate(title, textWidth, "...")
		detail := runewidth.Truncate(strings.ReplaceAll(item.Detail, "\n", " "), textWidth, "...")

		line := fmt.Sprintf("%s [%s]\n  %s",
			UserStyle.Render(title),
			item.Time.Format("Jan 2, 3:04 PM"),
			DimStyle.Render(detail),
		)

		if i == p.selected {
			line = SelectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	if end < len(p.items) {
		b.WriteString("\n" + DimStyle.Render(fmt.Sprintf("↓ %d more below", len(p.items)-end)))
	}

	footer := FormatFooter("↑/↓ J/K", "Navigate", "Enter", "Open Session", "Esc", "Close")

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Render("🔍 "+p.title),
		"",
		b.String(),
		"",
		footer,
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		modalStyle.Width(modalWidth).Render(content))
}
