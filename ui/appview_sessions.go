package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"paradox/config"
	"paradox/model"
	"paradox/storage"
)

// saveSession persists the current conversation. providerID and modelName
// record the route of the latest exchange when non-empty.
func (a AppView) saveSession(providerID, modelName string) tea.Cmd {
	msgs := a.conv.Messages()
	if len(msgs) == 0 {
		return nil
	}

	if a.session.Name == "" {
		for _, m := range msgs {
			if m.Role == model.RoleUser {
				a.session.Name = storage.GenerateSessionName(m.Content)
				break
			}
		}
	}
	if providerID != "" {
		a.session.Provider = providerID
		a.session.Model = modelName
	}

	// Save a copy; the view keeps mutating its own session.
	snapshot := *a.session
	snapshot.Messages = msgs
	sessions := a.sessions

	return func() tea.Msg {
		if err := sessions.Save(&snapshot); err != nil {
			return sessionSavedMsg{Err: err}
		}
		if err := sessions.SaveCurrentSessionID(snapshot.ID); err != nil {
			return sessionSavedMsg{Err: err}
		}
		return sessionSavedMsg{}
	}
}

func (a AppView) saveCurrentSessionID() tea.Cmd {
	id := a.session.ID
	sessions := a.sessions
	return func() tea.Msg {
		if err := sessions.SaveCurrentSessionID(id); err != nil {
			return sessionSavedMsg{Err: err}
		}
		return nil
	}
}

// switchSession makes s the active session and loads its messages.
func (a *AppView) switchSession(s *storage.Session) {
	a.session = s
	a.conv.Reset(s.Messages)
	a.orch.SetSessionID(s.ID)
	a.followUps = nil
	a.renders = make(map[model.MessageID]renderCache)
	a.notice = ""
	if config.DebugLog != nil {
		config.DebugLog.Printf("[UI] Switched to session %s (%d messages)", s.ID, len(s.Messages))
	}
	a.updateViewportContent(true)
}

func (a AppView) newSession() (AppView, tea.Cmd) {
	if a.streaming {
		a.setNotice("Wait for the current response to finish, or cancel it first.", true)
		return a, nil
	}
	a.switchSession(storage.NewSession(a.cfg.Generation.Provider, a.cfg.Generation.Model))
	a.attachments = nil
	a.setNotice("Started a new session.", false)
	return a, a.saveCurrentSessionID()
}

func (a AppView) loadSession(id string) tea.Cmd {
	sessions := a.sessions
	return func() tea.Msg {
		s, err := sessions.Load(id)
		return sessionLoadedMsg{Session: s, Err: err}
	}
}

func (a AppView) listSessions() tea.Cmd {
	sessions := a.sessions
	return func() tea.Msg {
		list, err := sessions.List()
		if err != nil {
			return pickerItemsMsg{Err: err}
		}
		items := make([]pickerItem, 0, len(list))
		for _, meta := range list {
			items = append(items, pickerItem{
				SessionID: meta.ID,
				Title:     meta.Name,
				Detail:    fmt.Sprintf("%d messages", meta.MessageCount),
				Time:      meta.UpdatedAt,
			})
		}
		return pickerItemsMsg{Title: "Sessions", Items: items}
	}
}

func (a AppView) searchSessions(query string) tea.Cmd {
	index := a.search
	return func() tea.Msg {
		matches, err := index.SearchAllSessions(query)
		if err != nil {
			return pickerItemsMsg{Err: fmt.Errorf("search failed: %w", err)}
		}
		items := make([]pickerItem, 0, len(matches))
		for _, m := range matches {
			detail := m.Preview
			if m.MessageID != "" {
				detail = string(m.Role) + ": " + m.Preview
			}
			items = append(items, pickerItem{
				SessionID: m.SessionID,
				Title:     m.SessionName,
				Detail:    detail,
				Time:      m.Timestamp,
			})
		}
		return pickerItemsMsg{Title: fmt.Sprintf("Search: %s", query), Items: items}
	}
}

func (a AppView) exportSession() tea.Cmd {
	sessions := a.sessions
	id := a.session.ID
	path := storage.GenerateExportPath(a.session.Name)
	return func() tea.Msg {
		if err := sessions.ExportToJSON(id, path); err != nil {
			return sessionExportedMsg{Err: err}
		}
		return sessionExportedMsg{Path: path}
	}
}
