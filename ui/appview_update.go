package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"paradox/chat"
	"paradox/config"
	"paradox/model"
	"paradox/provider"
	"paradox/stream"
)

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		// Title (1) + separator (1) + textarea (3) + status bar (1)
		a.viewport.Width = a.width
		a.viewport.Height = a.height - 6
		a.textarea.SetWidth(a.width)

		a.ready = true
		a.updateViewportContent(true)
		return a, nil

	case spinner.TickMsg:
		a.spinner, cmd = a.spinner.Update(msg)
		if a.streaming {
			a.updateViewportContent(true)
		}
		return a, cmd

	case conversationChangedMsg:
		a.updateViewportContent(a.streaming || a.viewport.AtBottom())
		return a, nil

	case phaseMsg:
		a.phase = msg.Phase
		return a, nil

	case submitDoneMsg:
		return a.handleSubmitDone(msg)

	case followUpsMsg:
		if a.streaming || a.lastAssistantID() != msg.For {
			return a, nil
		}
		a.followUps = msg.Questions
		a.followUpIdx = 0
		a.updateViewportContent(a.viewport.AtBottom())
		return a, nil

	case sessionSavedMsg:
		if msg.Err != nil {
			a.setNotice(fmt.Sprintf("Failed to save session: %v", msg.Err), true)
		}
		return a, nil

	case sessionLoadedMsg:
		if msg.Err != nil {
			a.setNotice(fmt.Sprintf("Failed to load session: %v", msg.Err), true)
			return a, nil
		}
		a.switchSession(msg.Session)
		return a, a.saveCurrentSessionID()

	case pickerItemsMsg:
		if msg.Err != nil {
			a.setNotice(msg.Err.Error(), true)
			return a, nil
		}
		if len(msg.Items) == 0 {
			a.setNotice("No matches found.", false)
			return a, nil
		}
		a.picker = pickerState{active: true, title: msg.Title, items: msg.Items}
		return a, nil

	case sessionExportedMsg:
		if msg.Err != nil {
			a.setNotice(fmt.Sprintf("Export failed: %v", msg.Err), true)
		} else {
			a.setNotice("Session exported to "+msg.Path, false)
		}
		return a, nil

	case noticeMsg:
		a.setNotice(msg.Text, msg.Err)
		return a, nil

	case provider.PingProviderMsg:
		if msg.Valid {
			a.setNotice(fmt.Sprintf("%s key verified.", config.ProviderDisplayName(msg.ProviderID)), false)
		} else {
			a.setNotice(fmt.Sprintf("%s key saved but the check failed: %v", config.ProviderDisplayName(msg.ProviderID), msg.Err), true)
		}
		return a, nil

	case tea.KeyMsg:
		if handled, next, cmd := a.handleKey(msg); handled {
			return next, cmd
		}
	}

	a.textarea, cmd = a.textarea.Update(msg)
	cmds = append(cmds, cmd)
	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// handleKey processes global shortcuts. Keys it does not handle fall
// through to the textarea.
func (a AppView) handleKey(msg tea.KeyMsg) (bool, AppView, tea.Cmd) {
	pressed := msg.String()

	if pressed == "ctrl+c" || a.kb.Matches(pressed, "quit") {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] Quit requested")
		}
		if a.cancel != nil {
			a.cancel()
		}
		return true, a, tea.Quit
	}

	if a.showHelp {
		if pressed == "esc" || a.kb.Matches(pressed, "help") {
			a.showHelp = false
		}
		return true, a, nil
	}

	if a.picker.active {
		next, cmd := a.handlePickerKey(msg)
		return true, next, cmd
	}

	switch {
	case a.kb.Matches(pressed, "help"):
		a.showHelp = true
		return true, a, nil

	case a.kb.Matches(pressed, "cancel"):
		if a.streaming && a.cancel != nil {
			a.cancel()
			a.setNotice("Cancelling...", false)
			return true, a, nil
		}
		a.notice = ""
		a.updateViewportContent(false)
		return true, a, nil

	case a.kb.Matches(pressed, "toggle_web_search"):
		a.toggleMode(ModeWebSearch)
		return true, a, nil

	case a.kb.Matches(pressed, "toggle_reasoning"):
		a.toggleMode(ModeReasoning)
		return true, a, nil

	case a.kb.Matches(pressed, "toggle_developer"):
		a.toggleMode(ModeDeveloper)
		return true, a, nil

	case a.kb.Matches(pressed, "toggle_thinking"):
		a.showThinking = !a.showThinking
		a.updateViewportContent(false)
		return true, a, nil

	case a.kb.Matches(pressed, "yank_last_response"):
		answer, ok := a.lastAnswer()
		if !ok {
			a.setNotice("Nothing to copy yet.", false)
			return true, a, nil
		}
		if err := clipboard.WriteAll(answer); err != nil {
			a.setNotice(fmt.Sprintf("Copy failed: %v", err), true)
			return true, a, nil
		}
		a.setNotice("Copied last answer.", false)
		return true, a, nil

	case a.kb.Matches(pressed, "new_session"):
		next, cmd := a.newSession()
		return true, next, cmd

	case a.kb.Matches(pressed, "search_sessions"):
		a.textarea.SetValue("/search ")
		a.textarea.CursorEnd()
		return true, a, nil

	case a.kb.Matches(pressed, "scroll_up"):
		a.viewport.PageUp()
		return true, a, nil

	case a.kb.Matches(pressed, "scroll_down"):
		a.viewport.PageDown()
		return true, a, nil

	case a.kb.Matches(pressed, "scroll_to_top"):
		a.viewport.GotoTop()
		return true, a, nil

	case a.kb.Matches(pressed, "scroll_to_bottom"):
		a.viewport.GotoBottom()
		return true, a, nil

	case pressed == "tab" && len(a.followUps) > 0 && a.canCycleFollowUp():
		a.textarea.SetValue(a.followUps[a.followUpIdx%len(a.followUps)])
		a.textarea.CursorEnd()
		a.followUpIdx++
		return true, a, nil

	case a.kb.Matches(pressed, "send"):
		next, cmd := a.submitInput()
		return true, next, cmd
	}

	return false, a, nil
}

// toggleMode switches to m, or back to chat when m is already active.
func (a *AppView) toggleMode(m Mode) {
	if a.mode == m {
		a.mode = ModeChat
	} else {
		a.mode = m
	}
	if config.DebugLog != nil {
		config.DebugLog.Printf("[UI] Mode: %s", a.mode)
	}
}

// canCycleFollowUp reports whether tab should replace the input with a
// follow-up question: the input is empty or holds one of them.
func (a AppView) canCycleFollowUp() bool {
	v := strings.TrimSpace(a.textarea.Value())
	if v == "" {
		return true
	}
	for _, q := range a.followUps {
		if v == q {
			return true
		}
	}
	return false
}

// submission builds the orchestrator input from the view state.
func (a AppView) submission(text string) chat.Submission {
	return chat.Submission{
		Message:     text,
		Attachments: a.attachments,
		Developer:   a.mode == ModeDeveloper,
		WebSearch:   a.mode == ModeWebSearch,
		Reasoning:   a.mode == ModeReasoning,
	}
}

func (a AppView) submitInput() (AppView, tea.Cmd) {
	raw := a.textarea.Value()
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "/") {
		a.textarea.Reset()
		return a.runCommand(text)
	}

	if a.streaming || a.orch.Busy() {
		a.setNotice(chat.UserMessage(&chat.ConcurrentSubmissionError{}), true)
		return a, nil
	}

	sub := a.submission(text)

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.streaming = true
	a.phase = chat.PhaseValidating
	a.pendingInput = raw
	a.pendingAttachments = a.attachments
	a.attachments = nil
	a.followUps = nil
	a.followUpIdx = 0
	a.notice = ""
	a.textarea.Reset()

	if config.DebugLog != nil {
		config.DebugLog.Printf("[UI] Submitting (mode=%s, %d chars)", a.mode, len(text))
	}

	orch := a.orch
	return a, tea.Batch(a.spinner.Tick, func() tea.Msg {
		res, err := orch.Submit(ctx, sub)
		return submitDoneMsg{Result: res, Err: err}
	})
}

func (a AppView) handleSubmitDone(msg submitDoneMsg) (AppView, tea.Cmd) {
	var ce *chat.ConcurrentSubmissionError
	if errors.As(msg.Err, &ce) {
		a.setNotice(chat.UserMessage(msg.Err), true)
		return a, nil
	}

	a.streaming = false
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}

	if msg.Err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] Submission failed: %v", msg.Err)
		}

		var ve *chat.ValidationError
		if errors.As(msg.Err, &ve) {
			a.textarea.SetValue(a.pendingInput)
			a.attachments = a.pendingAttachments
			a.setNotice(chat.UserMessage(msg.Err), true)
			return a, nil
		}

		a.setNotice(chat.UserMessage(msg.Err), true)
		return a, a.saveSession("", "")
	}

	res := msg.Result
	a.updateViewportContent(true)

	return a, tea.Batch(a.saveSession(res.Provider, res.Model), a.suggestFollowUps(a.pendingInput, res.Message))
}

// suggestFollowUps generates follow-up questions for answer after the
// submission has finished, so the input is usable meanwhile.
func (a AppView) suggestFollowUps(question string, answer model.Message) tea.Cmd {
	orch := a.orch
	return func() tea.Msg {
		return followUpsMsg{
			For:       answer.ID,
			Questions: orch.FollowUps(context.Background(), question, answer.Content),
		}
	}
}

// lastAssistantID returns the ID of the latest assistant message, if any.
func (a AppView) lastAssistantID() model.MessageID {
	msgs := a.conv.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleAssistant {
			return msgs[i].ID
		}
	}
	return ""
}

// lastAnswer returns the visible answer of the latest assistant message.
func (a AppView) lastAnswer() (string, bool) {
	msgs := a.conv.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleAssistant {
			answer := strings.TrimSpace(stream.StripThinking(msgs[i].Content))
			return answer, answer != ""
		}
	}
	return "", false
}

func (a *AppView) setNotice(text string, isErr bool) {
	a.notice = text
	a.noticeErr = isErr
	a.updateViewportContent(true)
}
