package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"paradox/chat"
	"paradox/config"
	"paradox/model"
	"paradox/provider"
	"paradox/provider/testutil"
	"paradox/storage"
)

type testApp struct {
	app      AppView
	conv     *storage.Conversation
	orch     *chat.Orchestrator
	sessions *storage.SessionStorage
	mock     *testutil.MockProvider
}

func newTestApp(t *testing.T, tokens ...string) *testApp {
	t.Helper()

	sessions, err := storage.NewSessionStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewSessionStorage() error = %v", err)
	}

	conv := storage.NewConversation()
	mock := testutil.NewMockProvider("gemini", tokens...)
	orch := chat.NewOrchestrator(conv, provider.Adapters{
		Generate: provider.NewAdapter(mock, provider.Variant{Name: "generation", Model: "gemini-2.0-flash"}),
	}, chat.Options{WindowSize: 6})

	app := NewAppView(Deps{
		Config:       config.Defaults(),
		Conversation: conv,
		Orchestrator: orch,
		Sessions:     sessions,
	})

	next, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return &testApp{app: next.(AppView), conv: conv, orch: orch, sessions: sessions, mock: mock}
}

func (ta *testApp) send(msg tea.Msg) tea.Cmd {
	next, cmd := ta.app.Update(msg)
	ta.app = next.(AppView)
	return cmd
}

// runCmd executes cmd and any batched commands, returning every message.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, runCmd(c)...)
		}
		return msgs
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func TestToggleMode(t *testing.T) {
	tests := []struct {
		name    string
		presses []Mode
		want    Mode
	}{
		{"single toggle", []Mode{ModeWebSearch}, ModeWebSearch},
		{"toggle twice returns to chat", []Mode{ModeReasoning, ModeReasoning}, ModeChat},
		{"modes are exclusive", []Mode{ModeWebSearch, ModeDeveloper}, ModeDeveloper},
		{"switch then clear", []Mode{ModeDeveloper, ModeReasoning, ModeReasoning}, ModeChat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a AppView
			for _, m := range tt.presses {
				a.toggleMode(m)
			}
			if a.mode != tt.want {
				t.Errorf("mode = %s, want %s", a.mode, tt.want)
			}
		})
	}
}

func TestSubmissionFlags(t *testing.T) {
	tests := []struct {
		mode      Mode
		developer bool
		web       bool
		reasoning bool
	}{
		{ModeChat, false, false, false},
		{ModeWebSearch, false, true, false},
		{ModeReasoning, false, false, true},
		{ModeDeveloper, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			a := AppView{mode: tt.mode, attachments: testutil.ImageAttachments()}
			sub := a.submission("question")

			if sub.Message != "question" {
				t.Errorf("Message = %q", sub.Message)
			}
			if sub.Developer != tt.developer || sub.WebSearch != tt.web || sub.Reasoning != tt.reasoning {
				t.Errorf("flags = dev:%v web:%v reasoning:%v", sub.Developer, sub.WebSearch, sub.Reasoning)
			}
			if sub.Attachments.Empty() {
				t.Error("attachments were dropped")
			}
		})
	}
}

func TestKeyTogglesMode(t *testing.T) {
	ta := newTestApp(t)

	ta.send(tea.KeyMsg{Type: tea.KeyCtrlW})
	if ta.app.mode != ModeWebSearch {
		t.Fatalf("mode = %s, want web search", ta.app.mode)
	}
	if !strings.Contains(ta.app.View(), "Web search") {
		t.Error("title does not show the active mode")
	}

	ta.send(tea.KeyMsg{Type: tea.KeyCtrlW})
	if ta.app.mode != ModeChat {
		t.Errorf("mode = %s, want chat", ta.app.mode)
	}
}

func TestSubmitThroughView(t *testing.T) {
	ta := newTestApp(t, "<think>", "plan the reply", "</think>", "Hello there")

	ta.app.textarea.SetValue("hi")
	cmd := ta.send(tea.KeyMsg{Type: tea.KeyEnter})

	if !ta.app.streaming {
		t.Fatal("view is not streaming after send")
	}
	if ta.app.textarea.Value() != "" {
		t.Errorf("input not cleared: %q", ta.app.textarea.Value())
	}

	done, ok := findMsg[submitDoneMsg](runCmd(cmd))
	if !ok {
		t.Fatal("no submitDoneMsg produced")
	}
	if done.Err != nil {
		t.Fatalf("submission error = %v", done.Err)
	}

	saveCmd := ta.send(done)
	if ta.app.streaming {
		t.Error("still streaming after completion")
	}

	view := ta.app.View()
	for _, want := range []string{"hi", "Hello there", "Thinking", "3 words"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "plan the reply") {
		t.Error("collapsed thinking shows its body")
	}

	ta.send(tea.KeyMsg{Type: tea.KeyCtrlT})
	if !strings.Contains(ta.app.View(), "plan the reply") {
		t.Error("expanded thinking does not show its body")
	}

	saved, ok := findMsg[sessionSavedMsg](runCmd(saveCmd))
	if !ok || saved.Err != nil {
		t.Fatalf("session not saved: %+v", saved)
	}
	list, err := ta.sessions.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || list[0].Name != "hi" || list[0].MessageCount != 2 {
		t.Errorf("sessions = %+v", list)
	}
}

func TestValidationRestoresInput(t *testing.T) {
	ta := newTestApp(t)

	ta.app.streaming = true
	ta.app.pendingInput = "draft"
	ta.app.pendingAttachments = testutil.PDFAttachments()

	ta.send(submitDoneMsg{Err: &chat.ValidationError{Reason: "Search is not configured."}})

	if ta.app.streaming {
		t.Error("still streaming")
	}
	if got := ta.app.textarea.Value(); got != "draft" {
		t.Errorf("input = %q, want draft", got)
	}
	if ta.app.attachments.Empty() {
		t.Error("attachments not restored")
	}
	if ta.app.notice != "Search is not configured." || !ta.app.noticeErr {
		t.Errorf("notice = %q (err=%v)", ta.app.notice, ta.app.noticeErr)
	}
}

func TestBusyRejectsSecondSend(t *testing.T) {
	ta := newTestApp(t)
	ta.app.streaming = true

	ta.app.textarea.SetValue("again")
	cmd := ta.send(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Error("a second submission was started")
	}
	if ta.app.textarea.Value() != "again" {
		t.Error("input was cleared")
	}
	if ta.app.notice != chat.UserMessage(&chat.ConcurrentSubmissionError{}) {
		t.Errorf("notice = %q", ta.app.notice)
	}
}

func TestFollowUpCycling(t *testing.T) {
	ta := newTestApp(t)
	ta.app.followUps = []string{"first?", "second?"}

	ta.send(tea.KeyMsg{Type: tea.KeyTab})
	if got := ta.app.textarea.Value(); got != "first?" {
		t.Fatalf("input = %q, want first?", got)
	}
	ta.send(tea.KeyMsg{Type: tea.KeyTab})
	if got := ta.app.textarea.Value(); got != "second?" {
		t.Fatalf("input = %q, want second?", got)
	}

	ta.app.textarea.SetValue("my own question")
	if ta.app.canCycleFollowUp() {
		t.Error("tab would overwrite typed input")
	}
}

func TestFollowUpsArriveAfterSubmit(t *testing.T) {
	ta := newTestApp(t, "Answer")
	fu := testutil.NewMockProvider("gemini", "1. What next?\n2. Why?")
	a := ta.orch.Adapters()
	a.FollowUp = provider.NewAdapter(fu, provider.Variant{Name: "follow-ups"})
	ta.orch.SetAdapters(a)

	ta.app.textarea.SetValue("Question")
	done, ok := findMsg[submitDoneMsg](runCmd(ta.send(tea.KeyMsg{Type: tea.KeyEnter})))
	if !ok || done.Err != nil {
		t.Fatalf("submit did not finish: %+v", done)
	}
	if n := len(fu.Requests()); n != 0 {
		t.Fatalf("follow-ups requested during submit: %d", n)
	}

	cmd := ta.send(done)
	if ta.app.streaming {
		t.Error("streaming not cleared before follow-ups")
	}
	if len(ta.app.followUps) != 0 {
		t.Errorf("follow-ups set early: %q", ta.app.followUps)
	}

	msg, ok := findMsg[followUpsMsg](runCmd(cmd))
	if !ok {
		t.Fatal("no followUpsMsg produced")
	}
	if msg.For != done.Result.Message.ID {
		t.Errorf("followUpsMsg.For = %q, want %q", msg.For, done.Result.Message.ID)
	}
	if !strings.Contains(fu.Requests()[0].Message, "Question") {
		t.Errorf("follow-up prompt lacks the question: %q", fu.Requests()[0].Message)
	}

	tests := []struct {
		name string
		msg  followUpsMsg
		want int
	}{
		{"stale answer ignored", followUpsMsg{For: "other", Questions: []string{"old?"}}, 0},
		{"latest answer applied", msg, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta.send(tt.msg)
			if len(ta.app.followUps) != tt.want {
				t.Errorf("follow-ups = %q, want %d", ta.app.followUps, tt.want)
			}
		})
	}
}

func TestPicker(t *testing.T) {
	ta := newTestApp(t)

	items := []pickerItem{
		{SessionID: "a", Title: "Alpha", Time: time.Now()},
		{SessionID: "b", Title: "Beta", Time: time.Now()},
	}
	ta.send(pickerItemsMsg{Title: "Sessions", Items: items})
	if !ta.app.picker.active {
		t.Fatal("picker not opened")
	}
	if view := ta.app.View(); !strings.Contains(view, "Alpha") || !strings.Contains(view, "Beta") {
		t.Error("picker does not list items")
	}

	ta.send(tea.KeyMsg{Type: tea.KeyDown})
	ta.send(tea.KeyMsg{Type: tea.KeyDown})
	if ta.app.picker.selected != 1 {
		t.Errorf("selected = %d, want 1", ta.app.picker.selected)
	}

	ta.send(tea.KeyMsg{Type: tea.KeyEsc})
	if ta.app.picker.active {
		t.Error("esc did not close the picker")
	}
}

func TestLoadSessionFromPicker(t *testing.T) {
	ta := newTestApp(t)

	s := storage.NewSession("gemini", "gemini-2.0-flash")
	s.Name = "Saved chat"
	s.Messages = testutil.TestMessages()
	if err := ta.sessions.Save(s); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	ta.send(pickerItemsMsg{Title: "Sessions", Items: []pickerItem{{SessionID: s.ID, Title: s.Name}}})
	cmd := ta.send(tea.KeyMsg{Type: tea.KeyEnter})

	loaded, ok := findMsg[sessionLoadedMsg](runCmd(cmd))
	if !ok || loaded.Err != nil {
		t.Fatalf("session not loaded: %+v", loaded)
	}
	idCmd := ta.send(loaded)

	if ta.conv.Len() != 3 {
		t.Errorf("conversation has %d messages, want 3", ta.conv.Len())
	}
	if ta.app.session.ID != s.ID {
		t.Errorf("active session = %s, want %s", ta.app.session.ID, s.ID)
	}

	runCmd(idCmd)
	if current, err := ta.sessions.LoadCurrentSessionID(); err != nil || current != s.ID {
		t.Errorf("current session = %q, %v; want %s", current, err, s.ID)
	}
}

func TestLastAnswer(t *testing.T) {
	ta := newTestApp(t)
	if _, ok := ta.app.lastAnswer(); ok {
		t.Error("empty conversation has an answer")
	}

	ta.conv.Reset([]model.Message{
		{ID: model.NewMessageID(), Role: model.RoleUser, Content: "q"},
		{ID: model.NewMessageID(), Role: model.RoleAssistant, Content: "<think>hidden</think> visible "},
	})
	got, ok := ta.app.lastAnswer()
	if !ok || got != "visible" {
		t.Errorf("lastAnswer() = %q, %v", got, ok)
	}
}

func TestRenderThinking(t *testing.T) {
	ta := newTestApp(t)

	collapsed := ta.app.renderThinking("one two three", false)
	if !strings.Contains(collapsed, "▶ Thinking") || !strings.Contains(collapsed, "3 words") {
		t.Errorf("collapsed = %q", collapsed)
	}
	if strings.Contains(collapsed, "one two") {
		t.Error("collapsed section shows its body")
	}

	ta.app.showThinking = true
	expanded := ta.app.renderThinking("line one\nline two", true)
	if !strings.Contains(expanded, "▼ Thinking") || !strings.Contains(expanded, "line two") {
		t.Errorf("expanded = %q", expanded)
	}
}

func TestMarkdownCache(t *testing.T) {
	ta := newTestApp(t)
	id := model.NewMessageID()

	first := ta.app.renderMarkdown(id, "Some **bold** text")
	if !strings.Contains(first, "bold") {
		t.Errorf("rendered = %q", first)
	}
	if _, ok := ta.app.renders[id]; !ok {
		t.Fatal("render not cached")
	}

	ta.app.renders[id] = renderCache{content: "Some **bold** text", width: 100, out: "cached"}
	if got := ta.app.renderMarkdown(id, "Some **bold** text"); got != "cached" {
		t.Errorf("cache not used: %q", got)
	}
	if got := ta.app.renderMarkdown(id, "changed"); got == "cached" {
		t.Error("stale cache used for new content")
	}
}

func TestPhaseLabel(t *testing.T) {
	tests := []struct {
		phase chat.Phase
		want  string
	}{
		{chat.PhaseValidating, "Sending..."},
		{chat.PhaseDispatching, "Sending..."},
		{chat.PhaseStreaming, "Generating..."},
		{chat.PhaseIdle, "Working..."},
	}
	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			if got := phaseLabel(tt.phase); got != tt.want {
				t.Errorf("phaseLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBindCoalescesChanges(t *testing.T) {
	conv := storage.NewConversation()
	orch := chat.NewOrchestrator(conv, provider.Adapters{}, chat.Options{})

	// The program never runs, so every Send blocks until ctx ends.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := tea.NewProgram(nil, tea.WithContext(ctx))
	unbind := Bind(p, conv, orch)
	defer unbind()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			conv.Append(model.NewPlaceholder())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("store mutations blocked on the view")
	}
}
