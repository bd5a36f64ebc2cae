package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"paradox/chat"
	"paradox/config"
	"paradox/model"
	"paradox/storage"
)

// Mode is the answer mode selected in the input area. Modes are mutually
// exclusive; ModeChat is plain generation.
type Mode int

const (
	ModeChat Mode = iota
	ModeWebSearch
	ModeReasoning
	ModeDeveloper
)

func (m Mode) String() string {
	switch m {
	case ModeWebSearch:
		return "Web search"
	case ModeReasoning:
		return "Reasoning"
	case ModeDeveloper:
		return "Developer"
	default:
		return "Chat"
	}
}

// Deps are the long-lived objects the view drives.
type Deps struct {
	Config       *config.Config
	Conversation *storage.Conversation
	Orchestrator *chat.Orchestrator
	Sessions     *storage.SessionStorage
	// Exchanges is optional; /stats is unavailable without it.
	Exchanges *storage.ExchangeLog
	// Session is the session to resume, or nil for a new one.
	Session *storage.Session
	Version string
}

type AppView struct {
	cfg       *config.Config
	kb        *config.KeyBindingsConfig
	conv      *storage.Conversation
	orch      *chat.Orchestrator
	sessions  *storage.SessionStorage
	search    *storage.SearchIndex
	exchanges *storage.ExchangeLog
	session   *storage.Session
	version   string

	// UI Components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// Window state
	width  int
	height int
	ready  bool

	mode         Mode
	showThinking bool
	showHelp     bool

	// Attachments for the next submission
	attachments *model.Attachments

	// Streaming state
	streaming bool
	phase     chat.Phase
	cancel    context.CancelFunc
	// Restored when a submission is rejected by validation
	pendingInput       string
	pendingAttachments *model.Attachments

	followUps   []string
	followUpIdx int

	notice    string
	noticeErr bool

	picker pickerState

	// Rendered markdown of finished assistant answers
	renders map[model.MessageID]renderCache
}

// NewAppView builds the main view. When d.Session is set its messages are
// loaded into the conversation.
func NewAppView(d Deps) AppView {
	kb := d.Config.Keybindings
	if kb == nil {
		kb = config.DefaultKeybindings()
	}

	ta := textarea.New()
	ta.Placeholder = "Ask anything. Type /help for commands..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Enter sends; the configured newline key inserts a line break
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys(kb.GetActionKey("newline")))

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = AssistantStyle

	session := d.Session
	if session == nil {
		session = storage.NewSession(d.Config.Generation.Provider, d.Config.Generation.Model)
	} else {
		d.Conversation.Reset(session.Messages)
	}
	d.Orchestrator.SetSessionID(session.ID)

	return AppView{
		cfg:       d.Config,
		kb:        kb,
		conv:      d.Conversation,
		orch:      d.Orchestrator,
		sessions:  d.Sessions,
		search:    storage.NewSearchIndex(d.Sessions),
		exchanges: d.Exchanges,
		session:   session,
		version:   d.Version,
		viewport:  viewport.New(0, 0),
		textarea:  ta,
		spinner:   sp,
		renders:   make(map[model.MessageID]renderCache),
	}
}

// Bind connects the running program to the conversation and orchestrator.
// Conversation changes are coalesced so a fast stream cannot flood the
// program, and the subscriber never blocks the goroutine that mutates the
// store. Call the returned function after the program exits.
func Bind(p *tea.Program, conv *storage.Conversation, orch *chat.Orchestrator) (unbind func()) {
	dirty := make(chan struct{}, 1)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-dirty:
				p.Send(conversationChangedMsg{})
			case <-done:
				return
			}
		}
	}()

	unsubscribe := conv.Subscribe(func(storage.Event) {
		select {
		case dirty <- struct{}{}:
		default:
		}
	})

	// Phases are reported from the submission goroutine, never from Update
	orch.OnPhase = func(ph chat.Phase) {
		p.Send(phaseMsg{Phase: ph})
	}

	return func() {
		unsubscribe()
		close(done)
	}
}

func (a AppView) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, a.spinner.Tick)
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading Paradox..."
	}

	if a.showHelp {
		return a.renderHelpModal(a.width, a.height)
	}

	if a.picker.active {
		return a.renderPicker(a.width, a.height)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		a.renderTitle(),
		"",
		a.viewport.View(),
		a.textarea.View(),
		a.renderStatusBar(),
	)
}

func (a AppView) renderTitle() string {
	title := AssistantStyle.Render("Paradox")

	route := a.cfg.Generation
	switch a.mode {
	case ModeWebSearch, ModeReasoning:
		route = a.cfg.Search
	case ModeDeveloper:
		route = config.RouteConfig{Provider: a.cfg.Developer.Provider, Model: a.cfg.Developer.Model}
	}
	modelName := route.Model
	if a.mode == ModeReasoning && route.ReasoningModel != "" {
		modelName = route.ReasoningModel
	}
	title += TitleStyle.Render(fmt.Sprintf(" - %s/%s", config.ProviderDisplayName(route.Provider), modelName))

	sessionName := "New Session"
	if a.session != nil && a.session.Name != "" {
		sessionName = a.session.Name
	}
	title += UserStyle.Render(fmt.Sprintf(" - %s", sessionName))

	if a.mode != ModeChat {
		title += " " + ModeBadgeStyle.Render(a.mode.String())
	}
	if !a.attachments.Empty() {
		title += DimStyle.Render(" | " + attachmentSummary(a.attachments))
	}

	return title
}

func (a AppView) renderStatusBar() string {
	descStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)

	if a.streaming {
		return StatusStyle.Render(fmt.Sprintf("%s %s  %s %s",
			a.spinner.View(),
			descStyle.Render(phaseLabel(a.phase)),
			a.kb.DisplayActionKey("cancel"),
			descStyle.Render("Cancel"),
		))
	}

	return StatusStyle.Render(fmt.Sprintf("%s %s  %s %s  %s %s  %s %s  %s %s  %s %s  %s %s",
		a.kb.DisplayActionKey("send"), descStyle.Render("Send"),
		a.kb.DisplayActionKey("toggle_web_search"), descStyle.Render("Web"),
		a.kb.DisplayActionKey("toggle_reasoning"), descStyle.Render("Reason"),
		a.kb.DisplayActionKey("toggle_developer"), descStyle.Render("Dev"),
		a.kb.DisplayActionKey("toggle_thinking"), descStyle.Render("Thinking"),
		a.kb.DisplayActionKey("yank_last_response"), descStyle.Render("Copy"),
		a.kb.DisplayActionKey("help"), descStyle.Render("Help"),
	))
}

func phaseLabel(p chat.Phase) string {
	switch p {
	case chat.PhaseValidating, chat.PhaseDispatching:
		return "Sending..."
	case chat.PhaseStreaming:
		return "Generating..."
	default:
		return "Working..."
	}
}
