package ui

import (
	"paradox/chat"
	"paradox/model"
	"paradox/storage"
)

// conversationChangedMsg tells the view the conversation store changed.
// Bursts of changes are coalesced into one message.
type conversationChangedMsg struct{}

// phaseMsg carries an orchestrator phase change.
type phaseMsg struct {
	Phase chat.Phase
}

// submitDoneMsg ends a submission started by the view.
type submitDoneMsg struct {
	Result *chat.Result
	Err    error
}

// followUpsMsg carries suggestions for the assistant message For.
type followUpsMsg struct {
	For       model.MessageID
	Questions []string
}

type sessionSavedMsg struct {
	Err error
}

// pickerItemsMsg opens the session picker with search or listing results.
type pickerItemsMsg struct {
	Title string
	Items []pickerItem
	Err   error
}

type sessionLoadedMsg struct {
	Session *storage.Session
	Err     error
}

type sessionExportedMsg struct {
	Path string
	Err  error
}

// noticeMsg shows a one-line notice under the conversation.
type noticeMsg struct {
	Text string
	Err  bool
}
