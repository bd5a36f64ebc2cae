package testutil

import (
	"time"

	"paradox/model"
)

// TinyPNG is a 1x1 transparent PNG as a data URL.
const TinyPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

// TinyPDF is a minimal PDF header as bare base64.
const TinyPDF = "JVBERi0xLjQKJcfsj6IKMSAwIG9iago8PD4+CmVuZG9iagp0cmFpbGVyCjw8Pj4KJSVFT0YK"

// TestMessages returns a sample conversation for testing
func TestMessages() []model.Message {
	return []model.Message{
		{ID: model.NewMessageID(), Role: model.RoleUser, Content: "Hello, how are you?", Timestamp: time.Now()},
		{ID: model.NewMessageID(), Role: model.RoleAssistant, Content: "<think>greeting</think>I'm doing well, thank you!", Timestamp: time.Now()},
		{ID: model.NewMessageID(), Role: model.RoleUser, Content: "Can you help me with a task?", Timestamp: time.Now()},
	}
}

// Conversation returns n alternating user/assistant messages numbered from 1.
func Conversation(n int) []model.Message {
	msgs := make([]model.Message, 0, n)
	for i := 1; i <= n; i++ {
		role := model.RoleUser
		if i%2 == 0 {
			role = model.RoleAssistant
		}
		msgs = append(msgs, model.Message{
			ID:        model.NewMessageID(),
			Role:      role,
			Content:   "message " + string(rune('0'+i%10)),
			Timestamp: time.Now(),
		})
	}
	return msgs
}

// ImageAttachments returns a single-image attachment set.
func ImageAttachments() *model.Attachments {
	return &model.Attachments{Images: []string{TinyPNG}}
}

// PDFAttachments returns a single-PDF attachment set.
func PDFAttachments() *model.Attachments {
	return &model.Attachments{PDFs: []model.PDF{{Name: "notes.pdf", Data: TinyPDF}}}
}
