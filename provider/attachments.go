package provider

import (
	"encoding/base64"
	"fmt"
	"strings"

	"paradox/model"
	"paradox/stream"
)

const (
	defaultImageMIME = "image/jpeg"
	pdfMIME          = "application/pdf"
)

// inlineData is a decoded attachment ready for an SDK.
type inlineData struct {
	MIMEType string
	Base64   string // raw base64 payload, no data URL prefix
	Name     string
}

// Bytes decodes the payload.
func (d inlineData) Bytes() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(d.Base64)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 attachment: %w", err)
	}
	return b, nil
}

// DataURL renders the payload as a data URL.
func (d inlineData) DataURL() string {
	return "data:" + d.MIMEType + ";base64," + d.Base64
}

// parseDataURL splits "data:<mime>;base64,<payload>" into its parts. Bare
// base64 is accepted and tagged with fallbackMIME.
func parseDataURL(s, fallbackMIME string) inlineData {
	if !strings.HasPrefix(s, "data:") {
		return inlineData{MIMEType: fallbackMIME, Base64: s}
	}
	header, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok {
		return inlineData{MIMEType: fallbackMIME, Base64: s}
	}
	mime, _, _ := strings.Cut(header, ";")
	if mime == "" {
		mime = fallbackMIME
	}
	return inlineData{MIMEType: mime, Base64: payload}
}

// imagesOf returns the images of a, in order.
func imagesOf(a *model.Attachments) []inlineData {
	if a.Empty() {
		return nil
	}
	out := make([]inlineData, 0, len(a.Images))
	for _, img := range a.Images {
		out = append(out, parseDataURL(img, defaultImageMIME))
	}
	return out
}

// pdfsOf returns the PDFs of a, in order.
func pdfsOf(a *model.Attachments) []inlineData {
	if a.Empty() {
		return nil
	}
	out := make([]inlineData, 0, len(a.PDFs))
	for _, pdf := range a.PDFs {
		d := parseDataURL(pdf.Data, pdfMIME)
		d.Name = pdf.Name
		out = append(out, d)
	}
	return out
}

// historyText returns the content to send upstream for a prior message.
// Thinking segments of earlier answers are not replayed.
func historyText(m model.Message) string {
	if m.Role == model.RoleAssistant {
		return stream.StripThinking(m.Content)
	}
	return m.Content
}

// thinkTracker injects the thinking markers around text arriving on a
// provider's separate reasoning channel.
type thinkTracker struct {
	open bool
}

// tokens returns the tokens to yield for one piece of text.
func (t *thinkTracker) tokens(text string, thought bool) []string {
	if text == "" {
		return nil
	}
	switch {
	case thought && !t.open:
		t.open = true
		return []string{stream.OpenMarker, text}
	case !thought && t.open:
		t.open = false
		return []string{stream.CloseMarker, text}
	default:
		return []string{text}
	}
}

// finish closes a segment left open at end of stream.
func (t *thinkTracker) finish() []string {
	if !t.open {
		return nil
	}
	t.open = false
	return []string{stream.CloseMarker}
}
