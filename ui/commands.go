package ui

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"paradox/config"
	"paradox/model"
	"paradox/provider"
)

// maxAttachmentSize bounds a single attached file.
const maxAttachmentSize = 20 << 20

// parseCommand splits "/name args..." into its name and trimmed arguments.
func parseCommand(input string) (name, args string, ok bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") || len(input) == 1 {
		return "", "", false
	}
	name, args, _ = strings.Cut(input[1:], " ")
	return strings.ToLower(name), strings.TrimSpace(args), true
}

func (a AppView) runCommand(input string) (AppView, tea.Cmd) {
	name, args, ok := parseCommand(input)
	if !ok {
		a.setNotice("Unknown command. Type /help for a list.", true)
		return a, nil
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[UI] Command /%s", name)
	}

	switch name {
	case "help":
		a.showHelp = true
		return a, nil

	case "image":
		data, err := loadImage(config.ExpandPath(args))
		if err != nil {
			a.setNotice(err.Error(), true)
			return a, nil
		}
		a.attachments = addImage(a.attachments, data)
		a.setNotice("Attached image "+filepath.Base(args), false)
		return a, nil

	case "pdf":
		pdf, err := loadPDF(config.ExpandPath(args))
		if err != nil {
			a.setNotice(err.Error(), true)
			return a, nil
		}
		a.attachments = addPDF(a.attachments, pdf)
		a.setNotice("Attached PDF "+pdf.Name, false)
		return a, nil

	case "detach":
		a.attachments = nil
		a.setNotice("Attachments cleared.", false)
		return a, nil

	case "new":
		return a.newSession()

	case "key":
		return a.setKey(args)

	case "search":
		if args == "" {
			a.setNotice("Usage: /search <query>", true)
			return a, nil
		}
		return a, a.searchSessions(args)

	case "sessions":
		return a, a.listSessions()

	case "rename":
		if args == "" {
			a.setNotice("Usage: /rename <name>", true)
			return a, nil
		}
		a.session.Name = args
		return a, a.saveSession("", "")

	case "export":
		return a, a.exportSession()

	case "stats":
		return a, a.showStats()

	case "quit":
		if a.cancel != nil {
			a.cancel()
		}
		return a, tea.Quit
	}

	a.setNotice(fmt.Sprintf("Unknown command /%s. Type /help for a list.", name), true)
	return a, nil
}

// setKey handles "/key <provider> <api-key>". An empty key removes the
// stored one. Adapters are rebuilt so the change applies to the next
// submission, then the key is checked in the background.
func (a AppView) setKey(args string) (AppView, tea.Cmd) {
	id, key, _ := strings.Cut(args, " ")
	id = strings.ToLower(strings.TrimSpace(id))
	key = strings.TrimSpace(key)

	if id == "" {
		a.setNotice("Usage: /key <provider> <api-key>", true)
		return a, nil
	}
	if err := a.cfg.SetAPIKey(id, key); err != nil {
		a.setNotice(err.Error(), true)
		return a, nil
	}

	a.orch.SetAdapters(provider.InitializeAdapters(a.cfg))

	if key == "" {
		a.setNotice(fmt.Sprintf("Removed %s key.", config.ProviderDisplayName(id)), false)
		return a, nil
	}

	a.setNotice(fmt.Sprintf("Saved %s key. Checking...", config.ProviderDisplayName(id)), false)
	return a, provider.PingProvider(id, a.cfg.BaseURL(id), key)
}

func (a AppView) showStats() tea.Cmd {
	if a.exchanges == nil {
		return func() tea.Msg {
			return noticeMsg{Text: "Exchange log is unavailable.", Err: true}
		}
	}
	log := a.exchanges
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		stats, err := log.Stats(ctx)
		if err != nil {
			return noticeMsg{Text: fmt.Sprintf("Failed to read stats: %v", err), Err: true}
		}
		if len(stats) == 0 {
			return noticeMsg{Text: "No exchanges recorded yet."}
		}

		var b strings.Builder
		b.WriteString("Exchanges per provider:")
		for _, s := range stats {
			fmt.Fprintf(&b, "\n  %-12s %4d total  %3d failed  %6d tokens  avg %s",
				config.ProviderDisplayName(s.Provider), s.Exchanges, s.Failed, s.Tokens, formatDuration(s.AvgDuration))
		}
		return noticeMsg{Text: b.String()}
	}
}

// loadImage reads an image file into a data URL.
func loadImage(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("usage: /image <path>")
	}
	data, err := readAttachment(path)
	if err != nil {
		return "", err
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("%s is not an image", filepath.Base(path))
	}

	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// loadPDF reads a PDF file into an attachment.
func loadPDF(path string) (model.PDF, error) {
	if path == "" {
		return model.PDF{}, fmt.Errorf("usage: /pdf <path>")
	}
	data, err := readAttachment(path)
	if err != nil {
		return model.PDF{}, err
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return model.PDF{}, fmt.Errorf("%s is not a PDF", filepath.Base(path))
	}
	return model.PDF{
		Name: filepath.Base(path),
		Data: base64.StdEncoding.EncodeToString(data),
	}, nil
}

func readAttachment(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > maxAttachmentSize {
		return nil, fmt.Errorf("%s is larger than %d MB", filepath.Base(path), maxAttachmentSize>>20)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return data, nil
}

func addImage(a *model.Attachments, dataURL string) *model.Attachments {
	next := a.Clone()
	if next == nil {
		next = &model.Attachments{}
	}
	next.Images = append(next.Images, dataURL)
	return next
}

func addPDF(a *model.Attachments, pdf model.PDF) *model.Attachments {
	next := a.Clone()
	if next == nil {
		next = &model.Attachments{}
	}
	next.PDFs = append(next.PDFs, pdf)
	return next
}

// attachmentSummary describes attachments in a few words.
func attachmentSummary(a *model.Attachments) string {
	if a.Empty() {
		return ""
	}
	var parts []string
	if n := len(a.Images); n > 0 {
		parts = append(parts, plural(n, "image"))
	}
	if n := len(a.PDFs); n > 0 {
		parts = append(parts, plural(n, "PDF"))
	}
	return "📎 " + strings.Join(parts, ", ")
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// formatDuration formats duration for display
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
