package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"github.com/mattn/go-runewidth"

	"paradox/config"
	"paradox/model"
	"paradox/stream"
)

// Pre-compiled regex patterns for better performance
var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
)

const codeBar = "┃"

// renderCache holds the rendered markdown of a finished answer.
type renderCache struct {
	content string
	width   int
	out     string
}

func (a *AppView) updateViewportContent(gotoBottom bool) {
	msgs := a.conv.Messages()

	var content strings.Builder

	if len(msgs) == 0 {
		content.WriteString(DimStyle.Render("No messages yet. Start chatting!"))
		content.WriteString("\n\n")
	}

	for i, msg := range msgs {
		timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))

		switch msg.Role {
		case model.RoleUser:
			body := msg.Content
			if !msg.Attachments.Empty() {
				body += "\n" + DimStyle.Render(attachmentSummary(msg.Attachments))
			}
			content.WriteString(formatUserMessage(timestamp, UserStyle.Render("You"), body))

		case model.RoleAssistant:
			live := a.streaming && i == len(msgs)-1
			fmt.Fprintf(&content, "%s %s\n%s\n\n", timestamp, AssistantStyle.Render("Assistant"), a.renderAssistant(msg, live))

		default:
			fmt.Fprintf(&content, "%s %s\n%s\n\n", timestamp, DimStyle.Render("System"), msg.Content)
		}
	}

	if len(a.followUps) > 0 && !a.streaming {
		content.WriteString(HighlightStyle.Render("Follow-up questions") + DimStyle.Render(" (Tab to use)") + "\n")
		for i, q := range a.followUps {
			line := fmt.Sprintf("  %d. %s", i+1, q)
			if a.width > 4 {
				line = runewidth.Truncate(line, a.width-2, "...")
			}
			content.WriteString(DimStyle.Render(line) + "\n")
		}
		content.WriteString("\n")
	}

	if a.notice != "" {
		style := NoticeStyle
		if a.noticeErr {
			style = ErrorStyle
		}
		content.WriteString(style.Render(a.notice) + "\n")
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

// renderAssistant renders an assistant message. A live message is still
// streaming: its answer is shown raw with a cursor and is not cached.
func (a *AppView) renderAssistant(msg model.Message, live bool) string {
	split := stream.SplitThinking(msg.Content)
	answer := strings.TrimSpace(split.Answer)

	var b strings.Builder
	if split.HasThinking && strings.TrimSpace(split.Thinking) != "" {
		b.WriteString(a.renderThinking(split.Thinking, live && answer == ""))
		b.WriteString("\n")
	}

	if live {
		if answer == "" && !split.HasThinking {
			b.WriteString(a.spinner.View() + " Waiting for response...")
		} else {
			b.WriteString(answer + "▋")
		}
		return b.String()
	}

	b.WriteString(a.renderMarkdown(msg.ID, answer))
	return b.String()
}

// renderThinking draws the thinking section. It is collapsed to a single
// header line unless the user expanded it.
func (a AppView) renderThinking(thinking string, active bool) string {
	thinking = strings.TrimSpace(thinking)
	hint := DimStyle.Render(fmt.Sprintf("(%s to toggle)", a.kb.DisplayActionKey("toggle_thinking")))

	if !a.showThinking {
		status := fmt.Sprintf("%d words", len(strings.Fields(thinking)))
		if active {
			status = a.spinner.View()
		}
		return fmt.Sprintf("%s %s %s", ThinkingHeaderStyle.Render("▶ Thinking"), DimStyle.Render(status), hint)
	}

	var b strings.Builder
	b.WriteString(ThinkingHeaderStyle.Render("▼ Thinking") + " " + hint + "\n")
	for _, line := range strings.Split(thinking, "\n") {
		b.WriteString(ThinkingStyle.Render("  "+line) + "\n")
	}
	return b.String()
}

// renderMarkdown renders a finished answer, reusing the cached output while
// the content and width are unchanged.
func (a *AppView) renderMarkdown(id model.MessageID, content string) string {
	if content == "" {
		return DimStyle.Render("(no answer)")
	}
	width := a.width
	if width < 20 {
		width = 80
	}

	if c, ok := a.renders[id]; ok && c.content == content && c.width == width {
		return c.out
	}

	startTime := time.Now()
	out := renderMarkdown(content, width)
	if config.DebugLog != nil {
		config.DebugLog.Printf("[UI] Markdown rendered for %s (%d chars) in %v", id, len(content), time.Since(startTime))
	}

	if a.renders != nil {
		a.renders[id] = renderCache{content: content, width: width, out: out}
	}
	return out
}

func renderMarkdown(content string, width int) string {
	// Strip markdown link syntax [text](url) to the bare url
	content = preprocessLinks(content)

	// Autolink off keeps URLs plain so terminals can detect them
	ext := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(ext)
	r := markdown.NewRenderer(width-4, 0)
	rendered := gomarkdown.Render(p.Parse([]byte(content)), r)

	return strings.TrimRight(postProcessMarkdown(string(rendered), width), "\n")
}

func formatUserMessage(timestamp, role, content string) string {
	bar := UserStyle.Render(codeBar)

	var result strings.Builder
	fmt.Fprintf(&result, "%s %s %s\n", bar, timestamp, role)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(&result, "%s %s\n", bar, line)
	}
	result.WriteString("\n")

	return result.String()
}

func postProcessMarkdown(rendered string, width int) string {
	rendered = fixInlineCode(rendered)
	rendered = fixMarkdownLinks(rendered)
	return frameCodeBlocks(rendered, width)
}

func preprocessLinks(content string) string {
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

func fixInlineCode(s string) string {
	// Blue background + italic becomes red text
	return inlineCodeRegex.ReplaceAllString(s, "\x1b[31m$1\x1b[0m")
}

func fixMarkdownLinks(s string) string {
	redColor := "\x1b[31m"
	reset := "\x1b[0m"

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		// Code block lines carry the bar prefix
		if !strings.Contains(line, codeBar) {
			lines[i] = urlRegex.ReplaceAllString(line, redColor+"$1"+reset)
		}
	}

	return strings.Join(lines, "\n")
}

func frameCodeBlocks(s string, width int) string {
	lines := strings.Split(s, "\n")
	var result []string
	var codeBlockLines []string
	inCodeBlock := false

	darkGray := "\x1b[90m"
	reset := "\x1b[0m"

	lineLen := width - 4
	if lineLen < 8 {
		lineLen = 8
	}
	bottom := darkGray + strings.Repeat("━", lineLen) + reset

	closeBlock := func() {
		result = append(result, codeBlockLines...)
		result = append(result, "", bottom, "")
		codeBlockLines = nil
		inCodeBlock = false
	}

	for _, line := range lines {
		if strings.Contains(line, codeBar) {
			if !inCodeBlock {
				inCodeBlock = true
				label := "[code]"
				leftLen := (lineLen - len(label)) / 2
				rightLen := lineLen - len(label) - leftLen
				top := darkGray + strings.Repeat("━", leftLen) + reset + label + darkGray + strings.Repeat("━", rightLen) + reset
				result = append(result, "", top, "")
			}
			codeBlockLines = append(codeBlockLines, stripCodeBlockPrefix(line))
			continue
		}

		if inCodeBlock {
			closeBlock()
		}
		result = append(result, line)
	}

	if inCodeBlock && len(codeBlockLines) > 0 {
		closeBlock()
	}

	return strings.Join(result, "\n")
}

func stripCodeBlockPrefix(line string) string {
	idx := strings.Index(line, codeBar)
	if idx < 0 {
		return line
	}
	after := idx + len(codeBar)
	if after < len(line) && line[after] == ' ' {
		after++
	}
	return line[after:]
}
