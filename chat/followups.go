package chat

import (
	"context"
	"fmt"
	"strings"

	"paradox/model"
	"paradox/provider"
	"paradox/stream"
)

const maxFollowUps = 3

const followUpPrompt = `Based on the question and answer below, suggest %d short follow-up questions the user might ask next.
Reply with one question per line and nothing else.

Question:
%s

Answer:
%s`

// GenerateFollowUps asks a for up to three follow-up questions to an
// exchange.
func GenerateFollowUps(ctx context.Context, a *provider.Adapter, question, answer string) ([]string, error) {
	answer = stream.StripThinking(answer)
	if strings.TrimSpace(answer) == "" {
		return nil, nil
	}

	var b strings.Builder
	for tok, err := range a.Send(ctx, provider.SendRequest{
		Message: fmt.Sprintf(followUpPrompt, maxFollowUps, question, answer),
		Depth:   model.DepthPlain,
	}) {
		if err != nil {
			return nil, err
		}
		b.WriteString(tok)
	}

	return ParseFollowUps(stream.StripThinking(b.String())), nil
}

// ParseFollowUps extracts up to three questions from a line-per-question
// reply, dropping list numbering and bullets.
func ParseFollowUps(reply string) []string {
	var out []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•0123456789.) ")
		line = strings.Trim(line, "\"")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == maxFollowUps {
			break
		}
	}
	return out
}
