// Package contextwindow keeps an outgoing chat payload inside the model's
// context limit. It never touches stored conversations.
package contextwindow

import (
	"unicode/utf8"

	"offline-chat-be/pkg/llm"
)

const (
	DefaultMaxContextTokens = 32000
	DefaultSafetyBuffer     = 100
	DefaultMinOutputTokens  = 512

	charsPerToken      = 4
	perMessageOverhead = 4
	perImageTokens     = 256
)

type Budget struct {
	MaxContextTokens int
	SafetyBuffer     int
	MinOutputTokens  int
}

func NewBudget(maxContextTokens int) Budget {
	if maxContextTokens <= 0 {
		maxContextTokens = DefaultMaxContextTokens
	}
	return Budget{
		MaxContextTokens: maxContextTokens,
		SafetyBuffer:     DefaultSafetyBuffer,
		MinOutputTokens:  DefaultMinOutputTokens,
	}
}

func (b Budget) effective() int {
	return b.MaxContextTokens - b.SafetyBuffer
}

// EstimateTokens is a character-based estimate; the real tokenizer lives with
// the model.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + charsPerToken - 1) / charsPerToken
}

func EstimateMessage(m llm.Message) int {
	return perMessageOverhead + EstimateTokens(m.Content) + len(m.Images)*perImageTokens
}

func EstimateAll(messages []llm.Message) int {
	total := 0
	for _, m := range messages {
		total += EstimateMessage(m)
	}
	return total
}

type Result struct {
	Messages     []llm.Message
	OutputTokens int
	Dropped      int
	InputTokens  int
}

// Fit drops the oldest history messages until the payload plus the output
// reserve fits. A leading system message and the final message are always
// kept. History never starts with an assistant reply after trimming.
func (b Budget) Fit(messages []llm.Message, targetOutput int) Result {
	if targetOutput <= 0 {
		targetOutput = b.MinOutputTokens
	}

	current := EstimateAll(messages)
	available := b.effective() - current
	if available >= targetOutput {
		return Result{Messages: messages, OutputTokens: targetOutput, InputTokens: current}
	}
	if current < b.effective() {
		return Result{Messages: messages, OutputTokens: maxInt(b.MinOutputTokens, available), InputTokens: current}
	}

	var head []llm.Message
	rest := messages
	if len(rest) > 0 && rest[0].Role == llm.RoleSystem {
		head = rest[:1]
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return Result{Messages: messages, OutputTokens: b.MinOutputTokens, InputTokens: current}
	}

	last := rest[len(rest)-1]
	history := rest[:len(rest)-1]

	limit := b.effective() - b.MinOutputTokens
	used := EstimateAll(head) + EstimateMessage(last)

	// Walk backwards from the newest history message and keep what fits.
	start := len(history)
	for start > 0 {
		cost := EstimateMessage(history[start-1])
		if used+cost > limit {
			break
		}
		used += cost
		start--
	}
	for start < len(history) && history[start].Role == llm.RoleAssistant {
		used -= EstimateMessage(history[start])
		start++
	}

	out := make([]llm.Message, 0, len(head)+len(history)-start+1)
	out = append(out, head...)
	out = append(out, history[start:]...)
	out = append(out, last)

	return Result{
		Messages:     out,
		OutputTokens: maxInt(b.MinOutputTokens, b.effective()-used),
		Dropped:      start,
		InputTokens:  used,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
