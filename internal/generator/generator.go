// Package generator defines the TextGenerator contract spec.md §6 names
// as an external collaborator (the LLM provider is out of scope for the
// retrieval core) and provides EchoGenerator, a deterministic stub used
// by the core's own tests and by callers with no LLM configured.
package generator

import (
	"context"
	"strconv"
	"strings"
)

// Options are the generation parameters spec.md §4.10 requires the
// Orchestrator invoke TextGenerator with deterministically (temperature 0,
// top_p 1, fixed seed where supported).
type Options struct {
	Temperature float64
	TopP        float64
	Seed        int64
	MaxTokens   int
}

// DeterministicOptions returns the fixed settings spec.md §4.10 mandates.
func DeterministicOptions(maxTokens int) Options {
	return Options{Temperature: 0, TopP: 1, Seed: 0, MaxTokens: maxTokens}
}

// Result is TextGenerator's output (spec.md §6).
type Result struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// TextGenerator invokes an external text-generation provider.
type TextGenerator interface {
	Generate(ctx context.Context, systemText, userText string, opts Options) (Result, error)
}

// EchoGenerator is a deterministic stub TextGenerator: it never calls a
// network service, so it can stand in during tests and as a default when
// no LLM provider is configured. It echoes the task back framed by a fixed
// acknowledgement, giving the Orchestrator pipeline a real (if trivial)
// generated body to attach footnotes to.
type EchoGenerator struct{}

// NewEchoGenerator returns an EchoGenerator.
func NewEchoGenerator() *EchoGenerator {
	return &EchoGenerator{}
}

// Generate returns userText verbatim, prefixed by a fixed acknowledgement
// line referencing how much system context was supplied.
func (g *EchoGenerator) Generate(_ context.Context, systemText, userText string, _ Options) (Result, error) {
	var b strings.Builder
	b.WriteString("Drafted from ")
	b.WriteString(approximateTokenCount(systemText))
	b.WriteString(" tokens of retrieved context.\n\n")
	b.WriteString(userText)

	text := b.String()
	return Result{
		Text:         text,
		InputTokens:  charsToTokens(len(systemText) + len(userText)),
		OutputTokens: charsToTokens(len(text)),
	}, nil
}

func approximateTokenCount(s string) string {
	return strconv.Itoa(charsToTokens(len(s)))
}

// charsToTokens applies the 4:1 character/token heuristic spec.md §4.8
// uses for its maxTokens cap.
func charsToTokens(chars int) int {
	return chars / 4
}
