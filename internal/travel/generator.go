package travel

import (
	"context"

	"github.com/pkg/errors"

	"travel-planner-backend/internal/llm"
)

// Generator drafts the assistant reply for a classified utterance.
type Generator struct {
	llm     llm.Completer
	catalog *Catalog
	window  int
}

func NewGenerator(c llm.Completer, catalog *Catalog, historyWindow int) *Generator {
	if historyWindow < 0 {
		historyWindow = 0
	}
	return &Generator{llm: c, catalog: catalog, window: historyWindow}
}

// BuildRequest assembles [system] + last window turns of history + the
// current user message. Older turns are dropped, not summarized.
func (g *Generator) BuildRequest(message string, intent Intent, history []llm.Message) llm.CompletionRequest {
	if len(history) > g.window {
		history = history[len(history)-g.window:]
	}
	msgs := make([]llm.Message, 0, len(history)+1)
	msgs = append(msgs, history...)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: message})
	return llm.CompletionRequest{
		System:    g.catalog.SystemPrompt(intent),
		Messages:  msgs,
		MaxTokens: GeneratorMaxTokens,
	}
}

// Generate returns the raw model text. Gateway errors are returned as-is.
func (g *Generator) Generate(ctx context.Context, message string, intent Intent, history []llm.Message) (string, error) {
	out, err := g.llm.Complete(ctx, g.BuildRequest(message, intent, history))
	if err != nil {
		return "", errors.Wrap(err, "generate response")
	}
	return out, nil
}
