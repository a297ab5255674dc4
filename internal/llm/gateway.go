// Package llm is the boundary to the hosted completion API. Everything above
// it talks to a Completer; only openai.go knows about the provider SDK.
package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a role-tagged chat turn in a provider-agnostic form.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest carries one chat-style completion call.
type CompletionRequest struct {
	System    string
	Messages  []Message
	MaxTokens int
	// JSON asks the provider to return a single JSON object.
	JSON bool
}

// Outbound returns the full message list sent to the provider: the system
// instruction first, followed by Messages in order.
func (r CompletionRequest) Outbound() []Message {
	out := make([]Message, 0, len(r.Messages)+1)
	if r.System != "" {
		out = append(out, Message{Role: RoleSystem, Content: r.System})
	}
	return append(out, r.Messages...)
}

// Completer returns generated text for a request, or an error classified as
// one of ErrTransport, ErrTimeout, ErrQuota or ErrInvalidResponse.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
