package travel

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-planner-backend/internal/llm"
	"travel-planner-backend/internal/llm/llmtest"
)

func turns(n int) []llm.Message {
	out := make([]llm.Message, 0, n)
	for i := 0; i < n; i++ {
		role := llm.RoleUser
		if i%2 == 1 {
			role = llm.RoleAssistant
		}
		out = append(out, llm.Message{Role: role, Content: fmt.Sprintf("turn %d", i)})
	}
	return out
}

func TestGenerator_TruncatesHistory(t *testing.T) {
	g := NewGenerator(llmtest.New(), DefaultCatalog(), DefaultHistoryWindow)
	history := turns(10)

	req := g.BuildRequest("And what about Kyoto?", IntentDestinationInquiry, history)
	out := req.Outbound()

	require.Len(t, out, 8)
	assert.Equal(t, llm.RoleSystem, out[0].Role)
	assert.Equal(t, DefaultCatalog().SystemPrompt(IntentDestinationInquiry), out[0].Content)
	for i := 0; i < 6; i++ {
		assert.Equal(t, history[4+i], out[1+i])
	}
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "And what about Kyoto?"}, out[7])
	assert.Equal(t, GeneratorMaxTokens, req.MaxTokens)
	assert.False(t, req.JSON)

	assert.Equal(t, "turn 0", history[0].Content, "input history is untouched")
}

func TestGenerator_ShortHistory(t *testing.T) {
	g := NewGenerator(llmtest.New(), DefaultCatalog(), DefaultHistoryWindow)
	assert.Len(t, g.BuildRequest("hi", IntentGreeting, nil).Outbound(), 2)
	assert.Len(t, g.BuildRequest("hi", IntentGreeting, turns(3)).Outbound(), 5)
}

func TestGenerator_Generate(t *testing.T) {
	stub := llmtest.New().OnText(llmtest.Text("Try Hokkaido in winter."))
	g := NewGenerator(stub, DefaultCatalog(), DefaultHistoryWindow)

	out, err := g.Generate(context.Background(), "snow trip?", IntentDestinationInquiry, nil)
	require.NoError(t, err)
	assert.Equal(t, "Try Hokkaido in winter.", out)
}

func TestGenerator_PropagatesGatewayError(t *testing.T) {
	stub := llmtest.New().OnText(llmtest.Fail(&llm.GatewayError{Kind: llm.ErrTimeout}))
	g := NewGenerator(stub, DefaultCatalog(), DefaultHistoryWindow)

	_, err := g.Generate(context.Background(), "x", IntentOther, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrTimeout))
}
