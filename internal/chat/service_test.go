package chat

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"travel-planner-backend/internal/llm"
	"travel-planner-backend/internal/llm/llmtest"
	"travel-planner-backend/internal/store"
	"travel-planner-backend/internal/travel"
)

type recordingProcessor struct {
	mu      sync.Mutex
	reply   string
	history [][]llm.Message
}

func (p *recordingProcessor) Process(_ context.Context, _, _ string, history []llm.Message) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = append(p.history, history)
	return p.reply
}

func TestSend_JapanScenario(t *testing.T) {
	stub := llmtest.New().
		OnJSON(llmtest.Text(`{"intent":"destination_inquiry","confidence":0.9,"key_entities":["Japan"]}`)).
		OnText(llmtest.Text("Start in Tokyo, then Kyoto."))
	orch := travel.NewOrchestrator(stub, travel.DefaultCatalog(), travel.Options{}, zap.NewNop())
	ms := store.NewMemoryStore()
	svc := NewService(ms, orch, zap.NewNop())

	msg := "What's a good 5-day trip to Japan?"
	reply, err := svc.Send(context.Background(), msg, "japan-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply, "Start in Tokyo, then Kyoto.\n\n🤔 **To help you better, I'd love to know:**"))
	assert.Equal(t, 2, strings.Count(reply, "\n• "))

	sess, ok := ms.Get("japan-1")
	require.True(t, ok)
	assert.Equal(t, []store.Message{
		{Role: store.RoleUser, Content: msg},
		{Role: store.RoleAssistant, Content: reply},
	}, sess.Messages)
}

func TestSend_PassesPriorTurnsAsHistory(t *testing.T) {
	proc := &recordingProcessor{reply: "ok"}
	svc := NewService(store.NewMemoryStore(), proc, zap.NewNop())

	_, err := svc.Send(context.Background(), "first", "s1")
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), "second", "s1")
	require.NoError(t, err)

	require.Len(t, proc.history, 2)
	assert.Empty(t, proc.history[0])
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: "first"},
		{Role: llm.RoleAssistant, Content: "ok"},
	}, proc.history[1])
}

func TestSend_Validation(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), &recordingProcessor{}, zap.NewNop())

	_, err := svc.Send(context.Background(), "   ", "s1")
	assert.True(t, errors.Is(err, ErrEmptyMessage))

	_, err = svc.Send(context.Background(), "hi", "")
	assert.True(t, errors.Is(err, ErrEmptySessionID))
	assert.Equal(t, 0, svc.Count())
}

func TestSend_ConcurrentSameSession(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), &recordingProcessor{reply: "r"}, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Send(context.Background(), "hello", "shared")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	info, err := svc.Info("shared")
	require.NoError(t, err)
	assert.Equal(t, 40, info.MessageCount)
}

func TestClearAndInfo(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), &recordingProcessor{reply: "r"}, zap.NewNop())

	_, err := svc.Info("ghost")
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	assert.Equal(t, 0, svc.Count(), "Info must not create sessions")

	_, err = svc.Send(context.Background(), "hi", "s1")
	require.NoError(t, err)
	require.NoError(t, svc.SavePreference("s1", "budget", "mid"))

	info, err := svc.Info("s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", info.SessionID)
	assert.Equal(t, 2, info.MessageCount)
	assert.False(t, info.LastUpdated.Before(info.CreatedAt))

	require.NoError(t, svc.Clear("s1"))
	info, err = svc.Info("s1")
	require.NoError(t, err)
	assert.Equal(t, 0, info.MessageCount)
	assert.Equal(t, "mid", svc.Preference("s1", "budget"))

	assert.Error(t, svc.Clear(""))
}

func TestPreferencesContextAndDelete(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), &recordingProcessor{}, zap.NewNop())

	assert.Error(t, svc.SavePreference("s1", "", 1))
	assert.Nil(t, svc.Preference("s1", "missing"))

	merged := svc.MergeContext("s1", map[string]any{"destination": "Lisbon"})
	assert.Equal(t, map[string]any{"destination": "Lisbon"}, merged)
	merged = svc.MergeContext("s1", map[string]any{"days": 4})
	assert.Equal(t, map[string]any{"destination": "Lisbon", "days": 4}, merged)
	assert.Equal(t, merged, svc.Context("s1"))

	assert.True(t, svc.Delete("s1"))
	assert.False(t, svc.Delete("s1"))
	assert.Equal(t, 0, svc.Count())
}
