// Package llmtest provides a scripted Completer for tests.
package llmtest

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"travel-planner-backend/internal/llm"
)

// ErrUnscripted is returned when a request arrives with no reply queued.
var ErrUnscripted = errors.New("llmtest: no scripted reply")

// Reply is one scripted gateway outcome.
type Reply struct {
	Text  string
	Err   error
	Delay time.Duration
}

func Text(s string) Reply  { return Reply{Text: s} }
func Fail(err error) Reply { return Reply{Err: err} }

func Slow(r Reply, d time.Duration) Reply {
	r.Delay = d
	return r
}

// ScriptedCompleter answers structured (JSON) and free-text requests from
// two separate queues so concurrent transactions stay deterministic. The
// last reply of each queue repeats once the queue is drained.
type ScriptedCompleter struct {
	mu    sync.Mutex
	json  []Reply
	text  []Reply
	calls []llm.CompletionRequest
}

func New() *ScriptedCompleter { return &ScriptedCompleter{} }

// OnJSON queues replies for requests with JSON set.
func (s *ScriptedCompleter) OnJSON(replies ...Reply) *ScriptedCompleter {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.json = append(s.json, replies...)
	return s
}

// OnText queues replies for free-text requests.
func (s *ScriptedCompleter) OnText(replies ...Reply) *ScriptedCompleter {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = append(s.text, replies...)
	return s
}

func (s *ScriptedCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	queue := &s.text
	if req.JSON {
		queue = &s.json
	}
	if len(*queue) == 0 {
		s.mu.Unlock()
		return "", ErrUnscripted
	}
	r := (*queue)[0]
	if len(*queue) > 1 {
		*queue = (*queue)[1:]
	}
	s.mu.Unlock()

	if r.Delay > 0 {
		select {
		case <-time.After(r.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return r.Text, r.Err
}

// Calls returns every request seen so far, in arrival order.
func (s *ScriptedCompleter) Calls() []llm.CompletionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]llm.CompletionRequest(nil), s.calls...)
}

// CallsWhere returns the requests whose JSON flag matches.
func (s *ScriptedCompleter) CallsWhere(json bool) []llm.CompletionRequest {
	var out []llm.CompletionRequest
	for _, c := range s.Calls() {
		if c.JSON == json {
			out = append(out, c)
		}
	}
	return out
}
