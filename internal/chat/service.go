// Package chat binds the session store to the travel orchestrator. It owns
// the read-history / process / fold-back cycle of one chat transaction.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"travel-planner-backend/internal/llm"
	"travel-planner-backend/internal/store"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyMessage    = errors.New("message is required")
	ErrEmptySessionID  = errors.New("session_id is required")
)

// Processor is the orchestrator contract the service depends on.
type Processor interface {
	Process(ctx context.Context, message, sessionID string, history []llm.Message) string
}

// SessionInfo is the read-only view returned by Info.
type SessionInfo struct {
	SessionID    string
	MessageCount int
	CreatedAt    time.Time
	LastUpdated  time.Time
}

type Service struct {
	store *store.MemoryStore
	proc  Processor
	log   *zap.Logger
}

func NewService(s *store.MemoryStore, proc Processor, log *zap.Logger) *Service {
	return &Service{store: s, proc: proc, log: log.Named("chat")}
}

// Send runs one transaction for sessionID, creating the session on first use,
// and appends the user and assistant turns to its transcript. The store lock
// is never held while the orchestrator runs.
func (s *Service) Send(ctx context.Context, message, sessionID string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}
	if sessionID == "" {
		return "", ErrEmptySessionID
	}

	sess := s.store.GetOrCreate(sessionID)
	history := make([]llm.Message, 0, len(sess.Messages))
	for _, m := range sess.Messages {
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}

	reply := s.proc.Process(ctx, message, sessionID, history)

	s.store.Append(sessionID,
		store.Message{Role: store.RoleUser, Content: message},
		store.Message{Role: store.RoleAssistant, Content: reply},
	)
	s.log.Debug("chat turn stored",
		zap.String("session_id", sessionID),
		zap.Int("history", len(history)),
	)
	return reply, nil
}

// Clear empties the transcript and keeps preferences and context.
func (s *Service) Clear(sessionID string) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	s.store.Clear(sessionID)
	return nil
}

// Info reports on a session without creating it.
func (s *Service) Info(sessionID string) (SessionInfo, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return SessionInfo{}, errors.Wrapf(ErrSessionNotFound, "session %q", sessionID)
	}
	return SessionInfo{
		SessionID:    sess.ID,
		MessageCount: len(sess.Messages),
		CreatedAt:    sess.CreatedAt,
		LastUpdated:  sess.LastUpdated,
	}, nil
}

func (s *Service) Delete(sessionID string) bool { return s.store.Delete(sessionID) }

func (s *Service) Count() int { return s.store.Count() }

func (s *Service) SavePreference(sessionID, key string, value any) error {
	if key == "" {
		return errors.New("preference key is required")
	}
	s.store.SavePreference(sessionID, key, value)
	return nil
}

func (s *Service) Preference(sessionID, key string) any {
	return s.store.GetPreference(sessionID, key, nil)
}

func (s *Service) MergeContext(sessionID string, partial map[string]any) map[string]any {
	return s.store.MergeContext(sessionID, partial)
}

func (s *Service) Context(sessionID string) map[string]any {
	return s.store.GetContext(sessionID)
}
