package travel

import "travel-planner-backend/internal/llm"

// Business constants. Config keys default to these values.
const (
	DefaultHistoryWindow        = 6
	DefaultFollowUpThreshold    = 0.7
	DefaultFollowUpMaxQuestions = 2
	DefaultConfidence           = 0.5

	ClassifierMaxTokens = 200
	GeneratorMaxTokens  = 800
)

// WorkflowState is threaded through the stages of one transaction and
// discarded when it ends.
//
//	classify  reads CurrentMessage,              sets Intent, Confidence, Entities
//	generate  reads CurrentMessage, Intent, History, sets Response
//	augment   reads Intent, Response,            appends to Response
type WorkflowState struct {
	CurrentMessage string
	SessionID      string
	// History holds prior user/assistant turns; stages never modify it.
	History []llm.Message

	Intent     Intent
	Confidence float64
	Entities   []string
	Classified bool

	Response    string
	HasResponse bool
}

func newWorkflowState(message, sessionID string, history []llm.Message) *WorkflowState {
	return &WorkflowState{
		CurrentMessage: message,
		SessionID:      sessionID,
		History:        history,
		Intent:         IntentGeneralTravel,
		Confidence:     DefaultConfidence,
		Entities:       []string{},
	}
}

func (s *WorkflowState) applyClassification(c Classification) {
	s.Intent = c.Intent
	s.Confidence = c.Confidence
	s.Entities = c.Entities
	s.Classified = true
}

// filterHistory keeps only user and assistant turns, in order.
func filterHistory(in []llm.Message) []llm.Message {
	out := make([]llm.Message, 0, len(in))
	for _, m := range in {
		switch m.Role {
		case llm.RoleUser, llm.RoleAssistant:
			out = append(out, llm.Message{Role: m.Role, Content: m.Content})
		}
	}
	return out
}
