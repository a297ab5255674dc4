package types

import "time"

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

type ClearRequest struct {
	SessionID string `json:"session_id"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type SessionInfo struct {
	SessionID    string    `json:"session_id"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	LastUpdated  time.Time `json:"last_updated"`
}

type SessionCount struct {
	Count int `json:"count"`
}

type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// Preference is both the PUT body and the GET response for one preference.
type Preference struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// DetailResponse carries unexpected chat failures.
type DetailResponse struct {
	Detail string `json:"detail"`
}
