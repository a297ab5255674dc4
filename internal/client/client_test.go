package client

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"travel-planner-backend/internal/types"
)

func TestSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var req types.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "s1", req.SessionID)
		_ = json.NewEncoder(w).Encode(types.ChatResponse{Response: "re: " + req.Message, SessionID: req.SessionID})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", time.Second, zap.NewNop())
	resp, err := c.Send(context.Background(), "hello", "s1")
	require.NoError(t, err)
	assert.Equal(t, types.ChatResponse{Response: "re: hello", SessionID: "s1"}, resp)
	assert.Equal(t, "re: hello", c.Reply(context.Background(), "hello", "s1"))
}

func TestUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c := New("http://"+addr, time.Second, zap.NewNop())
	_, err = c.Send(context.Background(), "hello", "s1")
	assert.True(t, errors.Is(err, ErrUnreachable), err)
	assert.Contains(t, c.Reply(context.Background(), "hello", "s1"), "Cannot reach the travel planning backend")
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(srv.URL, 50*time.Millisecond, zap.NewNop())
	_, err := c.Send(context.Background(), "hello", "s1")
	assert.True(t, errors.Is(err, ErrTimeout), err)
	assert.Equal(t, timeoutReply, c.Reply(context.Background(), "hello", "s1"))
}

func TestStatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/api/clear" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"session_id is required"}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"Error processing message: boom"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, zap.NewNop())
	_, err := c.Send(context.Background(), "hello", "s1")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, "❌ Error: Error processing message: boom", c.Reply(context.Background(), "hello", "s1"))

	err = c.Clear(context.Background(), "")
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "session_id is required", se.Body)
}

func TestDefaults(t *testing.T) {
	c := New("", 0, zap.NewNop())
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}
