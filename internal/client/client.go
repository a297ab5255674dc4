// Package client talks to the travel backend over HTTP. Reply never fails:
// transport problems come back as user-facing degraded messages.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"travel-planner-backend/internal/types"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 120 * time.Second

	unreachableReply = "❌ Cannot reach the travel planning backend at %s. Is the server running?"
	timeoutReply     = "⏱️ The request timed out. The travel planner may be busy, please try again."
)

var (
	ErrUnreachable = errors.New("cannot reach backend")
	ErrTimeout     = errors.New("request timed out")
)

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Code, e.Body)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *zap.Logger
}

func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        log.Named("client"),
	}
}

// Send posts one chat message. Errors are ErrUnreachable, ErrTimeout, or a
// *StatusError.
func (c *Client) Send(ctx context.Context, message, sessionID string) (types.ChatResponse, error) {
	var out types.ChatResponse
	err := c.postJSON(ctx, "/api/chat", types.ChatRequest{Message: message, SessionID: sessionID}, &out)
	return out, err
}

// Clear resets the transcript of sessionID.
func (c *Client) Clear(ctx context.Context, sessionID string) error {
	var out types.StatusResponse
	return c.postJSON(ctx, "/api/clear", types.ClearRequest{SessionID: sessionID}, &out)
}

// Reply is Send for interactive callers: the returned text is always
// printable.
func (c *Client) Reply(ctx context.Context, message, sessionID string) string {
	resp, err := c.Send(ctx, message, sessionID)
	if err == nil {
		return resp.Response
	}
	c.log.Warn("chat request failed", zap.String("session_id", sessionID), zap.Error(err))
	var se *StatusError
	switch {
	case errors.Is(err, ErrUnreachable):
		return fmt.Sprintf(unreachableReply, c.baseURL)
	case errors.Is(err, ErrTimeout):
		return timeoutReply
	case errors.As(err, &se):
		return "❌ Error: " + se.Body
	default:
		return "❌ Error: " + err.Error()
	}
}

// ---- Helpers ----

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	return resp, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "encode request")
	}
	resp, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return &StatusError{Code: resp.StatusCode, Body: errorText(raw)}
	}
	return errors.Wrapf(json.NewDecoder(resp.Body).Decode(out), "decode %s response", path)
}

// errorText pulls the message out of {"error":...} or {"detail":...} bodies.
func errorText(raw []byte) string {
	var body struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Detail != "" {
			return body.Detail
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(ErrTimeout, err.Error())
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Wrap(ErrTimeout, err.Error())
	}
	// Refused connections, DNS failures and resets all mean the backend is
	// not reachable from here.
	return errors.Wrap(ErrUnreachable, err.Error())
}
