package llm

import (
	"context"
	"net"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrTransport       = errors.New("completion gateway unreachable")
	ErrTimeout         = errors.New("completion gateway timed out")
	ErrQuota           = errors.New("completion gateway quota exceeded")
	ErrInvalidResponse = errors.New("completion gateway returned an invalid response")

	errNoChoices = errors.New("no choices")
)

// GatewayError pairs a taxonomy sentinel with the underlying cause.
type GatewayError struct {
	Kind error
	Err  error
}

func (e *GatewayError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Is matches the taxonomy sentinel so callers can use errors.Is(err, ErrTimeout).
func (e *GatewayError) Is(target error) bool { return target == e.Kind }

// IsTimeout reports whether err is a gateway deadline failure.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }

// IsTransport reports whether err means the gateway could not be reached or
// refused the call.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrQuota)
}

// classify maps a provider SDK failure onto the gateway taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &GatewayError{Kind: ErrTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &GatewayError{Kind: ErrTimeout, Err: err}
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 || apiErr.Type == "insufficient_quota" {
			return &GatewayError{Kind: ErrQuota, Err: err}
		}
		return &GatewayError{Kind: ErrTransport, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == 429 {
		return &GatewayError{Kind: ErrQuota, Err: err}
	}
	return &GatewayError{Kind: ErrTransport, Err: err}
}
