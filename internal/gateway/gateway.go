// Package gateway is the client's only channel to the privileged backend.
//
// A command is a name plus JSON-serialisable arguments; the reply is either
// JSON decoded into a caller-supplied value or raw bytes. Failures to
// dispatch, encode or decode surface as *TransportError. There is no retry
// and no caching at this layer.
package gateway

import (
	"context"
	"fmt"

	"barobaro/internal/domain"
)

// Gateway issues backend commands
type Gateway interface {
	// Invoke sends command with args and decodes the JSON reply into reply.
	// A nil reply discards the response body.
	Invoke(ctx context.Context, command string, args any, reply any) error

	// InvokeRaw sends command with args and returns the undecoded reply body
	InvokeRaw(ctx context.Context, command string, args any) ([]byte, error)
}

// Transport error stages
const (
	OpEncode   = "encode"
	OpDispatch = "dispatch"
	OpDecode   = "decode"
)

// TransportError reports a failed command round trip. It matches
// domain.ErrTransport with errors.Is.
type TransportError struct {
	Command string
	Op      string
	Status  int // HTTP status when the backend answered with an error, 0 otherwise
	Err     error
}

func (e *TransportError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s %s (status %d): %v", e.Command, e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Command, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is makes every TransportError match domain.ErrTransport
func (e *TransportError) Is(target error) bool {
	return target == domain.ErrTransport
}

// Call invokes command and decodes the reply into a T
func Call[T any](ctx context.Context, gw Gateway, command string, args any) (T, error) {
	var out T
	if err := gw.Invoke(ctx, command, args, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
