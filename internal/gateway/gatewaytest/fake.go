// Package gatewaytest provides an in-memory gateway for tests.
package gatewaytest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"barobaro/internal/gateway"
)

// HandlerFunc answers a single command. args is the JSON the client sent.
type HandlerFunc func(args json.RawMessage) (any, error)

// Call is one recorded invocation
type Call struct {
	Command string
	Args    json.RawMessage
}

// Fake is a gateway.Gateway backed by per-command handlers. Arguments and
// replies go through encoding/json so tests see the same shapes as the wire.
type Fake struct {
	mu       sync.Mutex
	handlers map[string]HandlerFunc
	calls    []Call
}

// New returns an empty Fake. Unhandled commands fail with a dispatch error.
func New() *Fake {
	return &Fake{handlers: make(map[string]HandlerFunc)}
}

// Handle registers fn for command
func (f *Fake) Handle(command string, fn HandlerFunc) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[command] = fn
	return f
}

// Reply makes command always answer with v
func (f *Fake) Reply(command string, v any) *Fake {
	return f.Handle(command, func(json.RawMessage) (any, error) {
		return v, nil
	})
}

// Fail makes command always fail with err
func (f *Fake) Fail(command string, err error) *Fake {
	return f.Handle(command, func(json.RawMessage) (any, error) {
		return nil, err
	})
}

// Calls returns every recorded invocation in order
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsTo returns the recorded invocations of command
func (f *Fake) CallsTo(command string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Command == command {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many times command was invoked
func (f *Fake) Count(command string) int {
	return len(f.CallsTo(command))
}

// Reset forgets recorded calls but keeps handlers
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// Invoke implements gateway.Gateway
func (f *Fake) Invoke(ctx context.Context, command string, args any, reply any) error {
	raw, err := f.InvokeRaw(ctx, command, args)
	if err != nil {
		return err
	}
	if reply == nil {
		return nil
	}
	if err := json.Unmarshal(raw, reply); err != nil {
		return &gateway.TransportError{Command: command, Op: gateway.OpDecode, Err: err}
	}
	return nil
}

// InvokeRaw implements gateway.Gateway
func (f *Fake) InvokeRaw(ctx context.Context, command string, args any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &gateway.TransportError{Command: command, Op: gateway.OpDispatch, Err: err}
	}
	if args == nil {
		args = struct{}{}
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return nil, &gateway.TransportError{Command: command, Op: gateway.OpEncode, Err: err}
	}

	f.mu.Lock()
	f.calls = append(f.calls, Call{Command: command, Args: payload})
	fn, ok := f.handlers[command]
	f.mu.Unlock()

	if !ok {
		return nil, &gateway.TransportError{Command: command, Op: gateway.OpDispatch, Err: errors.New("unknown command")}
	}

	v, err := fn(payload)
	if err != nil {
		var te *gateway.TransportError
		if errors.As(err, &te) {
			return nil, err
		}
		return nil, &gateway.TransportError{Command: command, Op: gateway.OpDispatch, Err: err}
	}
	return json.Marshal(v)
}

// Decode unmarshals a recorded argument payload into v
func (c Call) Decode(v any) error {
	return json.Unmarshal(c.Args, v)
}
