package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// InvokePath is the URL prefix under which the backend serves commands
const InvokePath = "/invoke/"

// HTTPGateway talks to a backend that serves POST <base>/invoke/<command>.
// Requests carry the JSON-encoded arguments; 2xx responses carry the reply.
// Error responses carry {"error": "..."} or a plain-text message.
type HTTPGateway struct {
	client *resty.Client
	log    zerolog.Logger
}

// Option configures an HTTPGateway
type Option func(*HTTPGateway)

// WithLogger sets the logger used for per-command debug output
func WithLogger(log zerolog.Logger) Option {
	return func(g *HTTPGateway) {
		g.log = log
	}
}

// WithHeader adds a header to every request
func WithHeader(key, value string) Option {
	return func(g *HTTPGateway) {
		g.client.SetHeader(key, value)
	}
}

// NewHTTP creates a gateway for the backend at baseURL.
// No client timeout is set; the caller's context is the only deadline.
func NewHTTP(baseURL string, opts ...Option) *HTTPGateway {
	g := &HTTPGateway{
		client: resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.client.SetLogger(restyLogger{log: g.log})
	g.client.SetHeader("Content-Type", "application/json")
	return g
}

// Invoke implements Gateway
func (g *HTTPGateway) Invoke(ctx context.Context, command string, args any, reply any) error {
	body, err := g.do(ctx, command, args)
	if err != nil {
		return err
	}
	if reply == nil {
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("null")
	}
	if err := json.Unmarshal(body, reply); err != nil {
		commandFailures.WithLabelValues(command, OpDecode).Inc()
		return &TransportError{Command: command, Op: OpDecode, Err: err}
	}
	return nil
}

// InvokeRaw implements Gateway
func (g *HTTPGateway) InvokeRaw(ctx context.Context, command string, args any) ([]byte, error) {
	return g.do(ctx, command, args)
}

func (g *HTTPGateway) do(ctx context.Context, command string, args any) ([]byte, error) {
	if args == nil {
		args = struct{}{}
	}
	payload, err := json.Marshal(args)
	if err != nil {
		commandFailures.WithLabelValues(command, OpEncode).Inc()
		return nil, &TransportError{Command: command, Op: OpEncode, Err: err}
	}

	requestID := uuid.NewString()
	start := time.Now()
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", requestID).
		SetBody(payload).
		Post(InvokePath + command)
	elapsed := time.Since(start)
	commandDuration.WithLabelValues(command).Observe(elapsed.Seconds())

	if err != nil {
		commandFailures.WithLabelValues(command, OpDispatch).Inc()
		g.log.Debug().Err(err).Str("command", command).Str("request_id", requestID).Dur("elapsed", elapsed).Msg("command failed")
		return nil, &TransportError{Command: command, Op: OpDispatch, Err: err}
	}
	if resp.IsError() {
		commandFailures.WithLabelValues(command, OpDispatch).Inc()
		msg := errorMessage(resp.Body())
		g.log.Debug().Str("command", command).Str("request_id", requestID).Int("status", resp.StatusCode()).Str("error", msg).Msg("command rejected")
		return nil, &TransportError{Command: command, Op: OpDispatch, Status: resp.StatusCode(), Err: errors.New(msg)}
	}

	g.log.Debug().Str("command", command).Str("request_id", requestID).Dur("elapsed", elapsed).Int("bytes", len(resp.Body())).Msg("command ok")
	return resp.Body(), nil
}

// errorMessage extracts the backend's error text from a response body
func errorMessage(body []byte) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	var s string
	if err := json.Unmarshal(body, &s); err == nil && s != "" {
		return s
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return msg
	}
	return "backend returned an error"
}

// restyLogger routes resty's internal messages into zerolog
type restyLogger struct {
	log zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Error().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug().Msgf(strings.TrimSpace(format), v...)
}
