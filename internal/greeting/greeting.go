// Package greeting implements the greeting function: a static JSON message
// with CORS headers, the invocation time, the deployment environment and the
// caller's request id.
package greeting

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"lambda-greeter/internal/config"
	"lambda-greeter/pkg/handler"
	"lambda-greeter/pkg/logger"
)

const (
	Message          = "Hello venkata welcome to lambda deployment"
	UnknownRequestID = "unknown"

	// ISO-8601 in UTC with millisecond precision, e.g. 2024-05-01T12:00:00.000Z.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

var corsHeaders = [][2]string{
	{"Access-Control-Allow-Origin", "*"},
	{"Access-Control-Allow-Headers", "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token"},
	{"Access-Control-Allow-Methods", "GET,OPTIONS"},
}

// Body is the JSON document returned in the response body.
type Body struct {
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
	RequestID   string `json:"requestId"`
}

type Handler struct {
	now         func() time.Time
	environment func() string
}

type Option func(*Handler)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// WithEnvironment overrides the environment lookup.
func WithEnvironment(lookup func() string) Option {
	return func(h *Handler) { h.environment = lookup }
}

func New(opts ...Option) *Handler {
	h := &Handler{
		now:         time.Now,
		environment: config.Environment,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle builds the greeting. It never fails: a missing or malformed
// requestContext.requestId becomes "unknown".
func (h *Handler) Handle(ctx context.Context, event handler.Event) handler.Response {
	env := h.environment()
	if env == "" {
		env = config.DefaultEnvironment
	}

	body := Body{
		Message:     Message,
		Timestamp:   h.now().UTC().Format(TimestampLayout),
		Environment: env,
		RequestID:   event.StringOr(UnknownRequestID, "requestContext", "requestId"),
	}

	resp := handler.NewResponse(http.StatusOK, "")
	for _, kv := range corsHeaders {
		resp = resp.WithHeader(kv[0], kv[1])
	}

	log := logger.FromCtx(ctx)
	resp, err := resp.WithJSONBody(body)
	if err != nil {
		// Body only holds strings, so encoding cannot fail in practice.
		log.Error("Failed to encode greeting", zap.Error(err))
	}

	log.Debug("Greeting served",
		zap.String("request_id", body.RequestID),
		zap.String("environment", body.Environment),
	)
	return resp
}
