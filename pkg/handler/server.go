package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"lambda-greeter/pkg/logger"
)

const (
	// InvocationPath mirrors the Lambda Runtime Interface Emulator endpoint.
	InvocationPath = "/2015-03-31/functions/function/invocations"

	RequestIDHeader = "Kappa-Runtime-Aws-Request-Id"

	// Lambda's synchronous invocation payload limit.
	maxPayloadBytes = 6 << 20
)

// Server serves a Func over HTTP for local development and container
// deployments.
type Server struct {
	server *http.Server
	log    *zap.Logger
}

func NewServer(addr string, fn Func, log *zap.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(fn, log),
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Start blocks serving requests until Shutdown is called, then returns
// http.ErrServerClosed.
func (s *Server) Start() error {
	s.log.Info("Starting function server", zap.String("address", s.server.Addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down function server")
	return s.server.Shutdown(ctx)
}

// NewRouter wires the invoke emulation, the API Gateway proxy emulation and
// the health endpoints.
func NewRouter(fn Func, log *zap.Logger) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/ready", handleReady).Methods(http.MethodGet)
	router.HandleFunc(InvocationPath, createInvocationHandler(fn, log))
	router.PathPrefix("/").Handler(createProxyHandler(fn, log))

	return router
}

// createInvocationHandler treats the request body as the raw event, the way
// the Lambda invoke API does.
func createInvocationHandler(fn Func, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		requestID := requestIDFrom(r)
		reqLog := log.With(zap.String("request_id", requestID))
		reqLog.Info("Invocation received", zap.String("path", r.URL.Path))

		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "Request body too large"})
				return
			}
			reqLog.Warn("Error reading request body", zap.Error(err))
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
			return
		}

		event, err := DecodeEvent(raw)
		if err != nil {
			reqLog.Warn("Error parsing request body", zap.Error(err))
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
			return
		}

		resp := fn(logger.WithCtx(r.Context(), reqLog), event)

		w.Header().Set(RequestIDHeader, requestID)
		writeJSON(w, http.StatusOK, resp)

		reqLog.Info("Invocation completed", zap.Int("status_code", resp.StatusCode))
	}
}

// createProxyHandler emulates an API Gateway proxy integration: the HTTP
// request becomes an APIGatewayProxyRequest event and the function's
// Response is written back as-is.
func createProxyHandler(fn Func, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodOptions {
			w.Header().Set("Allow", "GET, OPTIONS")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		requestID := requestIDFrom(r)
		reqLog := log.With(zap.String("request_id", requestID))

		event, err := EventFrom(proxyRequest(r, requestID))
		if err != nil {
			reqLog.Error("Failed to build proxy event", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
			return
		}

		resp := fn(logger.WithCtx(r.Context(), reqLog), event)

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.Header().Set("X-Amzn-RequestId", requestID)
		w.WriteHeader(resp.StatusCode)
		if _, err := io.WriteString(w, resp.Body); err != nil {
			reqLog.Warn("Failed to write response body", zap.Error(err))
		}

		reqLog.Info("Proxy request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status_code", resp.StatusCode),
		)
	}
}

func proxyRequest(r *http.Request, requestID string) events.APIGatewayProxyRequest {
	query := r.URL.Query()
	sourceIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		sourceIP = r.RemoteAddr
	}

	return events.APIGatewayProxyRequest{
		Resource:                        "/{proxy+}",
		Path:                            r.URL.Path,
		HTTPMethod:                      r.Method,
		Headers:                         firstValues(r.Header),
		MultiValueHeaders:               map[string][]string(r.Header),
		QueryStringParameters:           firstValues(query),
		MultiValueQueryStringParameters: map[string][]string(query),
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID:        requestID,
			Stage:            "local",
			Path:             r.URL.Path,
			HTTPMethod:       r.Method,
			RequestTimeEpoch: time.Now().UnixMilli(),
			Identity: events.APIGatewayRequestIdentity{
				SourceIP:  sourceIP,
				UserAgent: r.UserAgent(),
			},
		},
	}
}

func firstValues(values map[string][]string) map[string]string {
	out := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			out[key] = vals[0]
		}
	}
	return out
}

// requestIDFrom prefers the runtime header, then X-Request-Id, and otherwise
// generates a new id.
func requestIDFrom(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); id != "" {
		return id
	}
	if id := r.Header.Get("X-Request-Id"); id != "" {
		return id
	}
	return uuid.NewString()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
