package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shop-chat-agent/internal/domain"
	"shop-chat-agent/internal/usecase"
)

const (
	headerCorrelationID = "X-Correlation-Id"
	maxBodyBytes        = 1 << 20

	errorMethodNotAllowed = "METHOD_NOT_ALLOWED"
	errorNotFound         = "NOT_FOUND"
)

type ChatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (domain.Reply, error)
}

type chatRequest struct {
	UserInput   string            `json:"user_input"`
	JWTToken    string            `json:"jwt_token"`
	CurrentCart []domain.CartItem `json:"current_cart"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Handler struct {
	uc          ChatUseCase
	allowOrigin string
	logger      zerolog.Logger
}

type Option func(*Handler)

// WithAllowOrigin sets Access-Control-Allow-Origin on every response.
func WithAllowOrigin(origin string) Option {
	return func(h *Handler) {
		h.allowOrigin = strings.TrimSpace(origin)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

func NewHandler(uc ChatUseCase, opts ...Option) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: chat use case must not be nil")
	}
	h := &Handler{uc: uc, allowOrigin: "*", logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Handle serves POST /chat for API Gateway proxy events.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(req.Headers, headerCorrelationID)
	if correlationID == "" {
		correlationID = newCorrelationID()
	}
	logger := h.logger.With().Str("correlation_id", correlationID).Logger()
	ctx = logger.WithContext(ctx)

	switch {
	case req.HTTPMethod == http.MethodOptions:
		return h.respond(correlationID, http.StatusNoContent, nil), nil
	case strings.HasSuffix(req.Path, "/healthz") && req.HTTPMethod == http.MethodGet:
		return h.respond(correlationID, http.StatusOK, map[string]string{"status": "ok"}), nil
	case req.Path != "" && !strings.HasSuffix(strings.TrimRight(req.Path, "/"), "/chat"):
		return h.respond(correlationID, http.StatusNotFound, errorResponse{Error: errorNotFound}), nil
	case req.HTTPMethod != http.MethodPost:
		return h.respond(correlationID, http.StatusMethodNotAllowed, errorResponse{Error: errorMethodNotAllowed}), nil
	}

	body, err := requestBody(req)
	if err != nil {
		logger.Warn().Err(err).Msg("undecodable request body")
		return h.respond(correlationID, http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput)}), nil
	}
	var in chatRequest
	if err := json.Unmarshal(body, &in); err != nil {
		logger.Warn().Err(err).Msg("invalid chat request")
		return h.respond(correlationID, http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput)}), nil
	}
	token := strings.TrimSpace(in.JWTToken)
	if token == "" {
		token = headerValue(req.Headers, "Authorization")
	}

	reply, err := h.uc.Chat(ctx, usecase.ChatInput{
		UserInput:   in.UserInput,
		Token:       token,
		CurrentCart: in.CurrentCart,
	})
	if err != nil {
		status, code := mapError(err)
		logger.Error().Err(err).Int("status", status).Msg("chat request failed")
		return h.respond(correlationID, status, errorResponse{Error: code}), nil
	}
	logger.Info().Str("intent", string(reply.Intent)).Msg("chat request served")
	return h.respond(correlationID, http.StatusOK, reply), nil
}

// ServeHTTP adapts plain net/http requests onto Handle for local runs.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		correlationID := strings.TrimSpace(r.Header.Get(headerCorrelationID))
		if correlationID == "" {
			correlationID = newCorrelationID()
		}
		h.logger.Warn().Err(err).Str("correlation_id", correlationID).Msg("unreadable request body")
		writeResponse(w, h.respond(correlationID, http.StatusRequestEntityTooLarge, errorResponse{Error: string(usecase.ErrorInvalidInput)}))
		return
	}
	headers := make(map[string]string, len(r.Header))
	for k := range r.Header {
		headers[k] = r.Header.Get(k)
	}
	resp, err := h.Handle(r.Context(), events.APIGatewayProxyRequest{
		HTTPMethod: r.Method,
		Path:       r.URL.Path,
		Headers:    headers,
		Body:       string(raw),
	})
	if err != nil {
		http.Error(w, `{"error":"INTERNAL_ERROR"}`, http.StatusInternalServerError)
		return
	}
	writeResponse(w, resp)
}

func writeResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.WriteString(w, resp.Body)
}

func (h *Handler) respond(correlationID string, status int, payload any) events.APIGatewayProxyResponse {
	headers := map[string]string{
		headerCorrelationID:            correlationID,
		"Access-Control-Allow-Origin":  h.allowOrigin,
		"Access-Control-Allow-Methods": "POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type, Authorization, X-Correlation-Id",
	}
	if payload == nil {
		return events.APIGatewayProxyResponse{StatusCode: status, Headers: headers}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"INTERNAL_ERROR"}`)
	}
	headers["Content-Type"] = "application/json"
	return events.APIGatewayProxyResponse{StatusCode: status, Headers: headers, Body: string(body)}
}

func mapError(err error) (int, string) {
	var ucErr *usecase.Error
	if errors.As(err, &ucErr) && ucErr.Code == usecase.ErrorInvalidInput {
		return http.StatusBadRequest, string(usecase.ErrorInvalidInput)
	}
	return http.StatusInternalServerError, string(usecase.ErrorInternal)
}

func requestBody(req events.APIGatewayProxyRequest) ([]byte, error) {
	if !req.IsBase64Encoded {
		return []byte(req.Body), nil
	}
	return base64.StdEncoding.DecodeString(req.Body)
}

// headerValue looks a header up case-insensitively.
func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

var newCorrelationID = func() string {
	return uuid.NewString()
}
