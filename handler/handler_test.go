package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"shop-chat-agent/internal/domain"
	"shop-chat-agent/internal/usecase"
)

type stubUseCase struct {
	out   domain.Reply
	err   error
	in    usecase.ChatInput
	calls int
	ctx   context.Context
}

func (s *stubUseCase) Chat(ctx context.Context, in usecase.ChatInput) (domain.Reply, error) {
	s.calls++
	s.in = in
	s.ctx = ctx
	return s.out, s.err
}

func makeEvent(body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/chat",
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}

func parseBody[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func TestNewHandler_ValidatesDependency(t *testing.T) {
	_, err := NewHandler(nil)
	require.Error(t, err)
}

func TestHandle_HappyPath(t *testing.T) {
	uc := &stubUseCase{out: domain.Reply{
		Response:    "🛒 Giỏ hàng của bạn hiện tại trống.",
		Intent:      domain.IntentViewCart,
		Confidence:  0.9,
		ProductInfo: &domain.ProductRef{},
		CartInfo:    &domain.CartInfo{Action: "add", Quantity: 1},
	}}
	h, err := NewHandler(uc, WithAllowOrigin("http://localhost:5173"))
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeEvent(`{"user_input":"xem giỏ hàng","jwt_token":"tok","current_cart":[{"name":"iPhone 15","price":100}]}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "xem giỏ hàng", uc.in.UserInput)
	require.Equal(t, "tok", uc.in.Token)
	require.Equal(t, []domain.CartItem{{Name: "iPhone 15", Price: 100, Quantity: 1}}, uc.in.CurrentCart)

	out := parseBody[map[string]any](t, resp.Body)
	require.Equal(t, "view_cart", out["intent"])
	require.Equal(t, 0.9, out["confidence"])
	require.Contains(t, out, "updated_cart")
	require.Nil(t, out["updated_cart"])
	require.NotContains(t, out, "should_refresh_cart")
	require.NotEmpty(t, resp.Headers["X-Correlation-Id"])
	require.Equal(t, "http://localhost:5173", resp.Headers["Access-Control-Allow-Origin"])
	require.Equal(t, "application/json", resp.Headers["Content-Type"])
}

func TestHandle_TokenFromAuthorizationHeader(t *testing.T) {
	uc := &stubUseCase{}
	h, err := NewHandler(uc)
	require.NoError(t, err)

	event := makeEvent(`{"user_input":"đặt hàng"}`)
	event.Headers["authorization"] = "Bearer abc"
	_, err = h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "Bearer abc", uc.in.Token)

	event = makeEvent(`{"user_input":"đặt hàng","jwt_token":"body-token"}`)
	event.Headers["Authorization"] = "Bearer abc"
	_, err = h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "body-token", uc.in.Token)
}

func TestHandle_InvalidBody(t *testing.T) {
	uc := &stubUseCase{}
	h, err := NewHandler(uc)
	require.NoError(t, err)

	for _, body := range []string{`not-json`, `{"user_input": 5}`, `{"current_cart": "x"}`} {
		resp, err := h.Handle(context.Background(), makeEvent(body))
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, body)

		out := parseBody[errorResponse](t, resp.Body)
		require.Equal(t, string(usecase.ErrorInvalidInput), out.Error)
	}
	require.Zero(t, uc.calls)
}

func TestHandle_Base64Body(t *testing.T) {
	uc := &stubUseCase{}
	h, err := NewHandler(uc)
	require.NoError(t, err)

	event := makeEvent(base64.StdEncoding.EncodeToString([]byte(`{"user_input":"xem danh mục"}`)))
	event.IsBase64Encoded = true
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "xem danh mục", uc.in.UserInput)

	event.Body = "%%%"
	resp, err = h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandle_MapsUseCaseErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "invalid input", err: &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "empty_user_input"}, status: http.StatusBadRequest, code: string(usecase.ErrorInvalidInput)},
		{name: "internal", err: &usecase.Error{Code: usecase.ErrorInternal, Reason: "unexpected"}, status: http.StatusInternalServerError, code: string(usecase.ErrorInternal)},
		{name: "unexpected", err: errors.New("boom"), status: http.StatusInternalServerError, code: string(usecase.ErrorInternal)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &stubUseCase{err: tc.err}
			h, err := NewHandler(uc)
			require.NoError(t, err)

			resp, err := h.Handle(context.Background(), makeEvent(`{"user_input":"xin chào"}`))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)

			out := parseBody[errorResponse](t, resp.Body)
			require.Equal(t, tc.code, out.Error)
			require.NotEmpty(t, resp.Headers["X-Correlation-Id"])
		})
	}
}

func TestHandle_Routing(t *testing.T) {
	uc := &stubUseCase{}
	h, err := NewHandler(uc)
	require.NoError(t, err)

	event := makeEvent("")
	event.HTTPMethod = http.MethodOptions
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Empty(t, resp.Body)
	require.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])

	event = makeEvent("")
	event.HTTPMethod = http.MethodGet
	resp, err = h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	event = makeEvent(`{"user_input":"x"}`)
	event.Path = "/ask"
	resp, err = h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	event = makeEvent(`{"user_input":"x"}`)
	event.Path = "/prod/chat/"
	resp, err = h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	event = makeEvent("")
	event.HTTPMethod = http.MethodGet
	event.Path = "/healthz"
	resp, err = h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, uc.calls)
}

func TestHandle_UsesProvidedCorrelationID_CaseInsensitive(t *testing.T) {
	var logs bytes.Buffer
	uc := &stubUseCase{}
	h, err := NewHandler(uc, WithLogger(zerolog.New(&logs)))
	require.NoError(t, err)

	event := makeEvent(`{"user_input":"xem giỏ hàng"}`)
	event.Headers["x-correlation-id"] = "corr-123"
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "corr-123", resp.Headers["X-Correlation-Id"])

	zerolog.Ctx(uc.ctx).Info().Msg("from usecase")
	require.Contains(t, logs.String(), `"correlation_id":"corr-123"`)
	require.Contains(t, logs.String(), "from usecase")
}

func TestServeHTTP_Adapter(t *testing.T) {
	uc := &stubUseCase{out: domain.Reply{Response: "ok", Intent: domain.IntentViewCategories, Confidence: 0.8}}
	h, err := NewHandler(uc)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(`{"user_input":"xem danh mục"}`))
	req.Header.Set("Authorization", "Bearer xyz")
	req.Header.Set("X-Correlation-Id", "corr-9")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "corr-9", rec.Header().Get("X-Correlation-Id"))
	require.Equal(t, "Bearer xyz", uc.in.Token)
	out := parseBody[domain.Reply](t, rec.Body.String())
	require.Equal(t, "ok", out.Response)

	req = httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(`{`))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeHTTP_OversizedBody(t *testing.T) {
	uc := &stubUseCase{}
	h, err := NewHandler(uc, WithAllowOrigin("http://localhost:5173"))
	require.NoError(t, err)

	body := bytes.Repeat([]byte("a"), maxBodyBytes+1)
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	req.Header.Set("X-Correlation-Id", "corr-big")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	require.Equal(t, "corr-big", rec.Header().Get("X-Correlation-Id"))
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	out := parseBody[errorResponse](t, rec.Body.String())
	require.Equal(t, string(usecase.ErrorInvalidInput), out.Error)
	require.Zero(t, uc.calls)
}
