package router

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"partmatch/internal/adapter/api/handler"
	"partmatch/internal/adapter/api/middleware"
)

type rejectAll struct{}

func (rejectAll) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	return nil, fmt.Errorf("invalid")
}

func newTestServer() *echo.Echo {
	e := echo.New()
	Setup(e, Handlers{
		Health:       handler.NewHealthHandler(nil),
		Chat:         handler.NewChatHandler(nil, nil),
		Conversation: handler.NewConversationHandler(nil),
		Notification: handler.NewNotificationHandler(nil),
		Function:     handler.NewFunctionHandler(nil, nil),
		Listing:      handler.NewListingHandler(nil, nil),
		Admin:        handler.NewAdminHandler(nil),
		WebSocket:    handler.NewWebSocketHandler(nil, middleware.NewAuthMiddleware(rejectAll{}), nil),
		Metrics:      http.NotFoundHandler(),
	}, middleware.NewAuthMiddleware(rejectAll{}), middleware.NewAdminMiddleware(nil))
	return e
}

func TestSetup_RegistersRoutes(t *testing.T) {
	e := newTestServer()

	registered := map[string]bool{}
	for _, r := range e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"GET /metrics",
		"GET /ws",
		"POST /v1/chats",
		"GET /v1/chats",
		"GET /v1/chats/unread",
		"GET /v1/chats/:id",
		"GET /v1/chats/:id/messages",
		"POST /v1/chats/:id/messages",
		"GET /v1/chats/:id/attachments",
		"PUT /v1/chats/:id/read",
		"POST /v1/chats/:id/typing",
		"GET /v1/conversations/:userId",
		"GET /v1/notifications",
		"PUT /v1/notifications/:id/read",
		"PUT /v1/notifications/read-all",
		"GET /v1/notifications/unread",
		"POST /v1/functions/help-bot",
		"POST /v1/functions/notify",
		"GET /v1/promotions/quote",
		"POST /v1/listings/:id/promotions",
		"GET /v1/listings/:id",
		"POST /v1/admin/insights/run",
	} {
		assert.True(t, registered[want], want)
	}
}

func TestSetup_V1RequiresToken(t *testing.T) {
	e := newTestServer()

	for _, path := range []string{"/v1/chats", "/v1/notifications", "/v1/promotions/quote", "/v1/conversations/u2"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer whatever")
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebSocket_RejectsMissingToken(t *testing.T) {
	e := newTestServer()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws?token=forged", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
