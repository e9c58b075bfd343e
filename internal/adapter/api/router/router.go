package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"partmatch/internal/adapter/api/handler"
	"partmatch/internal/adapter/api/middleware"
	"partmatch/internal/infrastructure/ratelimit"
)

// Handlers groups every HTTP handler the server mounts.
type Handlers struct {
	Health        *handler.HealthHandler
	Chat          *handler.ChatHandler
	Conversation  *handler.ConversationHandler
	Notification  *handler.NotificationHandler
	Function      *handler.FunctionHandler
	Listing       *handler.ListingHandler
	Admin         *handler.AdminHandler
	WebSocket     *handler.WebSocketHandler
	Metrics       http.Handler
	FunctionLimit *ratelimit.RateLimiter
}

func Setup(e *echo.Echo, h Handlers, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	SetupHealthRouter(e, h.Health, h.Metrics)
	SetupWebSocketRouter(e, h.WebSocket)
	SetupChatRouter(e, h.Chat, h.Conversation, authMiddleware)
	SetupNotificationRouter(e, h.Notification, authMiddleware)
	SetupFunctionRouter(e, h.Function, authMiddleware, h.FunctionLimit)
	SetupListingRouter(e, h.Listing, authMiddleware)
	SetupAdminRouter(e, h.Admin, authMiddleware, adminMiddleware)
}
