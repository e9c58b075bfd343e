package router

import (
	"github.com/labstack/echo/v4"

	"partmatch/internal/adapter/api/handler"
)

// SetupWebSocketRouter mounts /ws. Authentication happens inside the handler.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/ws", wsHandler.HandleWebSocket)
}
