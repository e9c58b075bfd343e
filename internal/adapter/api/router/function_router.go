package router

import (
	"github.com/labstack/echo/v4"

	"partmatch/internal/adapter/api/handler"
	"partmatch/internal/adapter/api/middleware"
	"partmatch/internal/infrastructure/ratelimit"
)

const actionFunctions = "functions"

func SetupFunctionRouter(e *echo.Echo, functionHandler *handler.FunctionHandler, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	functions := e.Group("/v1/functions")
	functions.Use(authMiddleware.Authenticate)
	if limiter != nil {
		functions.Use(middleware.RateLimit(limiter, actionFunctions))
	}

	functions.POST("/help-bot", functionHandler.HelpBot)
	functions.POST("/notify", functionHandler.Notify)
}
