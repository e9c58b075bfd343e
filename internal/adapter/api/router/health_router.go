package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"partmatch/internal/adapter/api/handler"
)

func SetupHealthRouter(e *echo.Echo, healthHandler *handler.HealthHandler, metrics http.Handler) {
	e.GET("/health", healthHandler.CheckHealth)
	e.GET("/health/firestore", healthHandler.CheckFirestoreHealth)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}
}
