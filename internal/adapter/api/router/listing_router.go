package router

import (
	"github.com/labstack/echo/v4"

	"partmatch/internal/adapter/api/handler"
	"partmatch/internal/adapter/api/middleware"
)

func SetupListingRouter(e *echo.Echo, listingHandler *handler.ListingHandler, authMiddleware *middleware.AuthMiddleware) {
	listings := e.Group("/v1/listings")
	listings.Use(authMiddleware.Authenticate)
	listings.GET("/:id", listingHandler.GetListing)
	listings.POST("/:id/promotions", listingHandler.Purchase)

	e.GET("/v1/promotions/quote", listingHandler.Quote, authMiddleware.Authenticate)
}
