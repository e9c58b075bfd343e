package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"partmatch/internal/domain/entity"
	"partmatch/internal/usecase"
	"partmatch/pkg/errors"
	"partmatch/pkg/response"
)

type ListingHandler struct {
	listingUseCase   *usecase.ListingUseCase
	promotionUseCase *usecase.PromotionUseCase
}

func NewListingHandler(listingUseCase *usecase.ListingUseCase, promotionUseCase *usecase.PromotionUseCase) *ListingHandler {
	return &ListingHandler{
		listingUseCase:   listingUseCase,
		promotionUseCase: promotionUseCase,
	}
}

func (h *ListingHandler) GetListing(c echo.Context) error {
	view, err := h.listingUseCase.GetListing(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, view)
}

// Quote prices ?feature=&boost=&combo= without charging.
func (h *ListingHandler) Quote(c echo.Context) error {
	sel := entity.PromotionOptions{
		Feature: queryBool(c, "feature"),
		Boost:   queryBool(c, "boost"),
		Combo:   queryBool(c, "combo"),
	}
	return response.Success(c, h.promotionUseCase.Quote(sel))
}

func (h *ListingHandler) Purchase(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var sel entity.PromotionOptions
	if err := c.Bind(&sel); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	result, err := h.promotionUseCase.Purchase(c.Request().Context(), userID, c.Param("id"), sel)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, result)
}

func queryBool(c echo.Context, name string) bool {
	v, _ := strconv.ParseBool(c.QueryParam(name))
	return v
}
