package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"partmatch/internal/usecase"
	"partmatch/pkg/errors"
	"partmatch/pkg/response"
)

// FunctionHandler serves the help-bot and notification-dispatch endpoints.
// Successful responses are the bare payload, without the response envelope,
// so existing function clients keep working.
type FunctionHandler struct {
	helpBotUseCase  *usecase.HelpBotUseCase
	dispatchUseCase *usecase.DispatchUseCase
}

func NewFunctionHandler(helpBotUseCase *usecase.HelpBotUseCase, dispatchUseCase *usecase.DispatchUseCase) *FunctionHandler {
	return &FunctionHandler{
		helpBotUseCase:  helpBotUseCase,
		dispatchUseCase: dispatchUseCase,
	}
}

func (h *FunctionHandler) HelpBot(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req usecase.HelpBotRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	res, err := h.helpBotUseCase.Ask(c.Request().Context(), userID, req)
	if err != nil {
		return response.Error(c, err)
	}

	return c.JSON(http.StatusOK, res)
}

func (h *FunctionHandler) Notify(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req usecase.DispatchRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	res, err := h.dispatchUseCase.Dispatch(c.Request().Context(), userID, req)
	if err != nil {
		return response.Error(c, err)
	}

	return c.JSON(http.StatusOK, res)
}
