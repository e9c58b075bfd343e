package handler

import (
	"github.com/labstack/echo/v4"

	"partmatch/internal/usecase"
	"partmatch/pkg/response"
)

type AdminHandler struct {
	insightsUseCase *usecase.InsightsUseCase
}

func NewAdminHandler(insightsUseCase *usecase.InsightsUseCase) *AdminHandler {
	return &AdminHandler{
		insightsUseCase: insightsUseCase,
	}
}

// RunInsights sends the weekly insights emails now instead of waiting for the
// schedule.
func (h *AdminHandler) RunInsights(c echo.Context) error {
	summary, err := h.insightsUseCase.RunWeekly(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, summary)
}
