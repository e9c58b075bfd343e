package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"partmatch/internal/usecase"
	"partmatch/pkg/response"
	"partmatch/pkg/utils"
)

type NotificationHandler struct {
	notificationUseCase *usecase.NotificationUseCase
}

func NewNotificationHandler(notificationUseCase *usecase.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
	}
}

func (h *NotificationHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	unreadOnly, _ := strconv.ParseBool(c.QueryParam("unread"))
	page := utils.GetPaginationParams(c, 20)

	items, total, err := h.notificationUseCase.List(c.Request().Context(), userID, unreadOnly, page.Limit, page.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, items, total, page.Limit, page.Offset)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	id := c.Param("id")
	if err := h.notificationUseCase.MarkRead(c.Request().Context(), userID, id); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"id":   id,
		"read": true,
	})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	updated, err := h.notificationUseCase.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int{"updated": updated})
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	summary, err := h.notificationUseCase.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, summary)
}
