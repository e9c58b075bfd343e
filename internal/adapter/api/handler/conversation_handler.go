package handler

import (
	"github.com/labstack/echo/v4"

	"partmatch/internal/usecase"
	"partmatch/pkg/response"
)

type ConversationHandler struct {
	conversationUseCase *usecase.ConversationUseCase
}

func NewConversationHandler(conversationUseCase *usecase.ConversationUseCase) *ConversationHandler {
	return &ConversationHandler{
		conversationUseCase: conversationUseCase,
	}
}

// GetConversation merges every chat between the caller and :userId into one
// timeline.
func (h *ConversationHandler) GetConversation(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	conv, err := h.conversationUseCase.GetConversation(c.Request().Context(), userID, c.Param("userId"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conv)
}
