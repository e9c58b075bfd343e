package handler

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"partmatch/internal/usecase"
	"partmatch/pkg/errors"
	"partmatch/pkg/logger"
	"partmatch/pkg/response"
	"partmatch/pkg/utils"
)

type ChatHandler struct {
	chatUseCase  *usecase.ChatUseCase
	badgeUseCase *usecase.BadgeUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase, badgeUseCase *usecase.BadgeUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase:  chatUseCase,
		badgeUseCase: badgeUseCase,
	}
}

// BuyerID defaults to the caller.
type createChatRequest struct {
	BuyerID  string `json:"buyer_id"`
	SellerID string `json:"seller_id" validate:"required"`
	PartID   string `json:"part_id"`
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"max=4000"`
}

type typingRequest struct {
	IsTyping bool `json:"is_typing"`
}

// CreateChat returns the chat for buyer, seller and part, creating it if needed.
func (h *ChatHandler) CreateChat(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req createChatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}
	if req.BuyerID == "" {
		req.BuyerID = userID
	}

	chat, created, err := h.chatUseCase.GetOrCreateChat(c.Request().Context(), userID, usecase.CreateChatInput{
		BuyerID:  req.BuyerID,
		SellerID: req.SellerID,
		PartID:   req.PartID,
	})
	if err != nil {
		return response.Error(c, err)
	}

	if created {
		return response.Created(c, chat)
	}
	return response.Success(c, chat)
}

func (h *ChatHandler) GetUserChats(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	page := utils.GetPaginationParams(c, 20)
	chats, total, err := h.chatUseCase.ListChats(c.Request().Context(), userID, page.Limit, page.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, chats, total, page.Limit, page.Offset)
}

func (h *ChatHandler) GetChatByID(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	chat, err := h.chatUseCase.GetChat(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, chat)
}

// SendMessage accepts JSON {content} or a multipart form with a "content"
// field and an optional "image" file.
func (h *ChatHandler) SendMessage(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	input := usecase.SendMessageInput{ChatID: c.Param("id")}

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		file, err := c.FormFile("image")
		if err != nil && !stderrors.Is(err, http.ErrMissingFile) {
			return response.Error(c, errors.BadRequest("Invalid multipart form", err))
		}

		req := sendMessageRequest{Content: c.FormValue("content")}
		if err := c.Validate(&req); err != nil {
			return response.Error(c, err)
		}
		input.Content = req.Content

		if file != nil {
			src, err := file.Open()
			if err != nil {
				logger.Error("Error opening uploaded image: %v", err)
				return response.Error(c, errors.Internal("Unable to read file", err))
			}
			defer src.Close()

			input.Image = &usecase.ImageUpload{
				Filename:    file.Filename,
				ContentType: file.Header.Get(echo.HeaderContentType),
				Size:        file.Size,
				Body:        src,
			}
		}
	} else {
		var req sendMessageRequest
		if err := c.Bind(&req); err != nil {
			return response.Error(c, errors.BadRequest("Invalid request body", err))
		}
		if err := c.Validate(&req); err != nil {
			return response.Error(c, err)
		}
		input.Content = req.Content
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), userID, input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ChatHandler) GetChatAttachments(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	files, err := h.chatUseCase.ListAttachments(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, files)
}

func (h *ChatHandler) GetChatMessages(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	page := utils.GetPaginationParams(c, 50)
	messages, total, err := h.chatUseCase.ListMessages(c.Request().Context(), userID, c.Param("id"), page.Limit, page.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, messages, total, page.Limit, page.Offset)
}

func (h *ChatHandler) MarkChatAsRead(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	chatID := c.Param("id")
	if err := h.chatUseCase.MarkChatAsRead(c.Request().Context(), userID, chatID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"chat_id": chatID,
		"read":    true,
	})
}

func (h *ChatHandler) Typing(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req typingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := h.chatUseCase.HandleTyping(c.Request().Context(), userID, c.Param("id"), req.IsTyping); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"is_typing": req.IsTyping})
}

// UnreadCount is the badge total over all of the caller's chats.
func (h *ChatHandler) UnreadCount(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return response.Error(c, err)
	}

	summary, err := h.badgeUseCase.UnreadTotal(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, summary)
}
