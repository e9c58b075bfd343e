package router

import (
	"github.com/labstack/echo/v4"

	"partmatch/internal/adapter/api/handler"
	"partmatch/internal/adapter/api/middleware"
)

// SetupChatRouter sets up chat, message and conversation routes (excluding WebSocket)
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, conversationHandler *handler.ConversationHandler, authMiddleware *middleware.AuthMiddleware) {
	chatGroup := e.Group("/v1/chats")
	chatGroup.Use(authMiddleware.Authenticate)

	chatGroup.POST("", chatHandler.CreateChat)
	chatGroup.GET("", chatHandler.GetUserChats)
	chatGroup.GET("/unread", chatHandler.UnreadCount)
	chatGroup.GET("/:id", chatHandler.GetChatByID)
	chatGroup.PUT("/:id/read", chatHandler.MarkChatAsRead)
	chatGroup.POST("/:id/typing", chatHandler.Typing)

	chatGroup.POST("/:id/messages", chatHandler.SendMessage)
	chatGroup.GET("/:id/messages", chatHandler.GetChatMessages)
	chatGroup.GET("/:id/attachments", chatHandler.GetChatAttachments)

	conversationGroup := e.Group("/v1/conversations")
	conversationGroup.Use(authMiddleware.Authenticate)
	conversationGroup.GET("/:userId", conversationHandler.GetConversation)
}
