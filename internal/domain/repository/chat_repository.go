package repository

import (
	"context"
	"time"

	"partmatch/internal/domain/entity"
)

// ChatUpdate describes the bookkeeping applied to a chat row after a message is
// inserted.
type ChatUpdate struct {
	LastMessage   string
	LastSenderID  string
	LastMessageAt time.Time
	// IncrementRole is the role whose unread counter is incremented by one.
	IncrementRole entity.ChatRole
}

type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	GetByID(ctx context.Context, id string) (*entity.Chat, error)
	// FindByPair returns the chat for buyer, seller and part, or a NOT_FOUND error.
	FindByPair(ctx context.Context, buyerID, sellerID, partID string) (*entity.Chat, error)
	// ListBetween returns every chat whose participants are exactly userA and userB.
	ListBetween(ctx context.Context, userA, userB string) ([]*entity.Chat, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error)
	// ListAllByUserID returns every chat of the user without pagination.
	ListAllByUserID(ctx context.Context, userID string) ([]*entity.Chat, error)
	ApplyMessage(ctx context.Context, chatID string, update ChatUpdate) error
	// ResetUnread sets the counter of role to zero.
	ResetUnread(ctx context.Context, chatID string, role entity.ChatRole) error

	CreateMessage(ctx context.Context, message *entity.Message) error
	GetMessagesByChat(ctx context.Context, chatID string, limit, offset int) ([]*entity.Message, int64, error)
	ListAllMessages(ctx context.Context, chatID string) ([]*entity.Message, error)
	// MarkMessagesRead flips Read on messages not sent by readerID and returns how many changed.
	MarkMessagesRead(ctx context.Context, chatID, readerID string) (int, error)
	CountMessagesSince(ctx context.Context, chatID, excludeSenderID string, since time.Time) (int, error)
}

type ChatStatusRepository interface {
	Upsert(ctx context.Context, status *entity.UserChatStatus) error
	Get(ctx context.Context, userID, chatID string) (*entity.UserChatStatus, error)
}
