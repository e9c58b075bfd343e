package usecase

import (
	"context"
	"strconv"

	"partmatch/internal/domain/entity"
	"partmatch/internal/domain/repository"
	"partmatch/internal/domain/service"
	"partmatch/pkg/logger"
)

// BadgeUseCase derives a user's unread total from the per-role counters on
// their chats. The counters are trusted as stored and never reconciled
// against the message rows.
type BadgeUseCase struct {
	chatRepo  repository.ChatRepository
	publisher service.EventPublisher
}

func NewBadgeUseCase(chatRepo repository.ChatRepository, publisher service.EventPublisher) *BadgeUseCase {
	return &BadgeUseCase{
		chatRepo:  chatRepo,
		publisher: publisher,
	}
}

// BadgeLabel renders nothing for zero, the number up to 99, then "99+".
func BadgeLabel(n int) string {
	switch {
	case n <= 0:
		return ""
	case n > 99:
		return "99+"
	default:
		return strconv.Itoa(n)
	}
}

func SumUnread(userID string, chats []*entity.Chat) int {
	total := 0
	for _, chat := range chats {
		total += chat.UnreadFor(userID)
	}
	return total
}

func (uc *BadgeUseCase) UnreadTotal(ctx context.Context, userID string) (*UnreadSummary, error) {
	chats, err := uc.chatRepo.ListAllByUserID(ctx, userID)
	if err != nil {
		logger.Error("UnreadTotal Error: user %s: %v", userID, err)
		return nil, err
	}
	n := SumUnread(userID, chats)
	return &UnreadSummary{Count: n, Label: BadgeLabel(n)}, nil
}

// Refresh recomputes the badge of each user and pushes it to their connections.
func (uc *BadgeUseCase) Refresh(ctx context.Context, userIDs ...string) {
	for _, userID := range userIDs {
		if userID == "" {
			continue
		}
		summary, err := uc.UnreadTotal(ctx, userID)
		if err != nil {
			logger.BestEffort("refresh badge", err, map[string]string{"user_id": userID})
			continue
		}
		if uc.publisher == nil {
			continue
		}

		event, err := entity.NewChangeEvent(entity.TableChats, entity.ChangeBadge, summary, nil)
		if err != nil {
			continue
		}
		event.UserID = userID
		if err := uc.publisher.Publish(ctx, event); err != nil {
			logger.BestEffort("publish badge", err, map[string]string{"user_id": userID})
		}
	}
}
