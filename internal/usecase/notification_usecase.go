package usecase

import (
	"context"
	"time"

	"partmatch/internal/domain/entity"
	"partmatch/internal/domain/repository"
	"partmatch/internal/domain/service"
	"partmatch/pkg/errors"
	"partmatch/pkg/logger"
)

type NotificationUseCase struct {
	notificationRepo repository.NotificationRepository
	profileRepo      repository.ProfileRepository
	push             service.PushService
	publisher        service.EventPublisher
	recorder         Recorder
	now              func() time.Time
}

func NewNotificationUseCase(
	notificationRepo repository.NotificationRepository,
	profileRepo repository.ProfileRepository,
	push service.PushService,
	publisher service.EventPublisher,
	recorder Recorder,
) *NotificationUseCase {
	return &NotificationUseCase{
		notificationRepo: notificationRepo,
		profileRepo:      profileRepo,
		push:             push,
		publisher:        publisher,
		recorder:         recorderOrNop(recorder),
		now:              time.Now,
	}
}

type UnreadSummary struct {
	Count int    `json:"count"`
	Label string `json:"label"`
}

// Create stores a notification and publishes it to the recipient's channel.
func (uc *NotificationUseCase) Create(ctx context.Context, n *entity.Notification) (*entity.Notification, error) {
	if err := n.Validate(); err != nil {
		return nil, errors.Validation(err.Error())
	}
	n.Read = false
	if n.CreatedAt.IsZero() {
		n.CreatedAt = uc.now()
	}

	if err := uc.notificationRepo.Create(ctx, n); err != nil {
		logger.Error("CreateNotification Error: failed to store %s notification for %s: %v", n.Kind, n.UserID, err)
		return nil, err
	}
	uc.recorder.ObserveNotification(string(n.Kind))

	publishChange(ctx, uc.publisher, entity.TableUserNotifications, entity.ChangeInsert, n,
		map[string]string{"user_id": n.UserID})
	return n, nil
}

// Notify creates the notification and then pushes it to the recipient's
// devices. Push failures are logged only.
func (uc *NotificationUseCase) Notify(ctx context.Context, n *entity.Notification, title string) (*entity.Notification, error) {
	created, err := uc.Create(ctx, n)
	if err != nil {
		return nil, err
	}
	uc.pushTo(ctx, created, title)
	return created, nil
}

func (uc *NotificationUseCase) pushTo(ctx context.Context, n *entity.Notification, title string) {
	if uc.push == nil || uc.profileRepo == nil {
		return
	}

	profile, err := uc.profileRepo.GetByID(ctx, n.UserID)
	if err != nil {
		uc.recorder.ObserveFailure("push_profile")
		logger.BestEffort("load push tokens", err, map[string]string{"user_id": n.UserID})
		return
	}
	if len(profile.PushTokens) == 0 {
		return
	}

	if _, err := uc.push.Send(ctx, service.PushMessage{
		Tokens: profile.PushTokens,
		Title:  title,
		Body:   n.Message,
		Data:   pushData(n),
	}); err != nil {
		uc.recorder.ObserveFailure("push")
		logger.BestEffort("send push", err, map[string]string{"user_id": n.UserID, "kind": string(n.Kind)})
	}
}

func pushData(n *entity.Notification) map[string]string {
	data := map[string]string{
		"notification_id": n.ID,
		"kind":            string(n.Kind),
	}
	switch {
	case n.Chat != nil:
		data["chat_id"] = n.Chat.ChatID
	case n.Offer != nil:
		data["offer_id"] = n.Offer.OfferID
		data["request_id"] = n.Offer.RequestID
	case n.Request != nil:
		data["request_id"] = n.Request.RequestID
	}
	return data
}

func (uc *NotificationUseCase) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, int64, error) {
	items, total, err := uc.notificationRepo.ListByUser(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		logger.Error("ListNotifications Error: user %s: %v", userID, err)
		return nil, 0, err
	}
	return items, total, nil
}

func (uc *NotificationUseCase) MarkRead(ctx context.Context, userID, notificationID string) error {
	n, err := uc.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return errors.Forbidden("you can only update your own notifications", nil)
	}
	if n.Read {
		return nil
	}

	if err := uc.notificationRepo.MarkRead(ctx, notificationID); err != nil {
		logger.Error("MarkNotificationRead Error: %s: %v", notificationID, err)
		return err
	}
	n.Read = true
	publishChange(ctx, uc.publisher, entity.TableUserNotifications, entity.ChangeUpdate, n,
		map[string]string{"user_id": userID})
	return nil
}

func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, userID string) (int, error) {
	changed, err := uc.notificationRepo.MarkAllRead(ctx, userID)
	if err != nil {
		logger.Error("MarkAllNotificationsRead Error: user %s: %v", userID, err)
		return 0, err
	}
	if changed > 0 {
		publishChange(ctx, uc.publisher, entity.TableUserNotifications, entity.ChangeUpdate,
			map[string]int{"marked_read": changed}, map[string]string{"user_id": userID})
	}
	return changed, nil
}

func (uc *NotificationUseCase) UnreadCount(ctx context.Context, userID string) (*UnreadSummary, error) {
	n, err := uc.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UnreadSummary{Count: n, Label: BadgeLabel(n)}, nil
}
