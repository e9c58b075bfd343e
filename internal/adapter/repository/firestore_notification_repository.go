package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"partmatch/internal/domain/entity"
	"partmatch/internal/domain/repository"
	"partmatch/pkg/errors"
	"partmatch/pkg/logger"
	"partmatch/pkg/utils"
)

type firestoreNotificationRepository struct {
	client *firestore.Client
}

func NewFirestoreNotificationRepository(client *firestore.Client) repository.NotificationRepository {
	return &firestoreNotificationRepository{
		client: client,
	}
}

func (r *firestoreNotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	if _, err := r.client.Collection("user_notifications").Doc(n.ID).Set(ctx, n); err != nil {
		return errors.Internal("Failed to create notification", err)
	}
	return nil
}

func (r *firestoreNotificationRepository) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	doc, err := r.client.Collection("user_notifications").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Notification", err)
		}
		return nil, errors.Internal("Failed to get notification", err)
	}

	var n entity.Notification
	if err := doc.DataTo(&n); err != nil {
		return nil, errors.Internal("Failed to parse notification", err)
	}
	return &n, nil
}

func (r *firestoreNotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, int64, error) {
	query := r.client.Collection("user_notifications").Where("userId", "==", userID)
	if unreadOnly {
		query = query.Where("read", "==", false)
	}

	docs, err := query.OrderBy("createdAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while listing notifications for %s: %v", userID, err)
		return nil, 0, errors.Internal("Failed to list notifications", err)
	}

	start, end := utils.Window(len(docs), limit, offset)
	items := make([]*entity.Notification, 0, end-start)
	for _, doc := range docs[start:end] {
		var n entity.Notification
		if err := doc.DataTo(&n); err != nil {
			logger.Warn("Error parsing notification %s: %v", doc.Ref.ID, err)
			continue
		}
		items = append(items, &n)
	}
	return items, int64(len(docs)), nil
}

func (r *firestoreNotificationRepository) MarkRead(ctx context.Context, id string) error {
	_, err := r.client.Collection("user_notifications").Doc(id).Update(ctx, []firestore.Update{
		{Path: "read", Value: true},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Notification", err)
		}
		return errors.Internal("Failed to mark notification read", err)
	}
	return nil
}

func (r *firestoreNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	iter := r.client.Collection("user_notifications").
		Where("userId", "==", userID).
		Where("read", "==", false).
		Documents(ctx)
	defer iter.Stop()

	bw := r.client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			bw.End()
			return 0, errors.Internal("Failed to list unread notifications", err)
		}
		job, err := bw.Update(doc.Ref, []firestore.Update{{Path: "read", Value: true}})
		if err != nil {
			bw.End()
			return 0, errors.Internal("Failed to queue notification update", err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	changed := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			logger.Warn("MarkAllRead: update failed for %s: %v", userID, err)
			continue
		}
		changed++
	}
	return changed, nil
}

func (r *firestoreNotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	docs, err := r.client.Collection("user_notifications").
		Where("userId", "==", userID).
		Where("read", "==", false).
		Select().
		Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to count notifications", err)
	}
	return len(docs), nil
}

type firestoreAdminNotificationRepository struct {
	client *firestore.Client
}

func NewFirestoreAdminNotificationRepository(client *firestore.Client) repository.AdminNotificationRepository {
	return &firestoreAdminNotificationRepository{
		client: client,
	}
}

func (r *firestoreAdminNotificationRepository) Create(ctx context.Context, n *entity.AdminNotification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	if _, err := r.client.Collection("admin_notifications").Doc(n.ID).Set(ctx, n); err != nil {
		return errors.Internal("Failed to create admin notification", err)
	}
	return nil
}
