package repository

import (
	"context"
	"sort"
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

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) messages(chatID string) *firestore.CollectionRef {
	return r.client.Collection("chats").Doc(chatID).Collection("messages")
}

func (r *firestoreChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	if chat.ID == "" {
		chat.ID = entity.ChatDocID(chat.BuyerID, chat.SellerID, chat.PartID)
	}

	now := time.Now()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	if chat.LastMessageAt.IsZero() {
		chat.LastMessageAt = now
	}
	chat.Participants = []string{chat.BuyerID, chat.SellerID}

	_, err := r.client.Collection("chats").Doc(chat.ID).Create(ctx, chat)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.Conflict("chat already exists")
		}
		return errors.Internal("Failed to create chat", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	doc, err := r.client.Collection("chats").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat", err)
		}
		return nil, errors.Internal("Failed to get chat", err)
	}

	var chat entity.Chat
	if err := doc.DataTo(&chat); err != nil {
		return nil, errors.Internal("Failed to parse chat data", err)
	}

	return &chat, nil
}

func (r *firestoreChatRepository) FindByPair(ctx context.Context, buyerID, sellerID, partID string) (*entity.Chat, error) {
	// partId is omitted for chats without a part, so it is matched in memory.
	docs, err := r.client.Collection("chats").
		Where("buyerId", "==", buyerID).
		Where("sellerId", "==", sellerID).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to query chat", err)
	}

	for _, doc := range docs {
		var chat entity.Chat
		if err := doc.DataTo(&chat); err != nil {
			logger.Warn("FindByPair: skipping unreadable chat %s: %v", doc.Ref.ID, err)
			continue
		}
		if chat.PartID == partID {
			return &chat, nil
		}
	}
	return nil, errors.NotFound("Chat", nil)
}

func (r *firestoreChatRepository) ListBetween(ctx context.Context, userA, userB string) ([]*entity.Chat, error) {
	chats, err := r.ListAllByUserID(ctx, userA)
	if err != nil {
		return nil, err
	}

	var between []*entity.Chat
	for _, chat := range chats {
		if chat.HasParticipant(userB) {
			between = append(between, chat)
		}
	}
	return between, nil
}

func (r *firestoreChatRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error) {
	all, err := r.ListAllByUserID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	start, end := utils.Window(len(all), limit, offset)
	return all[start:end], int64(len(all)), nil
}

func (r *firestoreChatRepository) ListAllByUserID(ctx context.Context, userID string) ([]*entity.Chat, error) {
	query := r.client.Collection("chats").
		Where("participants", "array-contains", userID).
		OrderBy("updatedAt", firestore.Desc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var chats []*entity.Chat
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Error("Firestore error while fetching chats for user %s: %v", userID, err)
			return nil, errors.Internal("Failed to fetch chats", err)
		}

		var chat entity.Chat
		if err := doc.DataTo(&chat); err != nil {
			logger.Warn("Error parsing chat data for user %s: %v", userID, err)
			continue
		}
		chats = append(chats, &chat)
	}

	return chats, nil
}

func (r *firestoreChatRepository) ApplyMessage(ctx context.Context, chatID string, update repository.ChatUpdate) error {
	updates := []firestore.Update{
		{Path: "lastMessage", Value: update.LastMessage},
		{Path: "lastSenderId", Value: update.LastSenderID},
		{Path: "lastMessageAt", Value: update.LastMessageAt},
		{Path: "updatedAt", Value: update.LastMessageAt},
	}
	if update.IncrementRole != entity.RoleNone {
		updates = append(updates, firestore.Update{
			Path:  entity.UnreadField(update.IncrementRole),
			Value: firestore.Increment(1),
		})
	}

	if _, err := r.client.Collection("chats").Doc(chatID).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Chat", err)
		}
		return errors.Internal("Failed to update chat", err)
	}
	return nil
}

func (r *firestoreChatRepository) ResetUnread(ctx context.Context, chatID string, role entity.ChatRole) error {
	if role == entity.RoleNone {
		return errors.BadRequest("unknown chat role", nil)
	}

	_, err := r.client.Collection("chats").Doc(chatID).Update(ctx, []firestore.Update{
		{Path: entity.UnreadField(role), Value: 0},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Chat", err)
		}
		return errors.Internal("Failed to reset unread count", err)
	}
	return nil
}

func (r *firestoreChatRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	if _, err := r.messages(message.ChatID).Doc(message.ID).Set(ctx, message); err != nil {
		return errors.Internal("Failed to create message", err)
	}
	return nil
}

func (r *firestoreChatRepository) GetMessagesByChat(ctx context.Context, chatID string, limit, offset int) ([]*entity.Message, int64, error) {
	all, err := r.ListAllMessages(ctx, chatID)
	if err != nil {
		return nil, 0, err
	}

	// Newest page first, returned in chronological order.
	n := len(all)
	start, end := utils.Window(n, limit, offset)
	page := make([]*entity.Message, 0, end-start)
	for i := n - end; i < n-start; i++ {
		page = append(page, all[i])
	}
	return page, int64(n), nil
}

func (r *firestoreChatRepository) ListAllMessages(ctx context.Context, chatID string) ([]*entity.Message, error) {
	iter := r.messages(chatID).OrderBy("createdAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var messages []*entity.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Error("Firestore error while iterating messages for chat %s: %v", chatID, err)
			return nil, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			logger.Warn("Error parsing message data for chat %s: %v", chatID, err)
			continue
		}
		messages = append(messages, &message)
	}

	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

func (r *firestoreChatRepository) MarkMessagesRead(ctx context.Context, chatID, readerID string) (int, error) {
	docs, err := r.messages(chatID).Where("read", "==", false).Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to query unread messages", err)
	}

	var refs []*firestore.DocumentRef
	for _, doc := range docs {
		senderID, _ := doc.Data()["senderId"].(string)
		if senderID == readerID {
			continue
		}
		refs = append(refs, doc.Ref)
	}
	if len(refs) == 0 {
		return 0, nil
	}

	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bw.Update(ref, []firestore.Update{{Path: "read", Value: true}})
		if err != nil {
			bw.End()
			return 0, errors.Internal("Failed to queue read update", err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	changed := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			logger.Warn("MarkMessagesRead: update failed in chat %s: %v", chatID, err)
			continue
		}
		changed++
	}
	return changed, nil
}

func (r *firestoreChatRepository) CountMessagesSince(ctx context.Context, chatID, excludeSenderID string, since time.Time) (int, error) {
	docs, err := r.messages(chatID).Where("createdAt", ">=", since).Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to count messages", err)
	}

	count := 0
	for _, doc := range docs {
		if senderID, _ := doc.Data()["senderId"].(string); senderID != excludeSenderID {
			count++
		}
	}
	return count, nil
}

type firestoreChatStatusRepository struct {
	client *firestore.Client
}

func NewFirestoreChatStatusRepository(client *firestore.Client) repository.ChatStatusRepository {
	return &firestoreChatStatusRepository{
		client: client,
	}
}

func (r *firestoreChatStatusRepository) Upsert(ctx context.Context, s *entity.UserChatStatus) error {
	s.ID = entity.UserChatStatusID(s.UserID, s.ChatID)
	if _, err := r.client.Collection("user_chat_status").Doc(s.ID).Set(ctx, s); err != nil {
		return errors.Internal("Failed to update chat status", err)
	}
	return nil
}

func (r *firestoreChatStatusRepository) Get(ctx context.Context, userID, chatID string) (*entity.UserChatStatus, error) {
	doc, err := r.client.Collection("user_chat_status").Doc(entity.UserChatStatusID(userID, chatID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat status", err)
		}
		return nil, errors.Internal("Failed to get chat status", err)
	}

	var s entity.UserChatStatus
	if err := doc.DataTo(&s); err != nil {
		return nil, errors.Internal("Failed to parse chat status", err)
	}
	return &s, nil
}
