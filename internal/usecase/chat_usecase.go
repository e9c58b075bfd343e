package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"partmatch/internal/domain/entity"
	"partmatch/internal/domain/repository"
	"partmatch/internal/domain/service"
	"partmatch/internal/infrastructure/ratelimit"
	ws "partmatch/internal/infrastructure/websocket"
	"partmatch/pkg/errors"
	"partmatch/pkg/logger"
)

const (
	previewRunes = 50
	sniffBytes   = 512
)

type ChatOptions struct {
	MaxAttachmentBytes int64
	TypingStopDelay    time.Duration
}

type ChatUseCase struct {
	chatRepo     repository.ChatRepository
	statusRepo   repository.ChatStatusRepository
	profileRepo  repository.ProfileRepository
	partRepo     repository.CarPartRepository
	fileRepo     repository.FileMetadataRepository
	storage      service.FileUploadService
	notifier     *NotificationUseCase
	badge        *BadgeUseCase
	publisher    service.EventPublisher
	rateLimiter  *ratelimit.RateLimiter
	recorder     Recorder
	opts         ChatOptions
	now          func() time.Time
	typingMutex  sync.Mutex
	typingTimers map[string]*time.Timer
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	statusRepo repository.ChatStatusRepository,
	profileRepo repository.ProfileRepository,
	partRepo repository.CarPartRepository,
	fileRepo repository.FileMetadataRepository,
	storage service.FileUploadService,
	notifier *NotificationUseCase,
	badge *BadgeUseCase,
	publisher service.EventPublisher,
	rateLimiter *ratelimit.RateLimiter,
	recorder Recorder,
	opts ChatOptions,
) *ChatUseCase {
	if opts.MaxAttachmentBytes <= 0 {
		opts.MaxAttachmentBytes = 5 * 1024 * 1024
	}
	if opts.TypingStopDelay <= 0 {
		opts.TypingStopDelay = time.Second
	}
	if rateLimiter == nil {
		rateLimiter = ratelimit.NewRateLimiter()
	}

	return &ChatUseCase{
		chatRepo:     chatRepo,
		statusRepo:   statusRepo,
		profileRepo:  profileRepo,
		partRepo:     partRepo,
		fileRepo:     fileRepo,
		storage:      storage,
		notifier:     notifier,
		badge:        badge,
		publisher:    publisher,
		rateLimiter:  rateLimiter,
		recorder:     recorderOrNop(recorder),
		opts:         opts,
		now:          time.Now,
		typingTimers: make(map[string]*time.Timer),
	}
}

type CreateChatInput struct {
	BuyerID  string
	SellerID string
	PartID   string
}

// ImageUpload is a single attachment as received from the client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type SendMessageInput struct {
	ChatID  string
	Content string
	Image   *ImageUpload
}

type ChatSummary struct {
	*entity.Chat
	UnreadCount int                    `json:"unread_count"`
	OtherUser   *entity.Profile        `json:"other_user,omitempty"`
	PeerStatus  *entity.UserChatStatus `json:"peer_status,omitempty"`
}

// GetOrCreateChat returns the chat for (buyer, seller, part), creating it on
// first contact. The caller must be one of the two parties.
func (uc *ChatUseCase) GetOrCreateChat(ctx context.Context, userID string, input CreateChatInput) (*entity.Chat, bool, error) {
	if input.BuyerID == "" || input.SellerID == "" {
		return nil, false, errors.Validation("buyer_id and seller_id are required")
	}
	if input.BuyerID == input.SellerID {
		return nil, false, errors.BadRequest("You cannot create a chat with yourself", nil)
	}
	if userID != input.BuyerID && userID != input.SellerID {
		return nil, false, errors.Forbidden("You can only open chats you take part in", nil)
	}

	existing, err := uc.chatRepo.FindByPair(ctx, input.BuyerID, input.SellerID, input.PartID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		logger.Error("GetOrCreateChat Error: failed to look up chat: %v", err)
		return nil, false, err
	}

	if input.PartID != "" && uc.partRepo != nil {
		part, err := uc.partRepo.GetByID(ctx, input.PartID)
		if err != nil {
			return nil, false, err
		}
		if part.SellerID != input.SellerID {
			return nil, false, errors.BadRequest("The part does not belong to this seller", nil)
		}
	}

	allowed, wait := uc.rateLimiter.Allow(userID, ratelimit.ActionCreateChat)
	if !allowed {
		logger.Warn("GetOrCreateChat Rate Limited: User %s must wait %v", userID, wait)
		return nil, false, errors.TooManyRequests("Rate limit exceeded. Please wait before creating another chat", wait)
	}

	chat := &entity.Chat{
		BuyerID:  input.BuyerID,
		SellerID: input.SellerID,
		PartID:   input.PartID,
	}
	if err := uc.chatRepo.Create(ctx, chat); err != nil {
		if errors.Is(err, "CONFLICT") {
			if existing, findErr := uc.chatRepo.FindByPair(ctx, input.BuyerID, input.SellerID, input.PartID); findErr == nil {
				return existing, false, nil
			}
		}
		logger.Error("GetOrCreateChat Error: failed to create chat: %v", err)
		return nil, false, err
	}

	publishChange(ctx, uc.publisher, entity.TableChats, entity.ChangeInsert, chat, chatKeys(chat))
	return chat, true, nil
}

// SendMessage stores a text or image message, updates the chat bookkeeping and
// notifies the recipient. Notification and push failures never fail the send.
func (uc *ChatUseCase) SendMessage(ctx context.Context, userID string, input SendMessageInput) (*entity.Message, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" && input.Image == nil {
		return nil, errors.Validation("message is empty")
	}

	var image *preparedImage
	if input.Image != nil {
		var err error
		image, err = uc.prepareImage(input.Image)
		if err != nil {
			return nil, err
		}
	}

	allowed, wait := uc.rateLimiter.Allow(userID, ratelimit.ActionSendMessage)
	if !allowed {
		logger.Warn("SendMessage Rate Limited: User %s must wait %v", userID, wait)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please slow down", wait)
	}

	chat, err := uc.chatRepo.GetByID(ctx, input.ChatID)
	if err != nil {
		logger.Error("SendMessage Error: chat %s: %v", input.ChatID, err)
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant in this chat", nil)
	}

	message := &entity.Message{
		ChatID:      chat.ID,
		SenderID:    userID,
		Content:     content,
		MessageType: entity.MessageTypeText,
		CreatedAt:   uc.now(),
	}

	if image != nil {
		uploaded, err := uc.uploadImage(ctx, userID, chat.ID, image)
		if err != nil {
			return nil, err
		}
		message.MessageType = entity.MessageTypeImage
		message.AttachmentURL = uploaded.URL
		if message.Content == "" {
			message.Content = entity.ImageCaptionPlaceholder
		}
	}

	if err := uc.chatRepo.CreateMessage(ctx, message); err != nil {
		logger.Error("SendMessage Error: failed to store message in chat %s: %v", chat.ID, err)
		return nil, errors.Internal("failed to send message, please try again", err)
	}
	uc.recorder.ObserveMessage(string(message.MessageType))

	recipientID := chat.Recipient(userID)
	update := repository.ChatUpdate{
		LastMessage:   message.Content,
		LastSenderID:  userID,
		LastMessageAt: message.CreatedAt,
		IncrementRole: chat.RoleOf(recipientID),
	}
	if err := uc.chatRepo.ApplyMessage(ctx, chat.ID, update); err != nil {
		logger.Error("SendMessage Error: failed to update chat %s after message %s: %v", chat.ID, message.ID, err)
	} else {
		applyLocally(chat, update)
	}

	publishChange(ctx, uc.publisher, entity.TableMessages, entity.ChangeInsert, message,
		map[string]string{"chat_id": chat.ID, "sender_id": userID})
	publishChange(ctx, uc.publisher, entity.TableChats, entity.ChangeUpdate, chat, chatKeys(chat))
	if uc.badge != nil {
		uc.badge.Refresh(ctx, recipientID)
	}

	uc.notifyRecipient(ctx, chat, message, recipientID)
	uc.stopTyping(userID, chat.ID)

	return message, nil
}

func (uc *ChatUseCase) notifyRecipient(ctx context.Context, chat *entity.Chat, message *entity.Message, recipientID string) {
	if uc.notifier == nil {
		return
	}

	var sender *entity.Profile
	if uc.profileRepo != nil {
		p, err := uc.profileRepo.GetByID(ctx, message.SenderID)
		if err != nil {
			logger.BestEffort("load sender profile", err, map[string]string{"user_id": message.SenderID})
		} else {
			sender = p
		}
	}

	_, err := uc.notifier.Notify(ctx, &entity.Notification{
		UserID:  recipientID,
		Kind:    entity.NotificationNewMessage,
		Message: MessageNotificationText(sender.DisplayName(), message),
		Chat:    &entity.ChatRef{ChatID: chat.ID},
	}, "New message")
	if err != nil {
		uc.recorder.ObserveFailure("notification")
		logger.BestEffort("create message notification", err, map[string]string{
			"chat_id": chat.ID, "user_id": recipientID,
		})
	}
}

// MessageNotificationText is the recipient-facing body of a new-message
// notification.
func MessageNotificationText(senderName string, message *entity.Message) string {
	if message.MessageType == entity.MessageTypeImage {
		return fmt.Sprintf("%s sent you an image", senderName)
	}
	return fmt.Sprintf("%s: %s", senderName, Preview(message.Content, previewRunes))
}

// Preview truncates s to n runes, appending "..." when anything was cut.
func Preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

type preparedImage struct {
	body        io.Reader
	contentType string
	ext         string
	size        int64
	filename    string
}

// prepareImage checks type and size without touching the network.
func (uc *ChatUseCase) prepareImage(img *ImageUpload) (*preparedImage, error) {
	if img.Body == nil {
		return nil, errors.Validation("image has no content")
	}
	if img.Size > uc.opts.MaxAttachmentBytes {
		return nil, errors.BadRequest(fmt.Sprintf("image must be smaller than %dMB", uc.opts.MaxAttachmentBytes/(1024*1024)), nil)
	}

	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(img.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, errors.BadRequest("could not read image", err)
	}
	head = head[:n]

	detected := mimetype.Detect(head)
	contentType := detected.String()
	if !strings.HasPrefix(contentType, "image/") {
		// The sniffer only knows common formats; trust the declared type when
		// it could not tell.
		if !detected.Is("application/octet-stream") || !strings.HasPrefix(img.ContentType, "image/") {
			return nil, errors.BadRequest("please select an image file", nil)
		}
		contentType = img.ContentType
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(img.Filename)), ".")
	if ext == "" {
		ext = strings.TrimPrefix(detected.Extension(), ".")
	}
	if ext == "" {
		ext = "img"
	}

	// One byte past the limit lets the upload reveal a lying Size.
	rest := io.LimitReader(img.Body, uc.opts.MaxAttachmentBytes-int64(len(head))+1)
	return &preparedImage{
		body:        io.MultiReader(bytes.NewReader(head), rest),
		contentType: contentType,
		ext:         ext,
		size:        img.Size,
		filename:    img.Filename,
	}, nil
}

// AttachmentObjectName is "<userID>/<unixMillis>.<ext>".
func AttachmentObjectName(userID string, at time.Time, ext string) string {
	return fmt.Sprintf("%s/%d.%s", userID, at.UnixMilli(), ext)
}

func (uc *ChatUseCase) uploadImage(ctx context.Context, userID, chatID string, img *preparedImage) (*service.UploadedObject, error) {
	if uc.storage == nil {
		return nil, errors.Internal("attachments are not available", nil)
	}

	objectName := AttachmentObjectName(userID, uc.now(), img.ext)
	uploaded, err := uc.storage.UploadObject(ctx, img.body, img.contentType, objectName)
	if err != nil {
		logger.Error("SendMessage Error: failed to upload attachment %s: %v", objectName, err)
		return nil, errors.Internal("failed to upload image, please try again", err)
	}
	if uploaded.Size > uc.opts.MaxAttachmentBytes {
		if delErr := uc.storage.DeleteFile(ctx, uploaded.URL); delErr != nil {
			logger.BestEffort("delete oversized attachment", delErr, map[string]string{"object": objectName})
		}
		return nil, errors.BadRequest(fmt.Sprintf("image must be smaller than %dMB", uc.opts.MaxAttachmentBytes/(1024*1024)), nil)
	}

	if uc.fileRepo != nil {
		if err := uc.fileRepo.Create(ctx, &entity.FileMetadata{
			URL:        uploaded.URL,
			Bucket:     uploaded.Bucket,
			ObjectName: uploaded.ObjectName,
			EntityType: entity.FileEntityChat,
			EntityID:   chatID,
			UploadedBy: userID,
			FileType:   img.contentType,
			FileSize:   uploaded.Size,
			CreatedAt:  uc.now(),
		}); err != nil {
			logger.BestEffort("record attachment metadata", err, map[string]string{"object": objectName})
		}
	}
	return uploaded, nil
}

// HandleTyping records the caller's typing state in the chat. A true state
// flips back to false after TypingStopDelay unless another keystroke re-arms
// the timer first.
func (uc *ChatUseCase) HandleTyping(ctx context.Context, userID, chatID string, isTyping bool) error {
	allowed, _ := uc.rateLimiter.Allow(userID, ratelimit.ActionTyping)
	if !allowed {
		// Typing is advisory; dropping an event is harmless.
		return nil
	}

	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return err
	}
	if !chat.HasParticipant(userID) {
		return errors.Forbidden("You are not a participant in this chat", nil)
	}

	if err := uc.setTyping(ctx, userID, chatID, isTyping); err != nil {
		return err
	}

	if isTyping {
		uc.armTypingTimer(userID, chatID)
	} else {
		uc.cancelTypingTimer(userID, chatID)
	}
	return nil
}

func (uc *ChatUseCase) setTyping(ctx context.Context, userID, chatID string, isTyping bool) error {
	status := &entity.UserChatStatus{
		UserID:   userID,
		ChatID:   chatID,
		IsTyping: isTyping,
		LastSeen: uc.now(),
	}
	if err := uc.statusRepo.Upsert(ctx, status); err != nil {
		logger.Error("HandleTyping Error: user %s chat %s: %v", userID, chatID, err)
		return err
	}
	publishChange(ctx, uc.publisher, entity.TableUserChatStatus, entity.ChangeUpdate, status,
		map[string]string{"chat_id": chatID, "user_id": userID})
	return nil
}

func (uc *ChatUseCase) armTypingTimer(userID, chatID string) {
	key := entity.UserChatStatusID(userID, chatID)

	uc.typingMutex.Lock()
	defer uc.typingMutex.Unlock()

	if t, ok := uc.typingTimers[key]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(uc.opts.TypingStopDelay, func() {
		uc.typingMutex.Lock()
		if uc.typingTimers[key] != timer {
			uc.typingMutex.Unlock()
			return
		}
		delete(uc.typingTimers, key)
		uc.typingMutex.Unlock()

		if err := uc.setTyping(context.Background(), userID, chatID, false); err != nil {
			logger.BestEffort("clear typing state", err, map[string]string{"user_id": userID, "chat_id": chatID})
		}
	})
	uc.typingTimers[key] = timer
}

func (uc *ChatUseCase) cancelTypingTimer(userID, chatID string) bool {
	key := entity.UserChatStatusID(userID, chatID)

	uc.typingMutex.Lock()
	defer uc.typingMutex.Unlock()

	t, ok := uc.typingTimers[key]
	if !ok {
		return false
	}
	t.Stop()
	delete(uc.typingTimers, key)
	return true
}

// stopTyping clears a pending typing state immediately, used once a message
// is sent.
func (uc *ChatUseCase) stopTyping(userID, chatID string) {
	if !uc.cancelTypingTimer(userID, chatID) {
		return
	}
	if err := uc.setTyping(context.Background(), userID, chatID, false); err != nil {
		logger.BestEffort("clear typing state", err, map[string]string{"user_id": userID, "chat_id": chatID})
	}
}

// Stop cancels every pending typing timer.
func (uc *ChatUseCase) Stop() {
	uc.typingMutex.Lock()
	defer uc.typingMutex.Unlock()
	for key, t := range uc.typingTimers {
		t.Stop()
		delete(uc.typingTimers, key)
	}
}

func (uc *ChatUseCase) pendingTypingTimers() int {
	uc.typingMutex.Lock()
	defer uc.typingMutex.Unlock()
	return len(uc.typingTimers)
}

// MarkChatAsRead zeroes the caller's unread counter and flags the other
// party's messages as read.
func (uc *ChatUseCase) MarkChatAsRead(ctx context.Context, userID, chatID string) error {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return err
	}
	role := chat.RoleOf(userID)
	if role == entity.RoleNone {
		return errors.Forbidden("You are not a participant in this chat", nil)
	}

	if err := uc.chatRepo.ResetUnread(ctx, chatID, role); err != nil {
		logger.Error("MarkChatAsRead Error: failed to reset counter in chat %s: %v", chatID, err)
		return errors.Internal("failed to mark chat as read, please try again", err)
	}
	if role == entity.RoleBuyer {
		chat.BuyerUnreadCount = 0
	} else {
		chat.SellerUnreadCount = 0
	}

	changed, err := uc.chatRepo.MarkMessagesRead(ctx, chatID, userID)
	if err != nil {
		logger.Error("MarkChatAsRead Error: failed to flag messages in chat %s: %v", chatID, err)
	} else if changed > 0 {
		publishChange(ctx, uc.publisher, entity.TableMessages, entity.ChangeUpdate,
			map[string]interface{}{"reader_id": userID, "marked_read": changed},
			map[string]string{"chat_id": chatID})
	}

	uc.recordSeen(ctx, userID, chatID)

	publishChange(ctx, uc.publisher, entity.TableChats, entity.ChangeUpdate, chat, chatKeys(chat))
	if uc.badge != nil {
		uc.badge.Refresh(ctx, userID)
	}
	return nil
}

// recordSeen stamps LastSeen on the caller's status row, keeping its typing
// flag.
func (uc *ChatUseCase) recordSeen(ctx context.Context, userID, chatID string) {
	status, err := uc.statusRepo.Get(ctx, userID, chatID)
	if err != nil {
		if !errors.Is(err, "NOT_FOUND") {
			logger.BestEffort("load chat status", err, map[string]string{"user_id": userID, "chat_id": chatID})
			return
		}
		status = &entity.UserChatStatus{UserID: userID, ChatID: chatID}
	}
	status.LastSeen = uc.now()

	if err := uc.statusRepo.Upsert(ctx, status); err != nil {
		logger.BestEffort("record last seen", err, map[string]string{"user_id": userID, "chat_id": chatID})
		return
	}
	publishChange(ctx, uc.publisher, entity.TableUserChatStatus, entity.ChangeUpdate, status,
		map[string]string{"chat_id": chatID, "user_id": userID})
}

func (uc *ChatUseCase) GetChat(ctx context.Context, userID, chatID string) (*ChatSummary, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant in this chat", nil)
	}

	peerID := chat.Recipient(userID)
	summary := &ChatSummary{Chat: chat, UnreadCount: chat.UnreadFor(userID)}
	if uc.profileRepo != nil {
		if other, err := uc.profileRepo.GetByID(ctx, peerID); err == nil {
			summary.OtherUser = other
		}
	}

	status, err := uc.statusRepo.Get(ctx, peerID, chatID)
	switch {
	case err == nil:
		summary.PeerStatus = status
	case !errors.Is(err, "NOT_FOUND"):
		logger.Warn("GetChat: failed to load status of %s in chat %s: %v", peerID, chatID, err)
	}
	return summary, nil
}

// ListAttachments returns the images sent in a chat, newest first.
func (uc *ChatUseCase) ListAttachments(ctx context.Context, userID, chatID string) ([]*entity.FileMetadata, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant in this chat", nil)
	}

	if uc.fileRepo == nil {
		return []*entity.FileMetadata{}, nil
	}
	files, err := uc.fileRepo.GetByEntityID(ctx, entity.FileEntityChat, chatID)
	if err != nil {
		logger.Error("ListAttachments Error: chat %s: %v", chatID, err)
		return nil, err
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].CreatedAt.After(files[j].CreatedAt)
	})
	return files, nil
}

func (uc *ChatUseCase) ListChats(ctx context.Context, userID string, limit, offset int) ([]*ChatSummary, int64, error) {
	chats, total, err := uc.chatRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		logger.Error("ListChats Error: user %s: %v", userID, err)
		return nil, 0, err
	}

	others := make([]string, 0, len(chats))
	for _, chat := range chats {
		others = append(others, chat.Recipient(userID))
	}
	profiles := map[string]*entity.Profile{}
	if uc.profileRepo != nil && len(others) > 0 {
		if p, err := uc.profileRepo.GetByIDs(ctx, others); err != nil {
			logger.Warn("ListChats: failed to load profiles: %v", err)
		} else {
			profiles = p
		}
	}

	summaries := make([]*ChatSummary, 0, len(chats))
	for _, chat := range chats {
		summaries = append(summaries, &ChatSummary{
			Chat:        chat,
			UnreadCount: chat.UnreadFor(userID),
			OtherUser:   profiles[chat.Recipient(userID)],
		})
	}
	return summaries, total, nil
}

func (uc *ChatUseCase) ListMessages(ctx context.Context, userID, chatID string, limit, offset int) ([]*entity.Message, int64, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, 0, err
	}
	if !chat.HasParticipant(userID) {
		return nil, 0, errors.Forbidden("You are not a participant in this chat", nil)
	}
	return uc.chatRepo.GetMessagesByChat(ctx, chatID, limit, offset)
}

// AuthorizeSubscription lets a user follow only rows they may read: messages
// and typing rows of their own chats, chat rows naming them, and their own
// notifications.
func (uc *ChatUseCase) AuthorizeSubscription(ctx context.Context, userID string, sub ws.Subscription) error {
	switch sub.Table {
	case entity.TableMessages, entity.TableUserChatStatus:
		if sub.Column != "chat_id" {
			return fmt.Errorf("%s can only be filtered by chat_id", sub.Table)
		}
		chat, err := uc.chatRepo.GetByID(ctx, sub.Value)
		if err != nil {
			return err
		}
		if !chat.HasParticipant(userID) {
			return fmt.Errorf("not a participant of chat %s", sub.Value)
		}
		return nil
	case entity.TableChats:
		if (sub.Column == "buyer_id" || sub.Column == "seller_id") && sub.Value == userID {
			return nil
		}
		return fmt.Errorf("chats can only be filtered by your own buyer_id or seller_id")
	case entity.TableUserNotifications:
		if sub.Column == "user_id" && sub.Value == userID {
			return nil
		}
		return fmt.Errorf("notifications can only be filtered by your own user_id")
	}
	return fmt.Errorf("unknown table %q", sub.Table)
}

func chatKeys(chat *entity.Chat) map[string]string {
	keys := map[string]string{
		"id":        chat.ID,
		"buyer_id":  chat.BuyerID,
		"seller_id": chat.SellerID,
	}
	if chat.PartID != "" {
		keys["part_id"] = chat.PartID
	}
	return keys
}

func applyLocally(chat *entity.Chat, update repository.ChatUpdate) {
	chat.LastMessage = update.LastMessage
	chat.LastSenderID = update.LastSenderID
	chat.LastMessageAt = update.LastMessageAt
	chat.UpdatedAt = update.LastMessageAt
	switch update.IncrementRole {
	case entity.RoleBuyer:
		chat.BuyerUnreadCount++
	case entity.RoleSeller:
		chat.SellerUnreadCount++
	}
}
