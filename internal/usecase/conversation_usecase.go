package usecase

import (
	"context"
	"sort"
	"time"

	"partmatch/internal/domain/entity"
	"partmatch/internal/domain/repository"
	"partmatch/pkg/errors"
	"partmatch/pkg/logger"
)

// SeparatorGap is the silence after which a date separator is shown even on
// the same calendar day.
const SeparatorGap = 30 * time.Minute

type TimelineEntry struct {
	Message           *entity.Message `json:"message"`
	PartID            string          `json:"part_id,omitempty"`
	ShowPartSeparator bool            `json:"show_part_separator"`
	ShowDateSeparator bool            `json:"show_date_separator"`
}

// Conversation is every message exchanged between two users across all of
// their chats, in one timeline.
type Conversation struct {
	ActiveChatID string          `json:"active_chat_id,omitempty"`
	Peer         *entity.Profile `json:"peer,omitempty"`
	Chats        []*entity.Chat  `json:"chats"`
	Entries      []TimelineEntry `json:"entries"`
}

type ConversationUseCase struct {
	chatRepo    repository.ChatRepository
	profileRepo repository.ProfileRepository
	location    *time.Location
}

func NewConversationUseCase(chatRepo repository.ChatRepository, profileRepo repository.ProfileRepository, location *time.Location) *ConversationUseCase {
	if location == nil {
		location = time.UTC
	}
	return &ConversationUseCase{
		chatRepo:    chatRepo,
		profileRepo: profileRepo,
		location:    location,
	}
}

func (uc *ConversationUseCase) GetConversation(ctx context.Context, userID, peerID string) (*Conversation, error) {
	if peerID == "" || peerID == userID {
		return nil, errors.BadRequest("a different user is required", nil)
	}

	chats, err := uc.chatRepo.ListBetween(ctx, userID, peerID)
	if err != nil {
		logger.Error("GetConversation Error: chats between %s and %s: %v", userID, peerID, err)
		return nil, err
	}

	conv := &Conversation{
		ActiveChatID: ActiveChatID(chats),
		Chats:        chats,
		Entries:      []TimelineEntry{},
	}
	if uc.profileRepo != nil {
		if peer, err := uc.profileRepo.GetByID(ctx, peerID); err == nil {
			conv.Peer = peer
		}
	}

	partByChat := make(map[string]string, len(chats))
	var merged []*entity.Message
	for _, chat := range chats {
		partByChat[chat.ID] = chat.PartID
		messages, err := uc.chatRepo.ListAllMessages(ctx, chat.ID)
		if err != nil {
			logger.Error("GetConversation Error: messages of chat %s: %v", chat.ID, err)
			return nil, err
		}
		merged = MergeTimeline(merged, messages)
	}

	conv.Entries = BuildTimeline(merged, partByChat, uc.location)
	return conv, nil
}

// ActiveChatID picks the most recently updated chat as the target for new
// outgoing messages.
func ActiveChatID(chats []*entity.Chat) string {
	var active *entity.Chat
	for _, chat := range chats {
		if active == nil || chat.UpdatedAt.After(active.UpdatedAt) ||
			(chat.UpdatedAt.Equal(active.UpdatedAt) && chat.ID > active.ID) {
			active = chat
		}
	}
	if active == nil {
		return ""
	}
	return active.ID
}

// MergeTimeline merges incoming into existing, keeping one copy per message id
// (the incoming one wins) and ordering by creation time then id. Realtime
// appends and initial loads go through the same path.
func MergeTimeline(existing, incoming []*entity.Message) []*entity.Message {
	byID := make(map[string]int, len(existing)+len(incoming))
	merged := make([]*entity.Message, 0, len(existing)+len(incoming))

	for _, batch := range [][]*entity.Message{existing, incoming} {
		for _, m := range batch {
			if m == nil {
				continue
			}
			if i, ok := byID[m.ID]; ok {
				merged[i] = m
				continue
			}
			byID[m.ID] = len(merged)
			merged = append(merged, m)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].ID < merged[j].ID
		}
		return merged[i].CreatedAt.Before(merged[j].CreatedAt)
	})
	return merged
}

// BuildTimeline attaches the rendering decisions to an ordered message list.
func BuildTimeline(messages []*entity.Message, partByChat map[string]string, loc *time.Location) []TimelineEntry {
	entries := make([]TimelineEntry, 0, len(messages))
	var prev *entity.Message
	for _, m := range messages {
		partID := partByChat[m.ChatID]
		entry := TimelineEntry{Message: m, PartID: partID}
		if prev == nil {
			entry.ShowDateSeparator = true
			entry.ShowPartSeparator = partID != ""
		} else {
			entry.ShowPartSeparator = ShowPartSeparator(prev, m)
			entry.ShowDateSeparator = ShowDateSeparator(prev.CreatedAt, m.CreatedAt, loc)
		}
		entries = append(entries, entry)
		prev = m
	}
	return entries
}

func ShowPartSeparator(prev, cur *entity.Message) bool {
	return prev.ChatID != cur.ChatID
}

// ShowDateSeparator is true across a calendar-day boundary in loc or after a
// gap longer than SeparatorGap.
func ShowDateSeparator(prev, cur time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	py, pm, pd := prev.In(loc).Date()
	cy, cm, cd := cur.In(loc).Date()
	if py != cy || pm != cm || pd != cd {
		return true
	}
	return cur.Sub(prev) > SeparatorGap
}
