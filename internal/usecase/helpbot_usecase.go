package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"partmatch/internal/domain/entity"
	"partmatch/internal/domain/repository"
	"partmatch/internal/domain/service"
	"partmatch/internal/infrastructure/ratelimit"
	"partmatch/pkg/errors"
	"partmatch/pkg/logger"
)

const (
	escalationToken = "[ESCALATE]"
	maxHistoryTurns = 10
)

const helpBotPrompt = `You are the PartMatch help assistant. PartMatch is a marketplace where buyers post requests for car parts or browse listings, and sellers list parts and send offers. Buyers and sellers chat about a part and agree on a deal; sellers can pay to feature or boost a listing.
Answer briefly and concretely. Never invent order details or prices.
If the user reports fraud, asks for a refund, or needs a human, reply helpfully and append ` + escalationToken + ` on its own line.`

// escalationKeywords match whole words only, so "reagent" or "humane" do not
// escalate.
var escalationKeywords = regexp.MustCompile(`(?i)\b(?:refund|fraud|scam|chargeback|human|agent)\b`)

type HelpBotRequest struct {
	Message             string             `json:"message" validate:"required,max=2000"`
	UserID              string             `json:"userId"`
	ConversationHistory []service.ChatTurn `json:"conversationHistory" validate:"max=50,dive"`
}

type HelpBotResponse struct {
	Response  string `json:"response"`
	Escalated bool   `json:"escalated"`
}

type HelpBotUseCase struct {
	llm         service.CompletionService
	adminRepo   repository.AdminNotificationRepository
	rateLimiter *ratelimit.RateLimiter
	recorder    Recorder
}

func NewHelpBotUseCase(
	llm service.CompletionService,
	adminRepo repository.AdminNotificationRepository,
	rateLimiter *ratelimit.RateLimiter,
	recorder Recorder,
) *HelpBotUseCase {
	if rateLimiter == nil {
		rateLimiter = ratelimit.NewRateLimiter()
	}
	return &HelpBotUseCase{
		llm:         llm,
		adminRepo:   adminRepo,
		rateLimiter: rateLimiter,
		recorder:    recorderOrNop(recorder),
	}
}

// Ask answers one help question. userID is the authenticated caller; the id in
// the request body is ignored.
func (uc *HelpBotUseCase) Ask(ctx context.Context, userID string, req HelpBotRequest) (*HelpBotResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, errors.Validation("message is required")
	}

	allowed, wait := uc.rateLimiter.Allow(userID, ratelimit.ActionHelpBot)
	if !allowed {
		return nil, errors.TooManyRequests("Too many questions, please wait", wait)
	}

	reply, err := uc.llm.Complete(ctx, BuildHelpBotTurns(req.ConversationHistory, message))
	if err != nil {
		logger.Error("HelpBot Error: completion for user %s: %v", userID, err)
		return nil, errors.Internal("The assistant is unavailable right now, please try again", err)
	}

	escalated := strings.Contains(reply, escalationToken) || MentionsEscalation(message)
	reply = strings.TrimSpace(strings.ReplaceAll(reply, escalationToken, ""))

	if escalated {
		uc.recorder.ObserveEscalation()
		uc.escalate(ctx, userID, message)
	}
	return &HelpBotResponse{Response: reply, Escalated: escalated}, nil
}

// BuildHelpBotTurns prepends the system prompt and keeps the most recent turns
// of history. Turns with unknown roles or no content are dropped.
func BuildHelpBotTurns(history []service.ChatTurn, message string) []service.ChatTurn {
	var kept []service.ChatTurn
	for _, t := range history {
		if (t.Role != "user" && t.Role != "assistant") || strings.TrimSpace(t.Content) == "" {
			continue
		}
		kept = append(kept, t)
	}
	if len(kept) > maxHistoryTurns {
		kept = kept[len(kept)-maxHistoryTurns:]
	}

	turns := make([]service.ChatTurn, 0, len(kept)+2)
	turns = append(turns, service.ChatTurn{Role: "system", Content: helpBotPrompt})
	turns = append(turns, kept...)
	turns = append(turns, service.ChatTurn{Role: "user", Content: message})
	return turns
}

func MentionsEscalation(message string) bool {
	return escalationKeywords.MatchString(message)
}

func (uc *HelpBotUseCase) escalate(ctx context.Context, userID, message string) {
	if uc.adminRepo == nil {
		return
	}
	if err := uc.adminRepo.Create(ctx, &entity.AdminNotification{
		Kind:    "helpbot_escalation",
		Message: fmt.Sprintf("Help bot escalation: %s", Preview(message, 200)),
		UserID:  userID,
	}); err != nil {
		logger.BestEffort("record escalation", err, map[string]string{"user_id": userID})
	}
}
