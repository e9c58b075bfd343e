package usecase

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"partmatch/internal/domain/entity"
	"partmatch/internal/domain/repository"
	"partmatch/internal/domain/service"
	"partmatch/pkg/errors"
	"partmatch/pkg/logger"
)

const insightsWindow = 7 * 24 * time.Hour

type WeeklyStats struct {
	NewListings      int `json:"new_listings"`
	ActiveListings   int `json:"active_listings"`
	RequestsPosted   int `json:"requests_posted"`
	OffersMade       int `json:"offers_made"`
	OffersAccepted   int `json:"offers_accepted"`
	OffersReceived   int `json:"offers_received"`
	MessagesReceived int `json:"messages_received"`
	UnreadMessages   int `json:"unread_messages"`
}

type InsightsReport struct {
	UserID  string      `json:"user_id"`
	From    time.Time   `json:"from"`
	To      time.Time   `json:"to"`
	Stats   WeeklyStats `json:"stats"`
	Summary string      `json:"summary"`
}

type InsightsRunSummary struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

type InsightsUseCase struct {
	profileRepo repository.ProfileRepository
	partRepo    repository.CarPartRepository
	requestRepo repository.PartRequestRepository
	offerRepo   repository.OfferRepository
	chatRepo    repository.ChatRepository
	llm         service.CompletionService
	mailer      service.MailService
	now         func() time.Time
}

func NewInsightsUseCase(
	profileRepo repository.ProfileRepository,
	partRepo repository.CarPartRepository,
	requestRepo repository.PartRequestRepository,
	offerRepo repository.OfferRepository,
	chatRepo repository.ChatRepository,
	llm service.CompletionService,
	mailer service.MailService,
) *InsightsUseCase {
	return &InsightsUseCase{
		profileRepo: profileRepo,
		partRepo:    partRepo,
		requestRepo: requestRepo,
		offerRepo:   offerRepo,
		chatRepo:    chatRepo,
		llm:         llm,
		mailer:      mailer,
		now:         time.Now,
	}
}

// RunWeekly sends a report to every subscriber, one at a time. A failure for
// one user is logged and the run continues.
func (uc *InsightsUseCase) RunWeekly(ctx context.Context) (*InsightsRunSummary, error) {
	profiles, err := uc.profileRepo.ListInsightsSubscribers(ctx)
	if err != nil {
		logger.Error("WeeklyInsights Error: list subscribers: %v", err)
		return nil, err
	}

	summary := &InsightsRunSummary{}
	now := uc.now()
	for _, profile := range profiles {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if strings.TrimSpace(profile.Email) == "" {
			summary.Skipped++
			continue
		}
		if _, err := uc.GenerateForUser(ctx, profile, now); err != nil {
			logger.Warn("WeeklyInsights: user %s failed: %v", profile.ID, err)
			summary.Failed++
			continue
		}
		summary.Sent++
	}

	logger.Info("WeeklyInsights: sent %d, failed %d, skipped %d", summary.Sent, summary.Failed, summary.Skipped)
	return summary, nil
}

// GenerateForUser aggregates the week ending at now, summarises it and emails
// the result.
func (uc *InsightsUseCase) GenerateForUser(ctx context.Context, profile *entity.Profile, now time.Time) (*InsightsReport, error) {
	if profile.Email == "" {
		return nil, errors.BadRequest("profile has no email address", nil)
	}

	since := now.Add(-insightsWindow)
	stats, err := uc.collect(ctx, profile.ID, since)
	if err != nil {
		return nil, err
	}

	report := &InsightsReport{
		UserID: profile.ID,
		From:   since,
		To:     now,
		Stats:  *stats,
	}
	report.Summary = uc.summarise(ctx, profile, stats)

	if err := uc.mailer.Send(ctx, service.Email{
		To:      profile.Email,
		Subject: "Your PartMatch week in review",
		Text:    report.Summary + "\n\n" + RenderStats(stats),
		HTML:    renderInsightsHTML(profile, report),
	}); err != nil {
		return nil, fmt.Errorf("send insights email: %w", err)
	}
	return report, nil
}

func (uc *InsightsUseCase) collect(ctx context.Context, userID string, since time.Time) (*WeeklyStats, error) {
	stats := &WeeklyStats{}

	parts, err := uc.partRepo.ListBySeller(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, p := range parts {
		if !p.CreatedAt.Before(since) {
			stats.NewListings++
		}
		if p.Status == "active" {
			stats.ActiveListings++
		}
	}

	requests, err := uc.requestRepo.ListByBuyer(ctx, userID)
	if err != nil {
		return nil, err
	}
	requestIDs := make([]string, 0, len(requests))
	for _, r := range requests {
		requestIDs = append(requestIDs, r.ID)
		if !r.CreatedAt.Before(since) {
			stats.RequestsPosted++
		}
	}

	made, err := uc.offerRepo.ListBySeller(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	stats.OffersMade = len(made)
	for _, o := range made {
		if o.Status == entity.OfferAccepted {
			stats.OffersAccepted++
		}
	}

	if len(requestIDs) > 0 {
		received, err := uc.offerRepo.ListByRequestIDs(ctx, requestIDs, since)
		if err != nil {
			return nil, err
		}
		stats.OffersReceived = len(received)
	}

	chats, err := uc.chatRepo.ListAllByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.UnreadMessages = SumUnread(userID, chats)
	for _, chat := range chats {
		if chat.LastMessageAt.Before(since) {
			continue
		}
		n, err := uc.chatRepo.CountMessagesSince(ctx, chat.ID, userID, since)
		if err != nil {
			return nil, err
		}
		stats.MessagesReceived += n
	}
	return stats, nil
}

func (uc *InsightsUseCase) summarise(ctx context.Context, profile *entity.Profile, stats *WeeklyStats) string {
	fallback := fmt.Sprintf("Hi %s, here is how your week on PartMatch went.", profile.DisplayName())
	if uc.llm == nil {
		return fallback
	}

	reply, err := uc.llm.Complete(ctx, []service.ChatTurn{
		{Role: "system", Content: "You write short, friendly weekly activity summaries for users of PartMatch, a car-parts marketplace. " +
			"Use at most four sentences, mention the most notable numbers and suggest one next step. Do not invent numbers."},
		{Role: "user", Content: fmt.Sprintf("User: %s\n%s", profile.DisplayName(), RenderStats(stats))},
	})
	if err != nil || strings.TrimSpace(reply) == "" {
		logger.BestEffort("summarise weekly insights", err, map[string]string{"user_id": profile.ID})
		return fallback
	}
	return strings.TrimSpace(reply)
}

// RenderStats is the plain-text table of the week's numbers.
func RenderStats(s *WeeklyStats) string {
	lines := []string{
		fmt.Sprintf("New listings: %d", s.NewListings),
		fmt.Sprintf("Active listings: %d", s.ActiveListings),
		fmt.Sprintf("Requests posted: %d", s.RequestsPosted),
		fmt.Sprintf("Offers made: %d (%d accepted)", s.OffersMade, s.OffersAccepted),
		fmt.Sprintf("Offers received: %d", s.OffersReceived),
		fmt.Sprintf("Messages received: %d (%d unread)", s.MessagesReceived, s.UnreadMessages),
	}
	return strings.Join(lines, "\n")
}

func renderInsightsHTML(profile *entity.Profile, report *InsightsReport) string {
	var b strings.Builder
	b.WriteString("<h2>Your week on PartMatch</h2>")
	b.WriteString("<p>" + html.EscapeString(report.Summary) + "</p><ul>")
	for _, line := range strings.Split(RenderStats(&report.Stats), "\n") {
		b.WriteString("<li>" + html.EscapeString(line) + "</li>")
	}
	b.WriteString("</ul>")
	b.WriteString(fmt.Sprintf("<p style=\"color:#888\">Sent to %s. Turn off weekly insights in your profile settings.</p>",
		html.EscapeString(profile.Email)))
	return b.String()
}
