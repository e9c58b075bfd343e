package usecase

import (
	"context"
	"fmt"
	"time"

	"partmatch/internal/domain/entity"
	"partmatch/internal/domain/repository"
)

type ListingView struct {
	*entity.CarPart
	TimeRemaining string `json:"time_remaining"`
	Featured      bool   `json:"featured"`
	Boosted       bool   `json:"boosted"`
}

type ListingUseCase struct {
	partRepo repository.CarPartRepository
	now      func() time.Time
}

func NewListingUseCase(partRepo repository.CarPartRepository) *ListingUseCase {
	return &ListingUseCase{
		partRepo: partRepo,
		now:      time.Now,
	}
}

func (uc *ListingUseCase) GetListing(ctx context.Context, id string) (*ListingView, error) {
	part, err := uc.partRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	return &ListingView{
		CarPart:       part,
		TimeRemaining: FormatTimeRemaining(part.ExpiresAt, now),
		Featured:      activeUntil(part.FeaturedUntil, now),
		Boosted:       activeUntil(part.BoostedUntil, now),
	}, nil
}

// FormatTimeRemaining renders the time until end in its largest whole unit.
func FormatTimeRemaining(end, now time.Time) string {
	d := end.Sub(now)
	if d <= 0 {
		return "Expired"
	}

	if days := int(d / (24 * time.Hour)); days > 0 {
		return plural(days, "day")
	}
	if hours := int(d / time.Hour); hours > 0 {
		return plural(hours, "hour")
	}
	if minutes := int(d / time.Minute); minutes > 0 {
		return plural(minutes, "minute")
	}
	return "Less than a minute left"
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s left", unit)
	}
	return fmt.Sprintf("%d %ss left", n, unit)
}

func activeUntil(until *time.Time, now time.Time) bool {
	return until != nil && until.After(now)
}
