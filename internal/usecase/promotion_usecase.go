package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"partmatch/internal/domain/entity"
	"partmatch/internal/domain/repository"
	"partmatch/internal/domain/service"
	"partmatch/pkg/errors"
	"partmatch/pkg/logger"
)

type PromotionPrices struct {
	FeatureCents int64
	BoostCents   int64
	ComboCents   int64
	Duration     time.Duration
}

// Quote is the priced selection. Locked lists the options the user cannot
// toggle because combo implies them.
type Quote struct {
	Options    entity.PromotionOptions `json:"options"`
	Locked     []string                `json:"locked,omitempty"`
	TotalCents int64                   `json:"total_cents"`
}

type PurchaseResult struct {
	Purchase *entity.MonetizationPurchase `json:"purchase"`
	Part     *entity.CarPart              `json:"part"`
}

type PromotionUseCase struct {
	partRepo     repository.CarPartRepository
	purchaseRepo repository.PurchaseRepository
	gateway      service.PaymentGateway
	prices       PromotionPrices
	now          func() time.Time
}

func NewPromotionUseCase(
	partRepo repository.CarPartRepository,
	purchaseRepo repository.PurchaseRepository,
	gateway service.PaymentGateway,
	prices PromotionPrices,
) *PromotionUseCase {
	if prices.Duration <= 0 {
		prices.Duration = 7 * 24 * time.Hour
	}
	return &PromotionUseCase{
		partRepo:     partRepo,
		purchaseRepo: purchaseRepo,
		gateway:      gateway,
		prices:       prices,
		now:          time.Now,
	}
}

// Quote prices a selection. Combo checks and locks feature and boost and is
// charged at the combo price, never the sum of the two.
func (uc *PromotionUseCase) Quote(sel entity.PromotionOptions) Quote {
	if sel.Combo {
		return Quote{
			Options:    entity.PromotionOptions{Feature: true, Boost: true, Combo: true},
			Locked:     []string{"feature", "boost"},
			TotalCents: uc.prices.ComboCents,
		}
	}

	q := Quote{Options: sel}
	if sel.Feature {
		q.TotalCents += uc.prices.FeatureCents
	}
	if sel.Boost {
		q.TotalCents += uc.prices.BoostCents
	}
	return q
}

// Purchase charges the owner of partID for the selection and extends the
// listing's promotion windows.
func (uc *PromotionUseCase) Purchase(ctx context.Context, userID, partID string, sel entity.PromotionOptions) (*PurchaseResult, error) {
	quote := uc.Quote(sel)
	if quote.TotalCents <= 0 {
		return nil, errors.Validation("select at least one promotion")
	}

	part, err := uc.partRepo.GetByID(ctx, partID)
	if err != nil {
		return nil, err
	}
	if part.SellerID != userID {
		return nil, errors.Forbidden("You can only promote your own listings", nil)
	}

	purchase := &entity.MonetizationPurchase{
		ID:          uuid.New().String(),
		UserID:      userID,
		PartID:      partID,
		Options:     quote.Options,
		AmountCents: quote.TotalCents,
	}

	result, err := uc.gateway.Charge(ctx, service.PaymentRequest{
		OrderID:     purchase.ID,
		UserID:      userID,
		AmountCents: quote.TotalCents,
		Description: fmt.Sprintf("Promotion for listing %s", partID),
	})
	if err != nil {
		logger.Error("PurchasePromotion Error: charge for part %s: %v", partID, err)
		return nil, errors.New("PAYMENT_FAILED", "payment failed, please try again", 402, err)
	}
	purchase.Status = result.Status
	purchase.PaymentRef = result.Reference
	purchase.CreatedAt = uc.now()

	if err := uc.purchaseRepo.Create(ctx, purchase); err != nil {
		logger.Error("PurchasePromotion Error: record purchase %s: %v", purchase.ID, err)
		return nil, err
	}
	if purchase.Status != "paid" {
		return nil, errors.New("PAYMENT_FAILED", "payment was not completed", 402, nil)
	}

	now := uc.now()
	var featuredUntil, boostedUntil *time.Time
	if quote.Options.Feature {
		t := extend(part.FeaturedUntil, now, uc.prices.Duration)
		featuredUntil = &t
		part.FeaturedUntil = featuredUntil
	}
	if quote.Options.Boost {
		t := extend(part.BoostedUntil, now, uc.prices.Duration)
		boostedUntil = &t
		part.BoostedUntil = boostedUntil
	}

	if err := uc.partRepo.UpdatePromotion(ctx, partID, featuredUntil, boostedUntil); err != nil {
		logger.Error("PurchasePromotion Error: apply promotion to part %s after purchase %s: %v", partID, purchase.ID, err)
		return nil, err
	}
	return &PurchaseResult{Purchase: purchase, Part: part}, nil
}

// extend adds d to the current window when it is still running, else to now.
func extend(current *time.Time, now time.Time, d time.Duration) time.Time {
	if current != nil && current.After(now) {
		return current.Add(d)
	}
	return now.Add(d)
}
