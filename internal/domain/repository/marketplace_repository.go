package repository

import (
	"context"
	"time"

	"partmatch/internal/domain/entity"
)

type CarPartRepository interface {
	GetByID(ctx context.Context, id string) (*entity.CarPart, error)
	ListBySeller(ctx context.Context, sellerID string) ([]*entity.CarPart, error)
	// ListSellersByMake returns distinct seller ids with an active listing for make.
	ListSellersByMake(ctx context.Context, carMake string) ([]string, error)
	UpdatePromotion(ctx context.Context, id string, featuredUntil, boostedUntil *time.Time) error
}

type PartRequestRepository interface {
	GetByID(ctx context.Context, id string) (*entity.PartRequest, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]*entity.PartRequest, error)
}

type OfferRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Offer, error)
	UpdateStatus(ctx context.Context, id, status string) error
	ListBySeller(ctx context.Context, sellerID string, since time.Time) ([]*entity.Offer, error)
	ListByRequestIDs(ctx context.Context, requestIDs []string, since time.Time) ([]*entity.Offer, error)
}

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *entity.MonetizationPurchase) error
}
