package repository

import (
	"context"
	"strings"
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
)

type firestoreCarPartRepository struct {
	client *firestore.Client
}

func NewFirestoreCarPartRepository(client *firestore.Client) repository.CarPartRepository {
	return &firestoreCarPartRepository{
		client: client,
	}
}

func (r *firestoreCarPartRepository) GetByID(ctx context.Context, id string) (*entity.CarPart, error) {
	doc, err := r.client.Collection("car_parts").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Car part", err)
		}
		return nil, errors.Internal("Failed to get car part", err)
	}

	var part entity.CarPart
	if err := doc.DataTo(&part); err != nil {
		return nil, errors.Internal("Failed to parse car part", err)
	}
	part.ID = doc.Ref.ID
	return &part, nil
}

func (r *firestoreCarPartRepository) ListBySeller(ctx context.Context, sellerID string) ([]*entity.CarPart, error) {
	iter := r.client.Collection("car_parts").Where("sellerId", "==", sellerID).Documents(ctx)
	return collectParts(iter)
}

func (r *firestoreCarPartRepository) ListSellersByMake(ctx context.Context, carMake string) ([]string, error) {
	iter := r.client.Collection("car_parts").Where("status", "==", "active").Documents(ctx)
	parts, err := collectParts(iter)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var sellers []string
	for _, part := range parts {
		if !strings.EqualFold(strings.TrimSpace(part.Make), strings.TrimSpace(carMake)) || seen[part.SellerID] {
			continue
		}
		seen[part.SellerID] = true
		sellers = append(sellers, part.SellerID)
	}
	return sellers, nil
}

func (r *firestoreCarPartRepository) UpdatePromotion(ctx context.Context, id string, featuredUntil, boostedUntil *time.Time) error {
	updates := []firestore.Update{{Path: "updatedAt", Value: time.Now()}}
	if featuredUntil != nil {
		updates = append(updates, firestore.Update{Path: "featuredUntil", Value: *featuredUntil})
	}
	if boostedUntil != nil {
		updates = append(updates, firestore.Update{Path: "boostedUntil", Value: *boostedUntil})
	}

	if _, err := r.client.Collection("car_parts").Doc(id).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Car part", err)
		}
		return errors.Internal("Failed to update promotion", err)
	}
	return nil
}

func collectParts(iter *firestore.DocumentIterator) ([]*entity.CarPart, error) {
	defer iter.Stop()

	var parts []*entity.CarPart
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to list car parts", err)
		}
		var part entity.CarPart
		if err := doc.DataTo(&part); err != nil {
			logger.Warn("Error parsing car part %s: %v", doc.Ref.ID, err)
			continue
		}
		part.ID = doc.Ref.ID
		parts = append(parts, &part)
	}
	return parts, nil
}

type firestorePartRequestRepository struct {
	client *firestore.Client
}

func NewFirestorePartRequestRepository(client *firestore.Client) repository.PartRequestRepository {
	return &firestorePartRequestRepository{
		client: client,
	}
}

func (r *firestorePartRequestRepository) GetByID(ctx context.Context, id string) (*entity.PartRequest, error) {
	doc, err := r.client.Collection("part_requests").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Part request", err)
		}
		return nil, errors.Internal("Failed to get part request", err)
	}

	var req entity.PartRequest
	if err := doc.DataTo(&req); err != nil {
		return nil, errors.Internal("Failed to parse part request", err)
	}
	req.ID = doc.Ref.ID
	return &req, nil
}

func (r *firestorePartRequestRepository) ListByBuyer(ctx context.Context, buyerID string) ([]*entity.PartRequest, error) {
	iter := r.client.Collection("part_requests").Where("buyerId", "==", buyerID).Documents(ctx)
	defer iter.Stop()

	var requests []*entity.PartRequest
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to list part requests", err)
		}
		var req entity.PartRequest
		if err := doc.DataTo(&req); err != nil {
			logger.Warn("Error parsing part request %s: %v", doc.Ref.ID, err)
			continue
		}
		req.ID = doc.Ref.ID
		requests = append(requests, &req)
	}
	return requests, nil
}

type firestoreOfferRepository struct {
	client *firestore.Client
}

func NewFirestoreOfferRepository(client *firestore.Client) repository.OfferRepository {
	return &firestoreOfferRepository{
		client: client,
	}
}

func (r *firestoreOfferRepository) GetByID(ctx context.Context, id string) (*entity.Offer, error) {
	doc, err := r.client.Collection("offers").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Offer", err)
		}
		return nil, errors.Internal("Failed to get offer", err)
	}

	var offer entity.Offer
	if err := doc.DataTo(&offer); err != nil {
		return nil, errors.Internal("Failed to parse offer", err)
	}
	offer.ID = doc.Ref.ID
	return &offer, nil
}

func (r *firestoreOfferRepository) UpdateStatus(ctx context.Context, id, offerStatus string) error {
	_, err := r.client.Collection("offers").Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: offerStatus},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Offer", err)
		}
		return errors.Internal("Failed to update offer", err)
	}
	return nil
}

func (r *firestoreOfferRepository) ListBySeller(ctx context.Context, sellerID string, since time.Time) ([]*entity.Offer, error) {
	iter := r.client.Collection("offers").
		Where("sellerId", "==", sellerID).
		Where("createdAt", ">=", since).
		Documents(ctx)
	return collectOffers(iter)
}

// Firestore caps "in" filters at 30 values.
const maxInFilter = 30

func (r *firestoreOfferRepository) ListByRequestIDs(ctx context.Context, requestIDs []string, since time.Time) ([]*entity.Offer, error) {
	var offers []*entity.Offer
	for start := 0; start < len(requestIDs); start += maxInFilter {
		end := start + maxInFilter
		if end > len(requestIDs) {
			end = len(requestIDs)
		}
		iter := r.client.Collection("offers").
			Where("requestId", "in", requestIDs[start:end]).
			Where("createdAt", ">=", since).
			Documents(ctx)
		batch, err := collectOffers(iter)
		if err != nil {
			return nil, err
		}
		offers = append(offers, batch...)
	}
	return offers, nil
}

func collectOffers(iter *firestore.DocumentIterator) ([]*entity.Offer, error) {
	defer iter.Stop()

	var offers []*entity.Offer
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to list offers", err)
		}
		var offer entity.Offer
		if err := doc.DataTo(&offer); err != nil {
			logger.Warn("Error parsing offer %s: %v", doc.Ref.ID, err)
			continue
		}
		offer.ID = doc.Ref.ID
		offers = append(offers, &offer)
	}
	return offers, nil
}

type firestorePurchaseRepository struct {
	client *firestore.Client
}

func NewFirestorePurchaseRepository(client *firestore.Client) repository.PurchaseRepository {
	return &firestorePurchaseRepository{
		client: client,
	}
}

func (r *firestorePurchaseRepository) Create(ctx context.Context, p *entity.MonetizationPurchase) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	if _, err := r.client.Collection("monetization_purchases").Doc(p.ID).Set(ctx, p); err != nil {
		return errors.Internal("Failed to record purchase", err)
	}
	return nil
}
