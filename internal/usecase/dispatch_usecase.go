package usecase

import (
	"context"
	"fmt"

	"partmatch/internal/domain/entity"
	"partmatch/internal/domain/repository"
	"partmatch/internal/domain/service"
	"partmatch/pkg/errors"
	"partmatch/pkg/logger"
)

type DispatchType string

const (
	DispatchNewRequest    DispatchType = "new_request"
	DispatchNewOffer      DispatchType = "new_offer"
	DispatchOfferAccepted DispatchType = "offer_accepted"
	DispatchWelcome       DispatchType = "welcome"
)

// DispatchRequest carries the one id its Type needs.
type DispatchRequest struct {
	Type      DispatchType `json:"type" validate:"required,oneof=new_request new_offer offer_accepted welcome"`
	RequestID string       `json:"requestId,omitempty"`
	OfferID   string       `json:"offerId,omitempty"`
	UserID    string       `json:"userId,omitempty"`
}

func (r DispatchRequest) Validate() error {
	var id, field string
	switch r.Type {
	case DispatchNewRequest:
		id, field = r.RequestID, "requestId"
	case DispatchNewOffer, DispatchOfferAccepted:
		id, field = r.OfferID, "offerId"
	case DispatchWelcome:
		id, field = r.UserID, "userId"
	default:
		return errors.Validation(fmt.Sprintf("unknown notification type %q", r.Type))
	}
	if id == "" {
		return errors.Validation(fmt.Sprintf("%s is required for %s", field, r.Type))
	}
	return nil
}

type DispatchResult struct {
	Notified int `json:"notified"`
}

type DispatchUseCase struct {
	notifier    *NotificationUseCase
	requestRepo repository.PartRequestRepository
	offerRepo   repository.OfferRepository
	partRepo    repository.CarPartRepository
	profileRepo repository.ProfileRepository
	mailer      service.MailService
}

func NewDispatchUseCase(
	notifier *NotificationUseCase,
	requestRepo repository.PartRequestRepository,
	offerRepo repository.OfferRepository,
	partRepo repository.CarPartRepository,
	profileRepo repository.ProfileRepository,
	mailer service.MailService,
) *DispatchUseCase {
	return &DispatchUseCase{
		notifier:    notifier,
		requestRepo: requestRepo,
		offerRepo:   offerRepo,
		partRepo:    partRepo,
		profileRepo: profileRepo,
		mailer:      mailer,
	}
}

// Dispatch writes the notification rows for a marketplace event and pushes
// them. callerID must be the user who caused the event.
func (uc *DispatchUseCase) Dispatch(ctx context.Context, callerID string, req DispatchRequest) (*DispatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	switch req.Type {
	case DispatchNewRequest:
		return uc.newRequest(ctx, callerID, req.RequestID)
	case DispatchNewOffer:
		return uc.newOffer(ctx, callerID, req.OfferID)
	case DispatchOfferAccepted:
		return uc.offerAccepted(ctx, callerID, req.OfferID)
	default:
		return uc.welcome(ctx, callerID, req.UserID)
	}
}

func (uc *DispatchUseCase) newRequest(ctx context.Context, callerID, requestID string) (*DispatchResult, error) {
	request, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.BuyerID != callerID {
		return nil, errors.Forbidden("only the requester can announce a request", nil)
	}

	sellers, err := uc.partRepo.ListSellersByMake(ctx, request.Make)
	if err != nil {
		logger.Error("Dispatch Error: sellers for make %s: %v", request.Make, err)
		return nil, err
	}

	result := &DispatchResult{}
	for _, sellerID := range sellers {
		if sellerID == request.BuyerID {
			continue
		}
		_, err := uc.notifier.Notify(ctx, &entity.Notification{
			UserID:  sellerID,
			Kind:    entity.NotificationNewRequest,
			Message: fmt.Sprintf("A buyer is looking for %s (%s %s)", request.Title, request.Make, request.Model),
			Request: &entity.RequestRef{RequestID: request.ID},
		}, "New part request")
		if err != nil {
			logger.Warn("Dispatch: new_request notification for seller %s failed: %v", sellerID, err)
			continue
		}
		result.Notified++
	}
	return result, nil
}

func (uc *DispatchUseCase) newOffer(ctx context.Context, callerID, offerID string) (*DispatchResult, error) {
	offer, err := uc.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.SellerID != callerID {
		return nil, errors.Forbidden("only the seller can announce an offer", nil)
	}
	request, err := uc.requestRepo.GetByID(ctx, offer.RequestID)
	if err != nil {
		return nil, err
	}

	if _, err := uc.notifier.Notify(ctx, &entity.Notification{
		UserID:  request.BuyerID,
		Kind:    entity.NotificationNewOffer,
		Message: fmt.Sprintf("You received a new offer for %s", request.Title),
		Offer:   &entity.OfferRef{OfferID: offer.ID, RequestID: request.ID},
	}, "New offer"); err != nil {
		return nil, err
	}
	return &DispatchResult{Notified: 1}, nil
}

func (uc *DispatchUseCase) offerAccepted(ctx context.Context, callerID, offerID string) (*DispatchResult, error) {
	offer, err := uc.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	request, err := uc.requestRepo.GetByID(ctx, offer.RequestID)
	if err != nil {
		return nil, err
	}
	if request.BuyerID != callerID {
		return nil, errors.Forbidden("only the requester can accept an offer", nil)
	}

	if offer.Status != entity.OfferAccepted {
		if err := uc.offerRepo.UpdateStatus(ctx, offer.ID, entity.OfferAccepted); err != nil {
			logger.Error("Dispatch Error: accept offer %s: %v", offer.ID, err)
			return nil, err
		}
	}

	if _, err := uc.notifier.Notify(ctx, &entity.Notification{
		UserID:  offer.SellerID,
		Kind:    entity.NotificationOfferAccepted,
		Message: fmt.Sprintf("Your offer for %s was accepted", request.Title),
		Offer:   &entity.OfferRef{OfferID: offer.ID, RequestID: request.ID},
	}, "Offer accepted"); err != nil {
		return nil, err
	}
	return &DispatchResult{Notified: 1}, nil
}

func (uc *DispatchUseCase) welcome(ctx context.Context, callerID, userID string) (*DispatchResult, error) {
	if userID != callerID {
		return nil, errors.Forbidden("you can only welcome yourself", nil)
	}
	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := uc.notifier.Notify(ctx, &entity.Notification{
		UserID:  userID,
		Kind:    entity.NotificationWelcome,
		Message: fmt.Sprintf("Welcome to PartMatch, %s!", profile.DisplayName()),
	}, "Welcome"); err != nil {
		return nil, err
	}

	if uc.mailer != nil && profile.Email != "" {
		if err := uc.mailer.Send(ctx, service.Email{
			To:      profile.Email,
			Subject: "Welcome to PartMatch",
			Text: fmt.Sprintf("Hi %s,\n\nYour PartMatch account is ready. Post a request for the part you need "+
				"or list the parts you sell.\n\nThe PartMatch team", profile.DisplayName()),
		}); err != nil {
			logger.BestEffort("send welcome email", err, map[string]string{"user_id": userID})
		}
	}
	return &DispatchResult{Notified: 1}, nil
}
