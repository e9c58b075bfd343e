package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partmatch/internal/domain/entity"
)

type dispatchFixture struct {
	uc     *DispatchUseCase
	notifs *fakeNotificationRepo
	offers *fakeOfferRepo
	mailer *fakeMailer
}

func newDispatchFixture() *dispatchFixture {
	notifs := &fakeNotificationRepo{}
	profiles := newFakeProfileRepo(
		&entity.Profile{ID: "buyer", FullName: "Alice", Email: "alice@example.com"},
		&entity.Profile{ID: "s1", FullName: "Bob"},
	)
	parts := newFakePartRepo(
		&entity.CarPart{ID: "p1", SellerID: "s1", Make: "Toyota", Status: "active"},
		&entity.CarPart{ID: "p2", SellerID: "s1", Make: "toyota", Status: "active"},
		&entity.CarPart{ID: "p3", SellerID: "s2", Make: "TOYOTA", Status: "active"},
		&entity.CarPart{ID: "p4", SellerID: "s3", Make: "Toyota", Status: "sold"},
		&entity.CarPart{ID: "p5", SellerID: "s4", Make: "Honda", Status: "active"},
		&entity.CarPart{ID: "p6", SellerID: "buyer", Make: "Toyota", Status: "active"},
	)
	requests := newFakeRequestRepo(&entity.PartRequest{
		ID: "r1", BuyerID: "buyer", Title: "Alternator", Make: "Toyota", Model: "Corolla",
	})
	offers := newFakeOfferRepo(&entity.Offer{ID: "o1", RequestID: "r1", SellerID: "s1", Status: entity.OfferPending})
	mailer := &fakeMailer{}

	notifier := NewNotificationUseCase(notifs, profiles, &fakePush{}, &fakePublisher{}, nil)
	return &dispatchFixture{
		uc:     NewDispatchUseCase(notifier, requests, offers, parts, profiles, mailer),
		notifs: notifs,
		offers: offers,
		mailer: mailer,
	}
}

func TestDispatchRequest_Validate(t *testing.T) {
	assert.NoError(t, DispatchRequest{Type: DispatchNewRequest, RequestID: "r1"}.Validate())
	assert.NoError(t, DispatchRequest{Type: DispatchWelcome, UserID: "u1"}.Validate())

	for _, req := range []DispatchRequest{
		{Type: "bogus"},
		{Type: DispatchNewRequest},
		{Type: DispatchNewOffer, RequestID: "r1"},
		{Type: DispatchOfferAccepted},
		{Type: DispatchWelcome, OfferID: "o1"},
	} {
		assert.Equal(t, "VALIDATION_ERROR", appCode(req.Validate()), "%+v", req)
	}
}

func TestDispatch_NewRequestNotifiesMatchingSellers(t *testing.T) {
	f := newDispatchFixture()

	res, err := f.uc.Dispatch(context.Background(), "buyer", DispatchRequest{Type: DispatchNewRequest, RequestID: "r1"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Notified)

	for _, seller := range []string{"s1", "s2"} {
		got := f.notifs.forUser(seller)
		require.Len(t, got, 1, seller)
		assert.Equal(t, entity.NotificationNewRequest, got[0].Kind)
		assert.Equal(t, "A buyer is looking for Alternator (Toyota Corolla)", got[0].Message)
		assert.Equal(t, "r1", got[0].Request.RequestID)
	}
	assert.Empty(t, f.notifs.forUser("buyer"))
	assert.Empty(t, f.notifs.forUser("s3"))
	assert.Empty(t, f.notifs.forUser("s4"))
}

func TestDispatch_NewOffer(t *testing.T) {
	f := newDispatchFixture()

	_, err := f.uc.Dispatch(context.Background(), "buyer", DispatchRequest{Type: DispatchNewOffer, OfferID: "o1"})
	assert.Equal(t, "FORBIDDEN", appCode(err))

	res, err := f.uc.Dispatch(context.Background(), "s1", DispatchRequest{Type: DispatchNewOffer, OfferID: "o1"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Notified)

	got := f.notifs.forUser("buyer")
	require.Len(t, got, 1)
	assert.Equal(t, "You received a new offer for Alternator", got[0].Message)
	assert.Equal(t, &entity.OfferRef{OfferID: "o1", RequestID: "r1"}, got[0].Offer)
}

func TestDispatch_OfferAccepted(t *testing.T) {
	f := newDispatchFixture()

	_, err := f.uc.Dispatch(context.Background(), "s1", DispatchRequest{Type: DispatchOfferAccepted, OfferID: "o1"})
	assert.Equal(t, "FORBIDDEN", appCode(err))
	assert.Equal(t, entity.OfferPending, f.offers.offers["o1"].Status)

	_, err = f.uc.Dispatch(context.Background(), "buyer", DispatchRequest{Type: DispatchOfferAccepted, OfferID: "o1"})
	require.NoError(t, err)
	assert.Equal(t, entity.OfferAccepted, f.offers.offers["o1"].Status)

	got := f.notifs.forUser("s1")
	require.Len(t, got, 1)
	assert.Equal(t, entity.NotificationOfferAccepted, got[0].Kind)
	assert.Equal(t, "Your offer for Alternator was accepted", got[0].Message)
}

func TestDispatch_Welcome(t *testing.T) {
	f := newDispatchFixture()

	_, err := f.uc.Dispatch(context.Background(), "s1", DispatchRequest{Type: DispatchWelcome, UserID: "buyer"})
	assert.Equal(t, "FORBIDDEN", appCode(err))

	_, err = f.uc.Dispatch(context.Background(), "buyer", DispatchRequest{Type: DispatchWelcome, UserID: "buyer"})
	require.NoError(t, err)

	got := f.notifs.forUser("buyer")
	require.Len(t, got, 1)
	assert.Equal(t, "Welcome to PartMatch, Alice!", got[0].Message)
	assert.Nil(t, got[0].Chat)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "alice@example.com", f.mailer.sent[0].To)
}

func TestDispatch_WelcomeEmailFailureIgnored(t *testing.T) {
	f := newDispatchFixture()
	f.mailer.fail = map[string]error{"alice@example.com": fmt.Errorf("smtp down")}

	res, err := f.uc.Dispatch(context.Background(), "buyer", DispatchRequest{Type: DispatchWelcome, UserID: "buyer"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Notified)
}

func TestDispatch_StoreFailureSurfaces(t *testing.T) {
	f := newDispatchFixture()
	f.notifs.err = fmt.Errorf("firestore unavailable")

	_, err := f.uc.Dispatch(context.Background(), "s1", DispatchRequest{Type: DispatchNewOffer, OfferID: "o1"})
	assert.Error(t, err)
}
