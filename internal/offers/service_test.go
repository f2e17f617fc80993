package offers

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"domainmarket/marketplace-backend/internal/listings"
	"domainmarket/marketplace-backend/internal/notifications"
	"domainmarket/marketplace-backend/pkg/errs"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, offer *Offer) error {
	args := m.Called(ctx, offer)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Offer), args.Error(1)
}

func (m *MockRepository) ListByListing(ctx context.Context, domainID uuid.UUID) ([]Offer, error) {
	args := m.Called(ctx, domainID)
	return args.Get(0).([]Offer), args.Error(1)
}

func (m *MockRepository) TransitionFromPending(ctx context.Context, id uuid.UUID, newStatus OfferStatus) (bool, error) {
	args := m.Called(ctx, id, newStatus)
	return args.Bool(0), args.Error(1)
}

// MockListingStore is a mock implementation of the ListingStore interface
type MockListingStore struct {
	mock.Mock
}

func (m *MockListingStore) GetByID(ctx context.Context, id uuid.UUID) (*listings.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listings.Listing), args.Error(1)
}

// MockDispatcher records dispatched events
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, event notifications.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func testListing(ownerID uuid.UUID) *listings.Listing {
	return &listings.Listing{
		ID:         uuid.New(),
		DomainName: "example.com",
		OwnerID:    ownerID,
		OwnerEmail: "seller@example.com",
		Currency:   "USD",
	}
}

func TestSubmitNotifiesBothSides(t *testing.T) {
	mockRepo := new(MockRepository)
	mockListings := new(MockListingStore)
	mockDispatcher := new(MockDispatcher)
	service := NewService(mockRepo, mockListings, mockDispatcher, nil)

	ctx := context.Background()
	sellerID := uuid.New()
	buyerID := uuid.New()
	listing := testListing(sellerID)

	mockListings.On("GetByID", ctx, listing.ID).Return(listing, nil)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*offers.Offer")).Return(nil)
	mockDispatcher.On("Dispatch", ctx, mock.AnythingOfType("notifications.Event")).Return(nil)

	offer, err := service.Submit(ctx, listing.ID, buyerID, "buyer@example.com", SubmitRequest{Amount: 2500})

	assert.NoError(t, err)
	assert.Equal(t, StatusPending, offer.Status)
	assert.Equal(t, sellerID, offer.SellerID)
	assert.Equal(t, "USD", offer.Currency) // inherited from the listing

	mockDispatcher.AssertNumberOfCalls(t, "Dispatch", 2)
	first := mockDispatcher.Calls[0].Arguments.Get(1).(notifications.Event)
	second := mockDispatcher.Calls[1].Arguments.Get(1).(notifications.Event)
	assert.Equal(t, "offer_received", first.Type)
	assert.Equal(t, sellerID, first.UserID)
	assert.Equal(t, "offer_submitted", second.Type)
	assert.Equal(t, buyerID, second.UserID)
}

func TestSubmitOwnListingRejected(t *testing.T) {
	mockRepo := new(MockRepository)
	mockListings := new(MockListingStore)
	service := NewService(mockRepo, mockListings, new(MockDispatcher), nil)

	ctx := context.Background()
	sellerID := uuid.New()
	listing := testListing(sellerID)
	mockListings.On("GetByID", ctx, listing.ID).Return(listing, nil)

	_, err := service.Submit(ctx, listing.ID, sellerID, "seller@example.com", SubmitRequest{Amount: 100})

	assert.ErrorIs(t, err, errs.ErrUnauthorized)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitDispatchFailureDoesNotFailOffer(t *testing.T) {
	mockRepo := new(MockRepository)
	mockListings := new(MockListingStore)
	mockDispatcher := new(MockDispatcher)
	service := NewService(mockRepo, mockListings, mockDispatcher, nil)

	ctx := context.Background()
	listing := testListing(uuid.New())

	mockListings.On("GetByID", ctx, listing.ID).Return(listing, nil)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*offers.Offer")).Return(nil)
	mockDispatcher.On("Dispatch", ctx, mock.AnythingOfType("notifications.Event")).
		Return(errors.New("store down"))

	offer, err := service.Submit(ctx, listing.ID, uuid.New(), "buyer@example.com", SubmitRequest{Amount: 100})

	assert.NoError(t, err)
	assert.NotNil(t, offer)
}

func TestAcceptNotifiesBuyer(t *testing.T) {
	mockRepo := new(MockRepository)
	mockListings := new(MockListingStore)
	mockDispatcher := new(MockDispatcher)
	service := NewService(mockRepo, mockListings, mockDispatcher, nil)

	ctx := context.Background()
	sellerID := uuid.New()
	buyerID := uuid.New()
	listing := testListing(sellerID)
	offer := &Offer{
		ID:         uuid.New(),
		DomainID:   listing.ID,
		BuyerID:    buyerID,
		BuyerEmail: "buyer@example.com",
		SellerID:   sellerID,
		Amount:     2500,
		Currency:   "USD",
		Status:     StatusPending,
	}

	mockRepo.On("GetByID", ctx, offer.ID).Return(offer, nil)
	mockRepo.On("TransitionFromPending", ctx, offer.ID, StatusAccepted).Return(true, nil)
	mockListings.On("GetByID", ctx, listing.ID).Return(listing, nil)
	mockDispatcher.On("Dispatch", ctx, mock.AnythingOfType("notifications.Event")).Return(nil)

	err := service.Accept(ctx, offer.ID, sellerID)

	assert.NoError(t, err)
	mockDispatcher.AssertNumberOfCalls(t, "Dispatch", 1)
	event := mockDispatcher.Calls[0].Arguments.Get(1).(notifications.Event)
	assert.Equal(t, "offer_accepted", event.Type)
	assert.Equal(t, buyerID, event.UserID)
}

func TestAcceptNonSellerRejected(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, new(MockListingStore), new(MockDispatcher), nil)

	ctx := context.Background()
	offer := &Offer{ID: uuid.New(), SellerID: uuid.New(), Status: StatusPending}
	mockRepo.On("GetByID", ctx, offer.ID).Return(offer, nil)

	err := service.Accept(ctx, offer.ID, uuid.New())

	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestAcceptAlreadyAcceptedIsNoOp(t *testing.T) {
	mockRepo := new(MockRepository)
	mockDispatcher := new(MockDispatcher)
	service := NewService(mockRepo, new(MockListingStore), mockDispatcher, nil)

	ctx := context.Background()
	sellerID := uuid.New()
	offer := &Offer{ID: uuid.New(), SellerID: sellerID, Status: StatusAccepted}
	mockRepo.On("GetByID", ctx, offer.ID).Return(offer, nil)

	err := service.Accept(ctx, offer.ID, sellerID)

	assert.NoError(t, err)
	mockRepo.AssertNotCalled(t, "TransitionFromPending", mock.Anything, mock.Anything, mock.Anything)
	mockDispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestRejectRejectedOfferConflicts(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, new(MockListingStore), new(MockDispatcher), nil)

	ctx := context.Background()
	sellerID := uuid.New()
	offer := &Offer{ID: uuid.New(), SellerID: sellerID, Status: StatusWithdrawn}
	mockRepo.On("GetByID", ctx, offer.ID).Return(offer, nil)

	err := service.Reject(ctx, offer.ID, sellerID)

	assert.ErrorIs(t, err, errs.ErrTerminalState)
}

func TestAcceptLostRaceIsIdempotent(t *testing.T) {
	mockRepo := new(MockRepository)
	mockDispatcher := new(MockDispatcher)
	service := NewService(mockRepo, new(MockListingStore), mockDispatcher, nil)

	ctx := context.Background()
	sellerID := uuid.New()
	pending := &Offer{ID: uuid.New(), DomainID: uuid.New(), SellerID: sellerID, Status: StatusPending}
	accepted := &Offer{ID: pending.ID, DomainID: pending.DomainID, SellerID: sellerID, Status: StatusAccepted}

	mockRepo.On("GetByID", ctx, pending.ID).Return(pending, nil).Once()
	mockRepo.On("TransitionFromPending", ctx, pending.ID, StatusAccepted).Return(false, nil)
	mockRepo.On("GetByID", ctx, pending.ID).Return(accepted, nil).Once()

	err := service.Accept(ctx, pending.ID, sellerID)

	assert.NoError(t, err)
	mockDispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestListForListingOwnerOnly(t *testing.T) {
	mockRepo := new(MockRepository)
	mockListings := new(MockListingStore)
	service := NewService(mockRepo, mockListings, new(MockDispatcher), nil)

	ctx := context.Background()
	ownerID := uuid.New()
	listing := testListing(ownerID)
	mockListings.On("GetByID", ctx, listing.ID).Return(listing, nil)

	_, err := service.ListForListing(ctx, listing.ID, uuid.New(), false)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	mockRepo.On("ListByListing", ctx, listing.ID).Return([]Offer{}, nil)
	result, err := service.ListForListing(ctx, listing.ID, ownerID, false)
	assert.NoError(t, err)
	assert.Empty(t, result)
}
