package offers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"domainmarket/marketplace-backend/internal/listings"
	"domainmarket/marketplace-backend/internal/notifications"
	"domainmarket/marketplace-backend/pkg/errs"
)

// ListingStore is the slice of the listings service the offer flow needs.
type ListingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*listings.Listing, error)
}

// Dispatcher sends business events to the notification pipeline.
type Dispatcher interface {
	Dispatch(ctx context.Context, event notifications.Event) error
}

// Service implements the offer lifecycle. Every transition feeds the
// notification dispatcher; dispatch failures are logged, never surfaced,
// because the offer write is the primary action.
type Service struct {
	repo       Repository
	listings   ListingStore
	dispatcher Dispatcher
	logger     *zap.Logger
}

// NewService creates the offers service.
func NewService(repo Repository, listingStore ListingStore, dispatcher Dispatcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, listings: listingStore, dispatcher: dispatcher, logger: logger}
}

// Submit creates a pending offer and notifies both sides: the seller gets a
// new-offer alert, the buyer a submission confirmation.
func (s *Service) Submit(ctx context.Context, listingID, buyerID uuid.UUID, buyerEmail string, req SubmitRequest) (*Offer, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID == buyerID {
		return nil, fmt.Errorf("cannot make an offer on your own listing: %w", errs.ErrUnauthorized)
	}

	offer := &Offer{
		ID:         uuid.New(),
		DomainID:   listingID,
		BuyerID:    buyerID,
		BuyerEmail: buyerEmail,
		SellerID:   listing.OwnerID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Message:    req.Message,
		Status:     StatusPending,
	}
	if offer.Currency == "" {
		offer.Currency = listing.Currency
	}
	if err := s.repo.Create(ctx, offer); err != nil {
		return nil, err
	}

	data := map[string]any{
		"domain_name": listing.DomainName,
		"amount":      offer.Amount,
		"currency":    offer.Currency,
		"message":     offer.Message,
	}
	s.dispatch(ctx, notifications.Event{
		Type:           "offer_received",
		UserID:         listing.OwnerID,
		RecipientEmail: listing.OwnerEmail,
		RelatedID:      &offer.ID,
		Data:           data,
	})
	s.dispatch(ctx, notifications.Event{
		Type:           "offer_submitted",
		UserID:         buyerID,
		RecipientEmail: buyerEmail,
		RelatedID:      &offer.ID,
		Data:           data,
	})

	return offer, nil
}

// Accept transitions pending → accepted. Seller only; repeat clicks on an
// already-accepted offer are no-op successes without duplicate
// notifications.
func (s *Service) Accept(ctx context.Context, offerID, actorID uuid.UUID) error {
	return s.resolve(ctx, offerID, actorID, StatusAccepted, "offer_accepted")
}

// Reject transitions pending → rejected. Same guarantees as Accept.
func (s *Service) Reject(ctx context.Context, offerID, actorID uuid.UUID) error {
	return s.resolve(ctx, offerID, actorID, StatusRejected, "offer_rejected")
}

func (s *Service) resolve(ctx context.Context, offerID, actorID uuid.UUID, target OfferStatus, eventType string) error {
	offer, err := s.repo.GetByID(ctx, offerID)
	if err != nil {
		return err
	}
	if offer.SellerID != actorID {
		return fmt.Errorf("caller %s is not the seller of offer %s: %w", actorID, offerID, errs.ErrUnauthorized)
	}
	if offer.Status == target {
		return nil
	}
	if offer.Status != StatusPending {
		return fmt.Errorf("offer %s is %s: %w", offerID, offer.Status, errs.ErrTerminalState)
	}

	changed, err := s.repo.TransitionFromPending(ctx, offerID, target)
	if err != nil {
		return err
	}
	if !changed {
		current, err := s.repo.GetByID(ctx, offerID)
		if err != nil {
			return err
		}
		if current.Status == target {
			return nil
		}
		return fmt.Errorf("offer %s is %s: %w", offerID, current.Status, errs.ErrTerminalState)
	}

	listing, err := s.listings.GetByID(ctx, offer.DomainID)
	if err != nil {
		// The transition already happened; the buyer just misses the
		// notification detail. Log and report success.
		s.logger.Warn("offer resolved but listing lookup failed",
			zap.String("offer_id", offerID.String()),
			zap.Error(err))
		return nil
	}

	s.dispatch(ctx, notifications.Event{
		Type:           eventType,
		UserID:         offer.BuyerID,
		RecipientEmail: offer.BuyerEmail,
		RelatedID:      &offer.ID,
		Data: map[string]any{
			"domain_name": listing.DomainName,
			"amount":      offer.Amount,
			"currency":    offer.Currency,
		},
	})
	return nil
}

// ListForListing returns a listing's offers to its owner.
func (s *Service) ListForListing(ctx context.Context, listingID, actorID uuid.UUID, isAdmin bool) ([]Offer, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != actorID && !isAdmin {
		return nil, fmt.Errorf("caller %s does not own listing %s: %w", actorID, listingID, errs.ErrUnauthorized)
	}
	return s.repo.ListByListing(ctx, listingID)
}

func (s *Service) dispatch(ctx context.Context, event notifications.Event) {
	if err := s.dispatcher.Dispatch(ctx, event); err != nil {
		s.logger.Warn("offer notification dispatch failed",
			zap.String("event_type", event.Type),
			zap.Error(err))
	}
}
